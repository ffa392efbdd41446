package service

import (
	"errors"
	"fmt"
)

var (
	ErrAssessmentNotFound     = errors.New("assessment not found")
	ErrAssessmentNotDelivered = errors.New("assessment guide has not been delivered")
	ErrNoContact              = errors.New("assessment has no reachable contact")
	ErrInvalidRequest         = errors.New("invalid request")
)

// PersistenceError wraps a database failure on a write path.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence error during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func persistenceError(op string, err error) error {
	return &PersistenceError{Op: op, Err: err}
}
