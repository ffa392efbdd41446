package repository

import "errors"

var (
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = errors.New("not found")
	// ErrNotClaimed is returned when a terminal stamp targets an event that is not in
	// sending state.
	ErrNotClaimed = errors.New("check-in event is not claimed")
)
