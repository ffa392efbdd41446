// Package clock provides an injectable time source.
package clock

import (
	"sync"
	"time"
)

// Clock reports the current time.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

// New returns a Clock backed by time.Now.
func New() Clock {
	return realClock{}
}

func (realClock) Now() time.Time {
	return time.Now()
}

// Managed is a hand-driven clock for tests.
type Managed struct {
	mu  sync.Mutex
	now time.Time
}

// NewManaged returns a Managed clock starting at start.
func NewManaged(start time.Time) *Managed {
	return &Managed{now: start}
}

func (m *Managed) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Advance moves the clock forward by d and returns the new time.
func (m *Managed) Advance(d time.Duration) time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = m.now.Add(d)
	return m.now
}
