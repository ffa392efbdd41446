// Package channel delivers rendered check-ins through email and SMS transports. Every
// adapter enforces its own suppression list before sending.
package channel

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/popeskul/spinecheck/internal/models"
)

var (
	// ErrSuppressed is returned when the recipient has opted out of the channel.
	ErrSuppressed = errors.New("recipient suppressed")
	// ErrInvalidRecipient is returned when the stored address can never be delivered to.
	ErrInvalidRecipient = errors.New("invalid recipient")
)

// Message is a single outbound delivery.
type Message struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

// Result describes an accepted delivery.
type Result struct {
	ProviderMessageID string
}

// Adapter is a delivery transport for one channel.
type Adapter interface {
	Channel() models.Channel
	// Suppressed reports whether recipient must not be contacted on this channel.
	Suppressed(ctx context.Context, recipient string) (bool, error)
	Send(ctx context.Context, msg Message) (*Result, error)
}

// SuppressionFunc reports whether a normalized recipient is suppressed.
type SuppressionFunc func(ctx context.Context, recipient string) (bool, error)

func (f SuppressionFunc) check(ctx context.Context, recipient string) (bool, error) {
	if f == nil {
		return false, nil
	}
	suppressed, err := f(ctx, recipient)
	if err != nil {
		return false, fmt.Errorf("failed to check suppression: %w", err)
	}
	return suppressed, nil
}

// DeliveryError is a transport failure. Transient failures may succeed on a later run.
type DeliveryError struct {
	Provider   string
	StatusCode int
	Message    string
	Transient  bool
	Cause      error
}

func (e *DeliveryError) Error() string {
	msg := e.Provider + ": " + e.Message
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *DeliveryError) Unwrap() error { return e.Cause }

// IsTransient reports whether err is a DeliveryError worth retrying.
func IsTransient(err error) bool {
	var de *DeliveryError
	return errors.As(err, &de) && de.Transient
}

// NormalizeEmail lowercases and trims an address for suppression lookups.
func NormalizeEmail(addr string) string {
	return strings.ToLower(strings.TrimSpace(addr))
}

// Set routes messages to the adapter of their channel.
type Set map[models.Channel]Adapter

func NewSet(adapters ...Adapter) Set {
	s := make(Set, len(adapters))
	for _, a := range adapters {
		if a != nil {
			s[a.Channel()] = a
		}
	}
	return s
}

func (s Set) For(ch models.Channel) (Adapter, bool) {
	a, ok := s[ch]
	return a, ok
}
