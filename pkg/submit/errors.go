package submit

import (
	"errors"
	"fmt"
)

var (
	// ErrSubmitInFlight is returned when a submission is already being dispatched.
	ErrSubmitInFlight = errors.New("submission already in flight")
	// ErrNotConfigured means the provider credentials are missing; nothing was sent.
	ErrNotConfigured = errors.New("submission provider not configured")
)

// SubmitError wraps provider failures with the HTTP status when one was received.
type SubmitError struct {
	Provider string
	Status   int
	Message  string
	Wrapped  error
}

func (e *SubmitError) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := fmt.Sprintf("%s: submission failed", e.Provider)
	if e.Status != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.Status)
	}
	if e.Message != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Message)
	}
	if e.Wrapped != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Wrapped)
	}
	return msg
}

// Unwrap exposes the underlying error for errors.Is/As.
func (e *SubmitError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Wrapped
}
