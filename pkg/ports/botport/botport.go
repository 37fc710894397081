// Package botport is the outbound chat port used to notify the team about new leads.
package botport

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Normalized error codes shared by adapters.
const (
	CodeContextCanceled = "context_canceled"
	CodeContextDeadline = "context_deadline"
	CodeContextError    = "context_error"
	CodeRateLimited     = "rate_limited"
	CodeBadRequest      = "bad_request"
	CodeForbidden       = "forbidden"
	CodeUnknown         = "unknown"
)

// BotMessage identifies a delivered message independent of the transport.
type BotMessage struct {
	ChatID    int64
	MessageID int
	Transport string
	Payload   string
}

// BotError wraps adapter failures with retry hints and normalized codes.
type BotError struct {
	Op         string
	Code       string
	RetryAfter time.Duration
	Wrapped    error
}

func (e *BotError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Wrapped != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Code, e.Wrapped)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Code)
}

// Unwrap exposes the underlying adapter error for errors.Is/As.
func (e *BotError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Wrapped
}

// NewBotError builds a BotError for op/code around err.
func NewBotError(op, code string, err error) *BotError {
	return &BotError{Op: op, Code: code, Wrapped: err}
}

// ContextError maps a context failure to its normalized code.
func ContextError(op string, err error) *BotError {
	switch {
	case errors.Is(err, context.Canceled):
		return NewBotError(op, CodeContextCanceled, err)
	case errors.Is(err, context.DeadlineExceeded):
		return NewBotError(op, CodeContextDeadline, err)
	default:
		return NewBotError(op, CodeContextError, err)
	}
}

// IsCode reports whether err is a BotError with the given code.
func IsCode(err error, code string) bool {
	var be *BotError
	if errors.As(err, &be) {
		return be != nil && be.Code == code
	}
	return false
}

// BotPort sends plain text messages to a chat.
type BotPort interface {
	SendMessage(ctx context.Context, chatID int64, text string) (BotMessage, error)
}
