// Package errors provides domain-specific error types and sentinel errors
// for improved error handling across the application.
package errors

import (
	"errors"
	"fmt"
	"runtime/debug"
)

// Sentinel errors for common scenarios.
// Use errors.Is() to check these errors in your code.
var (
	// ErrInvalidInput indicates an inbound event carried unusable input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidCatalog indicates the reply catalog failed validation.
	ErrInvalidCatalog = errors.New("invalid catalog")

	// ErrUnknownAction indicates an action reference that names no action.
	ErrUnknownAction = errors.New("unknown action")

	// ErrReplyFailed indicates the LINE reply API rejected or failed a reply.
	ErrReplyFailed = errors.New("reply failed")

	// ErrRateLimitExceeded indicates rate limit has been exceeded.
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
)

// IsInvalidInput reports whether err wraps ErrInvalidInput.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsInvalidCatalog reports whether err wraps ErrInvalidCatalog.
func IsInvalidCatalog(err error) bool {
	return errors.Is(err, ErrInvalidCatalog)
}

// IsReplyFailed reports whether err wraps ErrReplyFailed.
func IsReplyFailed(err error) bool {
	return errors.Is(err, ErrReplyFailed)
}

// IsRateLimitExceeded reports whether err wraps ErrRateLimitExceeded.
func IsRateLimitExceeded(err error) bool {
	return errors.Is(err, ErrRateLimitExceeded)
}

// ValidationError represents input validation failures.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

// Unwrap lets errors.Is match ErrInvalidCatalog for catalog validation failures.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidCatalog
}

// NewValidationError creates a new validation error.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// PanicError carries a value recovered from a panicking goroutine.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// NewPanicError captures the recovered value together with the current stack.
// Call it from the deferred recover so the stack still points at the panic site.
func NewPanicError(value any) *PanicError {
	return &PanicError{
		Value: value,
		Stack: debug.Stack(),
	}
}
