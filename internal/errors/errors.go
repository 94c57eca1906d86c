// Package errors provides custom error types for domain-specific errors.
package errors

import (
	"errors"
	"fmt"
)

// Standard sentinel errors
var (
	// ErrTimeout marks a request that was aborted after the client timeout.
	// The hosted backend sleeps when idle and can take tens of seconds to
	// cold start, so this is surfaced as guidance rather than a hard failure.
	ErrTimeout = errors.New("server is taking too long to respond; it may be waking up, retry shortly")

	// ErrSessionExpired marks a 401 response. The stored credential has been
	// cleared and the caller should route the user to login.
	ErrSessionExpired = errors.New("session expired, please log in again")

	// ErrUpgradeRequired marks a premium-gated endpoint. Callers must route
	// this to the upgrade affordance, never to a generic error notification.
	ErrUpgradeRequired = errors.New("premium subscription required")

	ErrNotAuthenticated = errors.New("not authenticated")
	ErrConnectionFailed = errors.New("connection failed")
	ErrNotFound         = errors.New("not found")
	ErrFileTooLarge     = errors.New("file exceeds the 5 MB import limit")
	ErrNotCSV           = errors.New("file must have a .csv extension")
	ErrNoPreview        = errors.New("no CSV preview loaded")
	ErrConfigInvalid    = errors.New("invalid configuration")
)

// APIError represents a non-2xx response from the backend, carrying the
// server's error message verbatim.
type APIError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return fmt.Sprintf("HTTP %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// NewAPIError creates a new APIError.
func NewAPIError(status int, message string, err error) *APIError {
	return &APIError{StatusCode: status, Message: message, Err: err}
}

// ValidationError represents a client-side validation failure, caught before
// any network round-trip.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// StreamError represents an error frame received mid-stream from an AI
// streaming endpoint.
type StreamError struct {
	Message string
}

func (e *StreamError) Error() string {
	return fmt.Sprintf("stream error: %s", e.Message)
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
