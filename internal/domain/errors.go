// Package domain contains the core domain models and types.
package domain

import (
	"errors"
	"fmt"
)

// GenericErrorMessage is shown when nothing more specific is known about a failure.
const GenericErrorMessage = "An error occurred"

// Sentinel errors for common failure cases.
var (
	// ErrValidation marks locally detected input problems. The backend is never called.
	ErrValidation = errors.New("validation failed")

	// ErrEmptyIssue indicates the issue description is empty or whitespace only.
	ErrEmptyIssue = errors.New("issue description is required")

	// ErrMalformedHeaders indicates the headers text is not a JSON object of strings.
	ErrMalformedHeaders = errors.New("headers must be a JSON object of string values")

	// ErrMalformedBody indicates the request body text is not valid JSON.
	ErrMalformedBody = errors.New("request body must be valid JSON")

	// ErrInvalidMethod indicates an unsupported HTTP method.
	ErrInvalidMethod = errors.New("unsupported HTTP method")

	// ErrInvalidStatusCode indicates the status code is not an integer in 100..599.
	ErrInvalidStatusCode = errors.New("status code must be an integer between 100 and 599")

	// ErrInvalidAuthType indicates an unsupported authentication type.
	ErrInvalidAuthType = errors.New("unsupported authentication type")

	// ErrUnknownExample indicates an example identifier outside 401/400/429.
	ErrUnknownExample = errors.New("unknown example")

	// ErrBackendUnavailable indicates the diagnostic backend could not be reached.
	ErrBackendUnavailable = errors.New("diagnostic backend unavailable")

	// ErrBackendRejected indicates the backend answered with a non-success status.
	ErrBackendRejected = errors.New("diagnostic backend rejected the request")

	// ErrInvalidBackendResponse indicates the backend answered with an unreadable body.
	ErrInvalidBackendResponse = errors.New("invalid diagnostic backend response")

	// ErrUnauthorized indicates a missing, invalid or expired session token.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidConfig indicates invalid configuration.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// ValidationError reports a field that failed client-side validation.
type ValidationError struct {
	// Field is the form field that failed, e.g. "headers".
	Field string

	// Err is the underlying sentinel, possibly wrapping a parse error.
	Err error
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *ValidationError) Unwrap() []error {
	return []error{e.Err, ErrValidation}
}

// NewValidationError creates a ValidationError for field.
func NewValidationError(field string, err error) *ValidationError {
	return &ValidationError{Field: field, Err: err}
}

// IsValidation reports whether err is a client-side validation failure.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// BackendError wraps a failed call to the diagnostic backend.
type BackendError struct {
	// Op is the backend operation that failed ("debug", "test_request", "health").
	Op string

	// StatusCode is the HTTP status returned by the backend, 0 if none.
	StatusCode int

	// Detail is the human-readable detail extracted from the error payload.
	Detail string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *BackendError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Detail)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *BackendError) Unwrap() error {
	return e.Err
}

// Message is what the user sees: the structured detail when the backend sent
// one, else the lower-level failure description, else a generic fallback.
func (e *BackendError) Message() string {
	if e.Detail != "" {
		return e.Detail
	}
	if e.Err != nil && e.Err.Error() != "" {
		return e.Err.Error()
	}
	return GenericErrorMessage
}

// UserMessage converts any error into the text shown to the user.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var be *BackendError
	if errors.As(err, &be) {
		return be.Message()
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Error()
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return GenericErrorMessage
}
