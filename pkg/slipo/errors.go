package slipo

import (
	"errors"
	"fmt"
)

// Error codes returned by the SLIPO API in the response envelope.
const (
	ErrCodeNotAuthenticated = "BasicErrorCode.NOT_AUTHENTICATED"
	ErrCodeNotAuthorized    = "BasicErrorCode.NOT_AUTHORIZED"
	ErrCodeResourceNotFound = "BasicErrorCode.RESOURCE_NOT_FOUND"
	ErrCodeIOError          = "BasicErrorCode.IO_ERROR"
)

// Sentinel errors for common failure scenarios.
var (
	// ErrMissingAPIKey indicates no API key is configured.
	ErrMissingAPIKey = errors.New("not authenticated: no API key configured")

	// ErrMalformedResponse indicates a response record is missing a required
	// field, meaning the remote contract is incompatible with this client.
	ErrMalformedResponse = errors.New("malformed response record")
)

// HTTPError represents an HTTP-level error (non-2xx response without a
// parseable API envelope).
type HTTPError struct {
	StatusCode int
	Body       string
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
	}
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

// IsRetryable returns true if the HTTP error is retryable.
func (e *HTTPError) IsRetryable() bool {
	return e.StatusCode >= 500 || e.StatusCode == 429
}

// Error wraps a SLIPO API error with operation context.
type Error struct {
	// Op is the operation that failed.
	Op string

	// Code is the API error code, if the failure came from the envelope.
	Code string

	// Message is the error message.
	Message string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
	}
	if e.Code != "" {
		return fmt.Sprintf("%s: [%s] %s", e.Op, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a new Error with the given operation and message.
func NewError(op, message string) *Error {
	return &Error{Op: op, Message: message}
}

// WrapError wraps an error with operation context.
func WrapError(op string, err error) *Error {
	return &Error{Op: op, Err: err, Message: err.Error()}
}

// malformed builds a malformed-response fault for a record missing a
// required field.
func malformed(op, detail string) *Error {
	return &Error{
		Op:      op,
		Err:     ErrMalformedResponse,
		Message: detail,
	}
}

// IsAuthError returns true if the error is an authentication or
// authorization failure.
func IsAuthError(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == ErrCodeNotAuthenticated || e.Code == ErrCodeNotAuthorized
	}
	return errors.Is(err, ErrMissingAPIKey)
}

// IsNotFoundError returns true if the error indicates a missing remote
// resource.
func IsNotFoundError(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == ErrCodeResourceNotFound
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == 404
	}
	return false
}

// IsMalformedError returns true if the error is a malformed-response fault.
func IsMalformedError(err error) bool {
	return errors.Is(err, ErrMalformedResponse)
}

// IsRetryable returns true if the error is likely transient and the request
// should be retried.
func IsRetryable(err error) bool {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.IsRetryable()
	}
	return false
}
