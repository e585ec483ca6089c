package types

import (
	"errors"
	"fmt"
)

// Caller errors. They are returned before any network call is made.
var (
	ErrInvalidParams    = errors.New("invalid params")
	ErrInvalidFilter    = errors.New("invalid search filter")
	ErrMissingVID       = errors.New("contact has no vid")
	ErrContactDestroyed = errors.New("contact is destroyed")
)

// ErrUnsupportedLookup marks lookups the client refuses to perform.
// Batch lookup by user token is one: the upstream endpoint is unreliable.
var ErrUnsupportedLookup = errors.New("unsupported lookup")

// APIError is a failure reported by the remote API or the transport.
type APIError struct {
	StatusCode    int    // HTTP status; zero when no response was received.
	Message       string // Human-readable message from the response body.
	CorrelationID string // Remote correlation ID, when supplied.
	Body          []byte // Raw response body.
	Err           error  // Underlying cause, if any.
}

// Error returns the formatted error message.
func (e *APIError) Error() string {
	if e == nil {
		return "hubspot api: <nil>"
	}
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.StatusCode == 0 {
		return fmt.Sprintf("hubspot api: %s", msg)
	}
	return fmt.Sprintf("hubspot api: status %d: %s", e.StatusCode, msg)
}

// Unwrap returns the underlying cause.
func (e *APIError) Unwrap() error {
	return e.Err
}
