package swarmnode

import (
	"errors"
	"fmt"
	"net/http"
)

// Error kinds. Match them with errors.Is.
var (
	ErrAPIKeyNotSet    = errors.New("api key not set")
	ErrBadRequest      = errors.New("bad request")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrNotFound        = errors.New("not found")
	ErrDecode          = errors.New("failed to decode response")
	ErrTransport       = errors.New("transport failure")
	ErrRemote          = errors.New("remote error")

	// ErrNoFrame is returned by a single-shot receive when the connection
	// closes before any frame arrives
	ErrNoFrame = errors.New("connection closed before any frame was received")
	// ErrChannelClosed is returned when a live channel is read after it closed
	ErrChannelClosed = errors.New("live channel closed")
)

// Error is a failed transport operation. Kind is one of the Err* sentinels.
type Error struct {
	Kind       error
	StatusCode int
	Reason     string
	Err        error
}

func (e *Error) Error() string {
	msg := e.Kind.Error()
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(": HTTP %d", e.StatusCode)
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// ErrorFromStatus maps a non-success HTTP status to an Error
func ErrorFromStatus(statusCode int, reason string) *Error {
	if reason == "" {
		reason = http.StatusText(statusCode)
	}
	if reason == "" {
		reason = "Unknown status"
	}

	kind := ErrRemote
	switch statusCode {
	case http.StatusBadRequest:
		kind = ErrBadRequest
	case http.StatusUnauthorized, http.StatusForbidden:
		kind = ErrUnauthenticated
	case http.StatusNotFound:
		kind = ErrNotFound
	}
	return &Error{Kind: kind, StatusCode: statusCode, Reason: reason}
}

// MissingFieldError reports a required field left empty before any request is sent
func MissingFieldError(field string) *Error {
	return &Error{Kind: ErrBadRequest, Reason: field + " is required"}
}
