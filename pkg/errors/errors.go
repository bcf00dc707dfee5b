package errors

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
)

// Kind classifies a failure for uniform handling across the portal.
type Kind string

const (
	KindNetwork        Kind = "network"
	KindAuthentication Kind = "authentication"
	KindValidation     Kind = "validation"
	KindServer         Kind = "server"
	KindUnknown        Kind = "unknown"
)

// Error is the normalized failure value raised by every client code path.
type Error struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
	Status  int    `json:"status,omitempty"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// New creates a new Error instance.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindFromStatus maps an HTTP status code to an error kind.
func KindFromStatus(status int) Kind {
	switch {
	case status == http.StatusUnauthorized:
		return KindAuthentication
	case status == http.StatusUnprocessableEntity:
		return KindValidation
	case status >= http.StatusInternalServerError:
		return KindServer
	default:
		return KindUnknown
	}
}

// FromStatus builds a normalized error from an HTTP error response. A
// server-supplied message wins over the generic status text.
func FromStatus(status int, message string) *Error {
	if message == "" {
		message = fmt.Sprintf("request failed with status %d", status)
	}
	return &Error{Kind: KindFromStatus(status), Message: message, Status: status}
}

// FromTransport classifies a failure that produced no HTTP response at all.
// Context cancellation keeps its own message so callers can tell teardown
// apart from real connectivity loss.
func FromTransport(err error) *Error {
	if err == nil {
		return nil
	}
	msg := "unable to reach the server"
	if errors.Is(err, context.Canceled) {
		msg = "request canceled"
	} else if errors.Is(err, context.DeadlineExceeded) {
		msg = "request timed out"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		msg = "request timed out"
	}
	return &Error{Kind: KindNetwork, Message: msg, Err: err}
}

// Normalize converts any error into an *Error. It is total and idempotent:
// an already normalized error is returned unchanged, and the result is never
// nil for a non-nil input. Substring matching survives only as a last resort
// for foreign errors that carry no status information.
func Normalize(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return FromTransport(err)
	}
	return Wrap(err, kindFromText(err.Error()), err.Error())
}

func kindFromText(text string) Kind {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "network"), strings.Contains(lower, "fetch"),
		strings.Contains(lower, "connection refused"), strings.Contains(lower, "no such host"):
		return KindNetwork
	case strings.Contains(lower, "401"), strings.Contains(lower, "unauthorized"),
		strings.Contains(lower, "token"):
		return KindAuthentication
	case strings.Contains(lower, "422"), strings.Contains(lower, "validation"):
		return KindValidation
	case strings.Contains(lower, "500"), strings.Contains(lower, "server error"):
		return KindServer
	default:
		return KindUnknown
	}
}

// IsKind reports whether err normalizes to the given kind.
func IsKind(err error, kind Kind) bool {
	e := Normalize(err)
	return e != nil && e.Kind == kind
}
