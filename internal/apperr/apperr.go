package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is the closed set of error categories the HTTP boundary knows
// how to map to status codes. Services return *Error values (or wrap
// them); anything else is treated as internal.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindAuth
	KindForbidden
	KindNotFound
	KindConflict
	KindRateLimited
	KindUpstream
)

type Error struct {
	Kind Kind
	// Message is safe to return to clients verbatim.
	Message string
	// Err carries the underlying cause for logs; never serialized.
	Err error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, msg string) *Error { return &Error{Kind: kind, Message: msg} }

func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

func Validation(msg string) *Error  { return New(KindValidation, msg) }
func Auth(msg string) *Error        { return New(KindAuth, msg) }
func Forbidden(msg string) *Error   { return New(KindForbidden, msg) }
func NotFound(msg string) *Error    { return New(KindNotFound, msg) }
func Conflict(msg string) *Error    { return New(KindConflict, msg) }
func RateLimited(msg string) *Error { return New(KindRateLimited, msg) }
func Upstream(msg string) *Error    { return New(KindUpstream, msg) }

func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Message: "Internal server error", Err: err}
}

// KindOf extracts the category from an error chain. Unrecognized
// errors are internal by definition.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// HTTPStatus maps a Kind to the transport status code, once, at the
// boundary.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuth:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindRateLimited:
		return http.StatusTooManyRequests
	case KindUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// ClientMessage returns the message safe for the response body. For
// internal errors the underlying cause is never leaked.
func ClientMessage(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != KindInternal {
		return e.Message
	}
	return "Internal server error"
}
