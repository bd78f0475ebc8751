// Package apperrors defines the closed error taxonomy shared by the
// service layer. Handlers branch on Kind, never on message strings.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind int

const (
	KindUnknown Kind = iota
	// KindNotFound: the resource does not exist.
	KindNotFound
	// KindExpired: the invite or link exists but is past its expiry.
	// Surfaced with the same HTTP status as KindNotFound.
	KindExpired
	// KindForbidden: an authorization predicate or structural guard denied the action.
	KindForbidden
	// KindConflict: duplicate membership, duplicate invite, already-accepted states.
	KindConflict
	// KindValidation: malformed or empty input upstream of the core.
	KindValidation
	// KindInternal: database or collaborator failure.
	KindInternal
)

// Error carries a taxonomy kind plus a human-readable reason. The kind is
// preserved losslessly so the HTTP layer can map it to a status code.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches two taxonomy errors by kind so tests can use errors.Is
// with a bare sentinel like apperrors.NotFound("").
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Kind == t.Kind
}

func NotFound(msg string) *Error   { return &Error{Kind: KindNotFound, Message: msg} }
func Expired(msg string) *Error    { return &Error{Kind: KindExpired, Message: msg} }
func Forbidden(msg string) *Error  { return &Error{Kind: KindForbidden, Message: msg} }
func Conflict(msg string) *Error   { return &Error{Kind: KindConflict, Message: msg} }
func Validation(msg string) *Error { return &Error{Kind: KindValidation, Message: msg} }

// Internal wraps an unexpected failure from a collaborator.
func Internal(msg string, err error) *Error {
	return &Error{Kind: KindInternal, Message: msg, Err: err}
}

// KindOf extracts the taxonomy kind from err, or KindUnknown for
// errors that did not originate in the service layer.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// HTTPStatus maps a taxonomy kind to the status code the API returns.
// Expired is deliberately indistinguishable from NotFound on the wire.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindNotFound, KindExpired:
		return http.StatusNotFound
	case KindForbidden:
		return http.StatusForbidden
	case KindConflict:
		return http.StatusConflict
	case KindValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the caller-safe reason string for err. Internal and
// unknown errors collapse to a generic message so database details
// never leak into responses.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != KindInternal {
		return e.Message
	}
	return "Internal server error"
}
