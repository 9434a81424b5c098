// internal/app/system/apperr/apperr.go
// Package apperr defines the error taxonomy shared by all feature
// handlers. Every domain operation maps its failures onto one of these
// kinds; handlers translate the kind to an HTTP status and the single
// JSON response envelope. No storage-layer error crosses a feature
// boundary unwrapped.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an application error.
type Kind int

const (
	// KindBadRequest: missing or malformed input (absent IDs, invalid
	// status enum, malformed ObjectID).
	KindBadRequest Kind = iota + 1
	// KindUnauthorized: missing or invalid credential.
	KindUnauthorized
	// KindForbidden: valid credential, wrong principal.
	KindForbidden
	// KindNotFound: entity absent, or present but not owned by the
	// caller (deliberately conflated to avoid existence leaks).
	KindNotFound
	// KindConflict: duplicate pending/accepted request, re-assigning
	// the same worker.
	KindConflict
	// KindInvalidState: transition attempted from a terminal or
	// wrong-status state.
	KindInvalidState
)

// Error is a kinded application error.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an Error of the given kind with a formatted message.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func BadRequest(format string, args ...any) *Error {
	return New(KindBadRequest, format, args...)
}

func Unauthorized(format string, args ...any) *Error {
	return New(KindUnauthorized, format, args...)
}

func Forbidden(format string, args ...any) *Error {
	return New(KindForbidden, format, args...)
}

func NotFound(format string, args ...any) *Error {
	return New(KindNotFound, format, args...)
}

func Conflict(format string, args ...any) *Error {
	return New(KindConflict, format, args...)
}

func InvalidState(format string, args ...any) *Error {
	return New(KindInvalidState, format, args...)
}

// KindOf returns the kind of err, or 0 if err is not an application
// error.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return 0
}

// IsKind reports whether err is an application error of the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// HTTPStatus maps an error to the HTTP status code the API returns for
// it. Errors without a kind are treated as internal.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindBadRequest:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindInvalidState:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
