// Package apperr defines the error outcomes a request can end in.  Each
// carries the HTTP status it maps to and a message that is safe to show to
// API consumers.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is a client-visible failure.  Cause, when set, is kept for logging
// and errors.Is/As but never rendered.
type Error struct {
	Status  int
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Cause }

func newf(status int, format string, args ...any) *Error {
	return &Error{Status: status, Message: fmt.Sprintf(format, args...)}
}

// BadRequest reports missing or invalid input.
func BadRequest(format string, args ...any) *Error {
	return newf(http.StatusBadRequest, format, args...)
}

// Unauthorized reports missing or invalid credentials or session.
func Unauthorized(format string, args ...any) *Error {
	return newf(http.StatusUnauthorized, format, args...)
}

// NotFound reports an absent entity or referenced ID.
func NotFound(format string, args ...any) *Error {
	return newf(http.StatusNotFound, format, args...)
}

// Conflict reports a uniqueness violation or a delete blocked by references.
func Conflict(format string, args ...any) *Error {
	return newf(http.StatusConflict, format, args...)
}

// Internal wraps an unexpected storage or infrastructure failure.
func Internal(message string, cause error) *Error {
	return &Error{Status: http.StatusInternalServerError, Message: message, Cause: cause}
}

// Required is the uniform "field is required" failure.
func Required(field string) *Error {
	return BadRequest("%s is required", field)
}

// StatusOf returns the HTTP status for err: the carried status for *Error,
// 500 for anything else.
func StatusOf(err error) int {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Status
	}
	return http.StatusInternalServerError
}
