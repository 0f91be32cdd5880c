// Package apperr defines the error taxonomy shared by services and the HTTP layer.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// FieldError describes one violated input rule
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is an application error carrying the HTTP status it maps to
type Error struct {
	Code    int          `json:"-"`
	Message string       `json:"message"`
	Fields  []FieldError `json:"errors,omitempty"`
	Err     error        `json:"-"`
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches errors of the same code and message, so sentinel values work
// with errors.Is even after being copied or wrapped.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code && t.Message == e.Message
}

// New creates a new Error
func New(code int, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Sentinel errors
var (
	ErrUnauthenticated    = New(http.StatusUnauthorized, "not authenticated", nil)
	ErrInvalidCredentials = New(http.StatusUnauthorized, "invalid username or password", nil)
	ErrInternal           = New(http.StatusInternalServerError, "internal server error", nil)
)

// Validation builds a 400 error whose message is the first violated rule
func Validation(fields ...FieldError) *Error {
	msg := "invalid input"
	if len(fields) > 0 {
		msg = fields[0].Message
	}
	return &Error{Code: http.StatusBadRequest, Message: msg, Fields: fields}
}

// Invalid is shorthand for a single-field validation error
func Invalid(field, message string) *Error {
	return Validation(FieldError{Field: field, Message: message})
}

// NotFound builds a 404 error for the named entity
func NotFound(entity string) *Error {
	return New(http.StatusNotFound, entity+" not found", nil)
}

// Conflict builds a 409 error for unique-constraint violations
func Conflict(message string, err error) *Error {
	return New(http.StatusConflict, message, err)
}

// Internal wraps an unexpected failure. The cause is kept for logging but
// never shown to clients.
func Internal(err error) *Error {
	return New(http.StatusInternalServerError, ErrInternal.Message, err)
}

// From converts any error to an *Error, treating unknown errors as internal
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal(err)
}

// HTTPStatus returns the status code err maps to
func HTTPStatus(err error) int {
	return From(err).Code
}

// IsNotFound reports whether err is a not-found error
func IsNotFound(err error) bool {
	return hasCode(err, http.StatusNotFound)
}

// IsValidation reports whether err is a validation error
func IsValidation(err error) bool {
	return hasCode(err, http.StatusBadRequest)
}

// IsConflict reports whether err is a conflict error
func IsConflict(err error) bool {
	return hasCode(err, http.StatusConflict)
}

// IsUnauthenticated reports whether err is an authentication failure
func IsUnauthenticated(err error) bool {
	return hasCode(err, http.StatusUnauthorized)
}

func hasCode(err error, code int) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Code == code
}
