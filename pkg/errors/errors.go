package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a typed domain error with HTTP awareness.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
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

// Is matches errors sharing the same code so callers can use errors.Is against the
// predefined values below, even after Clone or Wrap.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) || e == nil || t == nil {
		return false
	}
	return e.Code == t.Code
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Predefined errors for common scenarios.
var (
	ErrConfigMissing  = New("CONFIG_MISSING", http.StatusServiceUnavailable, "configuration not loaded")
	ErrTableNotFound  = New("TABLE_NOT_FOUND", http.StatusNotFound, "sheet not found")
	ErrRecordNotFound = New("RECORD_NOT_FOUND", http.StatusNotFound, "record not found")
	ErrPeriodNotFound = New("PERIOD_NOT_FOUND", http.StatusNotFound, "teaching period not found in academic calendar")
	ErrInvalidWeek    = New("INVALID_WEEK", http.StatusBadRequest, "week number must be a positive integer")
	ErrInvalidDay     = New("INVALID_DAY", http.StatusBadRequest, "day must be a weekday name")
	ErrBackend        = New("BACKEND_ERROR", http.StatusBadGateway, "row store access failed")
	ErrUnauthorized   = New("UNAUTHORIZED", http.StatusUnauthorized, "unauthorized")
	ErrValidation     = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrInternal       = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
	ErrCacheMiss      = New("CACHE_MISS", http.StatusNotFound, "cache miss")
)

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}

// Backend wraps a row store failure.
func Backend(err error, message string) *Error {
	if message == "" {
		message = ErrBackend.Message
	}
	return Wrap(err, ErrBackend.Code, ErrBackend.Status, message)
}
