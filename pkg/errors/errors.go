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
	Field   string `json:"field,omitempty"`
	// Key selects the localized message rendered to clients.
	Key string `json:"-"`
	Err error  `json:"-"`
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

// Is matches errors sharing the same code and status so that clones of the
// predefined values satisfy errors.Is.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) || e == nil || t == nil {
		return false
	}
	return e.Code == t.Code && e.Status == t.Status
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
	ErrNotFound           = &Error{Code: "NOT_FOUND", Status: http.StatusNotFound, Message: "resource not found", Key: "not_found"}
	ErrValidation         = &Error{Code: "VALIDATION_ERROR", Status: http.StatusBadRequest, Message: "validation failed", Key: "validation_failed"}
	ErrUniqueViolation    = &Error{Code: "UNIQUE_VIOLATION", Status: http.StatusBadRequest, Message: "unique constraint violated", Key: "validation_failed"}
	ErrAlreadyEnrolled    = &Error{Code: "ALREADY_ENROLLED", Status: http.StatusBadRequest, Message: "student already enrolled in course", Key: "already_enrolled"}
	ErrMalformedReference = &Error{Code: "INVALID_REFERENCE", Status: http.StatusBadRequest, Message: "invalid student or course id", Key: "invalid_ids"}
	ErrInvalidReference   = &Error{Code: "INVALID_REFERENCE", Status: http.StatusNotFound, Message: "student or course does not exist", Key: "invalid_ids"}
	ErrEnrollmentNotFound = &Error{Code: "ENROLLMENT_NOT_FOUND", Status: http.StatusNotFound, Message: "enrollment not found", Key: "enrollment_not_found"}
	ErrInternal           = &Error{Code: "INTERNAL_ERROR", Status: http.StatusInternalServerError, Message: "internal server error", Key: "server_error"}
	ErrCacheMiss          = New("CACHE_MISS", http.StatusNotFound, "cache miss")
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

// WithKey returns a copy carrying the given localization key.
func WithKey(err *Error, key string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	clone.Key = key
	return &clone
}

// WithField returns a copy naming the offending input field.
func WithField(err *Error, field string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	clone.Field = field
	return &clone
}
