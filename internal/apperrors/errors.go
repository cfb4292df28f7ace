package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies an API error
type Code string

const (
	CodeBadRequest    Code = "BAD_REQUEST"
	CodeValidation    Code = "VALIDATION_ERROR"
	CodeUnauthorized  Code = "UNAUTHORIZED"
	CodeForbidden     Code = "FORBIDDEN"
	CodeNotFound      Code = "NOT_FOUND"
	CodeInternalError Code = "INTERNAL_ERROR"
)

// Detail attaches a field-level reason to a validation error
type Detail struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// Error is the typed error surfaced by every core operation
type Error struct {
	Code    Code
	Status  int
	Message string
	Details []Detail
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// BadRequest reports a structurally malformed request body
func BadRequest(message string) *Error {
	return &Error{Code: CodeBadRequest, Status: http.StatusBadRequest, Message: message}
}

// Validation reports out-of-range or inconsistent input, recoverable by
// the caller correcting the request
func Validation(message string, details ...Detail) *Error {
	return &Error{Code: CodeValidation, Status: http.StatusBadRequest, Message: message, Details: details}
}

// Unauthorized reports a missing or unverifiable identity
func Unauthorized(message string) *Error {
	return &Error{Code: CodeUnauthorized, Status: http.StatusUnauthorized, Message: message}
}

// Forbidden reports a verified identity that does not own the target entity
func Forbidden(message string) *Error {
	return &Error{Code: CodeForbidden, Status: http.StatusForbidden, Message: message}
}

// NotFound reports an absent entity
func NotFound(message string) *Error {
	return &Error{Code: CodeNotFound, Status: http.StatusNotFound, Message: message}
}

// Internal reports provider exhaustion, misconfiguration, or a
// persistence failure. The wrapped error is logged, never returned to
// the caller.
func Internal(message string, err error) *Error {
	return &Error{Code: CodeInternalError, Status: http.StatusInternalServerError, Message: message, Err: err}
}

// From extracts an *Error from err, wrapping unknown errors as a generic
// internal error so the response body never leaks details
func From(err error) *Error {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return Internal("An unexpected error occurred", err)
}
