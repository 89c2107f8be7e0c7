// Package errors defines the domain error type used across services and
// handlers. Every error carries a machine-readable code that maps to an
// HTTP status, so handlers never switch on message strings.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Re-exported so callers don't need to import both error packages.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	Join   = errors.Join
)

// Code is a machine-readable error category.
type Code string

const (
	CodeNotFound           Code = "NOT_FOUND"
	CodeAlreadyExists      Code = "ALREADY_EXISTS"
	CodeUnauthorized       Code = "UNAUTHORIZED"
	CodeForbidden          Code = "FORBIDDEN"
	CodeValidation         Code = "VALIDATION"
	CodeConflict           Code = "CONFLICT"
	CodeRateLimited        Code = "RATE_LIMITED"
	CodeInternal           Code = "INTERNAL"
	CodeInvalidCredentials Code = "INVALID_CREDENTIALS"
	CodeTokenExpired       Code = "TOKEN_EXPIRED"
)

// HTTPStatus maps the code to its response status.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeAlreadyExists, CodeConflict:
		return http.StatusConflict
	case CodeUnauthorized, CodeInvalidCredentials, CodeTokenExpired:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeValidation:
		return http.StatusBadRequest
	case CodeRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Error is a coded domain error. Details holds structured payload for the
// client (e.g. per-field validation messages); cause is for logs only.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

// Is matches any *Error with the same code, so services can return
// specific messages while callers test against the sentinels below.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// HTTPStatus returns the response status for this error.
func (e *Error) HTTPStatus() int {
	return e.Code.HTTPStatus()
}

// WithCause returns a copy carrying err as the underlying cause.
func (e *Error) WithCause(err error) *Error {
	c := *e
	c.cause = err
	return &c
}

// Sentinels for errors.Is checks.
var (
	ErrNotFound           = &Error{Code: CodeNotFound, Message: "not found"}
	ErrAlreadyExists      = &Error{Code: CodeAlreadyExists, Message: "already exists"}
	ErrUnauthorized       = &Error{Code: CodeUnauthorized, Message: "unauthorized"}
	ErrForbidden          = &Error{Code: CodeForbidden, Message: "forbidden"}
	ErrValidation         = &Error{Code: CodeValidation, Message: "validation error"}
	ErrConflict           = &Error{Code: CodeConflict, Message: "conflict"}
	ErrRateLimited        = &Error{Code: CodeRateLimited, Message: "rate limited"}
	ErrInternal           = &Error{Code: CodeInternal, Message: "internal error"}
	ErrInvalidCredentials = &Error{Code: CodeInvalidCredentials, Message: "invalid credentials"}
	ErrTokenExpired       = &Error{Code: CodeTokenExpired, Message: "token expired"}
)

func newError(code Code, msg string) *Error {
	return &Error{Code: code, Message: msg}
}

// Constructors for errors with caller-supplied messages.

func NotFound(msg string) *Error           { return newError(CodeNotFound, msg) }
func AlreadyExists(msg string) *Error      { return newError(CodeAlreadyExists, msg) }
func Unauthorized(msg string) *Error       { return newError(CodeUnauthorized, msg) }
func Forbidden(msg string) *Error          { return newError(CodeForbidden, msg) }
func Validation(msg string) *Error         { return newError(CodeValidation, msg) }
func Conflict(msg string) *Error           { return newError(CodeConflict, msg) }
func RateLimited(msg string) *Error        { return newError(CodeRateLimited, msg) }
func Internal(msg string) *Error           { return newError(CodeInternal, msg) }
func InvalidCredentials(msg string) *Error { return newError(CodeInvalidCredentials, msg) }
func TokenExpired(msg string) *Error       { return newError(CodeTokenExpired, msg) }

// Validationf creates a validation error with a formatted message.
func Validationf(format string, args ...any) *Error {
	return newError(CodeValidation, fmt.Sprintf(format, args...))
}

// ValidationWithDetails creates a validation error carrying a structured
// details payload, typically field-to-message maps from the validator.
func ValidationWithDetails(msg string, details any) *Error {
	return &Error{Code: CodeValidation, Message: msg, Details: details}
}
