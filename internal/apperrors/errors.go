// internal/apperrors/errors.go
package apperrors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
)

type Code string

const (
	CodeUnauthenticated Code = "UNAUTHENTICATED"
	CodeForbidden       Code = "FORBIDDEN"
	CodeNotFound        Code = "NOT_FOUND"
	CodeInvalidState    Code = "INVALID_STATE"
	CodeValidation      Code = "VALIDATION_ERROR"
	CodeConflict        Code = "CONFLICT"
	CodeRateLimit       Code = "RATE_LIMITED"
	CodeInternal        Code = "INTERNAL_ERROR"
)

type Metadata struct {
	HTTPStatus    int
	PublicMessage string
}

var metadataByCode = map[Code]Metadata{
	CodeUnauthenticated: {HTTPStatus: http.StatusUnauthorized, PublicMessage: "not authenticated"},
	CodeForbidden:       {HTTPStatus: http.StatusForbidden, PublicMessage: "forbidden"},
	CodeNotFound:        {HTTPStatus: http.StatusNotFound, PublicMessage: "not found"},
	CodeInvalidState:    {HTTPStatus: http.StatusBadRequest, PublicMessage: "invalid state"},
	CodeValidation:      {HTTPStatus: http.StatusBadRequest, PublicMessage: "validation failed"},
	CodeConflict:        {HTTPStatus: http.StatusConflict, PublicMessage: "conflict"},
	CodeRateLimit:       {HTTPStatus: http.StatusTooManyRequests, PublicMessage: "rate limit exceeded"},
	CodeInternal:        {HTTPStatus: http.StatusInternalServerError, PublicMessage: "internal server error"},
}

func MetadataFor(code Code) Metadata {
	if meta, ok := metadataByCode[code]; ok {
		return meta
	}
	return metadataByCode[CodeInternal]
}

// Error is a business-rule failure carrying a taxonomy code and a message
// that is safe to show to API consumers.
type Error struct {
	code    Code
	message string
	cause   error
}

func New(code Code, message string) *Error {
	if message == "" {
		message = MetadataFor(code).PublicMessage
	}
	return &Error{code: code, message: message}
}

func Wrap(code Code, err error, message string) *Error {
	e := New(code, message)
	e.cause = err
	return e
}

func Unauthenticated(message string) *Error { return New(CodeUnauthenticated, message) }
func Forbidden(message string) *Error       { return New(CodeForbidden, message) }
func NotFound(message string) *Error        { return New(CodeNotFound, message) }
func InvalidState(message string) *Error    { return New(CodeInvalidState, message) }
func Validation(message string) *Error      { return New(CodeValidation, message) }
func Conflict(message string) *Error        { return New(CodeConflict, message) }

// Internal wraps an unexpected failure. The cause stays out of the public message.
func Internal(err error, message string) *Error {
	return Wrap(CodeInternal, err, message)
}

func (e *Error) Code() Code {
	if e == nil {
		return CodeInternal
	}
	return e.code
}

func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

func (e *Error) HTTPStatus() int {
	return MetadataFor(e.Code()).HTTPStatus
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.code, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.code, e.message)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

func As(err error) *Error {
	if err == nil {
		return nil
	}
	var typed *Error
	if stdErrors.As(err, &typed) {
		return typed
	}
	return nil
}

// Is reports whether err carries the given code.
func Is(err error, code Code) bool {
	if typed := As(err); typed != nil {
		return typed.code == code
	}
	return false
}
