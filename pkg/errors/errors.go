package errors

import (
	"errors"
	"fmt"
)

// Error codes for the failure kinds the bot distinguishes.
const (
	CodeMissingFile  = "MISSING_FILE"
	CodeSchema       = "SCHEMA"
	CodeValidation   = "VALIDATION"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeNotFound     = "NOT_FOUND"
	CodeRender       = "RENDER"
	CodeDelivery     = "DELIVERY"
	CodeInternal     = "INTERNAL"
)

// Error represents a typed domain error.
type Error struct {
	Code    string
	Message string
	Err     error
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

// New creates a new Error instance.
func New(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code, message string) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// Predefined errors for common scenarios.
var (
	ErrMissingFile  = New(CodeMissingFile, "expected spreadsheet has not been uploaded")
	ErrSchema       = New(CodeSchema, "required spreadsheet column is missing")
	ErrValidation   = New(CodeValidation, "validation failed")
	ErrUnauthorized = New(CodeUnauthorized, "administrator only")
	ErrNotFound     = New(CodeNotFound, "record not found")
	ErrRender       = New(CodeRender, "report rendering failed")
	ErrDelivery     = New(CodeDelivery, "message delivery failed")
	ErrInternal     = New(CodeInternal, "internal error")
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
	return Wrap(err, ErrInternal.Code, ErrInternal.Message)
}

// HasCode reports whether err carries the given code anywhere in its chain.
func HasCode(err error, code string) bool {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return false
		}
		if e.Code == code {
			return true
		}
		err = e.Err
	}
	return false
}
