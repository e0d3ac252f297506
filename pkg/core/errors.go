package core

import (
	"errors"
	"fmt"
)

// Error codes shared across packages
const (
	CodeBadRequest    = "BAD_REQUEST"
	CodeNotFound      = "NOT_FOUND"
	CodeInternal      = "INTERNAL"
	CodeInvalidInput  = "INVALID_INPUT"
	CodeInvalidState  = "INVALID_STATE"
	CodeInvalidConfig = "INVALID_CONFIG"
)

// Error is a coded error; Code is stable, Message is safe to show callers
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// BadRequest reports malformed or missing input
func BadRequest(format string, args ...interface{}) *Error {
	return &Error{Code: CodeBadRequest, Message: fmt.Sprintf(format, args...)}
}

// NotFound reports a referenced entity that does not exist
func NotFound(format string, args ...interface{}) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

// CodeOf returns the code of the first *Error in err's chain, or CodeInternal
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

// IsCode reports whether err carries code
func IsCode(err error, code string) bool {
	return err != nil && CodeOf(err) == code
}
