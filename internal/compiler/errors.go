package compiler

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes fatal build errors.
type ErrorCode string

const (
	// InvalidInput: missing or malformed construction arguments.
	InvalidInput ErrorCode = "InvalidInput"
	// DuplicateMethodName: the (group, name) pair was already assembled.
	DuplicateMethodName ErrorCode = "DuplicateMethodName"
	// UnsupportedResponseMimeType: a declared response matched none of the
	// classification strategies.
	UnsupportedResponseMimeType ErrorCode = "UnsupportedResponseMimeType"
	// MissingByteArrayField: a stream response's composite schema lacks a
	// byte-array property.
	MissingByteArrayField ErrorCode = "MissingByteArrayField"
)

// BuildError is a fatal error for one operation's build. No partial method is
// returned or registered when one is raised.
type BuildError struct {
	Code    ErrorCode
	Method  string // fully-qualified method name, when known
	Status  string // offending response status, when relevant
	Message string
	Cause   error
}

func (e *BuildError) Error() string {
	if e.Method != "" {
		return fmt.Sprintf("%s: %s", e.Method, e.Message)
	}
	return e.Message
}

func (e *BuildError) Unwrap() error { return e.Cause }

// HasCode reports whether err carries the given build error code.
func HasCode(err error, code ErrorCode) bool {
	var be *BuildError
	return errors.As(err, &be) && be.Code == code
}
