// Package dErrors defines coded domain errors shared across services and
// transports. Services return these; the HTTP layer translates codes into
// status lines without inspecting error strings.
package dErrors

import (
	"errors"
	"fmt"
)

// Code classifies a domain error for transport mapping and assertions.
type Code string

const (
	// CodeValidation marks malformed or missing caller input.
	CodeValidation Code = "validation_error"
	// CodeBadRequest marks a structurally broken request (bad JSON, bad path param).
	CodeBadRequest Code = "bad_request"
	// CodeUnauthorized marks missing, invalid, or expired credentials.
	CodeUnauthorized Code = "unauthorized"
	// CodeNotFound marks an absent resource. Not-owned resources use the same
	// code so non-owners cannot probe for existence.
	CodeNotFound Code = "not_found"
	// CodeDependency marks a downstream store/queue/cache failure after
	// retries were exhausted.
	CodeDependency Code = "dependency_failure"
	// CodeInternal marks everything else. Details are never sent to callers.
	CodeInternal Code = "internal_error"
)

// Error is a domain error with a stable code and a human-readable message.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// New creates a domain error with the given code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap creates a domain error that carries an underlying cause.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, cause: cause}
}

// HasCode reports whether err (or anything it wraps) is a domain error with
// the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// CodeOf extracts the code from err, defaulting to CodeInternal for
// non-domain errors.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}
