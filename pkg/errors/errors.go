// Package errors defines the coded error type shared by the engine, the
// CLI, and the edge server.
//
// Every failure that crosses a package boundary carries a Code so callers
// can branch on the category (and the edge server can map it to an HTTP
// status) without parsing message strings. Codes group by prefix:
// INVALID_* for rejected input, *_NOT_FOUND for missing resources,
// STORE_ERROR for persistence, and INTERNAL_ERROR for everything that
// should not happen.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidInput, "invalid block id: %s", id)
//	if errors.Is(err, errors.ErrCodeInvalidInput) {
//	    // rejected input
//	}
//
//	err = errors.Wrap(errors.ErrCodeStore, cause, "save manifest %s", id)
package errors

import (
	"errors"
	"fmt"
)

// Code is a machine-readable error category.
type Code string

const (
	// Rejected input.
	ErrCodeInvalidInput       Code = "INVALID_INPUT"
	ErrCodeInvalidConstraints Code = "INVALID_CONSTRAINTS"
	ErrCodeInvalidConfig      Code = "INVALID_CONFIG"
	ErrCodeInvalidFixture     Code = "INVALID_FIXTURE"
	ErrCodeInvalidManifest    Code = "INVALID_MANIFEST"
	ErrCodeInvalidPath        Code = "INVALID_PATH"

	// Missing resources.
	ErrCodeNotFound         Code = "NOT_FOUND"
	ErrCodeDocumentNotFound Code = "DOCUMENT_NOT_FOUND"
	ErrCodeBlockNotFound    Code = "BLOCK_NOT_FOUND"
	ErrCodeFileNotFound     Code = "FILE_NOT_FOUND"

	// Persistence.
	ErrCodeStore Code = "STORE_ERROR"

	// Transport.
	ErrCodeNetwork     Code = "NETWORK_ERROR"
	ErrCodeTimeout     Code = "TIMEOUT"
	ErrCodeRateLimited Code = "RATE_LIMITED"

	// Everything else.
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error pairs a Code with a human-readable message and an optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the cause to the stdlib errors chain.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a coded error with a formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates a coded error around an existing cause.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// Is reports whether err, anywhere in its chain, is an *Error with the
// given code.
func Is(err error, code Code) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == code
}

// GetCode extracts err's code. Non-coded errors yield the empty code.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage strips the code prefix for display: coded errors yield their
// bare message, anything else its Error() string.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// RateLimitedError is returned by the edge server when a client exceeds
// its request budget. RetryAfter is advisory, in seconds.
type RateLimitedError struct {
	RetryAfter int
	Message    string
}

func (e *RateLimitedError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited: retry after %d seconds", e.RetryAfter)
	}
	return "rate limited"
}

// Code returns ErrCodeRateLimited so the category check stays uniform.
func (e *RateLimitedError) Code() Code {
	return ErrCodeRateLimited
}
