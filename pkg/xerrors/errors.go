// Package xerrors provides structured error types for spacelens.
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: input validation failures
//   - NOT_FOUND_*: resource not found
//   - STORAGE_*: cache/snapshot backend failures
//   - INTERNAL_*: unexpected internal errors
//
// The layout and rasterization core is deliberately infallible (numeric
// degeneracy is handled by skipping, not by errors); these codes cover the
// surrounding I/O: scanning, snapshots, caching, serving.
package xerrors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

const (
	ErrCodeInvalidPath   Code = "INVALID_PATH"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"

	ErrCodeNotFound         Code = "NOT_FOUND"
	ErrCodeSnapshotNotFound Code = "SNAPSHOT_NOT_FOUND"

	ErrCodeStorage Code = "STORAGE_ERROR"

	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error { return e.Cause }

// New creates an error with a code and formatted message.
func New(code Code, format string, args ...any) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an existing error. A nil cause
// yields nil, so call sites can wrap unconditionally.
func Wrap(code Code, cause error, format string, args ...any) error {
	if cause == nil {
		return nil
	}
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// CodeOf extracts the code from an error chain, or ErrCodeInternal if the
// chain carries no structured error.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ErrCodeInternal
}

// HasCode reports whether any error in the chain carries the given code.
func HasCode(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}
