// Package errors provides structured error types for topoview.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the library, CLI and HTTP server
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//
// # Error Codes
//
// Error codes follow a flat, upper-case naming convention:
//   - INVALID_*: Input validation failures
//   - DATA_INTEGRITY: Dataset references that cannot be resolved
//   - CONTAINER_BUSY, CLOSED: Rendering instance lifecycle violations
//   - INTERNAL_ERROR: Unexpected internal errors
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidSize, "graph size must be positive, got %v", size)
//	if errors.Is(err, errors.ErrCodeInvalidSize) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInvalidInput, origErr, "decode dataset %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput    Code = "INVALID_INPUT"
	ErrCodeInvalidFormat   Code = "INVALID_FORMAT"
	ErrCodeInvalidSize     Code = "INVALID_SIZE"
	ErrCodeInvalidSettings Code = "INVALID_SETTINGS"
	ErrCodeDataIntegrity   Code = "DATA_INTEGRITY"

	// Resource errors
	ErrCodeNotFound      Code = "NOT_FOUND"
	ErrCodeContainerBusy Code = "CONTAINER_BUSY"
	ErrCodeClosed        Code = "CLOSED"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// coder is implemented by typed errors that carry a code without being *Error.
type coder interface {
	Code() Code
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error or a typed error with a
// matching code.
func Is(err error, code Code) bool {
	return GetCode(err) == code && code != ""
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error carries no code.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	var c coder
	if errors.As(err, &c) {
		return c.Code()
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// DataIntegrityError reports a dataset whose links cannot be resolved
// against its node sequence, or whose node ids collide.
type DataIntegrityError struct {
	Link      int    // Index of the offending link, -1 for node errors
	Endpoint  string // "source" or "target"; empty for node errors
	Index     int    // Out-of-range node index, or the duplicated node id
	NodeCount int    // Number of nodes in the dataset
}

// Error implements the error interface.
func (e *DataIntegrityError) Error() string {
	if e.Link < 0 {
		return fmt.Sprintf("data integrity: duplicate node id %d", e.Index)
	}
	return fmt.Sprintf("data integrity: link %d %s index %d out of range [0, %d)",
		e.Link, e.Endpoint, e.Index, e.NodeCount)
}

// Code returns the error code for this error type.
func (e *DataIntegrityError) Code() Code {
	return ErrCodeDataIntegrity
}
