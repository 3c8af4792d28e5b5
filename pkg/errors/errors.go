// Package errors provides structured error types for redline.
//
// Every public operation in the spatial engine returns a typed error rather
// than panicking. Callers switch on the [Code] to decide whether a failure is
// worth surfacing to the user or is routine (a degenerate overlap region, a
// pair of shapes with no gap between them).
//
// # Error Codes
//
// Geometry codes describe expected, recoverable outcomes:
//   - NOT_IN_FRAME: a shape has no resolvable ancestor frame
//   - NO_GAP_FOUND: informational; two shapes touch or overlap
//   - GAP_EXISTS: overlap decomposition was requested on a disjoint pair
//   - AMBIGUOUS_STACK_ORDER: two shapes report the same stacking index
//   - DEGENERATE_REGION: a rectangle has non-positive width or height
//
// The remaining codes follow the INVALID_*, NOT_FOUND_*, INTERNAL_* scheme.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeNotInFrame, "shape %q has no frame", id)
//	if errors.Is(err, errors.ErrCodeNotInFrame) {
//	    // skip this shape
//	}
//
//	err := errors.Wrap(errors.ErrCodeInvalidScene, origErr, "decode %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Geometry outcomes
	ErrCodeNotInFrame          Code = "NOT_IN_FRAME"
	ErrCodeNoGapFound          Code = "NO_GAP_FOUND"
	ErrCodeGapExists           Code = "GAP_EXISTS"
	ErrCodeAmbiguousStackOrder Code = "AMBIGUOUS_STACK_ORDER"
	ErrCodeDegenerateRegion    Code = "DEGENERATE_REGION"
	ErrCodeFrameMismatch       Code = "FRAME_MISMATCH"

	// Input validation errors
	ErrCodeInvalidInput       Code = "INVALID_INPUT"
	ErrCodeInvalidScene       Code = "INVALID_SCENE"
	ErrCodeInvalidShape       Code = "INVALID_SHAPE"
	ErrCodeInvalidFormat      Code = "INVALID_FORMAT"
	ErrCodeInvalidOrientation Code = "INVALID_ORIENTATION"

	// Resource not found errors
	ErrCodeNotFound      Code = "NOT_FOUND"
	ErrCodeShapeNotFound Code = "SHAPE_NOT_FOUND"
	ErrCodeFileNotFound  Code = "FILE_NOT_FOUND"
	ErrCodeBatchNotFound Code = "BATCH_NOT_FOUND"

	// Backend errors
	ErrCodeStorage Code = "STORAGE_ERROR"
	ErrCodeTimeout Code = "TIMEOUT"

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

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
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

// IsRoutine reports whether err is an expected geometric outcome that callers
// skip silently instead of reporting.
func IsRoutine(err error) bool {
	switch GetCode(err) {
	case ErrCodeNoGapFound, ErrCodeDegenerateRegion:
		return true
	}
	return false
}
