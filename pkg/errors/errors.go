// Package errors provides structured error types for gridprep.
//
// Every failure a dataset run can hit carries a machine-readable [Code]. The
// runner passes output write errors through [IsFatal] to decide whether to
// abort or count the failure and continue.
//
// # Error Codes
//
// Fatal codes abort a run:
//   - EMPTY_DATASET: no source images were found
//   - MISSING_PATH: a required input directory does not exist
//   - NON_SQUARE_IMAGE: an image is not square
//   - PARTITION_SIZE: a split cannot produce the requested sizes
//   - GRID_SIZE: a grid size does not fit the image side
//   - SIZE_MISMATCH: image, mask, and probed side disagree
//   - IMAGE_LOAD: an input file cannot be decoded
//   - INVALID_INPUT, INVALID_CONFIG: bad options or config file
//
// IMAGE_PERSIST is the only recoverable code: a single output file failed to
// write and the run continues with the next unit. An uncoded error is fatal.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeEmptyDataset, "no %s images in %s", ext, dir)
//	if errors.Is(err, errors.ErrCodeEmptyDataset) {
//	    // Handle empty dataset
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeImagePersist, origErr, "save %s", path)
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
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"

	// Dataset discovery and probing
	ErrCodeEmptyDataset   Code = "EMPTY_DATASET"
	ErrCodeMissingPath    Code = "MISSING_PATH"
	ErrCodeNonSquareImage Code = "NON_SQUARE_IMAGE"
	ErrCodeSizeMismatch   Code = "SIZE_MISMATCH"
	ErrCodeGridSize       Code = "GRID_SIZE"
	ErrCodeImageLoad      Code = "IMAGE_LOAD"

	// Partitioning
	ErrCodePartitionSize Code = "PARTITION_SIZE"

	// Output
	ErrCodeImagePersist Code = "IMAGE_PERSIST"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
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

// IsFatal reports whether err should abort a dataset run.
// Only IMAGE_PERSIST failures are recoverable; nil is not fatal.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	return GetCode(err) != ErrCodeImagePersist
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
