// Package errors provides error types and handling for experiment-tracking operations.
package errors

import (
	"errors"
	"fmt"
)

// Error represents a tracking operation error with context about the operation
// that failed. It wraps the underlying store or validation error with additional
// context for better debugging.
type Error struct {
	// Op is the operation that failed (e.g., "logMetrics", "afterSaveCheckpoint")
	Op string

	// Run is the run identifier (if applicable)
	Run string

	// Path is the namespace path involved (if applicable)
	Path string

	// Err is the underlying error from the remote store or other source
	Err error
}

// Error implements the error interface by providing a formatted error message.
func (e *Error) Error() string {
	if e.Run != "" && e.Path != "" {
		return fmt.Sprintf("runlog.%s %s:%s: %v", e.Op, e.Run, e.Path, e.Err)
	}
	if e.Run != "" {
		return fmt.Sprintf("runlog.%s run %s: %v", e.Op, e.Run, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("runlog.%s path %s: %v", e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("runlog.%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error chaining support.
func (e *Error) Unwrap() error {
	return e.Err
}

// WithRun adds run context to an existing error.
func (e *Error) WithRun(run string) *Error {
	e.Run = run
	return e
}

// WithPath adds namespace path context to an existing error.
func (e *Error) WithPath(path string) *Error {
	e.Path = path
	return e
}

// WithMessage wraps the underlying error with a custom message.
func (e *Error) WithMessage(message string) *Error {
	e.Err = fmt.Errorf("%s: %w", message, e.Err)
	return e
}

// New creates a new Error with the given operation and underlying error.
func New(op string, err error) *Error {
	return &Error{
		Op:  op,
		Err: err,
	}
}

// NewRunError creates a new Error with run context.
func NewRunError(op, run string, err error) *Error {
	return &Error{
		Op:  op,
		Run: run,
		Err: err,
	}
}

// NewPathError creates a new Error with run and namespace path context.
func NewPathError(op, run, path string, err error) *Error {
	return &Error{
		Op:   op,
		Run:  run,
		Path: path,
		Err:  err,
	}
}

// Sentinel errors for common tracking operation failures.
// These can be used with errors.Is() for error checking.
var (
	// ErrInvalidInput indicates that the provided input is invalid
	ErrInvalidInput = errors.New("runlog: invalid input")

	// ErrInvalidPath indicates that a checkpoint path is not rooted under the
	// expected checkpoint directory
	ErrInvalidPath = errors.New("runlog: checkpoint path outside checkpoint directory")

	// ErrNotFound indicates that the requested namespace path does not exist
	ErrNotFound = errors.New("runlog: path not found")

	// ErrDeprecated indicates that a removed legacy API was called
	ErrDeprecated = errors.New("runlog: deprecated API")

	// ErrRunConflict indicates that run initialization options were combined
	// with an already initialized store
	ErrRunConflict = errors.New("runlog: conflicting run initialization")
)

// IsInvalidPath checks if an error indicates a checkpoint path violation.
// This is a convenience function that handles both sentinel errors and wrapped errors.
func IsInvalidPath(err error) bool {
	return errors.Is(err, ErrInvalidPath)
}

// IsInvalidInput checks if an error indicates invalid input.
// This is a convenience function that handles both sentinel errors and wrapped errors.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsNotFound checks if an error indicates that a path was not found.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDeprecated checks if an error came from a removed legacy API.
func IsDeprecated(err error) bool {
	return errors.Is(err, ErrDeprecated)
}
