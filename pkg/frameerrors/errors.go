// Package frameerrors provides structured error handling for frameline.
// Every failure surfaced by the engine carries an ErrorType from the
// taxonomy below plus key-value details naming the offending identifier,
// index or bound, so that callers and adapters can report it verbatim.
package frameerrors

import (
	"errors"
	"fmt"
)

// ErrorType represents the category of error
type ErrorType string

const (
	// ErrorTypeSchema represents malformed construction input: row-count
	// mismatch across columns, a column missing from the declared type map,
	// or an empty column/name list
	ErrorTypeSchema ErrorType = "schema"
	// ErrorTypeTypeMismatch represents a value kind conflicting with a
	// column's established dtype
	ErrorTypeTypeMismatch ErrorType = "type_mismatch"
	// ErrorTypeColumnNotFound represents addressing an unknown column name
	ErrorTypeColumnNotFound ErrorType = "column_not_found"
	// ErrorTypeRowNotFound represents addressing an unknown row label
	ErrorTypeRowNotFound ErrorType = "row_not_found"
	// ErrorTypePosition represents an out-of-range integer row or column
	// position
	ErrorTypePosition ErrorType = "position_out_of_range"
	// ErrorTypeParse represents a malformed ingested row, tagged with its
	// source line number
	ErrorTypeParse ErrorType = "parse"
	// ErrorTypeIO represents an underlying source or sink failure
	ErrorTypeIO ErrorType = "io"
	// ErrorTypeConfig represents invalid engine configuration
	ErrorTypeConfig ErrorType = "config"
)

// Error represents a structured error with context
type Error struct {
	Type    ErrorType
	Message string
	Cause   error
	Details map[string]interface{}
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// WithDetail adds a key-value detail to the error
func (e *Error) WithDetail(key string, value interface{}) *Error {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// New creates a new error with the given type and message
func New(errType ErrorType, message string) *Error {
	return &Error{
		Type:    errType,
		Message: message,
	}
}

// Newf creates a new error with a formatted message
func Newf(errType ErrorType, format string, args ...interface{}) *Error {
	return &Error{
		Type:    errType,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap wraps an existing error with additional context
func Wrap(err error, errType ErrorType, message string) *Error {
	if err == nil {
		return nil
	}
	return &Error{
		Type:    errType,
		Message: message,
		Cause:   err,
	}
}

// IsType checks if the error is of the given type
func IsType(err error, errType ErrorType) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Type == errType
}

// ColumnNotFound builds the standard error for an unknown column name.
func ColumnNotFound(name string) *Error {
	return Newf(ErrorTypeColumnNotFound, "column %q not found", name).
		WithDetail("column", name)
}

// RowNotFound builds the standard error for an unknown row label.
func RowNotFound(label string) *Error {
	return Newf(ErrorTypeRowNotFound, "row label %q not found", label).
		WithDetail("row_label", label)
}

// PositionOutOfRange builds the standard error for an out-of-range position.
// The attempted value and the valid bound travel in both the message and the
// details so adapters can surface them verbatim.
func PositionOutOfRange(what string, pos, bound int) *Error {
	return Newf(ErrorTypePosition, "%s position %d out of range [0, %d)", what, pos, bound).
		WithDetail("position", pos).
		WithDetail("bound", bound)
}

// ParseAt wraps a decode failure with its 1-based source line number.
func ParseAt(err error, line int) *Error {
	return Wrap(err, ErrorTypeParse, fmt.Sprintf("malformed row at line %d", line)).
		WithDetail("line", line)
}
