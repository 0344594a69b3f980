// Package errors provides structured error handling with typed error codes.
//
// Error codes are organized into categories:
//   - General errors (1-99): Unknown and general errors
//   - Validation errors (100-199): Invalid configuration, date ranges, thresholds and ticker universes
//   - Data/Resource errors (200-299): Missing market data, query failures, result persistence
//   - Strategy errors (400-499): Unknown strategy constructors and version mismatches
//   - Position errors (500-599): Position lifecycle violations
//   - Backtest errors (600-699): Backtesting engine state and cancellation
//   - Market data errors (700-799): Market data fetching and provider selection
//   - Optimizer errors (900-999): Parameter search failures
//
// Usage:
//
//	// Create a new error
//	err := errors.New(errors.ErrCodeInvalidConfiguration, "max_positions must be positive")
//
//	// Create an error that names the violated field
//	err := errors.NewField(errors.ErrCodeInvalidDateRange, "start_date", "must be before end_date")
//
//	// Wrap an existing error
//	err := errors.Wrap(errors.ErrCodeQueryFailed, "failed to query option chain", originalErr)
//
//	// Check error code
//	if errors.HasCode(err, errors.ErrCodeBacktestCancelled) { ... }
package errors

import (
	"errors"
	"fmt"
)

// Error represents a structured error with an error code and message.
// Field is set when the error refers to a single configuration field.
type Error struct {
	Code    ErrorCode
	Field   string
	Message string
	Cause   error
}

// New creates a new Error with the given code and message.
func New(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Field:   "",
		Message: message,
		Cause:   nil,
	}
}

// Newf creates a new Error with the given code and formatted message.
func Newf(code ErrorCode, format string, args ...any) *Error {
	return New(code, fmt.Sprintf(format, args...))
}

// NewField creates a new Error that names the offending configuration field.
func NewField(code ErrorCode, field string, message string) *Error {
	return &Error{
		Code:    code,
		Field:   field,
		Message: message,
		Cause:   nil,
	}
}

// Wrap wraps an existing error with a new Error containing the given code and message.
func Wrap(code ErrorCode, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Field:   "",
		Message: message,
		Cause:   cause,
	}
}

// Wrapf wraps an existing error with a new Error containing the given code and formatted message.
func Wrapf(code ErrorCode, cause error, format string, args ...any) *Error {
	return Wrap(code, fmt.Sprintf(format, args...), cause)
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if e.Field != "" {
		msg = fmt.Sprintf("%s: %s", e.Field, e.Message)
	}

	if e.Cause != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, msg, e.Cause)
	}

	return fmt.Sprintf("[%d] %s", e.Code, msg)
}

// Unwrap returns the underlying error cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// GetCode extracts the ErrorCode from an error if it's an *Error type.
// Returns ErrCodeUnknown if the error is not an *Error type.
func GetCode(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}

	return ErrCodeUnknown
}

// GetField returns the configuration field named by err, or "" when there is none.
func GetField(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Field
	}

	return ""
}

// HasCode checks if an error has a specific ErrorCode.
func HasCode(err error, code ErrorCode) bool {
	return GetCode(err) == code
}
