package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorType represents the category of error
type ErrorType string

const (
	// ErrorTypeNotFound represents a missing note or link
	ErrorTypeNotFound ErrorType = "not_found"
	// ErrorTypeValidation represents a rejected input (missing field, self-referential link)
	ErrorTypeValidation ErrorType = "validation"
	// ErrorTypeConflict represents a duplicate relationship pair
	ErrorTypeConflict ErrorType = "conflict"
	// ErrorTypeUpstream represents a text-intelligence service failure
	ErrorTypeUpstream ErrorType = "upstream"
	// ErrorTypeStore represents a persistence failure
	ErrorTypeStore ErrorType = "store"
	// ErrorTypeConfig represents configuration errors
	ErrorTypeConfig ErrorType = "config"
)

// BaseError is the base error type with common fields
type BaseError struct {
	Type      ErrorType
	Message   string
	Timestamp time.Time
	Err       error // Wrapped error
}

// Error implements the error interface
func (e *BaseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the wrapped error for error unwrapping
func (e *BaseError) Unwrap() error {
	return e.Err
}

// NewBaseError creates a new base error
func NewBaseError(errType ErrorType, message string, err error) *BaseError {
	return &BaseError{
		Type:      errType,
		Message:   message,
		Timestamp: time.Now(),
		Err:       err,
	}
}

// NewNotFound reports a missing entity by kind and id
func NewNotFound(kind, id string) *BaseError {
	return NewBaseError(ErrorTypeNotFound, fmt.Sprintf("%s not found: %s", kind, id), nil)
}

// NewValidation reports a rejected input
func NewValidation(message string) *BaseError {
	return NewBaseError(ErrorTypeValidation, message, nil)
}

// NewConflict reports a uniqueness violation
func NewConflict(message string) *BaseError {
	return NewBaseError(ErrorTypeConflict, message, nil)
}

// NewUpstream wraps a text-intelligence gateway failure
func NewUpstream(message string, err error) *BaseError {
	return NewBaseError(ErrorTypeUpstream, message, err)
}

// NewStore wraps a persistence failure
func NewStore(message string, err error) *BaseError {
	return NewBaseError(ErrorTypeStore, message, err)
}

// TypeOf returns the category of err, or "" if err carries none
func TypeOf(err error) ErrorType {
	var base *BaseError
	if stderrors.As(err, &base) {
		return base.Type
	}
	return ""
}

// IsNotFound reports whether err is a not-found error
func IsNotFound(err error) bool { return TypeOf(err) == ErrorTypeNotFound }

// IsValidation reports whether err is a validation error
func IsValidation(err error) bool { return TypeOf(err) == ErrorTypeValidation }

// IsConflict reports whether err is a conflict error
func IsConflict(err error) bool { return TypeOf(err) == ErrorTypeConflict }

// IsUpstream reports whether err is an upstream gateway error
func IsUpstream(err error) bool { return TypeOf(err) == ErrorTypeUpstream }
