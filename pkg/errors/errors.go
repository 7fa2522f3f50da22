package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a unique error code
type ErrorCode int

// AppError represents an application error
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Field   string    `json:"field,omitempty"`
	Err     error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Error codes surfaced to the presentation layer
const (
	ErrValidationFailed ErrorCode = iota + 1000
	ErrDependencyExists
	ErrNotFound
	ErrStoreFailure
)

func (c ErrorCode) String() string {
	switch c {
	case ErrValidationFailed:
		return "ValidationFailed"
	case ErrDependencyExists:
		return "DependencyExists"
	case ErrNotFound:
		return "NotFound"
	case ErrStoreFailure:
		return "StoreFailure"
	default:
		return fmt.Sprintf("ErrorCode(%d)", int(c))
	}
}

// Error constructors
func NewValidationFailed(field, message string) *AppError {
	return &AppError{
		Code:    ErrValidationFailed,
		Message: message,
		Field:   field,
	}
}

func NewDependencyExists(resource string, dependents int64) *AppError {
	return &AppError{
		Code:    ErrDependencyExists,
		Message: fmt.Sprintf("%s is referenced by %d dependent row(s)", resource, dependents),
	}
}

func NewNotFound(resource string, err error) *AppError {
	return &AppError{
		Code:    ErrNotFound,
		Message: fmt.Sprintf("%s not found", resource),
		Err:     err,
	}
}

func NewStoreFailure(err error) *AppError {
	return &AppError{
		Code:    ErrStoreFailure,
		Message: "store failure",
		Err:     err,
	}
}

// Common errors
func ValidationFailed(field, message string) *AppError {
	return NewValidationFailed(field, message)
}

func DependencyExists(resource string, dependents int64) *AppError {
	return NewDependencyExists(resource, dependents)
}

func NotFound(resource string, err error) *AppError {
	return NewNotFound(resource, err)
}

func StoreFailure(err error) *AppError {
	return NewStoreFailure(err)
}

// As returns the first AppError in err's chain.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// CodeOf reports the code of the first AppError in err's chain, or 0.
func CodeOf(err error) ErrorCode {
	if appErr, ok := As(err); ok {
		return appErr.Code
	}
	return 0
}

// Is reports whether err carries the given code.
func Is(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}

// Classify passes typed application errors through and turns anything
// else into a StoreFailure.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := As(err); ok {
		return err
	}
	return NewStoreFailure(err)
}
