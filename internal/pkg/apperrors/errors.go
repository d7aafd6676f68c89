package apperrors

import (
	"errors"
	"fmt"
)

// Common errors
var (
	// Resource errors
	ErrResourceNotFound      = errors.New("resource not found")
	ErrResourceAlreadyExists = errors.New("resource already exists")

	// Authentication errors
	ErrUnauthenticated = errors.New("authentication required")
	ErrTokenExpired    = errors.New("token expired")
	ErrTokenInvalid    = errors.New("invalid token")
	ErrTokenNotFound   = errors.New("token not found")
	ErrInvalidFormat   = errors.New("invalid token format")

	// Authorization errors
	ErrPermissionDenied = errors.New("permission denied")

	// Validation errors
	ErrValidationFailed = errors.New("validation failed")
	ErrBadRequest       = errors.New("bad request")

	// Store errors
	ErrStoreUnavailable = errors.New("store unavailable")
)

// ValidationError reports a rejected input together with the offending field.
// Details, when set, holds every failing field of the input by name.
type ValidationError struct {
	Field     string
	Message   string
	Duplicate bool
	Details   map[string]string
}

// Error implements error interface
func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation failed: %s", e.Message)
	}
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

// Unwrap lets errors.Is match ErrValidationFailed, and ErrResourceAlreadyExists for duplicates
func (e *ValidationError) Unwrap() []error {
	if e.Duplicate {
		return []error{ErrValidationFailed, ErrResourceAlreadyExists}
	}
	return []error{ErrValidationFailed}
}

// NewValidationError creates a validation error for a single field
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// NewDuplicateError creates a validation error for a uniqueness violation
func NewDuplicateError(field string) *ValidationError {
	return &ValidationError{Field: field, Message: "already exists", Duplicate: true}
}

// AsValidationError extracts a ValidationError from the chain
func AsValidationError(err error) (*ValidationError, bool) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr, true
	}
	return nil, false
}

// UnavailableError wraps a store failure. It matches both ErrStoreUnavailable and the cause.
type UnavailableError struct {
	Op  string
	Err error
}

// Error implements error interface
func (e *UnavailableError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrStoreUnavailable, e.Op, e.Err)
}

// Unwrap implements errors.Unwrap interface
func (e *UnavailableError) Unwrap() []error {
	return []error{ErrStoreUnavailable, e.Err}
}

// NewUnavailableError wraps err as a store failure during op
func NewUnavailableError(op string, err error) error {
	return &UnavailableError{Op: op, Err: err}
}

// NewResourceNotFoundError creates a new custom error for resource not found with a message
func NewResourceNotFoundError(message string) error {
	return &CustomError{
		Err:     ErrResourceNotFound,
		Message: message,
	}
}

// NewForbiddenError creates a new custom error for permission denied with a message
func NewForbiddenError(message string) error {
	return &CustomError{
		Err:     ErrPermissionDenied,
		Message: message,
	}
}

// NewUnauthenticatedError creates a new custom error for a missing principal
func NewUnauthenticatedError(message string) error {
	return &CustomError{
		Err:     ErrUnauthenticated,
		Message: message,
	}
}

// NewBadRequestError creates a new custom error for bad request with a message
func NewBadRequestError(message string) error {
	return &CustomError{
		Err:     ErrBadRequest,
		Message: message,
	}
}

// IsAuthorizationError reports whether err is an authentication or permission failure
func IsAuthorizationError(err error) bool {
	return Is(err, ErrPermissionDenied, ErrUnauthenticated)
}

// Is returns whether target matches any of the errors in errList
func Is(err, target error, errList ...error) bool {
	if errors.Is(err, target) {
		return true
	}

	for _, e := range errList {
		if errors.Is(err, e) {
			return true
		}
	}

	return false
}

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err     error
	Message string
}

// Error implements error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap interface
func (e *CustomError) Unwrap() error {
	return e.Err
}
