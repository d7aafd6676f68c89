package graph

import (
	"context"
	"errors"

	"github.com/yigit/campusnet/internal/pkg/apperrors"
)

// Error codes reported in the extensions of GraphQL errors
const (
	CodeValidationFailed = "VALIDATION_FAILED"
	CodeUnauthenticated  = "UNAUTHENTICATED"
	CodeForbidden        = "FORBIDDEN"
	CodeNotFound         = "NOT_FOUND"
	CodeBadRequest       = "BAD_REQUEST"
	CodeStoreUnavailable = "STORE_UNAVAILABLE"
	CodeTimeout          = "TIMEOUT"
	CodeInternal         = "INTERNAL"
)

// Error is an application error as seen by GraphQL clients. graphql-go copies
// Extensions into the response.
type Error struct {
	Code      string
	Field     string
	Duplicate bool
	Message   string
	cause     error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.cause }

// Extensions implements gqlerrors.ExtendedError
func (e *Error) Extensions() map[string]interface{} {
	ext := map[string]interface{}{"code": e.Code}
	if e.Field != "" {
		ext["field"] = e.Field
	}
	if e.Duplicate {
		ext["duplicate"] = true
	}
	return ext
}

// toGraphError classifies err. Internal failures keep their cause out of the message.
func toGraphError(err error) *Error {
	if err == nil {
		return nil
	}
	if verr, ok := apperrors.AsValidationError(err); ok {
		return &Error{Code: CodeValidationFailed, Field: verr.Field, Duplicate: verr.Duplicate, Message: verr.Error(), cause: err}
	}

	e := &Error{Message: err.Error(), cause: err}
	switch {
	case errors.Is(err, apperrors.ErrUnauthenticated):
		e.Code = CodeUnauthenticated
	case errors.Is(err, apperrors.ErrPermissionDenied):
		e.Code = CodeForbidden
	case errors.Is(err, apperrors.ErrResourceNotFound):
		e.Code = CodeNotFound
	case errors.Is(err, apperrors.ErrBadRequest), errors.Is(err, apperrors.ErrValidationFailed):
		e.Code = CodeBadRequest
	case errors.Is(err, apperrors.ErrStoreUnavailable):
		e.Code = CodeStoreUnavailable
		e.Message = "storage is temporarily unavailable"
	case errors.Is(err, context.DeadlineExceeded):
		e.Code = CodeTimeout
		e.Message = "request timed out"
	default:
		e.Code = CodeInternal
		e.Message = "internal error"
	}
	return e
}
