package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/campusnet/internal/app/models/dto"
	"github.com/yigit/campusnet/internal/pkg/apperrors"
	"github.com/yigit/campusnet/internal/pkg/logger"
)

// RetryAfterSeconds is advertised to clients when the store is unavailable
const RetryAfterSeconds = "5"

// HandleAPIError handles common API errors and returns appropriate responses
func HandleAPIError(c *gin.Context, err error) {
	status, detail := errorResponse(err)
	if status == http.StatusServiceUnavailable {
		c.Header("Retry-After", RetryAfterSeconds)
	}
	if status >= http.StatusInternalServerError {
		logger.Error().Err(err).Str("path", c.FullPath()).Msg("Request failed")
	}
	c.AbortWithStatusJSON(status, dto.NewErrorAPIResponse(detail))
}

func errorResponse(err error) (int, *dto.ErrorDetail) {
	if verr, ok := apperrors.AsValidationError(err); ok {
		if verr.Duplicate {
			return http.StatusConflict, dto.NewErrorDetail(dto.ErrorCodeResourceAlreadyExists, verr.Error()).WithField(verr.Field)
		}
		detail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, verr.Error()).WithField(verr.Field)
		if len(verr.Details) > 0 {
			detail.WithDetails(verr.Details)
		}
		return http.StatusBadRequest, detail
	}

	// Check for specific error types
	switch {
	case errors.Is(err, apperrors.ErrResourceNotFound):
		return http.StatusNotFound, dto.NewErrorDetail(dto.ErrorCodeResourceNotFound, messageOf(err, "Resource not found"))
	case errors.Is(err, apperrors.ErrUnauthenticated):
		return http.StatusUnauthorized, dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")
	case errors.Is(err, apperrors.ErrPermissionDenied):
		return http.StatusForbidden, dto.NewErrorDetail(dto.ErrorCodeForbidden, messageOf(err, "Permission denied"))
	case errors.Is(err, apperrors.ErrTokenExpired):
		return http.StatusUnauthorized, dto.NewErrorDetail(dto.ErrorCodeExpiredToken, "Token expired")
	case errors.Is(err, apperrors.ErrTokenNotFound):
		return http.StatusUnauthorized, dto.NewErrorDetail(dto.ErrorCodeTokenNotFound, "Token not found")
	case errors.Is(err, apperrors.ErrTokenInvalid), errors.Is(err, apperrors.ErrInvalidFormat):
		return http.StatusUnauthorized, dto.NewErrorDetail(dto.ErrorCodeInvalidToken, "Invalid token")
	case errors.Is(err, apperrors.ErrValidationFailed):
		return http.StatusBadRequest, dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Validation failed")
	case errors.Is(err, apperrors.ErrBadRequest):
		return http.StatusBadRequest, dto.NewErrorDetail(dto.ErrorCodeBadRequest, messageOf(err, "Bad request"))
	case errors.Is(err, apperrors.ErrResourceAlreadyExists):
		return http.StatusConflict, dto.NewErrorDetail(dto.ErrorCodeResourceAlreadyExists, "Resource already exists")
	case errors.Is(err, apperrors.ErrStoreUnavailable):
		return http.StatusServiceUnavailable, dto.NewErrorDetail(dto.ErrorCodeStoreUnavailable, "Storage is temporarily unavailable")
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, dto.NewErrorDetail(dto.ErrorCodeTimeout, "Request timed out")
	default:
		return http.StatusInternalServerError, dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error")
	}
}

// messageOf returns the message of a CustomError, or fallback
func messageOf(err error, fallback string) string {
	var cerr *apperrors.CustomError
	if errors.As(err, &cerr) && cerr.Message != "" {
		return cerr.Message
	}
	return fallback
}
