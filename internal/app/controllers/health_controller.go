package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yigit/campusnet/internal/app/models/dto"
	"github.com/yigit/campusnet/internal/middleware"
	"github.com/yigit/campusnet/internal/pkg/apperrors"
)

// Pinger reports whether the store is reachable
type Pinger interface {
	Ping(ctx context.Context) error
	Driver() string
}

// HealthController reports service health
type HealthController struct {
	store Pinger
}

// NewHealthController creates a new HealthController
func NewHealthController(store Pinger) *HealthController {
	return &HealthController{store: store}
}

// Health pings the store
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.HealthStatus} "Service healthy"
// @Failure 503 {object} dto.APIResponse "Store unavailable"
// @Router /health [get]
func (c *HealthController) Health(ctx *gin.Context) {
	pingCtx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	if err := c.store.Ping(pingCtx); err != nil {
		middleware.HandleAPIError(ctx, apperrors.NewUnavailableError("ping", err))
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.HealthStatus{Status: "ok", Store: c.store.Driver()}, ""))
}
