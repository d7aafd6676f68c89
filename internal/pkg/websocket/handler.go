package websocket

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/yigit/campusnet/internal/app/auth"
)

// Handler upgrades authenticated requests to feed streams
type Handler struct {
	hub      *Hub
	upgrader websocket.Upgrader
	logger   zerolog.Logger
}

// NewHandler creates a new WebSocket handler. allowOrigin decides which
// browser origins may connect.
func NewHandler(hub *Hub, allowOrigin func(origin string) bool, logger zerolog.Logger) *Handler {
	return &Handler{
		hub:      hub,
		upgrader: newUpgrader(allowOrigin),
		logger:   logger,
	}
}

// HandleConnection godoc
// @Summary Subscribe to the live feed
// @Description Upgrades the connection to a WebSocket that receives feed events (new posts, likes, comments)
// @Tags feed
// @Produce json
// @Security BearerAuth
// @Success 101 {string} string "Switching Protocols to WebSocket"
// @Failure 401 {object} dto.APIResponse "Unauthorized: JWT token missing or invalid"
// @Router /feed/ws [get]
func (h *Handler) HandleConnection(c *gin.Context) {
	principal, ok := auth.FromContext(c.Request.Context())
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error().Err(err).Str("principalID", principal.ID).Msg("Failed to upgrade connection to WebSocket")
		return
	}

	client := &Client{
		hub:         h.hub,
		conn:        conn,
		send:        make(chan []byte, 256),
		principalID: principal.ID,
		logger:      h.logger,
	}
	if !h.hub.join(client) {
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()

	h.logger.Info().
		Str("principalID", principal.ID).
		Str("remoteAddr", conn.RemoteAddr().String()).
		Msg("WebSocket connection established")
}
