package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/relaychat/internal/core"
)

// StatusHandlers exposes read-only views of the relay.
type StatusHandlers struct {
	hub *core.Hub
	log *zerolog.Logger
}

// NewStatusHandlers creates a new status handlers instance.
func NewStatusHandlers(hub *core.Hub, logger *zerolog.Logger) *StatusHandlers {
	return &StatusHandlers{
		hub: hub,
		log: logger,
	}
}

// Health reports liveness.
// GET /health
func (h *StatusHandlers) Health(c *gin.Context) {
	c.String(stdhttp.StatusOK, "ok")
}

// Online lists live sessions in admission order.
// GET /api/online
func (h *StatusHandlers) Online(c *gin.Context) {
	registry := h.hub.Registry()
	c.JSON(stdhttp.StatusOK, onlineFromRecords(registry.Snapshot(), registry.RejectsDuplicates()))
}
