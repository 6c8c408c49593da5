package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/brgyhealth/bhc_api/internal/service"
	"github.com/brgyhealth/bhc_api/internal/utils"
)

var startTime = time.Now()

// HealthHandler provides health endpoint.
type HealthHandler struct {
	store *service.SessionStore
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(store *service.SessionStore) *HealthHandler {
	return &HealthHandler{store: store}
}

// GetHealth responds with service status and session counts.
func (h *HealthHandler) GetHealth(c *gin.Context) {
	utils.Success(c, 200, "Service is healthy", gin.H{
		"status":   "healthy",
		"version":  "1.0.0",
		"uptime":   int(time.Since(startTime).Seconds()),
		"sessions": h.store.Count(),
	})
}
