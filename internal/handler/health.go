package handler

import (
	"net/http"
	"time"

	"github.com/api-debugger/internal/backend"
	"github.com/api-debugger/internal/domain"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HealthHandler handles health check requests.
type HealthHandler struct {
	logger *zap.Logger
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		logger: logger.Named("health_handler"),
	}
}

// Handle processes GET /health requests.
func (h *HealthHandler) Handle(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// ReadyHandler reports readiness by asking the diagnostic backend.
type ReadyHandler struct {
	client backend.Client
	logger *zap.Logger
}

// NewReadyHandler creates a new ReadyHandler.
func NewReadyHandler(client backend.Client, logger *zap.Logger) *ReadyHandler {
	return &ReadyHandler{
		client: client,
		logger: logger.Named("ready_handler"),
	}
}

// Handle processes GET /ready requests. The backend's /health body is passed
// through unchanged.
func (h *ReadyHandler) Handle(c *gin.Context) {
	body, err := h.client.Health(c.Request.Context())
	if err != nil {
		h.logger.Warn("backend not ready", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unavailable",
			"error":  domain.UserMessage(err),
		})
		return
	}
	c.Data(http.StatusOK, "application/json", body)
}
