package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"instaclone/internal/db"
)

type HealthHandler struct {
	logger *zap.Logger
	db     db.Pinger
}

func NewHealthHandler(logger *zap.Logger, pinger db.Pinger) *HealthHandler {
	return &HealthHandler{logger: logger, db: pinger}
}

// Check maneja GET /healthz.
func (h *HealthHandler) Check(c *gin.Context) {
	if h.db != nil {
		if err := db.Ping(c.Request.Context(), h.db); err != nil {
			h.logger.Warn("healthcheck db ping failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
