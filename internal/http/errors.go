package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"instaclone/internal/domain"
)

// respondError traduce err al codigo y mensaje publico de su Kind. Los errores
// no clasificados se registran y se responden sin detalles.
func respondError(c *gin.Context, logger *zap.Logger, op string, err error) {
	kind := domain.KindOf(err)
	if kind == domain.KindInternal || kind == domain.KindDependency {
		logger.Error(op+" failed", zap.Error(err), zap.String("path", c.Request.URL.Path))
	}
	c.AbortWithStatusJSON(kind.Status(), gin.H{
		"success": false,
		"message": domain.PublicMessage(err),
	})
}

func respondBadRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
		"success": false,
		"message": message,
	})
}
