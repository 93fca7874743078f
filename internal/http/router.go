package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Handlers agrupa los handlers que monta el router.
type Handlers struct {
	Health   *HealthHandler
	Users    *UserHandler
	Posts    *PostHandler
	Messages *MessageHandler
}

// NewRouter configura el router de Gin con middlewares y rutas de la API.
func NewRouter(logger *zap.Logger, auth gin.HandlerFunc, h Handlers) *gin.Engine {
	r := gin.New()

	// Middlewares basicos: logging, metricas y recovery.
	r.Use(zapLoggerMiddleware(logger), metricsMiddleware(), recoveryMiddleware(logger))

	r.GET("/healthz", h.Health.Check)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1", jsonContentTypeMiddleware())

	users := api.Group("/user")
	users.POST("/register", h.Users.Register)
	users.POST("/login", h.Users.Login)

	authed := users.Group("", auth)
	authed.GET("/logout", h.Users.Logout)
	authed.GET("/:id/profile", h.Users.GetProfile)
	authed.POST("/edit", h.Users.EditProfile)
	authed.GET("/suggested", h.Users.Suggested)
	authed.POST("/followorunfollow/:id", h.Users.FollowOrUnfollow)
	authed.PUT("/followorunfollow/:id", h.Users.FollowOrUnfollow)

	posts := api.Group("/post", auth)
	posts.POST("/addpost", h.Posts.AddPost)
	posts.GET("/all", h.Posts.Feed)
	posts.GET("/userpost/all", h.Posts.UserPosts)
	posts.POST("/:id/like", h.Posts.Like)
	posts.POST("/:id/dislike", h.Posts.Dislike)
	posts.POST("/:id/comment", h.Posts.Comment)
	posts.GET("/:id/comment/all", h.Posts.Comments)
	posts.DELETE("/delete/:id", h.Posts.Delete)
	posts.POST("/:id/bookmark", h.Posts.Bookmark)

	messages := api.Group("/message", auth)
	messages.POST("/send/:id", h.Messages.Send)
	messages.GET("/all/:id", h.Messages.Conversation)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Route not found."})
	})

	return r
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// recoveryMiddleware convierte un panic en la respuesta de error estandar.
func recoveryMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.Error("panic recovered",
			zap.Any("panic", recovered),
			zap.String("path", c.Request.URL.Path),
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Internal server error",
		})
	})
}

// jsonContentTypeMiddleware fuerza Content-Type: application/json en responses.
func jsonContentTypeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "application/json")
		c.Next()
	}
}
