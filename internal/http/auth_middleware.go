package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"instaclone/internal/domain"
	"instaclone/internal/service"
)

const identityKey = "auth_identity"

// Identity es el usuario autenticado de la request.
type Identity struct {
	UserID    string
	Username  string
	ExpiresAt time.Time
}

// SessionAuthMiddleware valida el token de sesion de la cookie (o de un header
// Authorization: Bearer) y guarda la identidad en el contexto.
func SessionAuthMiddleware(sessions *service.SessionService, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if sessions == nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal server error"})
			return
		}

		token := sessionToken(c, cookieName)
		if token == "" {
			unauthenticated(c)
			return
		}
		claims, err := sessions.Parse(token)
		if err != nil {
			unauthenticated(c)
			return
		}

		identity := Identity{UserID: claims.UserID, Username: claims.Username}
		if claims.ExpiresAt != nil {
			identity.ExpiresAt = claims.ExpiresAt.Time
		}
		c.Set(identityKey, identity)
		c.Next()
	}
}

// IdentityFrom obtiene la identidad autenticada desde el contexto.
func IdentityFrom(c *gin.Context) (Identity, bool) {
	val, ok := c.Get(identityKey)
	if !ok {
		return Identity{}, false
	}
	identity, ok := val.(Identity)
	return identity, ok
}

func sessionToken(c *gin.Context, cookieName string) string {
	if cookie, err := c.Cookie(cookieName); err == nil && strings.TrimSpace(cookie) != "" {
		return strings.TrimSpace(cookie)
	}
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	if len(header) > len("Bearer ") && strings.HasPrefix(strings.ToLower(header), "bearer ") {
		return strings.TrimSpace(header[len("Bearer "):])
	}
	return ""
}

func unauthenticated(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"message": domain.ErrUnauthenticated.Message,
	})
}
