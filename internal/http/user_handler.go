package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"instaclone/internal/domain"
	"instaclone/internal/service"
)

// CookieConfig define la cookie de sesion.
type CookieConfig struct {
	Name   string
	Secure bool
}

// UserHandler mantiene dependencias para endpoints de usuarios.
type UserHandler struct {
	logger       *zap.Logger
	userServ     *service.UserService
	relationServ *service.RelationshipService
	sessionServ  *service.SessionService
	cookie       CookieConfig
}

// NewUserHandler crea una instancia de UserHandler con dependencias necesarias.
func NewUserHandler(
	logger *zap.Logger,
	userServ *service.UserService,
	relationServ *service.RelationshipService,
	sessionServ *service.SessionService,
	cookie CookieConfig,
) *UserHandler {
	if cookie.Name == "" {
		cookie.Name = "token"
	}
	return &UserHandler{
		logger:       logger,
		userServ:     userServ,
		relationServ: relationServ,
		sessionServ:  sessionServ,
		cookie:       cookie,
	}
}

// Register maneja POST /user/register.
func (h *UserHandler) Register(c *gin.Context) {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid register request", zap.Error(err))
		respondBadRequest(c, "Invalid request body.")
		return
	}

	_, err := h.userServ.Register(c.Request.Context(), service.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		respondError(c, h.logger, "register", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Account created successfully.",
	})
}

// Login maneja POST /user/login: valida credenciales y setea la cookie de sesion.
func (h *UserHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid login request", zap.Error(err))
		respondBadRequest(c, "Invalid request body.")
		return
	}

	profile, err := h.userServ.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		loginAttemptsTotal.WithLabelValues(loginResult(err)).Inc()
		respondError(c, h.logger, "login", err)
		return
	}

	token, _, err := h.sessionServ.Issue(profile.User)
	if err != nil {
		respondError(c, h.logger, "issue session", err)
		return
	}
	loginAttemptsTotal.WithLabelValues("success").Inc()

	h.setSessionCookie(c, token, int(h.sessionServ.TTL().Seconds()))
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Welcome back " + profile.Username,
		"user":    profile,
	})
}

// Logout maneja GET /user/logout. La sesion no tiene estado en el servidor,
// alcanza con expirar la cookie.
func (h *UserHandler) Logout(c *gin.Context) {
	h.setSessionCookie(c, "", -1)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Logged out successfully.",
	})
}

// GetProfile maneja GET /user/:id/profile.
func (h *UserHandler) GetProfile(c *gin.Context) {
	profile, err := h.userServ.GetProfile(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, "get profile", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "user": profile})
}

// EditProfile maneja POST /user/edit (multipart: bio, gender, profilePhoto).
func (h *UserHandler) EditProfile(c *gin.Context) {
	identity, ok := IdentityFrom(c)
	if !ok {
		unauthenticated(c)
		return
	}

	var input service.EditProfileInput
	if strings.HasPrefix(c.ContentType(), "application/json") {
		var req struct {
			Bio    string `json:"bio"`
			Gender string `json:"gender"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBadRequest(c, "Invalid request body.")
			return
		}
		input.Bio, input.Gender = req.Bio, req.Gender
	} else {
		input.Bio = c.PostForm("bio")
		input.Gender = c.PostForm("gender")
		img, closeFn, err := formImage(c, "profilePhoto")
		if err != nil {
			respondError(c, h.logger, "read profile photo", err)
			return
		}
		defer closeFn()
		input.Picture = img
	}

	profile, err := h.userServ.EditProfile(c.Request.Context(), identity.UserID, input)
	if err != nil {
		respondError(c, h.logger, "edit profile", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Profile updated successfully.",
		"user":    profile,
	})
}

// Suggested maneja GET /user/suggested.
func (h *UserHandler) Suggested(c *gin.Context) {
	identity, ok := IdentityFrom(c)
	if !ok {
		unauthenticated(c)
		return
	}
	users, err := h.userServ.GetSuggestions(c.Request.Context(), identity.UserID)
	if err != nil {
		respondError(c, h.logger, "suggested users", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "users": users})
}

// FollowOrUnfollow maneja POST|PUT /user/followorunfollow/:id.
func (h *UserHandler) FollowOrUnfollow(c *gin.Context) {
	identity, ok := IdentityFrom(c)
	if !ok {
		unauthenticated(c)
		return
	}

	result, err := h.relationServ.ToggleFollow(c.Request.Context(), identity.UserID, c.Param("id"))
	if err != nil {
		respondError(c, h.logger, "toggle follow", err)
		return
	}
	followTogglesTotal.WithLabelValues(string(result.Action)).Inc()

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"message":     result.Action.Message(),
		"action":      result.Action,
		"updatedUser": result.User,
	})
}

func (h *UserHandler) setSessionCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(h.cookie.Name, value, maxAge, "/", "", h.cookie.Secure, true)
}

func loginResult(err error) string {
	switch domain.KindOf(err) {
	case domain.KindAuth:
		return "invalid_credentials"
	case domain.KindRateLimited:
		return "rate_limited"
	case domain.KindValidation:
		return "invalid_request"
	default:
		return "error"
	}
}
