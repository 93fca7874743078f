package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"instaclone/internal/service"
)

// MessageHandler expone los mensajes directos.
type MessageHandler struct {
	logger      *zap.Logger
	messageServ *service.MessageService
}

func NewMessageHandler(logger *zap.Logger, messageServ *service.MessageService) *MessageHandler {
	return &MessageHandler{logger: logger, messageServ: messageServ}
}

// Send maneja POST /message/send/:id.
func (h *MessageHandler) Send(c *gin.Context) {
	identity, ok := IdentityFrom(c)
	if !ok {
		unauthenticated(c)
		return
	}
	var req struct {
		TextMessage string `json:"textMessage"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid send message request", zap.Error(err))
		respondBadRequest(c, "Invalid request body.")
		return
	}

	msg, err := h.messageServ.Send(c.Request.Context(), identity.UserID, c.Param("id"), req.TextMessage)
	if err != nil {
		respondError(c, h.logger, "send message", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "newMessage": msg})
}

// Conversation maneja GET /message/all/:id.
func (h *MessageHandler) Conversation(c *gin.Context) {
	identity, ok := IdentityFrom(c)
	if !ok {
		unauthenticated(c)
		return
	}
	messages, err := h.messageServ.Conversation(c.Request.Context(), identity.UserID, c.Param("id"))
	if err != nil {
		respondError(c, h.logger, "list messages", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "messages": messages})
}
