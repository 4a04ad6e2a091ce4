package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/samkorsel/carpool-backend/internal/middleware"
	"github.com/samkorsel/carpool-backend/internal/models"
	"github.com/samkorsel/carpool-backend/internal/services"
)

// ChatHandler handles HTTP requests for conversations and messages
type ChatHandler struct {
	service *services.ConversationService
	logger  *logrus.Logger
}

// NewChatHandler creates a new chat handler
func NewChatHandler(service *services.ConversationService, logger *logrus.Logger) *ChatHandler {
	return &ChatHandler{
		service: service,
		logger:  logger,
	}
}

// ListConversations handles GET /api/v1/conversations
func (h *ChatHandler) ListConversations(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	conversations, err := h.service.ListForUser(userCtx.UserID.String())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"conversations": conversations,
		"count":         len(conversations),
	})
}

// GetConversation handles GET /api/v1/conversations/:id
func (h *ChatHandler) GetConversation(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	detail, err := h.service.GetDetail(c.Param("id"), userCtx.UserID.String())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, detail)
}

// SendMessage handles POST /api/v1/conversations/:id/messages
func (h *ChatHandler) SendMessage(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	var req models.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	if err := req.Validate(); err != nil {
		respondBadRequest(c, err)
		return
	}

	message, err := h.service.SendMessage(c.Param("id"), userCtx.UserID.String(), req.Content)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, message)
}

// UnreadCount handles GET /api/v1/conversations/unread
func (h *ChatHandler) UnreadCount(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	count, err := h.service.UnreadCount(userCtx.UserID.String())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"unread": count})
}
