package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"rolechat/internal/app"
	"rolechat/internal/markdown"
	"rolechat/internal/model"
	"rolechat/internal/transport/http/middleware"
	"rolechat/internal/transport/http/response"
)

type ChatHandler struct {
	chatService *app.ChatService
}

type CreateConversationRequest struct {
	RoleID uint `json:"role_id" binding:"required,gt=0"`
}

type SendMessageRequest struct {
	Message string `json:"message" binding:"required"`
}

type HistoryItem struct {
	ID          uint      `json:"id"`
	Role        string    `json:"role"`
	Content     string    `json:"content"`
	ContentHTML string    `json:"content_html,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func NewChatHandler(chatService *app.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

func (h *ChatHandler) CreateConversation(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	var req CreateConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	conversation, err := h.chatService.CreateConversation(userID, req.RoleID)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		case errors.Is(err, app.ErrRoleNotFound):
			response.Error(c, http.StatusNotFound, response.CodeRoleNotFound, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "create conversation failed")
		}
		return
	}

	response.OK(c, conversation)
}

func (h *ChatHandler) ListConversations(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	conversations, err := h.chatService.ListConversations(userID)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "list conversations failed")
		}
		return
	}

	response.OK(c, conversations)
}

func (h *ChatHandler) GetConversation(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	conversationID, ok := parseIDParam(c)
	if !ok {
		return
	}

	conversation, role, err := h.chatService.GetConversation(userID, conversationID)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrConversationNotFound):
			response.Error(c, http.StatusNotFound, response.CodeConversationNotFound, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "fetch conversation failed")
		}
		return
	}

	payload := gin.H{"conversation": conversation}
	if role != nil {
		payload["role"] = gin.H{
			"id":                role.ID,
			"name":              role.Name,
			"short_description": role.ShortDescription,
		}
	}
	response.OK(c, payload)
}

// SendMessage is the chat exchange endpoint. Unlike the rest of the API it
// answers in the shape the chat page consumes directly: a success flag, the
// stored user message, and the rendered assistant reply.
func (h *ChatHandler) SendMessage(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "invalid token payload"})
		return
	}

	conversationID64, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || conversationID64 == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid conversation id"})
		return
	}

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "message content is required"})
		return
	}

	memoryUUID := c.GetString(middleware.ContextMemoryUUIDKey)
	result, err := h.chatService.SendMessage(c.Request.Context(), userID, uint(conversationID64), memoryUUID, req.Message)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrMessageEmpty), errors.Is(err, app.ErrInvalidInput):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "message content is required"})
		case errors.Is(err, app.ErrConversationNotFound):
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "conversation not found"})
		case errors.Is(err, app.ErrRoleNotFound):
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "role not found"})
		case errors.Is(err, app.ErrCompletion):
			c.JSON(http.StatusBadGateway, gin.H{"success": false, "error": "the assistant is unavailable right now, please try again"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "send message failed"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"user_message": result.UserMessage,
		"ai_message":   result.AIMessage,
	})
}

func (h *ChatHandler) GetHistory(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	conversationID, ok := parseIDParam(c)
	if !ok {
		return
	}

	limit := 200
	if raw := c.Query("limit"); raw != "" {
		if parsed, parseErr := strconv.Atoi(raw); parseErr == nil {
			limit = parsed
		}
	}

	history, err := h.chatService.GetHistory(c.Request.Context(), userID, conversationID, limit)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrConversationNotFound):
			response.Error(c, http.StatusNotFound, response.CodeConversationNotFound, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "get history failed")
		}
		return
	}

	items := make([]HistoryItem, 0, len(history))
	for _, msg := range history {
		item := HistoryItem{
			ID:        msg.ID,
			Role:      msg.Role,
			Content:   msg.Content,
			CreatedAt: msg.CreatedAt,
		}
		if msg.Role == model.MessageRoleAssistant {
			if rendered, renderErr := markdown.Render(msg.Content); renderErr == nil {
				item.ContentHTML = rendered
			}
		}
		items = append(items, item)
	}
	response.OK(c, items)
}

func (h *ChatHandler) DeleteConversation(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	conversationID, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.chatService.DeleteConversation(c.Request.Context(), userID, conversationID); err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		case errors.Is(err, app.ErrConversationNotFound):
			response.Error(c, http.StatusNotFound, response.CodeConversationNotFound, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "delete conversation failed")
		}
		return
	}

	response.OK(c, gin.H{"deleted_conversation_id": conversationID})
}

func parseIDParam(c *gin.Context) (uint, bool) {
	id64, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id64 == 0 {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid conversation id")
		return 0, false
	}
	return uint(id64), true
}
