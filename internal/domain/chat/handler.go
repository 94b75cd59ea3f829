package chat

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"hubal/internal/middleware"
	"hubal/internal/pkg/response"
)

// Handler handles HTTP requests for the chat domain
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type startRequest struct {
	OtherUserID      int64  `json:"other_user_id" binding:"required"`
	ServiceRequestID *int64 `json:"service_request_id"`
}

type sendMessageRequest struct {
	Content string `json:"content"`
}

// StartConversation godoc
// @Summary Start or get a conversation
// @Description The caller is placed on the customer or designer side according to their role.
// @Tags Chat
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body startRequest true "Other party"
// @Success 200 {object} Conversation
// @Router /conversations [post]
func (h *Handler) StartConversation(c *gin.Context) {
	userID := middleware.UserID(c)
	if userID == 0 {
		return
	}

	var req startRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "other_user_id is required")
		return
	}

	conv, err := h.service.Start(c.Request.Context(), userID, c.GetString(middleware.CtxRole), req.OtherUserID, req.ServiceRequestID)
	if err != nil {
		handleChatError(c, err)
		return
	}
	response.Success(c, http.StatusOK, conv)
}

// ListConversations godoc
// @Summary My conversations
// @Description Most recent activity first, with the other party, the last message and the unread count.
// @Tags Chat
// @Security BearerAuth
// @Produce json
// @Success 200 {array} Summary
// @Router /conversations [get]
func (h *Handler) ListConversations(c *gin.Context) {
	userID := middleware.UserID(c)
	if userID == 0 {
		return
	}

	list, err := h.service.List(c.Request.Context(), userID)
	if err != nil {
		handleChatError(c, err)
		return
	}
	response.Success(c, http.StatusOK, list)
}

// GetMessages godoc
// @Summary Get messages of a conversation
// @Tags Chat
// @Security BearerAuth
// @Produce json
// @Param id path int true "Conversation ID"
// @Param limit query int false "Limit (default 50)"
// @Param offset query int false "Offset"
// @Success 200 {array} Message
// @Router /conversations/{id}/messages [get]
func (h *Handler) GetMessages(c *gin.Context) {
	userID := middleware.UserID(c)
	if userID == 0 {
		return
	}
	convID, ok := conversationID(c)
	if !ok {
		return
	}

	limit := 50
	offset := 0
	if l, err := strconv.Atoi(c.Query("limit")); err == nil && l > 0 && l <= 100 {
		limit = l
	}
	if o, err := strconv.Atoi(c.Query("offset")); err == nil && o >= 0 {
		offset = o
	}

	msgs, err := h.service.Messages(c.Request.Context(), userID, convID, limit, offset)
	if err != nil {
		handleChatError(c, err)
		return
	}
	response.Success(c, http.StatusOK, msgs)
}

// SendMessage godoc
// @Summary Send a message
// @Description Content is trimmed and must be 1 to 2000 characters.
// @Tags Chat
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Conversation ID"
// @Param body body sendMessageRequest true "Message"
// @Success 201 {object} Message
// @Router /conversations/{id}/messages [post]
func (h *Handler) SendMessage(c *gin.Context) {
	userID := middleware.UserID(c)
	if userID == 0 {
		return
	}
	convID, ok := conversationID(c)
	if !ok {
		return
	}

	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	msg, err := h.service.Send(c.Request.Context(), userID, convID, req.Content)
	if err != nil {
		handleChatError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, msg)
}

// MarkAsRead godoc
// @Summary Mark conversation as read
// @Tags Chat
// @Security BearerAuth
// @Param id path int true "Conversation ID"
// @Success 200 {object} map[string]interface{}
// @Router /conversations/{id}/read [post]
func (h *Handler) MarkAsRead(c *gin.Context) {
	userID := middleware.UserID(c)
	if userID == 0 {
		return
	}
	convID, ok := conversationID(c)
	if !ok {
		return
	}

	updated, err := h.service.MarkRead(c.Request.Context(), userID, convID)
	if err != nil {
		handleChatError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"updated": updated})
}

// GetUnreadCount godoc
// @Summary Unread messages count
// @Tags Chat
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /conversations/unread [get]
func (h *Handler) GetUnreadCount(c *gin.Context) {
	userID := middleware.UserID(c)
	if userID == 0 {
		return
	}

	total, per, err := h.service.UnreadCount(c.Request.Context(), userID)
	if err != nil {
		handleChatError(c, err)
		return
	}

	byConversation := make(map[string]int64, len(per))
	for id, n := range per {
		byConversation[strconv.FormatInt(id, 10)] = n
	}
	response.Success(c, http.StatusOK, gin.H{"unread_count": total, "by_conversation": byConversation})
}

func conversationID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(c, "Invalid conversation id")
		return 0, false
	}
	return id, true
}

func handleChatError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrConversationNotFound):
		response.Error(c, http.StatusNotFound, "CONVERSATION_NOT_FOUND", err.Error())
	case errors.Is(err, ErrNotParticipant):
		response.Error(c, http.StatusForbidden, "NOT_PARTICIPANT", err.Error())
	case errors.Is(err, ErrCannotChatSelf):
		response.Error(c, http.StatusBadRequest, "CANNOT_CHAT_SELF", err.Error())
	case errors.Is(err, ErrEmptyMessage):
		response.Error(c, http.StatusBadRequest, "EMPTY_MESSAGE", err.Error())
	case errors.Is(err, ErrMessageTooLong):
		response.Error(c, http.StatusBadRequest, "MESSAGE_TOO_LONG", err.Error())
	case errors.Is(err, ErrRoleRequired):
		response.Error(c, http.StatusForbidden, "ROLE_REQUIRED", err.Error())
	default:
		response.Internal(c)
	}
}
