package notification

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"hubal/internal/middleware"
	"hubal/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type ListResponse struct {
	Notifications []Notification `json:"notifications"`
	UnreadCount   int64          `json:"unread_count"`
}

// GetNotifications godoc
// @Summary		List notifications
// @Description	The 50 most recent notifications and the unread count.
// @Tags		Notifications
// @Security	BearerAuth
// @Success		200	{object}	ListResponse
// @Router		/notifications [get]
func (h *Handler) GetNotifications(c *gin.Context) {
	userID := middleware.UserID(c)
	if userID == 0 {
		return
	}

	list, unread, err := h.service.List(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "FETCH_FAILED", "Failed to get notifications")
		return
	}
	if list == nil {
		list = []Notification{}
	}

	response.Success(c, http.StatusOK, ListResponse{Notifications: list, UnreadCount: unread})
}

// GetUnreadCount godoc
// @Summary		Unread notifications count
// @Tags		Notifications
// @Security	BearerAuth
// @Success		200	{object}	map[string]interface{}
// @Router		/notifications/unread-count [get]
func (h *Handler) GetUnreadCount(c *gin.Context) {
	userID := middleware.UserID(c)
	if userID == 0 {
		return
	}

	count, err := h.service.UnreadCount(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "FETCH_FAILED", "Failed to count notifications")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"unread_count": count})
}

// MarkAsRead godoc
// @Summary		Mark a notification as read
// @Tags		Notifications
// @Security	BearerAuth
// @Param		id	path	int	true	"Notification ID"
// @Success		200	{object}	map[string]interface{}
// @Failure		404	{object}	map[string]interface{}
// @Router		/notifications/{id}/read [patch]
func (h *Handler) MarkAsRead(c *gin.Context) {
	userID := middleware.UserID(c)
	if userID == 0 {
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(c, "Invalid notification id")
		return
	}

	if err := h.service.MarkRead(c.Request.Context(), userID, id); err != nil {
		if errors.Is(err, ErrNotificationNotFound) {
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Notification not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "UPDATE_FAILED", "Failed to mark notification")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"id": id, "is_read": true})
}

// MarkAllAsRead godoc
// @Summary		Mark all notifications as read
// @Tags		Notifications
// @Security	BearerAuth
// @Success		200	{object}	map[string]interface{}
// @Router		/notifications/read-all [post]
func (h *Handler) MarkAllAsRead(c *gin.Context) {
	userID := middleware.UserID(c)
	if userID == 0 {
		return
	}

	updated, err := h.service.MarkAllRead(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "UPDATE_FAILED", "Failed to mark notifications")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"updated": updated})
}
