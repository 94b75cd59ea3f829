package roomdesign

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"hubal/internal/middleware"
	"hubal/internal/pkg/response"
	"hubal/internal/pkg/validator"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Create godoc
// @Summary Upload a room design
// @Description publish=true opens the design for designer offers right away.
// @Tags RoomDesigns
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body CreateRequest true "Design"
// @Success 201 {object} RoomDesign
// @Router /room-designs [post]
func (h *Handler) Create(c *gin.Context) {
	userID := middleware.UserID(c)
	if userID == 0 {
		return
	}

	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	if fields := validator.Validate(req); fields != nil {
		response.ValidationFailed(c, fields)
		return
	}

	d, err := h.service.Create(c.Request.Context(), userID, req)
	if err != nil {
		HandleError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, d)
}

// ListMine godoc
// @Summary My room designs
// @Tags RoomDesigns
// @Security BearerAuth
// @Produce json
// @Success 200 {array} RoomDesign
// @Router /room-designs/mine [get]
func (h *Handler) ListMine(c *gin.Context) {
	userID := middleware.UserID(c)
	if userID == 0 {
		return
	}

	list, err := h.service.ListMine(c.Request.Context(), userID)
	if err != nil {
		HandleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, list)
}

// ListOpen godoc
// @Summary Room designs open for offers
// @Tags RoomDesigns
// @Security BearerAuth
// @Produce json
// @Success 200 {array} RoomDesign
// @Router /room-designs/open [get]
func (h *Handler) ListOpen(c *gin.Context) {
	list, err := h.service.ListOpen(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, list)
}

// Get godoc
// @Summary Room design details
// @Tags RoomDesigns
// @Security BearerAuth
// @Produce json
// @Param id path int true "Room design ID"
// @Success 200 {object} RoomDesign
// @Router /room-designs/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	h.withID(c, h.service.Get, http.StatusOK)
}

// Publish godoc
// @Summary Open a room design for offers
// @Tags RoomDesigns
// @Security BearerAuth
// @Produce json
// @Param id path int true "Room design ID"
// @Success 200 {object} RoomDesign
// @Router /room-designs/{id}/publish [post]
func (h *Handler) Publish(c *gin.Context) {
	h.withID(c, h.service.Publish, http.StatusOK)
}

// StartWork godoc
// @Summary Start work on an awarded room design
// @Tags RoomDesigns
// @Security BearerAuth
// @Produce json
// @Param id path int true "Room design ID"
// @Success 200 {object} RoomDesign
// @Router /room-designs/{id}/start [post]
func (h *Handler) StartWork(c *gin.Context) {
	h.withID(c, h.service.StartWork, http.StatusOK)
}

func (h *Handler) withID(c *gin.Context, fn func(ctx context.Context, userID, id int64) (*RoomDesign, error), status int) {
	userID := middleware.UserID(c)
	if userID == 0 {
		return
	}
	id, ok := ParseID(c)
	if !ok {
		return
	}

	d, err := fn(c.Request.Context(), userID, id)
	if err != nil {
		HandleError(c, err)
		return
	}
	response.Success(c, status, d)
}

// ParseID reads the :id path parameter, answering 400 when it is not a
// positive integer.
func ParseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(c, "invalid room design id")
		return 0, false
	}
	return id, true
}

// HandleError maps room design errors; other packages reuse it for
// errors surfaced from this service.
func HandleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrDesignNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, ErrForbidden):
		response.Error(c, http.StatusForbidden, "FORBIDDEN", err.Error())
	case errors.Is(err, ErrInvalidPrompt):
		response.ValidationFailed(c, map[string]string{"prompt": "len 1-1000"})
	case errors.Is(err, ErrInvalidTransition):
		response.Error(c, http.StatusConflict, "INVALID_TRANSITION", err.Error())
	case errors.Is(err, ErrStatusChanged):
		response.Error(c, http.StatusConflict, "STATUS_CHANGED", err.Error())
	default:
		middleware.LoggerFrom(c).Error().Err(err).Msg("room design handler failed")
		response.Internal(c)
	}
}
