package servicerequest

import (
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
// @Summary Send a service request to a designer
// @Tags ServiceRequests
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body CreateRequest true "Request"
// @Success 201 {object} ServiceRequest
// @Router /service-requests [post]
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

	sr, err := h.service.Create(c.Request.Context(), userID, req)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, sr)
}

// ListMine godoc
// @Summary My service requests
// @Description Customers see requests they sent, designers those they received.
// @Tags ServiceRequests
// @Security BearerAuth
// @Produce json
// @Param status query string false "Status filter"
// @Success 200 {array} ServiceRequest
// @Router /service-requests [get]
func (h *Handler) ListMine(c *gin.Context) {
	userID := middleware.UserID(c)
	if userID == 0 {
		return
	}

	list, err := h.service.ListMine(c.Request.Context(), userID, c.GetString(middleware.CtxRole), Status(c.Query("status")))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, list)
}

// Get godoc
// @Summary Service request details
// @Tags ServiceRequests
// @Security BearerAuth
// @Produce json
// @Param id path int true "Request ID"
// @Success 200 {object} ServiceRequest
// @Router /service-requests/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	userID := middleware.UserID(c)
	if userID == 0 {
		return
	}
	id, ok := requestID(c)
	if !ok {
		return
	}

	sr, err := h.service.Get(c.Request.Context(), userID, id)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, sr)
}

// UpdateStatus godoc
// @Summary Change a service request status
// @Description Designers accept, reject and complete; customers cancel pending requests.
// @Tags ServiceRequests
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Request ID"
// @Param body body UpdateStatusRequest true "New status"
// @Success 200 {object} StatusResult
// @Router /service-requests/{id}/status [patch]
func (h *Handler) UpdateStatus(c *gin.Context) {
	userID := middleware.UserID(c)
	if userID == 0 {
		return
	}
	id, ok := requestID(c)
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	if fields := validator.Validate(req); fields != nil {
		response.ValidationFailed(c, fields)
		return
	}

	result, err := h.service.UpdateStatus(c.Request.Context(), userID, id, req.Status)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}

func requestID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(c, "invalid request id")
		return 0, false
	}
	return id, true
}

func handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrRequestNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, ErrDesignerNotFound):
		response.Error(c, http.StatusNotFound, "DESIGNER_NOT_FOUND", err.Error())
	case errors.Is(err, ErrForbidden):
		response.Error(c, http.StatusForbidden, "FORBIDDEN", err.Error())
	case errors.Is(err, ErrSelfRequest):
		response.BadRequest(c, err.Error())
	case errors.Is(err, ErrInvalidTransition):
		response.Error(c, http.StatusConflict, "INVALID_TRANSITION", err.Error())
	case errors.Is(err, ErrStatusChanged):
		response.Error(c, http.StatusConflict, "STATUS_CHANGED", err.Error())
	default:
		middleware.LoggerFrom(c).Error().Err(err).Msg("service request handler failed")
		response.Internal(c)
	}
}
