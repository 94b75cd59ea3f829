package review

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
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(public, protected *gin.RouterGroup) {
	if public != nil {
		public.GET("/designers/:id/reviews", h.ListByDesigner)
	}

	if protected != nil {
		protected.POST("/reviews", middleware.CustomerOnly(), h.Create)
		protected.PUT("/reviews/:id", middleware.CustomerOnly(), h.Update)
		protected.GET("/designers/:id/review-eligibility", h.Eligibility)
	}
}

// Create godoc
// @Summary Review a designer
// @Description Requires a completed service request or an accepted offer with the designer. One review per customer and designer.
// @Tags Reviews
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body CreateRequest true "Review"
// @Success 201 {object} Review
// @Failure 403 {object} map[string]interface{} "No completed work"
// @Failure 409 {object} map[string]interface{} "ALREADY_REVIEWED"
// @Router /reviews [post]
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

	rv, err := h.svc.Create(c.Request.Context(), userID, req)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, rv)
}

// Update godoc
// @Summary Edit my review
// @Tags Reviews
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Review ID"
// @Param body body UpdateRequest true "Review"
// @Success 200 {object} Review
// @Router /reviews/{id} [put]
func (h *Handler) Update(c *gin.Context) {
	userID := middleware.UserID(c)
	if userID == 0 {
		return
	}
	reviewID, ok := pathID(c)
	if !ok {
		return
	}

	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	if fields := validator.Validate(req); fields != nil {
		response.ValidationFailed(c, fields)
		return
	}

	rv, err := h.svc.Update(c.Request.Context(), userID, reviewID, req)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, rv)
}

// ListByDesigner godoc
// @Summary Reviews of a designer
// @Tags Reviews
// @Produce json
// @Param id path int true "Designer user ID"
// @Success 200 {array} View
// @Router /designers/{id}/reviews [get]
func (h *Handler) ListByDesigner(c *gin.Context) {
	designerID, ok := pathID(c)
	if !ok {
		return
	}

	items, err := h.svc.ListByDesigner(c.Request.Context(), designerID)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, items)
}

// Eligibility godoc
// @Summary Can I review this designer
// @Tags Reviews
// @Security BearerAuth
// @Produce json
// @Param id path int true "Designer user ID"
// @Success 200 {object} Eligibility
// @Router /designers/{id}/review-eligibility [get]
func (h *Handler) Eligibility(c *gin.Context) {
	userID := middleware.UserID(c)
	if userID == 0 {
		return
	}
	designerID, ok := pathID(c)
	if !ok {
		return
	}

	e, err := h.svc.Eligibility(c.Request.Context(), userID, designerID)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, e)
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid ID")
		return 0, false
	}
	return id, true
}

func handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrCommentTooLong):
		response.ValidationFailed(c, map[string]string{"comment": "max"})
	case errors.Is(err, ErrInvalidServiceRequest):
		response.Error(c, http.StatusBadRequest, "INVALID_SERVICE_REQUEST", "Service request must be your completed request with this designer")
	case errors.Is(err, ErrNotEligible):
		response.Error(c, http.StatusForbidden, "NOT_ELIGIBLE", "You can review a designer only after completed work")
	case errors.Is(err, ErrForbidden):
		response.Error(c, http.StatusForbidden, "FORBIDDEN", err.Error())
	case errors.Is(err, ErrAlreadyReviewed):
		response.Error(c, http.StatusConflict, "ALREADY_REVIEWED", "Only one review per customer per designer")
	case errors.Is(err, ErrReviewNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Review not found")
	default:
		middleware.LoggerFrom(c).Error().Err(err).Msg("review handler failed")
		response.Internal(c)
	}
}
