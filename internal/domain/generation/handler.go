package generation

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"hubal/internal/domain/roomdesign"
	"hubal/internal/middleware"
	"hubal/internal/pkg/response"
)

const (
	msgRateLimited     = "Rate limits exceeded, please try again later."
	msgPaymentRequired = "Payment required, please add funds to your workspace."
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// GenerateFunction godoc
// @Summary Generate a redesigned room image
// @Description Function-style endpoint. Answers with a bare JSON object, not the API envelope.
// @Tags Generation
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body Request true "imageUrl, prompt and optional roomDesignId"
// @Success 200 {object} Output
// @Failure 402 {object} map[string]interface{} "Payment required"
// @Failure 429 {object} map[string]interface{} "Rate limited"
// @Router /functions/generate-room-design [post]
func (h *Handler) GenerateFunction(c *gin.Context) {
	userID := middleware.UserID(c)
	if userID == 0 {
		return
	}

	var req Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": ErrMissingInput.Error()})
		return
	}

	out, err := h.service.Generate(c.Request.Context(), userID, req)
	if err != nil {
		status, body := functionError(err)
		if status == http.StatusInternalServerError {
			middleware.LoggerFrom(c).Error().Err(err).Msg("generate room design failed")
		}
		c.JSON(status, body)
		return
	}
	c.JSON(http.StatusOK, out)
}

// GenerateForDesign godoc
// @Summary Generate a preview for my room design
// @Tags Generation
// @Security BearerAuth
// @Produce json
// @Param id path int true "Room design ID"
// @Success 200 {object} Output
// @Router /room-designs/{id}/generate [post]
func (h *Handler) GenerateForDesign(c *gin.Context) {
	userID := middleware.UserID(c)
	if userID == 0 {
		return
	}
	id, ok := roomdesign.ParseID(c)
	if !ok {
		return
	}

	out, err := h.service.GenerateForDesign(c.Request.Context(), userID, id)
	if err != nil {
		var noImage *NoImageError
		switch {
		case errors.Is(err, ErrRateLimited):
			response.Error(c, http.StatusTooManyRequests, "RATE_LIMITED", msgRateLimited)
		case errors.Is(err, ErrPaymentRequired):
			response.Error(c, http.StatusPaymentRequired, "PAYMENT_REQUIRED", msgPaymentRequired)
		case errors.As(err, &noImage):
			response.ErrorWithDetails(c, http.StatusInternalServerError, "GENERATION_FAILED", noImage.Error(), noImage.Details)
		default:
			roomdesign.HandleError(c, err)
		}
		return
	}
	response.Success(c, http.StatusOK, out)
}

func functionError(err error) (int, gin.H) {
	var noImage *NoImageError
	switch {
	case errors.Is(err, ErrMissingInput):
		return http.StatusBadRequest, gin.H{"error": err.Error()}
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests, gin.H{"error": msgRateLimited}
	case errors.Is(err, ErrPaymentRequired):
		return http.StatusPaymentRequired, gin.H{"error": msgPaymentRequired}
	case errors.As(err, &noImage):
		return http.StatusInternalServerError, gin.H{"error": noImage.Error(), "details": noImage.Details}
	case errors.Is(err, roomdesign.ErrDesignNotFound):
		return http.StatusNotFound, gin.H{"error": err.Error()}
	case errors.Is(err, roomdesign.ErrForbidden):
		return http.StatusForbidden, gin.H{"error": err.Error()}
	case errors.Is(err, roomdesign.ErrInvalidTransition), errors.Is(err, roomdesign.ErrStatusChanged):
		return http.StatusConflict, gin.H{"error": err.Error()}
	default:
		return http.StatusInternalServerError, gin.H{"error": err.Error()}
	}
}
