package offer

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

// Submit godoc
// @Summary Make an offer on a room design
// @Tags Offers
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Room design ID"
// @Param body body SubmitRequest true "Offer"
// @Success 201 {object} View
// @Router /room-designs/{id}/offers [post]
func (h *Handler) Submit(c *gin.Context) {
	userID := middleware.UserID(c)
	if userID == 0 {
		return
	}
	designID, ok := pathID(c, "invalid room design id")
	if !ok {
		return
	}

	var req SubmitRequest
	if !bindAndValidate(c, &req) {
		return
	}

	v, err := h.service.Submit(c.Request.Context(), userID, designID, req)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, v)
}

// ListForRoomDesign godoc
// @Summary Offers on my room design
// @Tags Offers
// @Security BearerAuth
// @Produce json
// @Param id path int true "Room design ID"
// @Success 200 {array} View
// @Router /room-designs/{id}/offers [get]
func (h *Handler) ListForRoomDesign(c *gin.Context) {
	userID := middleware.UserID(c)
	if userID == 0 {
		return
	}
	designID, ok := pathID(c, "invalid room design id")
	if !ok {
		return
	}

	list, err := h.service.ListForRoomDesign(c.Request.Context(), userID, designID)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, list)
}

// ListMine godoc
// @Summary My offers
// @Tags Offers
// @Security BearerAuth
// @Produce json
// @Success 200 {array} MineView
// @Router /offers/mine [get]
func (h *Handler) ListMine(c *gin.Context) {
	userID := middleware.UserID(c)
	if userID == 0 {
		return
	}

	list, err := h.service.ListMine(c.Request.Context(), userID)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, list)
}

// Get godoc
// @Summary Offer details
// @Tags Offers
// @Security BearerAuth
// @Produce json
// @Param id path int true "Offer ID"
// @Success 200 {object} View
// @Router /offers/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	userID, offerID, ok := h.ids(c)
	if !ok {
		return
	}
	v, err := h.service.Get(c.Request.Context(), userID, offerID)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, v)
}

// Accept godoc
// @Summary Accept a pending offer
// @Tags Offers
// @Security BearerAuth
// @Produce json
// @Param id path int true "Offer ID"
// @Success 200 {object} Result
// @Router /offers/{id}/accept [post]
func (h *Handler) Accept(c *gin.Context) {
	userID, offerID, ok := h.ids(c)
	if !ok {
		return
	}
	res, err := h.service.Accept(c.Request.Context(), userID, offerID)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, res)
}

// Reject godoc
// @Summary Reject an offer or counter-offer
// @Tags Offers
// @Security BearerAuth
// @Produce json
// @Param id path int true "Offer ID"
// @Success 200 {object} View
// @Router /offers/{id}/reject [post]
func (h *Handler) Reject(c *gin.Context) {
	userID, offerID, ok := h.ids(c)
	if !ok {
		return
	}
	v, err := h.service.Reject(c.Request.Context(), userID, offerID)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, v)
}

// SubmitCounter godoc
// @Summary Counter a pending offer
// @Tags Offers
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Offer ID"
// @Param body body CounterRequest true "Counter terms"
// @Success 200 {object} View
// @Router /offers/{id}/counter [post]
func (h *Handler) SubmitCounter(c *gin.Context) {
	userID, offerID, ok := h.ids(c)
	if !ok {
		return
	}
	var req CounterRequest
	if !bindAndValidate(c, &req) {
		return
	}
	v, err := h.service.SubmitCounter(c.Request.Context(), userID, offerID, req)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, v)
}

// AcceptCounter godoc
// @Summary Accept a counter-offer
// @Tags Offers
// @Security BearerAuth
// @Produce json
// @Param id path int true "Offer ID"
// @Success 200 {object} Result
// @Router /offers/{id}/accept-counter [post]
func (h *Handler) AcceptCounter(c *gin.Context) {
	userID, offerID, ok := h.ids(c)
	if !ok {
		return
	}
	res, err := h.service.AcceptCounter(c.Request.Context(), userID, offerID)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, res)
}

// OpenChat godoc
// @Summary Open the conversation for an offer
// @Tags Offers
// @Security BearerAuth
// @Produce json
// @Param id path int true "Offer ID"
// @Success 200 {object} chat.Conversation
// @Router /offers/{id}/chat [post]
func (h *Handler) OpenChat(c *gin.Context) {
	userID, offerID, ok := h.ids(c)
	if !ok {
		return
	}
	conv, err := h.service.OpenChat(c.Request.Context(), userID, offerID)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, conv)
}

func (h *Handler) ids(c *gin.Context) (int64, int64, bool) {
	userID := middleware.UserID(c)
	if userID == 0 {
		return 0, 0, false
	}
	offerID, ok := pathID(c, "invalid offer id")
	return userID, offerID, ok
}

func pathID(c *gin.Context, msg string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(c, msg)
		return 0, false
	}
	return id, true
}

func bindAndValidate(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		response.BadRequest(c, "invalid request body")
		return false
	}
	if fields := validator.Validate(req); fields != nil {
		response.ValidationFailed(c, fields)
		return false
	}
	return true
}

func handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrOfferNotFound):
		response.Error(c, http.StatusNotFound, "OFFER_NOT_FOUND", err.Error())
	case errors.Is(err, ErrDesignNotFound):
		response.Error(c, http.StatusNotFound, "ROOM_DESIGN_NOT_FOUND", err.Error())
	case errors.Is(err, ErrForbidden):
		response.Error(c, http.StatusForbidden, "FORBIDDEN", err.Error())
	case errors.Is(err, ErrSelfOffer):
		response.BadRequest(c, err.Error())
	case errors.Is(err, ErrOfferExists):
		response.Error(c, http.StatusConflict, "OFFER_EXISTS", err.Error())
	case errors.Is(err, ErrDesignNotOpen):
		response.Error(c, http.StatusConflict, "ROOM_DESIGN_NOT_OPEN", err.Error())
	case errors.Is(err, ErrInvalidTransition):
		response.Error(c, http.StatusConflict, "INVALID_TRANSITION", err.Error())
	case errors.Is(err, ErrStatusChanged):
		response.Error(c, http.StatusConflict, "STATUS_CHANGED", err.Error())
	default:
		middleware.LoggerFrom(c).Error().Err(err).Msg("offer handler failed")
		response.Internal(c)
	}
}
