package designer

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

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

// List godoc
// @Summary		List designers
// @Description	Active designers ordered by rating. Budget filters select overlapping ranges.
// @Tags		Designers
// @Produce		json
// @Param		city		query	string	false	"City"
// @Param		min_budget	query	number	false	"Customer minimum budget"
// @Param		max_budget	query	number	false	"Customer maximum budget"
// @Success		200	{array}	View
// @Router		/designers [get]
func (h *Handler) List(c *gin.Context) {
	var f ListFilter
	if err := c.ShouldBindQuery(&f); err != nil {
		response.BadRequest(c, "Invalid filter")
		return
	}

	designers, err := h.service.List(c.Request.Context(), f)
	if err != nil {
		response.Internal(c)
		return
	}
	response.Success(c, http.StatusOK, designers)
}

// Search godoc
// @Summary		Search designers
// @Tags		Designers
// @Produce		json
// @Param		q		query	string	true	"Query"
// @Param		city	query	string	false	"City"
// @Success		200	{array}	View
// @Router		/designers/search [get]
func (h *Handler) Search(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		response.BadRequest(c, "q is required")
		return
	}

	designers, err := h.service.Search(c.Request.Context(), q, c.Query("city"))
	if err != nil {
		response.Internal(c)
		return
	}
	response.Success(c, http.StatusOK, designers)
}

// Get godoc
// @Summary		Designer details
// @Tags		Designers
// @Produce		json
// @Param		id	path	int	true	"Designer user ID"
// @Success		200	{object}	View
// @Failure		404	{object}	map[string]interface{}
// @Router		/designers/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(c, "Invalid designer id")
		return
	}
	h.respondDesigner(c, id)
}

// GetMine godoc
// @Summary		My designer profile
// @Tags		Designers
// @Produce		json
// @Security	BearerAuth
// @Success		200	{object}	View
// @Router		/designers/me [get]
func (h *Handler) GetMine(c *gin.Context) {
	userID := middleware.UserID(c)
	if userID == 0 {
		return
	}
	h.respondDesigner(c, userID)
}

// UpdateMine godoc
// @Summary		Update my designer profile
// @Tags		Designers
// @Accept		json
// @Produce		json
// @Security	BearerAuth
// @Param		body	body	UpdateRequest	true	"payload"
// @Success		200	{object}	View
// @Failure		400,404	{object}	map[string]interface{}
// @Router		/designers/me [put]
func (h *Handler) UpdateMine(c *gin.Context) {
	userID := middleware.UserID(c)
	if userID == 0 {
		return
	}

	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	if fields := validator.Validate(req); fields != nil {
		response.ValidationFailed(c, fields)
		return
	}

	view, err := h.service.UpdateMine(c.Request.Context(), userID, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrBudgetRange):
			response.Error(c, http.StatusBadRequest, "INVALID_BUDGET_RANGE", err.Error())
		case errors.Is(err, ErrDesignerNotFound):
			response.Error(c, http.StatusNotFound, "DESIGNER_NOT_FOUND", "Designer profile not found")
		default:
			response.Internal(c)
		}
		return
	}
	response.Success(c, http.StatusOK, view)
}

func (h *Handler) respondDesigner(c *gin.Context, id int64) {
	view, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrDesignerNotFound) {
			response.Error(c, http.StatusNotFound, "DESIGNER_NOT_FOUND", "Designer not found")
			return
		}
		response.Internal(c)
		return
	}
	response.Success(c, http.StatusOK, view)
}
