package auth

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"hubal/internal/middleware"
	"hubal/internal/pkg/response"
	"hubal/internal/pkg/validator"
)

// Handler manages all HTTP interactions for authentication
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Register godoc
// @Summary		Register
// @Description	Creates the account and profile. The optional role is assigned immediately.
// @Tags		Auth
// @Accept		json
// @Produce		json
// @Param		body	body	RegisterRequest	true	"payload"
// @Success		201	{object}	map[string]interface{}
// @Failure		400,409	{object}	map[string]interface{}
// @Router		/auth/register [post]
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	if fields := validator.Validate(req); fields != nil {
		response.ValidationFailed(c, fields)
		return
	}

	result, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, ErrEmailTaken) {
			response.Error(c, http.StatusConflict, "EMAIL_EXISTS", "This email is already registered")
			return
		}
		response.Error(c, http.StatusInternalServerError, "REGISTRATION_FAILED", "Failed to register")
		return
	}

	response.Success(c, http.StatusCreated, result)
}

// Login godoc
// @Summary		Login
// @Description	The token carries the current role, or none when the user has not chosen one.
// @Tags		Auth
// @Accept		json
// @Produce		json
// @Param		body	body	LoginRequest	true	"payload"
// @Success		200	{object}	map[string]interface{}
// @Failure		400,401	{object}	map[string]interface{}
// @Router		/auth/login [post]
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	if fields := validator.Validate(req); fields != nil {
		response.ValidationFailed(c, fields)
		return
	}

	result, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			response.Error(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password")
			return
		}
		response.Error(c, http.StatusInternalServerError, "LOGIN_FAILED", "Failed to login")
		return
	}

	response.Success(c, http.StatusOK, result)
}

// AssignRole godoc
// @Summary		Choose role
// @Description	Idempotent: a second call returns the existing role with already_assigned=true.
// @Tags		Auth
// @Accept		json
// @Produce		json
// @Security	BearerAuth
// @Param		body	body	AssignRoleRequest	true	"payload"
// @Success		200	{object}	RoleResult
// @Router		/auth/role [post]
func (h *Handler) AssignRole(c *gin.Context) {
	userID := middleware.UserID(c)
	if userID == 0 {
		return
	}

	var req AssignRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	if fields := validator.Validate(req); fields != nil {
		response.ValidationFailed(c, fields)
		return
	}

	result, err := h.service.AssignRole(c.Request.Context(), userID, req.Role)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidRole):
			response.Error(c, http.StatusBadRequest, "INVALID_ROLE", err.Error())
		case errors.Is(err, ErrUserNotFound):
			response.Error(c, http.StatusNotFound, "USER_NOT_FOUND", "User not found")
		default:
			response.Error(c, http.StatusInternalServerError, "ROLE_ASSIGN_FAILED", "Failed to assign role")
		}
		return
	}

	response.Success(c, http.StatusOK, result)
}

// Me godoc
// @Summary		Current user
// @Tags		Auth
// @Produce		json
// @Security	BearerAuth
// @Success		200	{object}	Session
// @Router		/auth/me [get]
func (h *Handler) Me(c *gin.Context) {
	userID := middleware.UserID(c)
	if userID == 0 {
		return
	}

	session, err := h.service.Me(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			response.Error(c, http.StatusNotFound, "USER_NOT_FOUND", "User not found")
			return
		}
		response.Internal(c)
		return
	}

	response.Success(c, http.StatusOK, session)
}

// UpdateProfile godoc
// @Summary		Update my profile
// @Tags		Profiles
// @Accept		json
// @Produce		json
// @Security	BearerAuth
// @Param		body	body	UpdateProfileRequest	true	"payload"
// @Success		200	{object}	Profile
// @Router		/profiles/me [put]
func (h *Handler) UpdateProfile(c *gin.Context) {
	userID := middleware.UserID(c)
	if userID == 0 {
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	if fields := validator.Validate(req); fields != nil {
		response.ValidationFailed(c, fields)
		return
	}

	profile, err := h.service.UpdateProfile(c.Request.Context(), userID, req)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			response.Error(c, http.StatusNotFound, "USER_NOT_FOUND", "User not found")
			return
		}
		response.Internal(c)
		return
	}

	response.Success(c, http.StatusOK, profile)
}

// GetPublicProfile godoc
// @Summary		Public profile
// @Tags		Profiles
// @Produce		json
// @Param		id	path	int	true	"User ID"
// @Success		200	{object}	PublicProfile
// @Router		/profiles/{id} [get]
func (h *Handler) GetPublicProfile(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(c, "Invalid user id")
		return
	}

	profiles, err := h.service.PublicProfiles(c.Request.Context(), []int64{id})
	if err != nil {
		response.Internal(c)
		return
	}
	p, ok := profiles[id]
	if !ok {
		response.Error(c, http.StatusNotFound, "USER_NOT_FOUND", "User not found")
		return
	}

	response.Success(c, http.StatusOK, p)
}
