package upload

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"hubal/internal/middleware"
	"hubal/internal/pkg/response"
)

// Handler handles HTTP requests for image uploads.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Upload godoc
// @Summary Upload an image
// @Description Stores a jpeg, png, gif or webp image of at most 10 MB under the given purpose and returns its public URL.
// @Tags Uploads
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "Image"
// @Param purpose formData string true "room-designs, avatars or portfolio"
// @Success 201 {object} Upload
// @Failure 400,401,413,500 {object} map[string]interface{}
// @Router /uploads [post]
func (h *Handler) Upload(c *gin.Context) {
	userID := middleware.UserID(c)
	if userID == 0 {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "no file provided")
		return
	}

	upload, err := h.service.Upload(c.Request.Context(), userID, Purpose(c.PostForm("purpose")), fileHeader)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, upload)
}

// GetByID godoc
// @Summary Get upload metadata by ID
// @Tags Uploads
// @Produce json
// @Security BearerAuth
// @Param id path string true "Upload ID"
// @Success 200 {object} Upload
// @Failure 404 {object} map[string]interface{}
// @Router /uploads/{id} [get]
func (h *Handler) GetByID(c *gin.Context) {
	upload, err := h.service.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, upload)
}

// Delete godoc
// @Summary Delete an upload (object + record)
// @Tags Uploads
// @Produce json
// @Security BearerAuth
// @Param id path string true "Upload ID"
// @Success 200 {object} map[string]interface{}
// @Failure 403,404,500 {object} map[string]interface{}
// @Router /uploads/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	userID := middleware.UserID(c)
	if userID == 0 {
		return
	}

	if err := h.service.Delete(c.Request.Context(), c.Param("id"), userID); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// ListMy godoc
// @Summary List my uploads
// @Tags Uploads
// @Produce json
// @Security BearerAuth
// @Param purpose query string false "Filter by purpose"
// @Success 200 {array} Upload
// @Router /uploads [get]
func (h *Handler) ListMy(c *gin.Context) {
	userID := middleware.UserID(c)
	if userID == 0 {
		return
	}

	uploads, err := h.service.ListByUser(c.Request.Context(), userID, Purpose(c.Query("purpose")))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, uploads)
}

func handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrEmptyFile), errors.Is(err, ErrInvalidMimeType), errors.Is(err, ErrInvalidPurpose):
		response.BadRequest(c, err.Error())
	case errors.Is(err, ErrFileTooLarge):
		response.Error(c, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", err.Error())
	case errors.Is(err, ErrUploadNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, ErrNotOwner):
		response.Error(c, http.StatusForbidden, "FORBIDDEN", err.Error())
	default:
		middleware.LoggerFrom(c).Error().Err(err).Msg("upload handler failed")
		response.Internal(c)
	}
}
