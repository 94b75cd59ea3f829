package designer

import (
	"github.com/gin-gonic/gin"

	"hubal/internal/middleware"
)

func (h *Handler) RegisterPublicRoutes(v1 *gin.RouterGroup) {
	designers := v1.Group("/designers")
	{
		designers.GET("", h.List)
		designers.GET("/search", h.Search)
		designers.GET("/:id", h.Get)
	}
}

func (h *Handler) RegisterProtectedRoutes(protected *gin.RouterGroup) {
	mine := protected.Group("/designers/me", middleware.DesignerOnly())
	{
		mine.GET("", h.GetMine)
		mine.PUT("", h.UpdateMine)
	}
}
