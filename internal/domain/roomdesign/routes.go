package roomdesign

import (
	"github.com/gin-gonic/gin"

	"hubal/internal/middleware"
)

func RegisterRoutes(r *gin.RouterGroup, h *Handler) {
	designs := r.Group("/room-designs")
	{
		designs.POST("", middleware.CustomerOnly(), h.Create)
		designs.GET("/mine", h.ListMine)
		designs.GET("/open", middleware.DesignerOnly(), h.ListOpen)
		designs.GET("/:id", h.Get)
		designs.POST("/:id/publish", h.Publish)
		designs.POST("/:id/start", middleware.DesignerOnly(), h.StartWork)
	}
}
