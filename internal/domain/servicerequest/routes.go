package servicerequest

import (
	"github.com/gin-gonic/gin"

	"hubal/internal/middleware"
)

func RegisterRoutes(r *gin.RouterGroup, h *Handler) {
	requests := r.Group("/service-requests")
	{
		requests.POST("", middleware.CustomerOnly(), h.Create)
		requests.GET("", h.ListMine)
		requests.GET("/:id", h.Get)
		requests.PATCH("/:id/status", h.UpdateStatus)
	}
}
