package offer

import (
	"github.com/gin-gonic/gin"

	"hubal/internal/middleware"
)

func RegisterRoutes(r *gin.RouterGroup, h *Handler) {
	designs := r.Group("/room-designs")
	{
		designs.POST("/:id/offers", middleware.DesignerOnly(), h.Submit)
		designs.GET("/:id/offers", middleware.CustomerOnly(), h.ListForRoomDesign)
	}

	offers := r.Group("/offers")
	{
		offers.GET("/mine", middleware.DesignerOnly(), h.ListMine)
		offers.GET("/:id", h.Get)
		offers.POST("/:id/accept", middleware.CustomerOnly(), h.Accept)
		offers.POST("/:id/reject", middleware.CustomerOnly(), h.Reject)
		offers.POST("/:id/counter", middleware.DesignerOnly(), h.SubmitCounter)
		offers.POST("/:id/accept-counter", middleware.CustomerOnly(), h.AcceptCounter)
		offers.POST("/:id/chat", h.OpenChat)
	}
}
