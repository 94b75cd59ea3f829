package generation

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts both generation endpoints behind limit, a
// per-user limiter stricter than the global one.
func RegisterRoutes(r *gin.RouterGroup, h *Handler, limit gin.HandlerFunc) {
	r.POST("/functions/generate-room-design", limit, h.GenerateFunction)
	r.POST("/room-designs/:id/generate", limit, h.GenerateForDesign)
}
