package upload

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// multipartOverhead leaves room for the form boundary and the purpose field.
const multipartOverhead = 1 << 20

// RegisterRoutes mounts /uploads under the protected group. Request bodies
// are capped before multipart parsing so oversized files never hit disk.
func RegisterRoutes(r *gin.RouterGroup, h *Handler) {
	uploads := r.Group("/uploads")
	{
		uploads.POST("", limitBody(MaxFileSize+multipartOverhead), h.Upload)
		uploads.GET("", h.ListMy)
		uploads.GET("/:id", h.GetByID)
		uploads.DELETE("/:id", h.Delete)
	}
}

func limitBody(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		c.Next()
	}
}
