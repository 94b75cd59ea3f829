package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hubal/internal/pkg/response"
)

const (
	RoleCustomer = "customer"
	RoleDesigner = "designer"
)

// RequireRole ensures that the authenticated user has the specified role
func RequireRole(requiredRole string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(CtxRole)
		if role == "" {
			response.Abort(c, http.StatusForbidden, "ROLE_REQUIRED", "Choose a role before using this endpoint")
			return
		}

		if role != requiredRole {
			response.Abort(c, http.StatusForbidden, "FORBIDDEN", "Access denied: insufficient permissions")
			return
		}

		c.Next()
	}
}

func CustomerOnly() gin.HandlerFunc {
	return RequireRole(RoleCustomer)
}

func DesignerOnly() gin.HandlerFunc {
	return RequireRole(RoleDesigner)
}
