package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"hubal/internal/pkg/jwt"
	"hubal/internal/pkg/response"
)

const (
	CtxUserID = "user_id"
	CtxRole   = "role"
)

// JWTAuth validates the bearer token and places the session on the context.
func JWTAuth(jwtService *jwt.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Abort(c, http.StatusUnauthorized, "AUTH_HEADER_MISSING", "Authorization header is required")
			return
		}

		token, ok := bearerToken(header)
		if !ok {
			response.Abort(c, http.StatusUnauthorized, "INVALID_AUTH_FORMAT", "Authorization header must be 'Bearer <token>'")
			return
		}

		claims, err := jwtService.ValidateToken(token)
		if err != nil {
			response.Abort(c, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid or expired token")
			return
		}

		c.Set(CtxUserID, claims.UserID)
		c.Set(CtxRole, claims.Role)
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

// UserID returns the authenticated user or writes 401 and returns 0.
func UserID(c *gin.Context) int64 {
	id := c.GetInt64(CtxUserID)
	if id == 0 {
		response.Abort(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
	}
	return id
}
