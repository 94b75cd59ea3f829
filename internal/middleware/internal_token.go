package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"hubal/internal/pkg/response"
)

// InternalTokenAuth protects operational endpoints (metrics, reindexing)
// with a static bearer token. An empty token leaves them open, which is
// only accepted outside production by the config validation.
func InternalTokenAuth(expected string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if expected == "" {
			c.Next()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			LoggerFrom(c).Warn().Str("reason", "missing_auth").Msg("internal auth failed")
			response.Abort(c, http.StatusUnauthorized, "AUTH_MISSING", "Authorization header is required")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			LoggerFrom(c).Warn().Str("reason", "invalid_auth_format").Msg("internal auth failed")
			response.Abort(c, http.StatusUnauthorized, "AUTH_INVALID", "Authorization header must be 'Bearer <token>'")
			return
		}

		if subtle.ConstantTimeCompare([]byte(parts[1]), []byte(expected)) != 1 {
			LoggerFrom(c).Warn().Str("reason", "invalid_token").Msg("internal auth failed")
			response.Abort(c, http.StatusForbidden, "AUTH_INVALID", "Invalid internal token")
			return
		}

		c.Next()
	}
}
