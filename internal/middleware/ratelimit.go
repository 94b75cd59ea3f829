package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"hubal/internal/pkg/jwt"
	"hubal/internal/pkg/response"
)

type keyFunc func(*gin.Context) string

// KeyByUserOrIP keys buckets by the authenticated user, falling back to the
// client IP for anonymous requests.
func KeyByUserOrIP() keyFunc {
	return func(c *gin.Context) string {
		if id := c.GetInt64(CtxUserID); id > 0 {
			return "user:" + strconv.FormatInt(id, 10)
		}
		return "ip:" + c.ClientIP()
	}
}

// KeyByTokenOrIP is KeyByUserOrIP for limiters mounted ahead of JWTAuth: a
// valid bearer token selects the user bucket, anything else shares the IP bucket.
func KeyByTokenOrIP(jwtService *jwt.Service) keyFunc {
	byUser := KeyByUserOrIP()
	return func(c *gin.Context) string {
		if c.GetInt64(CtxUserID) == 0 {
			if token, ok := bearerToken(c.GetHeader("Authorization")); ok {
				if claims, err := jwtService.ValidateToken(token); err == nil && claims.UserID > 0 {
					return "user:" + strconv.FormatInt(claims.UserID, 10)
				}
			}
		}
		return byUser(c)
	}
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter is a process-local, per-key token bucket.
type RateLimiter struct {
	rps      rate.Limit
	burst    int
	keyFn    keyFunc
	ttl      time.Duration
	mu       sync.Mutex
	visitors map[string]*visitor
	lookups  uint64
}

func NewRateLimiter(rps float64, burst int, keyFn keyFunc) *RateLimiter {
	if burst <= 0 {
		burst = 1
	}
	return &RateLimiter{
		rps:      rate.Limit(rps),
		burst:    burst,
		keyFn:    keyFn,
		ttl:      10 * time.Minute,
		visitors: make(map[string]*visitor),
	}
}

func (rl *RateLimiter) limiterFor(key string) *rate.Limiter {
	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	// Evict idle buckets before touching the requested one.
	rl.lookups++
	if rl.lookups >= 5000 {
		for k, v := range rl.visitors {
			if now.Sub(v.lastSeen) >= rl.ttl {
				delete(rl.visitors, k)
			}
		}
		rl.lookups = 0
	}

	if v, ok := rl.visitors[key]; ok {
		v.lastSeen = now
		return v.limiter
	}
	lim := rate.NewLimiter(rl.rps, rl.burst)
	rl.visitors[key] = &visitor{limiter: lim, lastSeen: now}
	return lim
}

func (rl *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl.limiterFor(rl.keyFn(c)).Allow() {
			c.Next()
			return
		}

		c.Header("Retry-After", "1")
		response.Abort(c, http.StatusTooManyRequests, "RATE_LIMITED", "Rate limit exceeded")
	}
}
