package middleware

import (
	"log/slog"
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"

	"blog_backend/internal/shared/ratelimiter"
)

// RateLimit rejects requests with 429 once the client IP exhausts its budget
// in limiter. Only the listed methods are counted; an empty list counts all.
func RateLimit(limiter ratelimiter.Limiter, methods ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if len(methods) > 0 && !slices.Contains(methods, c.Request.Method) {
			c.Next()
			return
		}
		if !limiter.Allow(c.ClientIP()) {
			slog.Warn("rate limit exceeded", "path", c.Request.URL.Path, "remote_addr", c.ClientIP())
			c.Header("Retry-After", "60")
			c.AbortWithStatus(http.StatusTooManyRequests)
			return
		}
		c.Next()
	}
}
