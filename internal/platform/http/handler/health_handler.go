// Package handler provides HTTP handlers for platform-level endpoints.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const pingTimeout = 2 * time.Second

// Pinger checks that a backing service answers.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Health handles /healthz. It reports 503 when the database does not answer
// and prevents caching of the result. A nil db skips the check.
func Health(db Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", "no-store")

		status := http.StatusOK
		body := gin.H{"status": "ok"}
		if db != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), pingTimeout)
			defer cancel()
			if err := db.Ping(ctx); err != nil {
				slog.Error("health check failed", "error", err)
				status = http.StatusServiceUnavailable
				body = gin.H{"status": "unavailable"}
			}
		}

		switch c.Request.Method {
		case http.MethodHead:
			c.Status(status)
		case http.MethodOptions:
			c.Status(http.StatusNoContent)
		default:
			c.JSON(status, body)
		}
	}
}
