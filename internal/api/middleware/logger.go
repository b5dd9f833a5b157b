package middleware

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
)

// Logger emits one structured line per request after the handler chain runs.
// Admin decisions (approvals, disbursements) are audited through domain
// events; this log covers transport-level visibility only.
func Logger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		l := logger
		if id := GetCorrelationID(c); id != "" {
			l = logger.With("correlation_id", id)
		}

		fullPath := c.Request.URL.Path
		if q := c.Request.URL.RawQuery; q != "" {
			fullPath += "?" + q
		}

		l.Info("Request completed",
			"method", c.Request.Method,
			"path", fullPath,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
			"response_bytes", c.Writer.Size(),
		)
	}
}
