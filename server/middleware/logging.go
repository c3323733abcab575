package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/httpaccess/logger"
)

const slowRequest = 500 * time.Millisecond

// RequestLogger logs each request with its status and latency. /health is
// not logged.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/health" {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		latency := time.Since(start)
		status := c.Writer.Status()

		fields := logger.Fields(
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			logger.FieldStatus, status,
			logger.FieldDuration, latency.Milliseconds(),
			"client", c.ClientIP(),
		)
		if id, ok := c.Get(ContextRequestID); ok {
			fields[ContextRequestID] = id
		}
		if latency > slowRequest {
			fields["slow"] = true
		}

		switch {
		case status >= 500:
			log.Error("Request completed", fields)
		case status >= 400:
			log.Warn("Request completed", fields)
		default:
			log.Debug("Request completed", fields)
		}
	}
}
