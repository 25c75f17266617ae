package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/talqs/talqs/backend/go-services/pkg/logger"
)

// RequestLogger logs one structured line per request.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		c.Next()

		status := c.Writer.Status()
		l := logger.With(
			"request_id", c.GetString(RequestIDKey),
			"method", c.Request.Method,
			"path", path,
			"status", status,
			"latency_ms", time.Since(start).Milliseconds(),
			"slot", Slot(c),
			"client_ip", c.ClientIP(),
		)
		if len(c.Errors) > 0 {
			l = l.With("errors", c.Errors.String())
		}
		switch {
		case status >= 500:
			l.Error("request")
		case status >= 400:
			l.Warn("request")
		default:
			l.Info("request")
		}
	}
}
