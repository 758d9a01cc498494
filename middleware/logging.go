package middleware

import (
	"log/slog"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

var skipLoggingPaths = []string{
	"/ping",
	"/ws/",
}

// RequestLogger logs method, path, status, duration and client ip of every request.
func RequestLogger(log *slog.Logger) gin.HandlerFunc {
	if log == nil {
		log = slog.Default()
	}
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		for _, prefix := range skipLoggingPaths {
			if strings.HasPrefix(path, prefix) {
				c.Next()
				return
			}
		}

		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		attrs := []any{
			"method", c.Request.Method,
			"path", path,
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		}
		switch {
		case status >= 500:
			log.ErrorContext(c.Request.Context(), "http request", append(attrs, "errors", c.Errors.String())...)
		case status >= 400:
			log.WarnContext(c.Request.Context(), "http request", attrs...)
		default:
			log.InfoContext(c.Request.Context(), "http request", attrs...)
		}
	}
}
