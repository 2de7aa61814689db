package middleware

import (
	"time"

	"docqa-chatbot/internal/logger"

	"github.com/gin-gonic/gin"
)

// RequestLogger writes one structured log line per request
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		args := []any{
			"request_id", GetRequestID(c),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		}
		if sessionID := c.GetString("session_id"); sessionID != "" {
			args = append(args, "session_id", sessionID, "mode", c.GetString("chat_mode"))
		}

		if c.Writer.Status() >= 500 {
			logger.Error("Request completed", args...)
			return
		}
		logger.Info("Request completed", args...)
	}
}
