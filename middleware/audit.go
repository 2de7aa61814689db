package middleware

import (
	"time"

	"docqa-chatbot/models"

	"github.com/gin-gonic/gin"
)

// AuditSink receives one event per audited request
type AuditSink interface {
	LogAsync(event *models.AuditEvent)
}

// AuditMiddleware records request metadata after the handler runs. The chat
// handler publishes session_id, chat_mode, use_rag and source_count on the
// context; the request body is never captured.
func AuditMiddleware(sink AuditSink) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.FullPath() == "/health" || c.FullPath() == "/ready" {
			c.Next()
			return
		}

		start := time.Now()

		c.Next()

		sink.LogAsync(createAuditEvent(c, start))
	}
}

func createAuditEvent(c *gin.Context, start time.Time) *models.AuditEvent {
	status := c.Writer.Status()
	return &models.AuditEvent{
		StartedAt: start.UTC(),
		RequestID: GetRequestID(c),
		SessionID: c.GetString("session_id"),
		Mode:      c.GetString("chat_mode"),
		UseRAG:    c.GetBool("use_rag"),
		Sources:   c.GetInt("source_count"),
		Path:      c.Request.URL.Path,
		Status:    status,
		LatencyMS: time.Since(start).Milliseconds(),
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
		Success:   status < 400,
		ErrorCode: c.GetString("error_code"),
	}
}
