package utils

import (
	"docqa-chatbot/models"

	"github.com/gin-gonic/gin"
)

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	ErrorCode string      `json:"error_code"`
	Message   string      `json:"message"`
	Details   interface{} `json:"details,omitempty"`
}

// RespondWithError sends a standardized error response
func RespondWithError(c *gin.Context, statusCode int, errorCode, message string, details interface{}) {
	c.JSON(statusCode, ErrorResponse{
		ErrorCode: errorCode,
		Message:   message,
		Details:   details,
	})
}

// RespondWithChatError sends a chat failure body and records the error code
// on the context for the audit log.
func RespondWithChatError(c *gin.Context, statusCode int, errorCode, message, reply string) {
	c.Set("error_code", errorCode)
	c.JSON(statusCode, models.ChatErrorResponse{
		Error:   errorCode,
		Message: message,
		Reply:   reply,
	})
}
