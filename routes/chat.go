package routes

import (
	"errors"
	"net/http"

	"docqa-chatbot/internal/logger"
	"docqa-chatbot/middleware"
	"docqa-chatbot/models"
	"docqa-chatbot/services"
	"docqa-chatbot/utils"

	"github.com/gin-gonic/gin"
)

// ApologyReply is the reply sent when the chat or agent capability fails
const ApologyReply = "Sorry, I'm having trouble responding right now. Please try again in a moment."

func SetupChatRoutes(router *gin.Engine, chatService *services.ChatService) {
	router.POST("/chat", func(c *gin.Context) {
		var req models.ChatRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				utils.RespondWithChatError(c, http.StatusRequestEntityTooLarge,
					"request_too_large", "Request body exceeds maximum size", "")
				return
			}
			utils.RespondWithChatError(c, http.StatusBadRequest,
				"invalid_input", "Invalid request body: "+err.Error(), "")
			return
		}

		cmd, err := services.NewChatCommand(req)
		if err != nil {
			respondWithServiceError(c, err)
			return
		}

		c.Set("session_id", cmd.SessionID)
		c.Set("chat_mode", cmd.Mode.String())
		c.Set("use_rag", cmd.UseRAG)

		result, err := chatService.Handle(c.Request.Context(), cmd)
		if err != nil {
			respondWithServiceError(c, err)
			return
		}

		c.Set("source_count", len(result.Sources))
		c.JSON(http.StatusOK, models.ChatResponse{
			Reply:   result.Reply,
			Sources: result.Sources,
		})
	})
}

func respondWithServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		utils.RespondWithChatError(c, http.StatusBadRequest, "invalid_input", err.Error(), "")
	default:
		logger.Error("Chat request failed",
			"request_id", middleware.GetRequestID(c),
			"session_id", c.GetString("session_id"),
			"mode", c.GetString("chat_mode"),
			"error", err,
		)
		utils.RespondWithChatError(c, http.StatusInternalServerError, "downstream_failure", err.Error(), ApologyReply)
	}
}
