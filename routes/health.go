package routes

import (
	"context"
	"errors"
	"net/http"
	"time"

	"docqa-chatbot/services"

	"github.com/gin-gonic/gin"
)

// DocumentStatus reports on the reference document
type DocumentStatus interface {
	EnsureLoaded(ctx context.Context) (string, error)
	Status() (loaded, available bool, chunks int)
}

func SetupHealthRoutes(router *gin.Engine, docs DocumentStatus) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "timestamp": time.Now()})
	})

	// Ready loads the document on first call. A missing document still counts
	// as ready; chat then answers with the refusal sentence.
	router.GET("/ready", func(c *gin.Context) {
		if _, err := docs.EnsureLoaded(c.Request.Context()); err != nil && !errors.Is(err, services.ErrSourceUnavailable) {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "not_ready",
				"error":  err.Error(),
			})
			return
		}

		loaded, available, chunks := docs.Status()
		c.JSON(http.StatusOK, gin.H{
			"status":             "ready",
			"document_loaded":    loaded,
			"document_available": available,
			"chunks":             chunks,
		})
	})
}
