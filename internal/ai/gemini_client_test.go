package ai

import (
	"context"
	"os"
	"testing"
	"time"

	"docqa-chatbot/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeminiClientInvokeLive(t *testing.T) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		t.Skip("GEMINI_API_KEY not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := NewGeminiClient(ctx, apiKey, "gemini-2.0-flash", 10, nil)
	require.NoError(t, err)
	defer client.Close()

	reply, err := client.Invoke(ctx, []models.Message{
		{Role: models.RoleSystem, Content: "Reply with a single word."},
		{Role: models.RoleUser, Content: "Say hello."},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, reply)
}
