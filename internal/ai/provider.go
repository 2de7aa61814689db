package ai

import (
	"context"
	"fmt"
	"io"

	"docqa-chatbot/internal/config"
	"docqa-chatbot/internal/logger"
	"docqa-chatbot/internal/telemetry"
	"docqa-chatbot/models"
)

// ChatModel is the minimal capability both providers satisfy.
type ChatModel interface {
	Invoke(ctx context.Context, messages []models.Message) (string, error)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// NewChatModel builds the model selected by CHAT_PROVIDER. The returned
// closer releases provider connections on shutdown.
func NewChatModel(ctx context.Context, cfg *config.Config, metrics *telemetry.Metrics) (ChatModel, io.Closer, error) {
	switch cfg.ChatProvider {
	case "gemini":
		client, err := NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.ModelRPM, metrics)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("Chat model initialized", "provider", "gemini", "model", cfg.GeminiModel)
		return client, client, nil
	case "openai":
		client := NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.OpenAIBaseURL, cfg.ModelRPM, metrics)
		logger.Info("Chat model initialized", "provider", "openai", "model", cfg.OpenAIModel)
		return client, nopCloser{}, nil
	default:
		return nil, nil, fmt.Errorf("unknown chat provider %q", cfg.ChatProvider)
	}
}
