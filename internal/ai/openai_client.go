package ai

import (
	"context"
	"fmt"
	"strings"

	"docqa-chatbot/internal/telemetry"
	"docqa-chatbot/models"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/time/rate"
)

// OpenAIClient calls an OpenAI-compatible /chat/completions endpoint.
type OpenAIClient struct {
	client      openai.Client
	model       string
	breaker     *gobreaker.CircuitBreaker
	rateLimiter *rate.Limiter
	metrics     *telemetry.Metrics
}

// NewOpenAIClient creates a client. baseURL may be empty for api.openai.com.
// The SDK's own retries are disabled; a failed call is reported as is.
func NewOpenAIClient(apiKey, model, baseURL string, rpm int, metrics *telemetry.Metrics) *OpenAIClient {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	return &OpenAIClient{
		client:      openai.NewClient(opts...),
		model:       model,
		breaker:     newBreaker("OpenAIAPI", metrics),
		rateLimiter: newLimiter(rpm),
		metrics:     metrics,
	}
}

func (oc *OpenAIClient) Invoke(ctx context.Context, messages []models.Message) (string, error) {
	ctx, span := otel.Tracer("openai-client").Start(ctx, "openai.invoke")
	defer span.End()

	if len(messages) == 0 || messages[len(messages)-1].Role != models.RoleUser {
		return "", ErrNoUserMessage
	}

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(oc.model),
		Messages: toOpenAIMessages(messages),
	}
	span.SetAttributes(
		attribute.String("openai.model", oc.model),
		attribute.Int("openai.messages", len(messages)),
	)

	if err := oc.rateLimiter.Wait(ctx); err != nil {
		span.SetAttributes(attribute.Bool("openai.rate_limited", true))
		return "", err
	}

	result, err := oc.breaker.Execute(func() (interface{}, error) {
		return oc.client.Chat.Completions.New(ctx, params)
	})
	if err != nil {
		span.SetAttributes(attribute.Bool("openai.error", true))
		return "", fmt.Errorf("openai completion failed: %w", err)
	}

	completion := result.(*openai.ChatCompletion)
	oc.metrics.RecordTokensUsed(completion.Usage.TotalTokens, "openai", oc.model)

	if len(completion.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	text := strings.TrimSpace(completion.Choices[0].Message.Content)
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

func toOpenAIMessages(messages []models.Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case models.RoleSystem:
			out = append(out, openai.SystemMessage(m.Content))
		case models.RoleAssistant:
			out = append(out, openai.AssistantMessage(m.Content))
		default:
			out = append(out, openai.UserMessage(m.Content))
		}
	}
	return out
}
