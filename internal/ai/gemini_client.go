package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"docqa-chatbot/internal/telemetry"
	"docqa-chatbot/models"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/time/rate"
	"google.golang.org/api/option"

	genai "github.com/google/generative-ai-go/genai"
)

type GeminiClient struct {
	breaker     *gobreaker.CircuitBreaker
	rateLimiter *rate.Limiter
	client      *genai.Client
	model       string
	metrics     *telemetry.Metrics
}

func NewGeminiClient(ctx context.Context, apiKey, model string, rpm int, metrics *telemetry.Metrics) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Gemini client: %w", err)
	}

	return &GeminiClient{
		breaker:     newBreaker("GeminiAPI", metrics),
		rateLimiter: newLimiter(rpm),
		client:      client,
		model:       model,
		metrics:     metrics,
	}, nil
}

// Invoke sends the conversation to Gemini. System messages become the system
// instruction, earlier turns the chat history, and the final user message is sent.
func (gc *GeminiClient) Invoke(ctx context.Context, messages []models.Message) (string, error) {
	tracer := otel.Tracer("gemini-client")
	ctx, span := tracer.Start(ctx, "gemini.invoke")
	defer span.End()

	system, history, prompt, err := splitConversation(messages)
	if err != nil {
		return "", err
	}

	span.SetAttributes(
		attribute.String("gemini.model", gc.model),
		attribute.Int("gemini.history_messages", len(history)),
	)

	if err := gc.rateLimiter.Wait(ctx); err != nil {
		span.SetAttributes(attribute.Bool("gemini.rate_limited", true))
		return "", err
	}

	result, err := gc.breaker.Execute(func() (interface{}, error) {
		model := gc.client.GenerativeModel(gc.model)
		model.SetTemperature(0.7)
		model.SetMaxOutputTokens(2048)
		if system != "" {
			model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}
		}

		cs := model.StartChat()
		cs.History = toGeminiHistory(history)

		resp, err := cs.SendMessage(ctx, genai.Text(prompt))
		if err != nil {
			span.SetAttributes(attribute.String("gemini.error_message", err.Error()))
			return nil, err
		}
		return resp, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			span.SetAttributes(attribute.Bool("gemini.circuit_breaker_open", true))
		}
		span.SetAttributes(attribute.Bool("gemini.error", true))
		return "", fmt.Errorf("gemini generation failed: %w", err)
	}

	resp := result.(*genai.GenerateContentResponse)
	if resp.UsageMetadata != nil {
		tokens := int64(resp.UsageMetadata.TotalTokenCount)
		span.SetAttributes(attribute.Int64("gemini.actual_tokens", tokens))
		gc.metrics.RecordTokensUsed(tokens, "gemini", gc.model)
	}

	text, err := extractResponseText(resp)
	if err != nil {
		return "", err
	}

	span.SetAttributes(attribute.Bool("gemini.success", true))
	return text, nil
}

func toGeminiHistory(history []models.Message) []*genai.Content {
	contents := make([]*genai.Content, 0, len(history))
	for _, m := range history {
		role := "user"
		if m.Role == models.RoleAssistant {
			role = "model"
		}
		contents = append(contents, &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(m.Content)},
		})
	}
	return contents
}

// extractResponseText joins the text parts of the first candidate
func extractResponseText(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 || resp.Candidates[0] == nil || resp.Candidates[0].Content == nil {
		return "", ErrEmptyResponse
	}

	var reply strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			reply.WriteString(string(txt))
		}
	}

	text := strings.TrimSpace(reply.String())
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// Close the client
func (gc *GeminiClient) Close() error {
	if gc.client != nil {
		return gc.client.Close()
	}
	return nil
}
