package ai

import (
	"errors"
	"strings"
	"time"

	"docqa-chatbot/internal/logger"
	"docqa-chatbot/internal/telemetry"
	"docqa-chatbot/models"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

var (
	// ErrNoUserMessage is returned when the conversation does not end with a user message
	ErrNoUserMessage = errors.New("conversation must end with a user message")

	// ErrEmptyResponse is returned when the model produced no text
	ErrEmptyResponse = errors.New("model returned an empty response")
)

func newBreaker(name string, metrics *telemetry.Metrics) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 5,
		Interval:    10 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
			metrics.RecordCircuitBreakerState(name, to.String())
		},
	})
}

// newLimiter allows rpm requests per minute with a small burst
func newLimiter(rpm int) *rate.Limiter {
	if rpm <= 0 {
		rpm = 60
	}
	burst := rpm / 10
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(float64(rpm)/60.0), burst)
}

// splitConversation separates a message list into the joined system
// instruction, the prior turns and the final user prompt.
func splitConversation(messages []models.Message) (system string, history []models.Message, prompt string, err error) {
	if len(messages) == 0 || messages[len(messages)-1].Role != models.RoleUser {
		return "", nil, "", ErrNoUserMessage
	}

	var systemParts []string
	history = make([]models.Message, 0, len(messages))
	for _, m := range messages[:len(messages)-1] {
		if m.Role == models.RoleSystem {
			systemParts = append(systemParts, m.Content)
			continue
		}
		history = append(history, m)
	}

	return strings.Join(systemParts, "\n\n"), history, messages[len(messages)-1].Content, nil
}
