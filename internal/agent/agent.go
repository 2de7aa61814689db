// Package agent is a conversational assistant with its own persona and its
// own per-session memory. It never sees the reference document.
package agent

import (
	"context"
	"errors"
	"sync"

	"docqa-chatbot/internal/logger"
	"docqa-chatbot/models"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// DefaultPersona is the agent's system instruction
const DefaultPersona = `You are a friendly, capable assistant. Think through the user's request step by step,
keep track of what was said earlier in this conversation, and give a clear, direct answer.
If you are unsure, say so instead of guessing.`

// DefaultWindow is how many past messages are sent with each request
const DefaultWindow = 20

var ErrEmptyMessage = errors.New("message is empty")

// ChatModel is the completion capability the agent runs on
type ChatModel interface {
	Invoke(ctx context.Context, messages []models.Message) (string, error)
}

type session struct {
	mu       sync.Mutex
	messages []models.Message
}

// Agent keeps one conversation per session ID.
type Agent struct {
	model   ChatModel
	persona string
	window  int

	mu       sync.Mutex
	sessions map[string]*session
}

type Option func(*Agent)

// WithPersona replaces the default system instruction
func WithPersona(persona string) Option {
	return func(a *Agent) { a.persona = persona }
}

// WithWindow limits the number of past messages sent to the model. The
// window is rounded down to whole exchanges so it always starts on a user turn.
func WithWindow(n int) Option {
	return func(a *Agent) {
		n -= n % 2
		if n > 0 {
			a.window = n
		}
	}
}

func New(model ChatModel, opts ...Option) *Agent {
	a := &Agent{
		model:    model,
		persona:  DefaultPersona,
		window:   DefaultWindow,
		sessions: make(map[string]*session),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Agent) session(id string) *session {
	a.mu.Lock()
	defer a.mu.Unlock()

	s, ok := a.sessions[id]
	if !ok {
		s = &session{}
		a.sessions[id] = s
	}
	return s
}

// ProcessMessage answers message in the context of the session's earlier
// exchanges. The exchange is remembered only when the model succeeds.
func (a *Agent) ProcessMessage(ctx context.Context, sessionID, message string) (string, error) {
	if message == "" {
		return "", ErrEmptyMessage
	}

	ctx, span := otel.Tracer("docqa-chatbot").Start(ctx, "agent.process")
	defer span.End()

	s := a.session(sessionID)
	s.mu.Lock()
	defer s.mu.Unlock()

	past := s.messages
	if len(past) > a.window {
		past = past[len(past)-a.window:]
	}
	span.SetAttributes(
		attribute.String("agent.session_id", sessionID),
		attribute.Int("agent.context_messages", len(past)),
	)

	prompt := make([]models.Message, 0, len(past)+2)
	prompt = append(prompt, models.Message{Role: models.RoleSystem, Content: a.persona})
	prompt = append(prompt, past...)
	prompt = append(prompt, models.Message{Role: models.RoleUser, Content: message})

	reply, err := a.model.Invoke(ctx, prompt)
	if err != nil {
		span.RecordError(err)
		return "", err
	}

	s.messages = append(s.messages,
		models.Message{Role: models.RoleUser, Content: message},
		models.Message{Role: models.RoleAssistant, Content: reply},
	)
	logger.Debug("Agent replied", "session_id", sessionID, "stored_messages", len(s.messages))
	return reply, nil
}

// History returns a copy of the session's stored messages
func (a *Agent) History(sessionID string) []models.Message {
	s := a.session(sessionID)
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Message, len(s.messages))
	copy(out, s.messages)
	return out
}
