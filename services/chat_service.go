package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"docqa-chatbot/internal/logger"
	"docqa-chatbot/internal/telemetry"
	"docqa-chatbot/models"
	"docqa-chatbot/utils"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// ChatModel is the chat-completion capability: messages in, reply text out.
type ChatModel interface {
	Invoke(ctx context.Context, messages []models.Message) (string, error)
}

// Agent answers a message with its own session memory.
type Agent interface {
	ProcessMessage(ctx context.Context, sessionID, message string) (string, error)
}

// DocumentLoader makes sure the reference document is loaded
type DocumentLoader interface {
	EnsureLoaded(ctx context.Context) (string, error)
}

// Mode selects how a request is answered
type Mode int

const (
	ModeBasic Mode = iota
	ModeAgent
)

func (m Mode) String() string {
	switch m {
	case ModeAgent:
		return "agent"
	default:
		return "basic"
	}
}

// ParseMode maps the request's mode string; empty means basic.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "", "basic":
		return ModeBasic, nil
	case "agent":
		return ModeAgent, nil
	default:
		return ModeBasic, invalidInput(fmt.Sprintf("unknown mode %q", s))
	}
}

// ChatCommand is a validated chat request with defaults applied
type ChatCommand struct {
	Message   string
	UseRAG    bool
	SessionID string
	Mode      Mode
}

// NewChatCommand applies defaults to req and validates it.
func NewChatCommand(req models.ChatRequest) (ChatCommand, error) {
	if req.Message == "" {
		return ChatCommand{}, invalidInput("message is required and must be a non-empty string")
	}

	mode, err := ParseMode(req.Mode)
	if err != nil {
		return ChatCommand{}, err
	}

	cmd := ChatCommand{
		Message:   req.Message,
		UseRAG:    true,
		SessionID: req.SessionID,
		Mode:      mode,
	}
	if req.UseRAG != nil {
		cmd.UseRAG = *req.UseRAG
	}
	if cmd.SessionID == "" {
		cmd.SessionID = DefaultSessionID
	}
	return cmd, nil
}

// ChatResult is the reply and the chunk texts it was grounded on
type ChatResult struct {
	Reply   string
	Sources []string
}

// ChatServiceConfig wires the collaborators of a ChatService
type ChatServiceConfig struct {
	Documents    DocumentLoader
	Retriever    *Retriever
	Sessions     *SessionStore
	Model        ChatModel
	Agent        Agent
	ModelTimeout time.Duration
	Metrics      *telemetry.Metrics
}

// ChatService answers chat requests: retrieval, prompt composition, the
// model call and the session memory update.
type ChatService struct {
	docs         DocumentLoader
	retriever    *Retriever
	sessions     *SessionStore
	model        ChatModel
	agent        Agent
	modelTimeout time.Duration
	metrics      *telemetry.Metrics
}

// NewChatService creates a chat service
func NewChatService(cfg ChatServiceConfig) *ChatService {
	return &ChatService{
		docs:         cfg.Documents,
		retriever:    cfg.Retriever,
		sessions:     cfg.Sessions,
		model:        cfg.Model,
		agent:        cfg.Agent,
		modelTimeout: cfg.ModelTimeout,
		metrics:      cfg.Metrics,
	}
}

// Sessions exposes the session store
func (s *ChatService) Sessions() *SessionStore {
	return s.sessions
}

// Handle runs one request. Errors match ErrInvalidInput or
// ErrDownstreamFailure; on error the session memory is unchanged.
func (s *ChatService) Handle(ctx context.Context, cmd ChatCommand) (result *ChatResult, err error) {
	ctx, span := otel.Tracer("docqa-chatbot").Start(ctx, "chat.handle")
	defer span.End()

	start := time.Now()
	stage := StageCompose
	defer func() {
		if r := recover(); r != nil {
			result, err = nil, downstream(stage, fmt.Errorf("panic: %v", r))
		}
		outcome := "success"
		if err != nil {
			outcome = "error"
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		s.metrics.RecordChat(cmd.Mode.String(), outcome, time.Since(start).Seconds())
	}()

	if cmd.Message == "" {
		return nil, invalidInput("message is required and must be a non-empty string")
	}
	if cmd.SessionID == "" {
		cmd.SessionID = DefaultSessionID
	}

	span.SetAttributes(
		attribute.String("chat.session_id", cmd.SessionID),
		attribute.String("chat.mode", cmd.Mode.String()),
		attribute.Bool("chat.use_rag", cmd.UseRAG),
	)

	switch cmd.Mode {
	case ModeAgent:
		return s.handleAgent(ctx, cmd, &stage)
	case ModeBasic:
		return s.handleBasic(ctx, cmd, &stage)
	default:
		return nil, invalidInput(fmt.Sprintf("unknown mode %d", cmd.Mode))
	}
}

// handleAgent and handleBasic record the running stage in stage so a
// recovered panic is attributed to it.
func (s *ChatService) handleAgent(ctx context.Context, cmd ChatCommand, stage *string) (*ChatResult, error) {
	*stage = StageAgent
	if s.agent == nil {
		return nil, downstream(StageAgent, errors.New("agent capability is not configured"))
	}

	ctx, cancel := s.withModelTimeout(ctx)
	defer cancel()

	reply, err := s.agent.ProcessMessage(ctx, cmd.SessionID, cmd.Message)
	if err != nil {
		logger.Error("Agent request failed", "session_id", cmd.SessionID, "error", err)
		return nil, downstream(StageAgent, err)
	}

	return &ChatResult{Reply: reply, Sources: []string{}}, nil
}

func (s *ChatService) handleBasic(ctx context.Context, cmd ChatCommand, stage *string) (*ChatResult, error) {
	memory := s.sessions.GetOrCreate(cmd.SessionID)
	memory.Lock()
	defer memory.Unlock()

	history := memory.LoadHistory()

	*stage = StageRetrieval
	chunks, err := s.retrieve(ctx, cmd)
	if err != nil {
		logger.Error("Retrieval failed", "session_id", cmd.SessionID, "error", err)
		return nil, downstream(StageRetrieval, err)
	}

	*stage = StageCompose
	messages := ComposeMessages(cmd.UseRAG, chunks, history, cmd.Message)

	modelCtx, cancel := s.withModelTimeout(ctx)
	defer cancel()

	*stage = StageModel
	reply, err := s.model.Invoke(modelCtx, messages)
	if err != nil {
		logger.Error("Chat model request failed",
			"session_id", cmd.SessionID,
			"history_messages", len(history),
			"error", err,
		)
		return nil, downstream(StageModel, err)
	}

	memory.AppendTurn(cmd.Message, reply)

	sources := make([]string, len(chunks))
	for i, c := range chunks {
		sources[i] = c.Text
	}

	logger.Debug("Chat request answered",
		"session_id", cmd.SessionID,
		"use_rag", cmd.UseRAG,
		"sources", len(sources),
		"history_turns", len(history)/2,
	)
	return &ChatResult{Reply: reply, Sources: sources}, nil
}

// retrieve loads the document if needed and ranks it against the message.
// A missing document yields no chunks.
func (s *ChatService) retrieve(ctx context.Context, cmd ChatCommand) ([]models.Chunk, error) {
	if !cmd.UseRAG {
		return []models.Chunk{}, nil
	}

	if _, err := s.docs.EnsureLoaded(ctx); err != nil && !errors.Is(err, ErrSourceUnavailable) {
		return nil, err
	}

	chunks := s.retriever.Retrieve(cmd.Message)
	s.metrics.RecordRetrieval(len(chunks))
	return chunks, nil
}

func (s *ChatService) withModelTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.modelTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return utils.WithCustomTimeout(ctx, s.modelTimeout)
}
