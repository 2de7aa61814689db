package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds all application metrics. A nil *Metrics records nothing.
type Metrics struct {
	RequestCounter      metric.Int64Counter
	RequestDuration     metric.Float64Histogram
	ChatRequests        metric.Int64Counter
	ChatDuration        metric.Float64Histogram
	RetrievedChunks     metric.Int64Histogram
	TokensUsed          metric.Int64Counter
	CircuitBreakerState metric.Int64Counter
}

// InitMetrics initializes all application metrics
func InitMetrics() (*Metrics, error) {
	meter := otel.Meter("docqa-chatbot")

	requestCounter, err := meter.Int64Counter(
		"http.requests.total",
		metric.WithDescription("Total HTTP requests"),
	)
	if err != nil {
		return nil, err
	}

	requestDuration, err := meter.Float64Histogram(
		"http.request.duration",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	chatRequests, err := meter.Int64Counter(
		"chat.requests.total",
		metric.WithDescription("Chat requests by mode and outcome"),
	)
	if err != nil {
		return nil, err
	}

	chatDuration, err := meter.Float64Histogram(
		"chat.request.duration",
		metric.WithDescription("Chat pipeline duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	retrievedChunks, err := meter.Int64Histogram(
		"retrieval.chunks",
		metric.WithDescription("Chunks returned per retrieval"),
	)
	if err != nil {
		return nil, err
	}

	tokensUsed, err := meter.Int64Counter(
		"llm.tokens.used",
		metric.WithDescription("Total model tokens used"),
	)
	if err != nil {
		return nil, err
	}

	circuitBreakerState, err := meter.Int64Counter(
		"circuit_breaker.state_changes",
		metric.WithDescription("Circuit breaker state changes"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		RequestCounter:      requestCounter,
		RequestDuration:     requestDuration,
		ChatRequests:        chatRequests,
		ChatDuration:        chatDuration,
		RetrievedChunks:     retrievedChunks,
		TokensUsed:          tokensUsed,
		CircuitBreakerState: circuitBreakerState,
	}, nil
}

// RecordRequest records HTTP request metrics
func (m *Metrics) RecordRequest(method, path, status string, duration float64) {
	if m == nil {
		return
	}
	attrs := []attribute.KeyValue{
		attribute.String("http.method", method),
		attribute.String("http.path", path),
		attribute.String("http.status", status),
	}

	m.RequestCounter.Add(context.Background(), 1, metric.WithAttributes(attrs...))
	m.RequestDuration.Record(context.Background(), duration, metric.WithAttributes(attrs...))
}

// RecordChat records one chat pipeline run
func (m *Metrics) RecordChat(mode, outcome string, duration float64) {
	if m == nil {
		return
	}
	attrs := []attribute.KeyValue{
		attribute.String("chat.mode", mode),
		attribute.String("chat.outcome", outcome),
	}

	m.ChatRequests.Add(context.Background(), 1, metric.WithAttributes(attrs...))
	m.ChatDuration.Record(context.Background(), duration, metric.WithAttributes(attrs...))
}

// RecordRetrieval records how many chunks a query matched
func (m *Metrics) RecordRetrieval(chunks int) {
	if m == nil {
		return
	}
	m.RetrievedChunks.Record(context.Background(), int64(chunks))
}

// RecordTokensUsed records model token usage
func (m *Metrics) RecordTokensUsed(tokens int64, provider, model string) {
	if m == nil {
		return
	}
	attrs := []attribute.KeyValue{
		attribute.String("llm.provider", provider),
		attribute.String("llm.model", model),
	}

	m.TokensUsed.Add(context.Background(), tokens, metric.WithAttributes(attrs...))
}

// RecordCircuitBreakerState records circuit breaker state changes
func (m *Metrics) RecordCircuitBreakerState(service, state string) {
	if m == nil {
		return
	}
	attrs := []attribute.KeyValue{
		attribute.String("service", service),
		attribute.String("state", state),
	}

	m.CircuitBreakerState.Add(context.Background(), 1, metric.WithAttributes(attrs...))
}
