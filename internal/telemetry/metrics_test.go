package telemetry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitMetricsRecords(t *testing.T) {
	m, err := InitMetrics()
	require.NoError(t, err)

	assert.NotPanics(t, func() {
		m.RecordRequest("POST", "/chat", "success", 0.12)
		m.RecordChat("basic", "success", 0.1)
		m.RecordRetrieval(3)
		m.RecordTokensUsed(42, "gemini", "gemini-2.0-flash")
		m.RecordCircuitBreakerState("GeminiAPI", "open")
	})
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordRequest("GET", "/health", "success", 0)
		m.RecordChat("agent", "error", 0)
		m.RecordRetrieval(0)
		m.RecordTokensUsed(1, "openai", "gpt-4o-mini")
		m.RecordCircuitBreakerState("OpenAIAPI", "closed")
	})
}
