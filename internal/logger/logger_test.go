package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"docqa-chatbot/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitWithWriterLevels(t *testing.T) {
	t.Cleanup(func() { Logger = nil })

	var buf bytes.Buffer
	initWithWriter(&config.Config{GinMode: "release"}, &buf)
	buf.Reset()

	Debug("hidden")
	Info("chat answered", "session_id", "s1")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "chat answered", entry["msg"])
	assert.Equal(t, "s1", entry["session_id"])
	assert.NotContains(t, entry, "source")
}

func TestHelpersWithoutLogger(t *testing.T) {
	Logger = nil
	assert.NotPanics(t, func() {
		Info("x")
		Warn("x")
		Error("x")
		Debug("x")
	})
}
