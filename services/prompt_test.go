package services

import (
	"strings"
	"testing"

	"docqa-chatbot/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSystemPrompt(t *testing.T) {
	t.Run("rag disabled", func(t *testing.T) {
		prompt := BuildSystemPrompt(false, []models.Chunk{{Text: "ignored"}})
		assert.Equal(t, GenericSystemPrompt, prompt)
	})

	t.Run("rag without chunks asks for refusal", func(t *testing.T) {
		prompt := BuildSystemPrompt(true, nil)
		assert.Contains(t, prompt, RefusalSentence)
		assert.NotContains(t, prompt, ContextBeginMarker)
	})

	t.Run("rag with chunks embeds context", func(t *testing.T) {
		prompt := BuildSystemPrompt(true, []models.Chunk{{Text: "first chunk"}, {Text: "second chunk"}})
		assert.Contains(t, prompt, "ONLY")
		assert.Contains(t, prompt, ContextBeginMarker+"\nfirst chunk\n\nsecond chunk\n"+ContextEndMarker)
		assert.True(t, strings.HasSuffix(prompt, ContextEndMarker))
	})
}

func TestComposeMessagesOrder(t *testing.T) {
	history := []models.Message{
		{Role: models.RoleUser, Content: "earlier question"},
		{Role: models.RoleAssistant, Content: "earlier answer"},
	}

	msgs := ComposeMessages(false, nil, history, "new question")
	require.Len(t, msgs, 4)
	assert.Equal(t, models.RoleSystem, msgs[0].Role)
	assert.Equal(t, history, msgs[1:3])
	assert.Equal(t, models.Message{Role: models.RoleUser, Content: "new question"}, msgs[3])
}
