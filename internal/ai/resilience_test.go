package ai

import (
	"testing"

	"docqa-chatbot/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitConversation(t *testing.T) {
	system, history, prompt, err := splitConversation([]models.Message{
		{Role: models.RoleSystem, Content: "rule one"},
		{Role: models.RoleSystem, Content: "rule two"},
		{Role: models.RoleUser, Content: "q1"},
		{Role: models.RoleAssistant, Content: "a1"},
		{Role: models.RoleUser, Content: "q2"},
	})
	require.NoError(t, err)
	assert.Equal(t, "rule one\n\nrule two", system)
	assert.Equal(t, []models.Message{
		{Role: models.RoleUser, Content: "q1"},
		{Role: models.RoleAssistant, Content: "a1"},
	}, history)
	assert.Equal(t, "q2", prompt)
}

func TestSplitConversationRequiresTrailingUser(t *testing.T) {
	_, _, _, err := splitConversation(nil)
	assert.ErrorIs(t, err, ErrNoUserMessage)

	_, _, _, err = splitConversation([]models.Message{{Role: models.RoleUser, Content: "q"}, {Role: models.RoleAssistant, Content: "a"}})
	assert.ErrorIs(t, err, ErrNoUserMessage)
}

func TestToGeminiHistoryRoles(t *testing.T) {
	contents := toGeminiHistory([]models.Message{
		{Role: models.RoleUser, Content: "q"},
		{Role: models.RoleAssistant, Content: "a"},
	})
	require.Len(t, contents, 2)
	assert.Equal(t, "user", contents[0].Role)
	assert.Equal(t, "model", contents[1].Role)
}

func TestNewLimiterFloor(t *testing.T) {
	assert.Equal(t, 1, newLimiter(5).Burst())
	assert.Equal(t, 6, newLimiter(60).Burst())
	assert.Equal(t, 6, newLimiter(0).Burst())
}
