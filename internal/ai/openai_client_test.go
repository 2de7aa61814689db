package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"docqa-chatbot/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type completionRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func newCompletionServer(t *testing.T, status int, reply string, seen *completionRequest) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		if seen != nil {
			assert.NoError(t, json.NewDecoder(r.Body).Decode(seen))
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			w.Write([]byte(`{"error":{"message":"upstream unavailable","type":"server_error"}}`))
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"created": 1700000000,
			"model":   "gpt-4o-mini",
			"choices": []map[string]any{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": reply},
			}},
			"usage": map[string]any{"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestOpenAIClientInvoke(t *testing.T) {
	var seen completionRequest
	srv := newCompletionServer(t, http.StatusOK, " Refunds take 30 days. ", &seen)
	client := NewOpenAIClient("sk-test", "gpt-4o-mini", srv.URL+"/", 600, nil)

	reply, err := client.Invoke(context.Background(), []models.Message{
		{Role: models.RoleSystem, Content: "answer from context"},
		{Role: models.RoleUser, Content: "earlier"},
		{Role: models.RoleAssistant, Content: "earlier answer"},
		{Role: models.RoleUser, Content: "How long do refunds take?"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Refunds take 30 days.", reply)

	assert.Equal(t, "gpt-4o-mini", seen.Model)
	require.Len(t, seen.Messages, 4)
	roles := []string{seen.Messages[0].Role, seen.Messages[1].Role, seen.Messages[2].Role, seen.Messages[3].Role}
	assert.Equal(t, []string{"system", "user", "assistant", "user"}, roles)
	assert.Equal(t, "How long do refunds take?", seen.Messages[3].Content)
}

func TestOpenAIClientServerError(t *testing.T) {
	srv := newCompletionServer(t, http.StatusServiceUnavailable, "", nil)
	client := NewOpenAIClient("sk-test", "gpt-4o-mini", srv.URL+"/", 600, nil)

	_, err := client.Invoke(context.Background(), []models.Message{{Role: models.RoleUser, Content: "hi"}})
	assert.Error(t, err)
}

func TestOpenAIClientEmptyReply(t *testing.T) {
	srv := newCompletionServer(t, http.StatusOK, "   ", nil)
	client := NewOpenAIClient("sk-test", "gpt-4o-mini", srv.URL+"/", 600, nil)

	_, err := client.Invoke(context.Background(), []models.Message{{Role: models.RoleUser, Content: "hi"}})
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestOpenAIClientRequiresUserMessage(t *testing.T) {
	client := NewOpenAIClient("sk-test", "gpt-4o-mini", "http://127.0.0.1:1/", 600, nil)
	_, err := client.Invoke(context.Background(), []models.Message{{Role: models.RoleSystem, Content: "x"}})
	assert.ErrorIs(t, err, ErrNoUserMessage)
}
