package routes

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"docqa-chatbot/internal/agent"
	"docqa-chatbot/middleware"
	"docqa-chatbot/models"
	"docqa-chatbot/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeModel struct {
	reply string
	err   error
}

func (m *fakeModel) Invoke(context.Context, []models.Message) (string, error) {
	return m.reply, m.err
}

type fakeAgent struct{}

func (fakeAgent) ProcessMessage(_ context.Context, _, message string) (string, error) {
	return "agent: " + message, nil
}

type textSource struct {
	text string
	err  error
}

func (s textSource) ReadText(context.Context) (string, error) { return s.text, s.err }
func (s textSource) Name() string { return "test" }

func setupRouter(model services.ChatModel, src services.DocumentSource) (*gin.Engine, *services.ChatService) {
	return setupRouterWithAgent(model, src, fakeAgent{})
}

func setupRouterWithAgent(model services.ChatModel, src services.DocumentSource, chatAgent services.Agent) (*gin.Engine, *services.ChatService) {
	gin.SetMode(gin.TestMode)

	docs := services.NewDocumentCache(src, services.DefaultChunkSize)
	svc := services.NewChatService(services.ChatServiceConfig{
		Documents: docs,
		Retriever: services.NewRetriever(docs, services.DefaultTopK),
		Sessions:  services.NewSessionStore(),
		Model:     model,
		Agent:     chatAgent,
	})

	router := gin.New()
	router.Use(middleware.RequestIDMiddleware(), middleware.RequestSizeLimit(1024))
	SetupHealthRoutes(router, docs)
	SetupChatRoutes(router, svc)
	return router, svc
}

func postChat(router *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestChatSuccess(t *testing.T) {
	router, svc := setupRouter(&fakeModel{reply: "2 days per month"},
		textSource{text: "Vacation policy: employees accrue 2 days/month."})

	w := postChat(router, `{"message":"What is the vacation policy?","sessionId":"abc"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))

	var resp models.ChatResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "2 days per month", resp.Reply)
	assert.Equal(t, []string{"Vacation policy: employees accrue 2 days/month."}, resp.Sources)
	assert.Equal(t, 1, svc.Sessions().GetOrCreate("abc").Turns())
}

func TestChatSourcesAlwaysArray(t *testing.T) {
	router, _ := setupRouter(&fakeModel{reply: "hi"}, textSource{text: "anything"})

	w := postChat(router, `{"message":"Hello","useRAG":false}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"reply":"hi","sources":[]}`, w.Body.String())

	w = postChat(router, `{"message":"Hello","mode":"agent"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"reply":"agent: Hello","sources":[]}`, w.Body.String())
}

func TestChatInvalidInput(t *testing.T) {
	router, _ := setupRouter(&fakeModel{reply: "unused"}, textSource{})

	for name, body := range map[string]string{
		"missing message": `{}`,
		"empty message":   `{"message":""}`,
		"wrong type":      `{"message":42}`,
		"malformed json":  `{"message":`,
		"unknown mode":    `{"message":"hi","mode":"wizard"}`,
	} {
		t.Run(name, func(t *testing.T) {
			w := postChat(router, body)
			require.Equal(t, http.StatusBadRequest, w.Code)

			var resp models.ChatErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, "invalid_input", resp.Error)
			assert.NotEmpty(t, resp.Message)
			assert.Empty(t, resp.Reply)
		})
	}
}

func TestChatWhitespaceMessageAgreesAcrossModes(t *testing.T) {
	model := &fakeModel{reply: "ok"}
	router, _ := setupRouterWithAgent(model, textSource{text: "doc"}, agent.New(model))

	for _, mode := range []string{"basic", "agent"} {
		t.Run(mode, func(t *testing.T) {
			w := postChat(router, `{"message":"   ","mode":"`+mode+`"}`)
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())
			assert.JSONEq(t, `{"reply":"ok","sources":[]}`, w.Body.String())
		})
	}
}

func TestChatBodyTooLarge(t *testing.T) {
	router, _ := setupRouter(&fakeModel{reply: "ok"}, textSource{text: "doc"})

	body := `{"message":"` + strings.Repeat("a", 2048) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.ContentLength = -1
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	var resp models.ChatErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "request_too_large", resp.Error)
}

func TestChatDownstreamFailure(t *testing.T) {
	router, svc := setupRouter(&fakeModel{err: errors.New("quota exceeded")}, textSource{text: "doc"})

	w := postChat(router, `{"message":"Hello there"}`)
	require.Equal(t, http.StatusInternalServerError, w.Code)

	var resp models.ChatErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "downstream_failure", resp.Error)
	assert.Contains(t, resp.Message, "quota exceeded")
	assert.Equal(t, ApologyReply, resp.Reply)
	assert.Equal(t, 0, svc.Sessions().GetOrCreate(services.DefaultSessionID).Turns())
}

func TestHealthAndReady(t *testing.T) {
	router, _ := setupRouter(&fakeModel{}, textSource{text: "alpha beta"})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ready","document_loaded":true,"document_available":true,"chunks":1}`, w.Body.String())
}

func TestReadyMissingDocument(t *testing.T) {
	router, _ := setupRouter(&fakeModel{}, textSource{err: services.ErrSourceUnavailable})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ready","document_loaded":true,"document_available":false,"chunks":0}`, w.Body.String())
}

func TestReadyLoadError(t *testing.T) {
	router, _ := setupRouter(&fakeModel{}, textSource{err: errors.New("permission denied")})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
