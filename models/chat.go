// models/chat.go
package models

// Role tags a message exchanged with the chat model.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is the unit exchanged with the chat capability
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Chunk is a word-aligned slice of the reference document.
// Index is the chunk's position in the document.
type Chunk struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

// ScoredChunk pairs a chunk with its term-match count for one query
type ScoredChunk struct {
	Chunk Chunk
	Score int
}

// ChatRequest is the body accepted by POST /chat.
// UseRAG is a pointer so an omitted flag can default to true.
type ChatRequest struct {
	Message   string `json:"message"`
	UseRAG    *bool  `json:"useRAG,omitempty"`
	SessionID string `json:"sessionId,omitempty"`
	Mode      string `json:"mode,omitempty"`
}

// ChatResponse is returned on success
type ChatResponse struct {
	Reply   string   `json:"reply"`
	Sources []string `json:"sources"`
}

// ChatErrorResponse is returned on failure
type ChatErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Reply   string `json:"reply"`
}
