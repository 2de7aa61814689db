package services

import (
	"sync"
	"time"

	"docqa-chatbot/models"
)

// DefaultSessionID is used when a request carries no session id
const DefaultSessionID = "default"

// ConversationMemory is the append-only turn history of one session.
//
// Lock/Unlock give a request exclusive use of the session for its whole
// load-call-append sequence. LoadHistory and AppendTurn guard the message
// slice on their own, so they are safe without holding the session lock.
type ConversationMemory struct {
	session sync.Mutex

	mu        sync.RWMutex
	id        string
	messages  []models.Message
	createdAt time.Time
	updatedAt time.Time
}

func newConversationMemory(id string) *ConversationMemory {
	now := time.Now()
	return &ConversationMemory{
		id:        id,
		messages:  make([]models.Message, 0),
		createdAt: now,
		updatedAt: now,
	}
}

// Lock acquires exclusive use of the session
func (m *ConversationMemory) Lock() { m.session.Lock() }

// Unlock releases the session
func (m *ConversationMemory) Unlock() { m.session.Unlock() }

// ID returns the session id
func (m *ConversationMemory) ID() string { return m.id }

// LoadHistory returns a copy of all turns as alternating user and assistant
// messages, oldest first.
func (m *ConversationMemory) LoadHistory() []models.Message {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.Message, len(m.messages))
	copy(out, m.messages)
	return out
}

// AppendTurn records one completed exchange
func (m *ConversationMemory) AppendTurn(userText, assistantText string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages,
		models.Message{Role: models.RoleUser, Content: userText},
		models.Message{Role: models.RoleAssistant, Content: assistantText},
	)
	m.updatedAt = time.Now()
}

// Turns returns the number of stored exchanges
func (m *ConversationMemory) Turns() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.messages) / 2
}

// SessionStore maps session ids to their conversation memory. Entries are
// never evicted.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*ConversationMemory
}

// NewSessionStore creates an empty store
func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]*ConversationMemory)}
}

// GetOrCreate returns the memory for sessionID, creating it on first use.
func (s *SessionStore) GetOrCreate(sessionID string) *ConversationMemory {
	if sessionID == "" {
		sessionID = DefaultSessionID
	}

	s.mu.RLock()
	mem, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if ok {
		return mem
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if mem, ok := s.sessions[sessionID]; ok {
		return mem
	}
	mem = newConversationMemory(sessionID)
	s.sessions[sessionID] = mem
	return mem
}

// SessionStats summarises the store's size
type SessionStats struct {
	Sessions int
	Turns    int
}

// Stats counts sessions and stored turns
func (s *SessionStore) Stats() SessionStats {
	s.mu.RLock()
	mems := make([]*ConversationMemory, 0, len(s.sessions))
	for _, m := range s.sessions {
		mems = append(mems, m)
	}
	s.mu.RUnlock()

	stats := SessionStats{Sessions: len(mems)}
	for _, m := range mems {
		stats.Turns += m.Turns()
	}
	return stats
}
