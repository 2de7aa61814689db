package models

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"docqa-chatbot/internal/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// AuditEvent is an immutable record of one chat request. It carries request
// metadata only, never message or reply text.
type AuditEvent struct {
	ID           string    `bson:"_id,omitempty"`
	Seq          int64     `bson:"seq"` // Position in the session's chain, starting at 1
	Timestamp    time.Time `bson:"timestamp"`
	StartedAt    time.Time `bson:"started_at"`
	RequestID    string    `bson:"request_id"`
	SessionID    string    `bson:"session_id"`
	Mode         string    `bson:"mode"`
	UseRAG       bool      `bson:"use_rag"`
	Sources      int       `bson:"sources"`
	Path         string    `bson:"path"`
	Status       int       `bson:"status"`
	LatencyMS    int64     `bson:"latency_ms"`
	IPAddress    string    `bson:"ip_address"`
	UserAgent    string    `bson:"user_agent"`
	Success      bool      `bson:"success"`
	ErrorCode    string    `bson:"error_code,omitempty"`
	PreviousHash string    `bson:"previous_hash"` // Hash of previous event in the session
	CurrentHash  string    `bson:"current_hash"`
}

// ComputeHash computes the hash of this audit event
func (e *AuditEvent) ComputeHash() string {
	data := fmt.Sprintf("%d|%s|%s|%s|%s|%s|%t|%d|%t|%s|%s",
		e.Seq,
		e.Timestamp.Format(time.RFC3339Nano),
		e.StartedAt.Format(time.RFC3339Nano),
		e.RequestID,
		e.SessionID,
		e.Mode,
		e.UseRAG,
		e.Status,
		e.Success,
		e.ErrorCode,
		e.PreviousHash,
	)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}

// AuditStore persists audit events. Events returns a session's events in
// ascending Seq order.
type AuditStore interface {
	Insert(ctx context.Context, event *AuditEvent) error
	Events(ctx context.Context, sessionID string) ([]AuditEvent, error)
}

type mongoAuditStore struct {
	col *mongo.Collection
}

// NewMongoAuditStore writes to collection in db. Indexes are created by
// config.ConnectMongoDB.
func NewMongoAuditStore(db *mongo.Database, collection string) AuditStore {
	return &mongoAuditStore{col: db.Collection(collection)}
}

func (s *mongoAuditStore) Insert(ctx context.Context, event *AuditEvent) error {
	_, err := s.col.InsertOne(ctx, event)
	return err
}

func (s *mongoAuditStore) Events(ctx context.Context, sessionID string) ([]AuditEvent, error) {
	cursor, err := s.col.Find(ctx,
		bson.M{"session_id": sessionID},
		options.Find().SetSort(bson.D{{Key: "seq", Value: 1}}),
	)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var events []AuditEvent
	if err := cursor.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}

type chainHead struct {
	seq  int64
	hash string
}

// AuditLogger appends hash-chained audit events to a store. Chain order is
// the order in which Log calls acquire the lock; Seq and Timestamp record it.
type AuditLogger struct {
	store   AuditStore
	timeout time.Duration
	mu      sync.Mutex
	heads   map[string]chainHead // sessionID -> last event
	wg      sync.WaitGroup
}

func NewAuditLogger(store AuditStore) *AuditLogger {
	return &AuditLogger{
		store:   store,
		timeout: 10 * time.Second,
		heads:   make(map[string]chainHead),
	}
}

// Log stores an audit event, chaining it to the session's previous event
func (al *AuditLogger) Log(ctx context.Context, event *AuditEvent) error {
	al.mu.Lock()
	defer al.mu.Unlock()

	head, ok := al.heads[event.SessionID]
	if !ok {
		// Resume a chain written before this process started
		stored, err := al.store.Events(ctx, event.SessionID)
		if err != nil {
			return fmt.Errorf("load audit chain: %w", err)
		}
		if n := len(stored); n > 0 {
			head = chainHead{seq: stored[n-1].Seq, hash: stored[n-1].CurrentHash}
		}
	}
	event.Seq = head.seq + 1
	event.PreviousHash = head.hash
	event.Timestamp = time.Now().UTC()
	event.ID = fmt.Sprintf("%s_%d_%s", event.SessionID, event.Seq, event.RequestID)
	event.CurrentHash = event.ComputeHash()

	if err := al.store.Insert(ctx, event); err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}

	al.heads[event.SessionID] = chainHead{seq: event.Seq, hash: event.CurrentHash}
	return nil
}

// LogAsync logs an audit event without blocking the request
func (al *AuditLogger) LogAsync(event *AuditEvent) {
	al.wg.Add(1)
	go func() {
		defer al.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), al.timeout)
		defer cancel()
		if err := al.Log(ctx, event); err != nil {
			logger.Error("Async audit logging failed", "request_id", event.RequestID, "error", err)
		}
	}()
}

// Wait blocks until pending async writes finish
func (al *AuditLogger) Wait() {
	al.wg.Wait()
}

// VerifyChain checks the hash chain of a session's audit events
func (al *AuditLogger) VerifyChain(ctx context.Context, sessionID string) (bool, error) {
	events, err := al.store.Events(ctx, sessionID)
	if err != nil {
		return false, err
	}

	var previousHash string
	for i, event := range events {
		if event.Seq != int64(i+1) || event.PreviousHash != previousHash || event.CurrentHash != event.ComputeHash() {
			logger.Warn("Audit chain broken", "session_id", sessionID, "event_id", event.ID)
			return false, nil
		}
		previousHash = event.CurrentHash
	}
	return true, nil
}
