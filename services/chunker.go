package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"docqa-chatbot/internal/logger"
	"docqa-chatbot/models"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// DefaultChunkSize is the maximum chunk length in characters
const DefaultChunkSize = 800

// DocumentSource supplies the raw text of the reference document.
// Implementations return ErrSourceUnavailable when the document does not exist.
type DocumentSource interface {
	ReadText(ctx context.Context) (string, error)
	Name() string
}

// ChunkText greedily packs whitespace-delimited words into chunks of at most
// size characters. A single word longer than size becomes its own chunk.
func ChunkText(text string, size int) []models.Chunk {
	if size <= 0 {
		size = DefaultChunkSize
	}

	chunks := make([]models.Chunk, 0)
	var current strings.Builder
	currentLen := 0

	flush := func() {
		if currentLen == 0 {
			return
		}
		chunks = append(chunks, models.Chunk{Index: len(chunks), Text: current.String()})
		current.Reset()
		currentLen = 0
	}

	for _, word := range strings.Fields(text) {
		wordLen := utf8.RuneCountInString(word)
		if currentLen == 0 {
			current.WriteString(word)
			currentLen = wordLen
			continue
		}
		if currentLen+1+wordLen <= size {
			current.WriteByte(' ')
			current.WriteString(word)
			currentLen += 1 + wordLen
			continue
		}
		flush()
		current.WriteString(word)
		currentLen = wordLen
	}
	flush()

	return chunks
}

// DocumentCache loads the reference document once and keeps its chunks for
// the lifetime of the cache. Concurrent first calls share a single load.
type DocumentCache struct {
	source    DocumentSource
	chunkSize int

	mu        sync.RWMutex
	loaded    bool
	available bool
	text      string
	chunks    []models.Chunk
}

// NewDocumentCache creates a cache over source
func NewDocumentCache(source DocumentSource, chunkSize int) *DocumentCache {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &DocumentCache{
		source:    source,
		chunkSize: chunkSize,
	}
}

// EnsureLoaded reads and chunks the document on first use and returns the
// cached text afterwards. A missing document is cached as empty and reported
// through ErrSourceUnavailable only on the call that discovered it; other
// read errors are returned and the next call tries again.
func (dc *DocumentCache) EnsureLoaded(ctx context.Context) (string, error) {
	dc.mu.RLock()
	if dc.loaded {
		text := dc.text
		dc.mu.RUnlock()
		return text, nil
	}
	dc.mu.RUnlock()

	dc.mu.Lock()
	defer dc.mu.Unlock()
	if dc.loaded {
		return dc.text, nil
	}

	ctx, span := otel.Tracer("docqa-chatbot").Start(ctx, "document.load")
	defer span.End()

	start := time.Now()
	text, err := dc.source.ReadText(ctx)
	if err != nil {
		if errors.Is(err, ErrSourceUnavailable) {
			dc.loaded = true
			dc.chunks = []models.Chunk{}
			span.SetAttributes(attribute.Bool("document.available", false))
			logger.Warn("Reference document not found, retrieval will be empty", "source", dc.source.Name())
			return "", err
		}
		span.RecordError(err)
		return "", err
	}

	dc.text = text
	dc.chunks = ChunkText(text, dc.chunkSize)
	dc.available = true
	dc.loaded = true

	span.SetAttributes(
		attribute.Bool("document.available", true),
		attribute.Int("document.chars", utf8.RuneCountInString(text)),
		attribute.Int("document.chunks", len(dc.chunks)),
	)
	logger.Info("Reference document loaded",
		"source", dc.source.Name(),
		"chunks", len(dc.chunks),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return dc.text, nil
}

// Chunks returns the cached chunk sequence, empty before the first load.
// The returned slice must not be modified.
func (dc *DocumentCache) Chunks() []models.Chunk {
	dc.mu.RLock()
	defer dc.mu.RUnlock()
	return dc.chunks
}

// Status reports whether a load has happened, whether the document existed,
// and how many chunks it produced.
func (dc *DocumentCache) Status() (loaded, available bool, chunks int) {
	dc.mu.RLock()
	defer dc.mu.RUnlock()
	return dc.loaded, dc.available, len(dc.chunks)
}
