package services

import (
	"sort"
	"strings"
	"unicode/utf8"

	"docqa-chatbot/models"
)

// DefaultTopK is the number of chunks returned by Retrieve
const DefaultTopK = 3

// minTokenLength is the longest token that is still discarded
const minTokenLength = 3

var tokenPunctuation = strings.NewReplacer(
	".", "", ",", "", "?", "", "!", "", ";", "",
	":", "", "(", "", ")", "", `"`, "", "'", "",
)

// Tokenize lower-cases the query, splits it on whitespace, drops tokens of
// three characters or fewer and strips punctuation from the rest.
func Tokenize(query string) []string {
	fields := strings.Fields(strings.ToLower(query))
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if utf8.RuneCountInString(f) <= minTokenLength {
			continue
		}
		tok := tokenPunctuation.Replace(f)
		if tok == "" {
			continue
		}
		tokens = append(tokens, tok)
	}
	return tokens
}

// ScoreChunk counts non-overlapping occurrences of every token in the chunk.
// Matching is by substring, so "plan" also counts inside "planning".
func ScoreChunk(chunkText string, tokens []string) int {
	lower := strings.ToLower(chunkText)
	score := 0
	for _, tok := range tokens {
		score += strings.Count(lower, tok)
	}
	return score
}

// RankChunks scores every chunk, drops zero scores and orders the rest by
// score, highest first. Equal scores keep document order.
func RankChunks(chunks []models.Chunk, tokens []string) []models.ScoredChunk {
	scored := make([]models.ScoredChunk, 0)
	if len(tokens) == 0 {
		return scored
	}
	for _, c := range chunks {
		if s := ScoreChunk(c.Text, tokens); s > 0 {
			scored = append(scored, models.ScoredChunk{Chunk: c, Score: s})
		}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	return scored
}

// ChunkProvider exposes the chunk sequence a Retriever searches
type ChunkProvider interface {
	Chunks() []models.Chunk
}

// Retriever ranks document chunks against a query
type Retriever struct {
	chunks ChunkProvider
	topK   int
}

// NewRetriever creates a retriever returning at most topK chunks
func NewRetriever(chunks ChunkProvider, topK int) *Retriever {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &Retriever{chunks: chunks, topK: topK}
}

// Retrieve returns the best matching chunks for query, at most topK of them.
func (r *Retriever) Retrieve(query string) []models.Chunk {
	tokens := Tokenize(query)
	if len(tokens) == 0 {
		return []models.Chunk{}
	}

	ranked := RankChunks(r.chunks.Chunks(), tokens)
	if len(ranked) > r.topK {
		ranked = ranked[:r.topK]
	}

	out := make([]models.Chunk, len(ranked))
	for i, sc := range ranked {
		out[i] = sc.Chunk
	}
	return out
}
