package services

import (
	"strings"

	"docqa-chatbot/models"
)

const (
	// GenericSystemPrompt is used when retrieval is disabled
	GenericSystemPrompt = "You are a helpful assistant. Answer the user's questions clearly and concisely."

	// RefusalSentence is what the model is told to say when nothing matched
	RefusalSentence = "I'm sorry, but I couldn't find any relevant information in the reference document to answer your question."

	ContextBeginMarker = "---BEGIN CONTEXT---"
	ContextEndMarker   = "---END CONTEXT---"
)

// BuildSystemPrompt returns the system instruction for one request
func BuildSystemPrompt(ragEnabled bool, chunks []models.Chunk) string {
	if !ragEnabled {
		return GenericSystemPrompt
	}

	if len(chunks) == 0 {
		var sb strings.Builder
		sb.WriteString("You are a helpful assistant that answers questions using a reference document. ")
		sb.WriteString("No relevant information was found in the reference document for this question. ")
		sb.WriteString("Politely decline by replying with exactly this sentence: \"")
		sb.WriteString(RefusalSentence)
		sb.WriteString("\"")
		return sb.String()
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	var sb strings.Builder
	sb.WriteString("You are a helpful assistant that answers questions using a reference document. ")
	sb.WriteString("Answer ONLY using the information between the context markers below. ")
	sb.WriteString("If the answer is not contained in the context, say that you don't know.\n\n")
	sb.WriteString(ContextBeginMarker)
	sb.WriteString("\n")
	sb.WriteString(strings.Join(texts, "\n\n"))
	sb.WriteString("\n")
	sb.WriteString(ContextEndMarker)
	return sb.String()
}

// ComposeMessages builds the message list for a basic-mode request:
// the system instruction, the prior turns in order, then the new message.
func ComposeMessages(ragEnabled bool, chunks []models.Chunk, history []models.Message, userMessage string) []models.Message {
	messages := make([]models.Message, 0, len(history)+2)
	messages = append(messages, models.Message{
		Role:    models.RoleSystem,
		Content: BuildSystemPrompt(ragEnabled, chunks),
	})
	messages = append(messages, history...)
	messages = append(messages, models.Message{Role: models.RoleUser, Content: userMessage})
	return messages
}
