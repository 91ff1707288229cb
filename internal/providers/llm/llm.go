package llm

import "context"

// Message is one turn of the coaching conversation.
type Message struct {
	Role    string `json:"role"` // "user" | "assistant"
	Content string `json:"content"`
}

type Provider interface {
	// Respond generates a reply to prompt given prior conversation turns.
	Respond(ctx context.Context, history []Message, prompt string) (string, error)
	Close() error
}
