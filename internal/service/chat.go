package service

import "context"

// ChatMessage is one turn of an assistant conversation.
type ChatMessage struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// ChatStream streams an assistant reply chunk by chunk and returns the full
// text. No implementation ships with this module.
type ChatStream interface {
	Stream(ctx context.Context, messages []ChatMessage, onChunk func(string)) (string, error)
}
