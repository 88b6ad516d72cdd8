package chat

import (
	"strings"

	"github.com/google/uuid"
)

// Envelope is the stateless request body sent to the backend on every turn.
type Envelope struct {
	Messages []Message `json:"messages"`
	UserID   string    `json:"user_id"`
}

// BuildEnvelope lays out [preamble] + history + next. A positive window keeps
// only the most recent window history entries; zero sends everything.
func BuildEnvelope(preamble string, history []Message, next Message, userID string, window int) Envelope {
	if window > 0 && len(history) > window {
		history = history[len(history)-window:]
	}
	messages := make([]Message, 0, len(history)+2)
	if p := strings.TrimSpace(preamble); p != "" {
		messages = append(messages, Message{Role: RoleSystem, Content: p})
	}
	messages = append(messages, history...)
	messages = append(messages, next)
	return Envelope{Messages: messages, UserID: userID}
}

// NewSessionID returns an identifier used as user_id for the life of the process.
func NewSessionID() string {
	return "user_" + uuid.NewString()
}
