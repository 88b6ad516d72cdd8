package chat

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrEmptySubmission      = errors.New("empty submission")
	ErrConcurrentSubmission = errors.New("submission while a reply is pending")
	ErrInvalidMessage       = errors.New("invalid message")
)

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

func (r Role) Valid() bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant:
		return true
	}
	return false
}

// Message is one conversational turn. Values are copied everywhere they go,
// so a stored message cannot be changed through a caller's copy.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

func (m Message) Validate() error {
	if !m.Role.Valid() {
		return fmt.Errorf("%w: unknown role %q", ErrInvalidMessage, m.Role)
	}
	if strings.TrimSpace(m.Content) == "" {
		return fmt.Errorf("%w: empty %s content", ErrInvalidMessage, m.Role)
	}
	return nil
}
