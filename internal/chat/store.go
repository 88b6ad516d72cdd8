package chat

import (
	"fmt"
	"slices"
)

// Store is the ordered, append-only transcript of one session. It holds user
// and assistant turns only; the system preamble is added per request and never
// stored. A Store is owned by a single goroutine.
type Store struct {
	messages []Message
}

func NewStore() *Store {
	return &Store{}
}

func (s *Store) Append(m Message) error {
	if err := m.Validate(); err != nil {
		return err
	}
	if m.Role == RoleSystem {
		return fmt.Errorf("%w: system messages are not stored", ErrInvalidMessage)
	}
	s.messages = append(s.messages, m)
	return nil
}

func (s *Store) Snapshot() []Message {
	return slices.Clone(s.messages)
}

func (s *Store) Len() int {
	return len(s.messages)
}
