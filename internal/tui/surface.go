package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/textinput"

	"cocktailchat/internal/chat"
	"cocktailchat/internal/format"
)

type timelineEntry struct {
	role    chat.Role
	content format.Document
	at      time.Time
}

// chatSurface is the terminal side of a session: the timeline entries, the
// typing placeholder and the input buffer. Only the bubbletea loop touches it.
type chatSurface struct {
	entries []timelineEntry
	typing  bool
	follow  bool
	input   textinput.Model
}

func newChatSurface() *chatSurface {
	input := textinput.New()
	input.Prompt = "❯ "
	input.CharLimit = 4000
	input.Placeholder = "Ask about cocktails, ingredients, or a recommendation..."
	input.Focus()
	return &chatSurface{input: input}
}

func (s *chatSurface) AppendMessage(role chat.Role, content format.Document, at time.Time) {
	s.entries = append(s.entries, timelineEntry{role: role, content: content, at: at})
	s.follow = true
}

func (s *chatSurface) ShowTypingPlaceholder() {
	s.typing = true
	s.follow = true
}

func (s *chatSurface) RemoveTypingPlaceholder() {
	s.typing = false
}

func (s *chatSurface) ClearInputBuffer() {
	s.input.Reset()
}
