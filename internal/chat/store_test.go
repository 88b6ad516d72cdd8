package chat

import (
	"errors"
	"strings"
	"testing"
)

func TestStoreRejectsInvalidMessages(t *testing.T) {
	s := NewStore()
	cases := []Message{
		{Role: RoleUser, Content: "  "},
		{Role: "bartender", Content: "hi"},
		{Role: RoleSystem, Content: "preamble"},
	}
	for _, m := range cases {
		if err := s.Append(m); !errors.Is(err, ErrInvalidMessage) {
			t.Fatalf("expected ErrInvalidMessage for %#v, got %v", m, err)
		}
	}
	if s.Len() != 0 {
		t.Fatalf("expected empty store, got %d", s.Len())
	}
}

func TestStoreSnapshotIsACopy(t *testing.T) {
	s := NewStore()
	_ = s.Append(Message{Role: RoleUser, Content: "one"})
	snap := s.Snapshot()
	snap[0].Content = "changed"
	if got := s.Snapshot()[0].Content; got != "one" {
		t.Fatalf("expected store unchanged, got %q", got)
	}
}

func TestBuildEnvelopeWindowKeepsMostRecent(t *testing.T) {
	history := []Message{
		{Role: RoleAssistant, Content: "greeting"},
		{Role: RoleUser, Content: "q1"},
		{Role: RoleAssistant, Content: "a1"},
	}
	env := BuildEnvelope("be helpful", history, Message{Role: RoleUser, Content: "q2"}, "user_x", 2)
	var got []string
	for _, m := range env.Messages {
		got = append(got, string(m.Role)+":"+m.Content)
	}
	want := "system:be helpful|user:q1|assistant:a1|user:q2"
	if strings.Join(got, "|") != want {
		t.Fatalf("expected %s, got %s", want, strings.Join(got, "|"))
	}
	if len(history) != 3 {
		t.Fatalf("history must not be truncated")
	}
}

func TestNewSessionIDPrefix(t *testing.T) {
	a, b := NewSessionID(), NewSessionID()
	if !strings.HasPrefix(a, "user_") || a == b {
		t.Fatalf("expected distinct user_ ids, got %q and %q", a, b)
	}
}
