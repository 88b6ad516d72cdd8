package transport

import (
	"fmt"
	"log/slog"
)

type Kind int

const (
	KindNetwork Kind = iota + 1
	KindStatus
	KindMalformed
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindStatus:
		return "status"
	case KindMalformed:
		return "malformed"
	default:
		return "unknown"
	}
}

// Error describes why an exchange failed. Body carries a short excerpt of a
// non-2xx response for logs and diagnostics.
type Error struct {
	Kind   Kind
	Status int
	Body   string
	Err    error
}

func (e *Error) Error() string {
	switch {
	case e.Kind == KindStatus:
		if e.Body != "" {
			return fmt.Sprintf("chat endpoint http %d: %s", e.Status, e.Body)
		}
		return fmt.Sprintf("chat endpoint http %d", e.Status)
	case e.Err != nil:
		return fmt.Sprintf("chat endpoint %s error: %v", e.Kind, e.Err)
	default:
		return fmt.Sprintf("chat endpoint %s error", e.Kind)
	}
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) LogValue() slog.Value {
	attrs := []slog.Attr{slog.String("kind", e.Kind.String())}
	if e.Status != 0 {
		attrs = append(attrs, slog.Int("status", e.Status))
	}
	if e.Body != "" {
		attrs = append(attrs, slog.String("body", e.Body))
	}
	if e.Err != nil {
		attrs = append(attrs, slog.String("cause", e.Err.Error()))
	}
	return slog.GroupValue(attrs...)
}
