package chat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"cocktailchat/internal/format"
)

const (
	DefaultPreamble = "You are a Cocktail Advisor, an expert in cocktails and mixed drinks."
	Greeting        = "Hello! I'm your Cocktail Advisor. You can ask me about cocktails, their ingredients, or get recommendations. What would you like to know today?"
	FallbackNotice  = "Sorry, I encountered an error processing your request. Please try again."
	DefaultTimeout  = 30 * time.Second
)

type State int

const (
	StateIdle State = iota
	StateAwaiting
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaiting:
		return "awaiting"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Surface is where the conversation is shown. Implementations are called
// from the goroutine that owns the Controller.
type Surface interface {
	AppendMessage(role Role, content format.Document, at time.Time)
	ShowTypingPlaceholder()
	RemoveTypingPlaceholder()
	ClearInputBuffer()
}

// Sender performs one request/response exchange with the backend.
type Sender interface {
	Send(ctx context.Context, env Envelope) (Message, error)
}

type Options struct {
	SessionID     string
	Preamble      string
	Timeout       time.Duration
	HistoryWindow int
	Logger        *slog.Logger
	Now           func() time.Time
}

// Exchange is an accepted submission waiting for its reply.
type Exchange struct {
	Seq      uint64
	Envelope Envelope
}

// Outcome is the result of Call, handed back to Resolve on the owning goroutine.
type Outcome struct {
	Seq     uint64
	Reply   Message
	Err     error
	Elapsed time.Duration
}

type Stats struct {
	Turns       int
	Replies     int
	Failures    int
	LastError   string
	LastLatency time.Duration
}

// Controller runs the Idle/Awaiting session lifecycle. Submit and Resolve
// mutate state and must run on one goroutine; Call reads only fields fixed at
// construction and may run anywhere.
type Controller struct {
	sender  Sender
	surface Surface
	store   *Store

	sessionID string
	preamble  string
	timeout   time.Duration
	window    int
	logger    *slog.Logger
	now       func() time.Time

	state   State
	seq     uint64
	greeted bool
	stats   Stats
}

func NewController(sender Sender, surface Surface, opts Options) *Controller {
	c := &Controller{
		sender:    sender,
		surface:   surface,
		store:     NewStore(),
		sessionID: strings.TrimSpace(opts.SessionID),
		preamble:  opts.Preamble,
		timeout:   opts.Timeout,
		window:    opts.HistoryWindow,
		logger:    opts.Logger,
		now:       opts.Now,
	}
	if c.sessionID == "" {
		c.sessionID = NewSessionID()
	}
	if strings.TrimSpace(c.preamble) == "" {
		c.preamble = DefaultPreamble
	}
	if c.timeout <= 0 {
		c.timeout = DefaultTimeout
	}
	if c.window < 0 {
		c.window = 0
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	if c.now == nil {
		c.now = time.Now
	}
	return c
}

// Greet stores and shows the opening assistant message. Only the first call has an effect.
func (c *Controller) Greet() {
	if c.greeted {
		return
	}
	c.greeted = true
	msg := Message{Role: RoleAssistant, Content: Greeting}
	if err := c.store.Append(msg); err != nil {
		c.logger.Error("greeting rejected", "error", err)
		return
	}
	c.surface.AppendMessage(RoleAssistant, format.Parse(msg.Content), c.now())
}

// Submit accepts a user turn. Empty text and submissions while a reply is
// pending are rejected without touching the store or the surface.
func (c *Controller) Submit(text string) (Exchange, error) {
	content := strings.TrimSpace(text)
	if content == "" {
		return Exchange{}, ErrEmptySubmission
	}
	if c.state == StateAwaiting {
		return Exchange{}, ErrConcurrentSubmission
	}

	msg := Message{Role: RoleUser, Content: content}
	// Snapshot before appending: the new turn goes out once, after the history.
	history := c.store.Snapshot()
	if err := c.store.Append(msg); err != nil {
		return Exchange{}, err
	}
	c.surface.AppendMessage(RoleUser, format.Literal(content), c.now())
	c.surface.ClearInputBuffer()
	c.surface.ShowTypingPlaceholder()

	c.seq++
	c.state = StateAwaiting
	c.stats.Turns++
	return Exchange{
		Seq:      c.seq,
		Envelope: BuildEnvelope(c.preamble, history, msg, c.sessionID, c.window),
	}, nil
}

// Call sends the exchange and waits for the reply or the configured timeout.
func (c *Controller) Call(ctx context.Context, ex Exchange) Outcome {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	started := time.Now()
	reply, err := c.sender.Send(ctx, ex.Envelope)
	out := Outcome{Seq: ex.Seq, Elapsed: time.Since(started)}
	if err != nil {
		out.Err = err
		return out
	}
	reply.Role = RoleAssistant
	if err := reply.Validate(); err != nil {
		out.Err = fmt.Errorf("reply: %w", err)
		return out
	}
	out.Reply = reply
	return out
}

// Resolve applies an outcome from Call. It reports false when the outcome does
// not belong to the pending exchange.
func (c *Controller) Resolve(out Outcome) bool {
	if c.state != StateAwaiting || out.Seq != c.seq {
		c.logger.Warn("stale chat outcome ignored", "session_id", c.sessionID, "seq", out.Seq, "pending_seq", c.seq)
		return false
	}
	c.surface.RemoveTypingPlaceholder()
	c.state = StateIdle
	c.stats.LastLatency = out.Elapsed

	if out.Err == nil {
		msg := Message{Role: RoleAssistant, Content: out.Reply.Content}
		if err := c.store.Append(msg); err != nil {
			out.Err = err
		} else {
			c.stats.Replies++
			c.surface.AppendMessage(RoleAssistant, format.Parse(msg.Content), c.now())
			c.logger.Info("chat reply received",
				"session_id", c.sessionID,
				"seq", out.Seq,
				"elapsed_ms", out.Elapsed.Milliseconds(),
				"chars", len(msg.Content),
			)
			return true
		}
	}

	c.stats.Failures++
	c.stats.LastError = out.Err.Error()
	c.logger.Error("chat exchange failed",
		"session_id", c.sessionID,
		"seq", out.Seq,
		"elapsed_ms", out.Elapsed.Milliseconds(),
		"error", out.Err,
	)
	c.surface.AppendMessage(RoleAssistant, format.Literal(FallbackNotice), c.now())
	return true
}

func (c *Controller) State() State { return c.state }
func (c *Controller) SessionID() string { return c.sessionID }
func (c *Controller) Transcript() []Message { return c.store.Snapshot() }
func (c *Controller) Stats() Stats { return c.stats }
func (c *Controller) Timeout() time.Duration { return c.timeout }
func (c *Controller) HistoryWindow() int { return c.window }
