// Package transport posts chat envelopes to the advisor backend and decodes
// its reply.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/muesli/reflow/truncate"

	"cocktailchat/internal/chat"
)

const (
	maxResponseBytes = 1 << 20
	bodyExcerptLen   = 240
)

var (
	errMissingContent = errors.New("response has no message.content")
	errEmptyContent   = errors.New("response message.content is empty")
	errTooLarge       = errors.New("response body exceeds 1 MiB")
)

type Client struct {
	endpoint string
	http     *http.Client
}

type Option func(*Client)

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func New(endpoint string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimSpace(endpoint))
	if err != nil {
		return nil, fmt.Errorf("parse endpoint: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("endpoint must be an absolute http(s) url, got %q", endpoint)
	}
	c := &Client{
		endpoint: u.String(),
		http:     &http.Client{Timeout: chat.DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) Endpoint() string { return c.endpoint }

type replyBody struct {
	Message *struct {
		Role    string  `json:"role"`
		Content *string `json:"content"`
	} `json:"message"`
}

// Send makes one POST with the envelope. It never retries.
func (c *Client) Send(ctx context.Context, env chat.Envelope) (chat.Message, error) {
	payload, err := json.Marshal(env)
	if err != nil {
		return chat.Message{}, fmt.Errorf("encode envelope: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return chat.Message{}, &Error{Kind: KindNetwork, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return chat.Message{}, &Error{Kind: KindNetwork, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// The excerpt is best effort; a failed read still reports the status.
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4*bodyExcerptLen))
		return chat.Message{}, &Error{Kind: KindStatus, Status: resp.StatusCode, Body: excerpt(body)}
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		return chat.Message{}, &Error{Kind: KindNetwork, Status: resp.StatusCode, Err: err}
	}
	if len(body) > maxResponseBytes {
		return chat.Message{}, &Error{Kind: KindMalformed, Status: resp.StatusCode, Err: errTooLarge}
	}

	var parsed replyBody
	if err := json.Unmarshal(body, &parsed); err != nil {
		return chat.Message{}, &Error{Kind: KindMalformed, Status: resp.StatusCode, Err: err}
	}
	if parsed.Message == nil || parsed.Message.Content == nil {
		return chat.Message{}, &Error{Kind: KindMalformed, Status: resp.StatusCode, Err: errMissingContent}
	}
	content := strings.TrimSpace(*parsed.Message.Content)
	if content == "" {
		return chat.Message{}, &Error{Kind: KindMalformed, Status: resp.StatusCode, Err: errEmptyContent}
	}
	return chat.Message{Role: chat.RoleAssistant, Content: content}, nil
}

func excerpt(body []byte) string {
	return truncate.StringWithTail(strings.Join(strings.Fields(string(body)), " "), bodyExcerptLen, "...")
}
