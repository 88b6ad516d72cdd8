package transport

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"cocktailchat/internal/chat"
)

func testEnvelope() chat.Envelope {
	return chat.Envelope{
		Messages: []chat.Message{
			{Role: chat.RoleSystem, Content: chat.DefaultPreamble},
			{Role: chat.RoleUser, Content: "What's in a Negroni?"},
		},
		UserID: "user_abc",
	}
}

func newClient(t *testing.T, url string, opts ...Option) *Client {
	t.Helper()
	c, err := New(url, opts...)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return c
}

func TestSendPostsEnvelopeAndParsesReply(t *testing.T) {
	t.Parallel()
	var got chat.Envelope
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected json content type, got %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_, _ = w.Write([]byte(`{"message":{"role":"assistant","content":"Equal parts **gin**, **Campari** and **vermouth**."},"sources":null}`))
	}))
	defer srv.Close()

	reply, err := newClient(t, srv.URL).Send(context.Background(), testEnvelope())
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if reply.Role != chat.RoleAssistant || !strings.Contains(reply.Content, "**gin**") {
		t.Fatalf("unexpected reply %#v", reply)
	}
	if got.UserID != "user_abc" || len(got.Messages) != 2 || got.Messages[0].Role != chat.RoleSystem {
		t.Fatalf("unexpected request envelope %#v", got)
	}
}

func TestSendNon2xxIsStatusError(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := newClient(t, srv.URL).Send(context.Background(), testEnvelope())
	var terr *Error
	if !errors.As(err, &terr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if terr.Kind != KindStatus || terr.Status != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %#v", terr)
	}
	if !strings.Contains(terr.Body, "upstream down") {
		t.Fatalf("expected body excerpt, got %q", terr.Body)
	}
}

type brokenBody struct{}

func (brokenBody) Read([]byte) (int, error) { return 0, errors.New("connection reset") }
func (brokenBody) Close() error { return nil }

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func TestSendNon2xxWithUnreadableBodyIsStatusError(t *testing.T) {
	t.Parallel()
	hc := &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusBadGateway,
			Header:     http.Header{},
			Body:       brokenBody{},
			Request:    r,
		}, nil
	})}

	_, err := newClient(t, "http://advisor.test/api/chat", WithHTTPClient(hc)).Send(context.Background(), testEnvelope())
	var terr *Error
	if !errors.As(err, &terr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if terr.Kind != KindStatus || terr.Status != http.StatusBadGateway {
		t.Fatalf("expected status 502, got %#v", terr)
	}
}

func TestSendMalformedBodies(t *testing.T) {
	t.Parallel()
	bodies := []string{
		`not json`,
		`{}`,
		`{"message":{}}`,
		`{"message":{"content":"   "}}`,
		`{"answer":"hi"}`,
	}
	for _, body := range bodies {
		body := body
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(body))
		}))
		_, err := newClient(t, srv.URL).Send(context.Background(), testEnvelope())
		srv.Close()
		var terr *Error
		if !errors.As(err, &terr) || terr.Kind != KindMalformed {
			t.Fatalf("expected malformed error for %q, got %v", body, err)
		}
	}
}

func TestSendNetworkFailure(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := newClient(t, url).Send(context.Background(), testEnvelope())
	var terr *Error
	if !errors.As(err, &terr) || terr.Kind != KindNetwork {
		t.Fatalf("expected network error, got %v", err)
	}
}

func TestSendHonorsContextDeadline(t *testing.T) {
	t.Parallel()
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := newClient(t, srv.URL).Send(ctx, testEnvelope())
	var terr *Error
	if !errors.As(err, &terr) || terr.Kind != KindNetwork {
		t.Fatalf("expected network error, got %v", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded in chain, got %v", err)
	}
}

func TestNewRejectsRelativeEndpoint(t *testing.T) {
	t.Parallel()
	for _, endpoint := range []string{"", "/api/chat", "ftp://host/api/chat"} {
		if _, err := New(endpoint); err == nil {
			t.Fatalf("expected error for %q", endpoint)
		}
	}
}
