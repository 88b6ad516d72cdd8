package relay

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"cocktailchat/internal/chat"
	"cocktailchat/internal/config"
)

func TestOllamaComplete(t *testing.T) {
	t.Parallel()
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`{"message":{"role":"assistant","content":"  Shake it.  "},"done":true}`))
	}))
	defer srv.Close()

	o := NewOllama(srv.URL+"/", "llama3.2:3b", 0.7, 5*time.Second)
	content, err := o.Complete(context.Background(), []chat.Message{{Role: chat.RoleUser, Content: "Daiquiri?"}})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if content != "Shake it." {
		t.Fatalf("unexpected content %q", content)
	}
	if got["model"] != "llama3.2:3b" || got["stream"] != false {
		t.Fatalf("unexpected request %#v", got)
	}
}

func TestOllamaCompleteErrors(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewOllama(srv.URL, "missing", 0.7, time.Second).Complete(context.Background(), []chat.Message{{Role: chat.RoleUser, Content: "hi"}})
	if err == nil || !strings.Contains(err.Error(), "ollama http 404") {
		t.Fatalf("expected http error, got %v", err)
	}
}

func TestOpenAIComplete(t *testing.T) {
	t.Parallel()
	var got struct {
		Model       string  `json:"model"`
		Temperature float64 `json:"temperature"`
		MaxTokens   int     `json:"max_tokens"`
		Messages    []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","created":1,"model":"m","choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"Try an Old Fashioned."}}]}`))
	}))
	defer srv.Close()

	o := NewOpenAI(srv.URL+"/v1", "sk-test", "meta-llama/Llama-3-8b-chat-hf", 0.7, 1000, 5*time.Second)
	content, err := o.Complete(context.Background(), []chat.Message{
		{Role: chat.RoleSystem, Content: chat.DefaultPreamble},
		{Role: chat.RoleAssistant, Content: chat.Greeting},
		{Role: chat.RoleUser, Content: "Something with whiskey?"},
	})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if content != "Try an Old Fashioned." {
		t.Fatalf("unexpected content %q", content)
	}
	if got.Model != "meta-llama/Llama-3-8b-chat-hf" || got.MaxTokens != 1000 || got.Temperature != 0.7 {
		t.Fatalf("unexpected request %#v", got)
	}
	if len(got.Messages) != 3 || got.Messages[0].Role != "system" || got.Messages[1].Role != "assistant" || got.Messages[2].Role != "user" {
		t.Fatalf("unexpected messages %#v", got.Messages)
	}
}

func TestNewCompleterSelectsProvider(t *testing.T) {
	t.Parallel()
	c, err := NewCompleter(&config.Relay{Provider: config.ProviderOllama, BaseURL: "http://127.0.0.1:11434", Model: "m", Timeout: time.Second})
	if err != nil {
		t.Fatalf("ollama: %v", err)
	}
	if _, ok := c.(*Ollama); !ok {
		t.Fatalf("expected *Ollama, got %T", c)
	}
	c, err = NewCompleter(&config.Relay{Provider: config.ProviderOpenAI, APIKey: "k", Model: "m", MaxTokens: 10, Timeout: time.Second})
	if err != nil {
		t.Fatalf("openai: %v", err)
	}
	if _, ok := c.(*OpenAI); !ok {
		t.Fatalf("expected *OpenAI, got %T", c)
	}
	if _, err := NewCompleter(&config.Relay{Provider: "other"}); err == nil {
		t.Fatalf("expected unknown provider error")
	}
}

func TestRateLimiterWindowSlides(t *testing.T) {
	t.Parallel()
	now := time.Unix(1_700_000_000, 0)
	rl := NewRateLimiter(2, time.Minute)
	rl.now = func() time.Time { return now }

	if !rl.Allow("u") || !rl.Allow("u") || rl.Allow("u") {
		t.Fatalf("expected two allowed then blocked")
	}
	now = now.Add(61 * time.Second)
	if !rl.Allow("u") {
		t.Fatalf("expected allowed after window")
	}
	now = now.Add(2 * time.Minute)
	rl.evict()
	if len(rl.requests) != 0 {
		t.Fatalf("expected expired keys evicted, got %d", len(rl.requests))
	}
}
