package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/muesli/reflow/truncate"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"cocktailchat/internal/chat"
	"cocktailchat/internal/config"
)

// Completer produces the assistant reply for a conversation.
type Completer interface {
	Complete(ctx context.Context, messages []chat.Message) (string, error)
}

// NewCompleter builds the upstream named by cfg.Provider.
func NewCompleter(cfg *config.Relay) (Completer, error) {
	switch cfg.Provider {
	case config.ProviderOllama:
		return NewOllama(cfg.BaseURL, cfg.Model, cfg.Temperature, cfg.Timeout), nil
	case config.ProviderOpenAI:
		return NewOpenAI(cfg.BaseURL, cfg.APIKey, cfg.Model, cfg.Temperature, cfg.MaxTokens, cfg.Timeout), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}

type Ollama struct {
	endpoint    string
	model       string
	temperature float64
	client      *http.Client
}

func NewOllama(baseURL, model string, temperature float64, timeout time.Duration) *Ollama {
	return &Ollama{
		endpoint:    strings.TrimRight(strings.TrimSpace(baseURL), "/") + "/api/chat",
		model:       model,
		temperature: temperature,
		client:      &http.Client{Timeout: max(time.Second, timeout)},
	}
}

func (o *Ollama) Complete(ctx context.Context, messages []chat.Message) (string, error) {
	body := map[string]any{
		"model":    o.model,
		"stream":   false,
		"messages": messages,
		"options":  map[string]any{"temperature": o.temperature},
	}
	buf, err := json.Marshal(body)
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.endpoint, bytes.NewReader(buf))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := o.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("ollama request failed on /api/chat: %w", err)
	}
	defer resp.Body.Close()
	payload, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("ollama http %d: %s", resp.StatusCode, truncate.StringWithTail(strings.Join(strings.Fields(string(payload)), " "), 240, "..."))
	}
	var parsed struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	}
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return "", errors.New("ollama returned non-json payload")
	}
	content := strings.TrimSpace(parsed.Message.Content)
	if content == "" {
		return "", errors.New("ollama returned empty response content")
	}
	return content, nil
}

// OpenAI talks to any OpenAI-compatible chat completions API.
type OpenAI struct {
	client      openai.Client
	model       string
	temperature float64
	maxTokens   int
}

func NewOpenAI(baseURL, apiKey, model string, temperature float64, maxTokens int, timeout time.Duration) *OpenAI {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithRequestTimeout(timeout),
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &OpenAI{
		client:      openai.NewClient(opts...),
		model:       model,
		temperature: temperature,
		maxTokens:   maxTokens,
	}
}

func (o *OpenAI) Complete(ctx context.Context, messages []chat.Message) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(o.model),
		Messages:    toOpenAIMessages(messages),
		Temperature: openai.Float(o.temperature),
		MaxTokens:   openai.Int(int64(o.maxTokens)),
	}
	completion, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai chat completion: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", errors.New("openai returned no choices")
	}
	content := strings.TrimSpace(completion.Choices[0].Message.Content)
	if content == "" {
		return "", errors.New("openai returned empty response content")
	}
	return content, nil
}

func toOpenAIMessages(messages []chat.Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case chat.RoleSystem:
			out = append(out, openai.SystemMessage(m.Content))
		case chat.RoleAssistant:
			out = append(out, openai.AssistantMessage(m.Content))
		default:
			out = append(out, openai.UserMessage(m.Content))
		}
	}
	return out
}
