package config

import (
	"fmt"
	"strings"
	"time"
)

const (
	ProviderOllama = "ollama"
	ProviderOpenAI = "openai"

	defaultOllamaBaseURL = "http://127.0.0.1:11434"
	defaultOllamaModel   = "llama3.2:3b"
	defaultOpenAIBaseURL = "https://api.openai.com/v1"
	defaultOpenAIModel   = "gpt-4o-mini"
)

// Relay configures the HTTP backend that forwards chat envelopes to an LLM.
type Relay struct {
	Port                string
	Provider            string
	BaseURL             string
	APIKey              string
	Model               string
	Temperature         float64
	MaxTokens           int
	Timeout             time.Duration
	AllowedOrigins      []string
	RateLimitRequests   int
	RateLimitWindow     time.Duration
	MaxRequestBodyBytes int64
}

// LoadRelay reads the relay configuration from the environment.
func LoadRelay() (*Relay, error) {
	provider := strings.ToLower(envOr("LLM_PROVIDER", ProviderOllama))
	baseURL, model := defaultOllamaBaseURL, defaultOllamaModel
	if provider == ProviderOpenAI {
		baseURL, model = defaultOpenAIBaseURL, defaultOpenAIModel
	}

	cfg := &Relay{
		Port:                envOr("PORT", "8000"),
		Provider:            provider,
		BaseURL:             strings.TrimRight(envOr("LLM_BASE_URL", baseURL), "/"),
		APIKey:              envOr("LLM_API_KEY", ""),
		Model:               envOr("LLM_MODEL", model),
		Temperature:         envOrFloat("LLM_TEMPERATURE", 0.7),
		MaxTokens:           envOrInt("LLM_MAX_TOKENS", 1000),
		Timeout:             time.Duration(clampInt(envOrInt("LLM_TIMEOUT_SECONDS", 60), 1, 600)) * time.Second,
		AllowedOrigins:      splitList(envOr("CORS_ALLOWED_ORIGINS", "*")),
		RateLimitRequests:   envOrInt("RATE_LIMIT_REQUESTS", 20),
		RateLimitWindow:     time.Duration(envOrInt("RATE_LIMIT_WINDOW_SECONDS", 60)) * time.Second,
		MaxRequestBodyBytes: int64(envOrInt("MAX_REQUEST_BODY_BYTES", 1<<20)),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Relay) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	switch c.Provider {
	case ProviderOllama:
	case ProviderOpenAI:
		if c.APIKey == "" {
			return fmt.Errorf("LLM_API_KEY is required for provider %q", c.Provider)
		}
	default:
		return fmt.Errorf("LLM_PROVIDER must be %q or %q, got %q", ProviderOllama, ProviderOpenAI, c.Provider)
	}
	if c.Model == "" {
		return fmt.Errorf("LLM_MODEL cannot be empty")
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("LLM_TEMPERATURE must be within [0, 2], got %v", c.Temperature)
	}
	if c.MaxTokens <= 0 {
		return fmt.Errorf("LLM_MAX_TOKENS must be > 0")
	}
	if len(c.AllowedOrigins) == 0 {
		return fmt.Errorf("CORS_ALLOWED_ORIGINS cannot be empty")
	}
	if c.RateLimitRequests <= 0 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be > 0")
	}
	if c.RateLimitWindow <= 0 {
		return fmt.Errorf("RATE_LIMIT_WINDOW_SECONDS must be > 0")
	}
	if c.MaxRequestBodyBytes <= 0 {
		return fmt.Errorf("MAX_REQUEST_BODY_BYTES must be > 0")
	}
	return nil
}

func (c *Relay) Addr() string {
	return ":" + c.Port
}
