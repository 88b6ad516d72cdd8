package config

import (
	"errors"
	"flag"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"cocktailchat/internal/chat"
)

const defaultEndpoint = "http://127.0.0.1:8000/api/chat"

type Client struct {
	Endpoint      string
	Timeout       time.Duration
	HistoryWindow int
	SessionID     string
	Preamble      string
	LogFile       string
	AltScreen     bool
}

// ParseClient registers the client flags on fs and parses args.
func ParseClient(fs *flag.FlagSet, args []string) (Client, error) {
	cfg := Client{}
	timeoutSeconds := envOrInt("COCKTAIL_CHAT_TIMEOUT", int(chat.DefaultTimeout/time.Second))

	fs.StringVar(&cfg.Endpoint, "endpoint", envOr("COCKTAIL_CHAT_ENDPOINT", defaultEndpoint), "Chat backend URL")
	fs.IntVar(&timeoutSeconds, "timeout", timeoutSeconds, "Per-request timeout seconds")
	fs.IntVar(&cfg.HistoryWindow, "history-window", envOrInt("COCKTAIL_CHAT_HISTORY_WINDOW", 0), "Most recent messages sent per request (0 = all)")
	fs.StringVar(&cfg.SessionID, "session-id", envOr("COCKTAIL_CHAT_SESSION_ID", ""), "Fixed session id (default: generated)")
	fs.StringVar(&cfg.Preamble, "preamble", envOr("COCKTAIL_CHAT_PREAMBLE", chat.DefaultPreamble), "System preamble sent with every request")
	fs.StringVar(&cfg.LogFile, "log-file", envOr("COCKTAIL_TUI_LOG_FILE", filepath.Join(os.TempDir(), "cocktail-tui.log")), "Structured log file")
	fs.BoolVar(&cfg.AltScreen, "alt-screen", envOrBool("COCKTAIL_TUI_ALT_SCREEN", true), "Use alternate screen buffer")
	if err := fs.Parse(args); err != nil {
		return Client{}, err
	}

	cfg.Endpoint = strings.TrimSpace(cfg.Endpoint)
	cfg.Timeout = time.Duration(clampInt(timeoutSeconds, 1, 300)) * time.Second
	cfg.HistoryWindow = clampInt(cfg.HistoryWindow, 0, 10000)
	cfg.SessionID = strings.TrimSpace(cfg.SessionID)
	if strings.TrimSpace(cfg.Preamble) == "" {
		cfg.Preamble = chat.DefaultPreamble
	}
	return cfg, cfg.Validate()
}

func (c Client) Validate() error {
	u, err := url.Parse(c.Endpoint)
	if err != nil {
		return fmt.Errorf("endpoint: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("endpoint must be an absolute http(s) url, got %q", c.Endpoint)
	}
	if c.LogFile == "" {
		return errors.New("log file path is required")
	}
	return nil
}
