package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"cocktailchat/internal/chat"
	"cocktailchat/internal/config"
	"cocktailchat/internal/transport"
	"cocktailchat/internal/tui"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.ParseClient(flag.CommandLine, os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, "cocktail-tui:", err)
		os.Exit(2)
	}

	logFile, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		fmt.Fprintln(os.Stderr, "cocktail-tui: open log file:", err)
		os.Exit(1)
	}
	defer logFile.Close()
	logger := slog.New(slog.NewJSONHandler(logFile, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	client, err := transport.New(cfg.Endpoint, transport.WithTimeout(cfg.Timeout))
	if err != nil {
		fmt.Fprintln(os.Stderr, "cocktail-tui:", err)
		os.Exit(2)
	}

	m := tui.New(client, tui.Config{
		Endpoint: client.Endpoint(),
		Chat: chat.Options{
			SessionID:     cfg.SessionID,
			Preamble:      cfg.Preamble,
			Timeout:       cfg.Timeout,
			HistoryWindow: cfg.HistoryWindow,
			Logger:        logger,
		},
	})
	logger.Info("cocktail-tui starting", "endpoint", client.Endpoint(), "timeout", cfg.Timeout.String(), "history_window", cfg.HistoryWindow)

	opts := []tea.ProgramOption{tea.WithMouseCellMotion()}
	if cfg.AltScreen {
		opts = append(opts, tea.WithAltScreen())
	}
	if _, err := tea.NewProgram(m, opts...).Run(); err != nil {
		logger.Error("fatal error", "error", err)
		fmt.Fprintln(os.Stderr, "fatal error:", err)
		os.Exit(1)
	}
}
