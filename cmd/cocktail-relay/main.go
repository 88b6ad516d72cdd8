package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"cocktailchat/internal/config"
	"cocktailchat/internal/relay"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.LoadRelay()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	completer, err := relay.NewCompleter(cfg)
	if err != nil {
		slog.Error("Failed to initialize upstream", "error", err)
		os.Exit(1)
	}
	slog.Info("Upstream ready", "provider", cfg.Provider, "model", cfg.Model, "base_url", cfg.BaseURL)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	limiter := relay.NewRateLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow)
	go limiter.RunEviction(ctx)

	handler := relay.NewHandler(completer, limiter, cfg.MaxRequestBodyBytes, logger)
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           relay.NewRouter(handler, cfg.AllowedOrigins, cfg.Timeout+5*time.Second),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	stop()

	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server stopped successfully")
}
