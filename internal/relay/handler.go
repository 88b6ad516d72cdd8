// Package relay serves the chat HTTP API consumed by the terminal client and
// forwards each conversation to an external LLM.
package relay

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"cocktailchat/internal/chat"
)

const (
	defaultUserID      = "default_user"
	defaultMaxBodySize = 1 << 20
)

// ChatResponse is the success body of POST /api/chat.
type ChatResponse struct {
	Message chat.Message     `json:"message"`
	Sources []map[string]any `json:"sources"`
}

type Handler struct {
	completer Completer
	limiter   *RateLimiter
	maxBody   int64
	logger    *slog.Logger
}

func NewHandler(completer Completer, limiter *RateLimiter, maxBody int64, logger *slog.Logger) *Handler {
	if maxBody <= 0 {
		maxBody = defaultMaxBodySize
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{completer: completer, limiter: limiter, maxBody: maxBody, logger: logger}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/health", h.Health)
	r.Post("/api/chat", h.Chat)
	r.Get("/api/chat/history/{userID}", h.History)
}

// Chat handles POST /api/chat.
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)

	var env chat.Envelope
	if err := json.NewDecoder(r.Body).Decode(&env); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			Error(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	hasUser := false
	for _, m := range env.Messages {
		if !m.Role.Valid() {
			Error(w, http.StatusBadRequest, "invalid message role")
			return
		}
		if m.Role == chat.RoleUser && strings.TrimSpace(m.Content) != "" {
			hasUser = true
		}
	}
	if !hasUser {
		Error(w, http.StatusBadRequest, "No user message found in the request")
		return
	}

	userID := strings.TrimSpace(env.UserID)
	if userID == "" {
		userID = defaultUserID
	}
	if h.limiter != nil && !h.limiter.Allow(userID) {
		Error(w, http.StatusTooManyRequests, "rate limit exceeded")
		return
	}

	content, err := h.completer.Complete(r.Context(), env.Messages)
	if err != nil {
		h.logger.Error("upstream completion failed", "user_id", userID, "messages", len(env.Messages), "error", err)
		Error(w, http.StatusBadGateway, "upstream model request failed")
		return
	}

	h.logger.Info("chat completed", "user_id", userID, "messages", len(env.Messages), "chars", len(content))
	JSON(w, http.StatusOK, ChatResponse{
		Message: chat.Message{Role: chat.RoleAssistant, Content: content},
	})
}

// History handles GET /api/chat/history/{userID}. Conversations are not
// kept server-side, so the list is always empty.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, []chat.Message{})
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}
