package server

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/sevigo/code-sentry/internal/config"
	"github.com/sevigo/code-sentry/internal/core"
	"github.com/sevigo/code-sentry/internal/server/handler"
)

// NewRouter creates and configures the HTTP router with middleware and
// routes. There is no request timeout middleware: reviews run synchronously
// inside the webhook request and clone/test durations vary widely.
func NewRouter(cfg *config.Config, job core.Job, logger *slog.Logger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	// Health reports which credentials are configured, never their values.
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status":         "ok",
			"github_token":   cfg.HasToken(),
			"webhook_secret": cfg.HasWebhookSecret(),
		})
	})

	verifier := handler.NewSignatureVerifier(cfg.WebhookSecret, logger)
	webhookHandler := handler.NewWebhookHandler(verifier, job, logger)
	r.Post("/webhook", webhookHandler.Handle)

	return r
}
