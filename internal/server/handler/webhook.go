package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/go-github/v73/github"

	"github.com/sevigo/code-sentry/internal/core"
)

const signatureHeader = "X-Hub-Signature-256"

// WebhookHandler is the entry point of the review pipeline. It authenticates
// the delivery, filters by event type and action, parses the payload and runs
// the review synchronously: the response carries the outcome of this
// delivery's analysis.
type WebhookHandler struct {
	verifier *SignatureVerifier
	job      core.Job
	logger   *slog.Logger
}

// NewWebhookHandler creates a new webhook handler.
func NewWebhookHandler(verifier *SignatureVerifier, job core.Job, logger *slog.Logger) *WebhookHandler {
	return &WebhookHandler{verifier: verifier, job: job, logger: logger}
}

// Handle processes one GitHub webhook delivery.
func (h *WebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		h.logger.Error("failed to read webhook body", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "could not read request body"})
		return
	}

	if !h.verifier.Verify(payload, r.Header.Get(signatureHeader)) {
		h.logger.Error("invalid webhook payload signature")
		writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "Invalid signature"})
		return
	}

	eventType := github.WebHookType(r)
	if eventType != "pull_request" {
		h.logger.Debug("ignoring webhook event type", "type", eventType)
		writeJSON(w, http.StatusOK, map[string]any{"message": "Ignored"})
		return
	}

	raw, err := github.ParseWebHook(eventType, payload)
	if err != nil {
		h.logger.Error("could not parse webhook payload", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "could not parse webhook payload"})
		return
	}
	prEvent, ok := raw.(*github.PullRequestEvent)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "unexpected payload type"})
		return
	}

	if !core.ReviewableAction(prEvent.GetAction()) {
		h.logger.Debug("ignoring pull request action", "action", prEvent.GetAction())
		writeJSON(w, http.StatusOK, map[string]any{"message": "Ignored"})
		return
	}

	event, err := core.EventFromPullRequest(prEvent)
	if err != nil {
		h.logger.Error("invalid pull request payload", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
		return
	}

	result, err := h.job.Run(r.Context(), event)
	if err != nil {
		h.logger.Error("review failed",
			"repo", event.RepoFullName, "pr", event.PRNumber, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "CI execution failed"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": result.Success()})
}

func writeJSON(w http.ResponseWriter, status int, body map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
