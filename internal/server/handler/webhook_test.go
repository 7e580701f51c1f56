package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/code-sentry/internal/core"
)

type fakeJob struct {
	called bool
	event  *core.GitHubEvent
	result *core.ReviewResult
	err    error
}

func (f *fakeJob) Run(_ context.Context, event *core.GitHubEvent) (*core.ReviewResult, error) {
	f.called = true
	f.event = event
	return f.result, f.err
}

func prPayload(action string) []byte {
	return []byte(fmt.Sprintf(`{
		"action": %q,
		"pull_request": {
			"number": 42,
			"base": {"ref": "main"},
			"head": {"sha": "abc123"}
		},
		"repository": {
			"name": "demo",
			"full_name": "octo/demo",
			"clone_url": "https://github.com/octo/demo.git",
			"owner": {"login": "octo"}
		}
	}`, action))
}

func deliver(t *testing.T, h *WebhookHandler, eventType, secret string, payload []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewReader(payload))
	req.Header.Set("X-GitHub-Event", eventType)
	if secret != "" {
		req.Header.Set("X-Hub-Signature-256", signPayload(secret, payload))
	}

	rec := httptest.NewRecorder()
	h.Handle(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHandleRejectsBadSignature(t *testing.T) {
	job := &fakeJob{}
	h := NewWebhookHandler(NewSignatureVerifier("topsecret", testLogger()), job, testLogger())

	rec := deliver(t, h, "pull_request", "wrong-secret", prPayload("opened"))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid signature", decodeBody(t, rec)["error"])
	assert.False(t, job.called, "an unauthenticated delivery must never start a review")
}

func TestHandleIgnoresOtherEventTypes(t *testing.T) {
	job := &fakeJob{}
	h := NewWebhookHandler(NewSignatureVerifier("topsecret", testLogger()), job, testLogger())

	rec := deliver(t, h, "issue_comment", "topsecret", []byte(`{"action":"created"}`))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Ignored", decodeBody(t, rec)["message"])
	assert.False(t, job.called)
}

func TestHandleIgnoresNonReviewableActions(t *testing.T) {
	for _, action := range []string{"closed", "reopened", "labeled"} {
		t.Run(action, func(t *testing.T) {
			job := &fakeJob{}
			h := NewWebhookHandler(NewSignatureVerifier("topsecret", testLogger()), job, testLogger())

			rec := deliver(t, h, "pull_request", "topsecret", prPayload(action))

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "Ignored", decodeBody(t, rec)["message"])
			assert.False(t, job.called)
		})
	}
}

func TestHandleMalformedPayload(t *testing.T) {
	job := &fakeJob{}
	h := NewWebhookHandler(NewSignatureVerifier("topsecret", testLogger()), job, testLogger())

	rec := deliver(t, h, "pull_request", "topsecret", []byte(`{"action": "opened"`))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.False(t, job.called)
}

func TestHandleIncompletePayload(t *testing.T) {
	job := &fakeJob{}
	h := NewWebhookHandler(NewSignatureVerifier("topsecret", testLogger()), job, testLogger())

	// Reviewable action, but no repository block.
	payload := []byte(`{"action":"opened","pull_request":{"number":42,"base":{"ref":"main"},"head":{"sha":"abc"}}}`)
	rec := deliver(t, h, "pull_request", "topsecret", payload)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.False(t, job.called)
}

func TestHandleRunsReview(t *testing.T) {
	result := &core.ReviewResult{}
	result.Add(core.Finding{File: "app.py", Line: 1, Column: 1, Code: "E501", Severity: core.SeverityError})
	job := &fakeJob{result: result}
	h := NewWebhookHandler(NewSignatureVerifier("topsecret", testLogger()), job, testLogger())

	rec := deliver(t, h, "pull_request", "topsecret", prPayload("synchronize"))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, decodeBody(t, rec)["success"])

	require.True(t, job.called)
	assert.Equal(t, "octo", job.event.RepoOwner)
	assert.Equal(t, "demo", job.event.RepoName)
	assert.Equal(t, 42, job.event.PRNumber)
	assert.Equal(t, "main", job.event.BaseRef)
	assert.Equal(t, "abc123", job.event.HeadSHA)
}

func TestHandleCleanReview(t *testing.T) {
	job := &fakeJob{result: &core.ReviewResult{}}
	h := NewWebhookHandler(NewSignatureVerifier("topsecret", testLogger()), job, testLogger())

	rec := deliver(t, h, "pull_request", "topsecret", prPayload("opened"))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decodeBody(t, rec)["success"])
}

func TestHandleReviewFailure(t *testing.T) {
	job := &fakeJob{err: errors.New("clone blew up")}
	h := NewWebhookHandler(NewSignatureVerifier("topsecret", testLogger()), job, testLogger())

	rec := deliver(t, h, "pull_request", "topsecret", prPayload("opened"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "CI execution failed", decodeBody(t, rec)["error"])
}

func TestHandleWithoutSecret(t *testing.T) {
	job := &fakeJob{result: &core.ReviewResult{}}
	h := NewWebhookHandler(NewSignatureVerifier("", testLogger()), job, testLogger())

	rec := deliver(t, h, "pull_request", "", prPayload("opened"))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, job.called)
}
