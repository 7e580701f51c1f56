package github

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sevigo/code-sentry/internal/core"
)

// StatusContext distinguishes this bot's commit statuses from other checks
// reporting on the same SHA.
const StatusContext = "code-review/pre-commit"

// Commit status states understood by the GitHub status API.
const (
	StatePending = "pending"
	StateSuccess = "success"
	StateFailure = "failure"
	StateError   = "error"
)

// Reporter owns the two externally visible effects of a review: the commit
// status for the head SHA and the single marker-tagged PR comment.
type Reporter interface {
	// Pending marks checks as in progress before any heavy work starts.
	Pending(ctx context.Context, event *core.GitHubEvent) error
	// Error reports an environment failure for the head SHA.
	Error(ctx context.Context, event *core.GitHubEvent, description string) error
	// Report reconciles the bot comment and sets the final commit status.
	Report(ctx context.Context, event *core.GitHubEvent, result *core.ReviewResult) error
}

type reporter struct {
	client Client
	logger *slog.Logger
}

// NewReporter creates a Reporter on top of the given GitHub client.
func NewReporter(client Client, logger *slog.Logger) Reporter {
	return &reporter{client: client, logger: logger}
}

func (r *reporter) Pending(ctx context.Context, event *core.GitHubEvent) error {
	return r.client.SetStatus(ctx, event.RepoOwner, event.RepoName, event.HeadSHA,
		StatePending, "Running code quality checks")
}

func (r *reporter) Error(ctx context.Context, event *core.GitHubEvent, description string) error {
	return r.client.SetStatus(ctx, event.RepoOwner, event.RepoName, event.HeadSHA,
		StateError, description)
}

// Report deletes every existing marker-tagged comment, posts a fresh one only
// when there are findings, then sets the final status. Interleaved runs for
// the same PR converge to at most one live bot comment; when the run is clean
// the deletions alone communicate it, the single status context carries the
// pass.
func (r *reporter) Report(ctx context.Context, event *core.GitHubEvent, result *core.ReviewResult) error {
	if err := r.reconcileComments(ctx, event, result); err != nil {
		return err
	}

	if result.Success() {
		return r.client.SetStatus(ctx, event.RepoOwner, event.RepoName, event.HeadSHA,
			StateSuccess, "All checks passed")
	}
	return r.client.SetStatus(ctx, event.RepoOwner, event.RepoName, event.HeadSHA,
		StateFailure, fmt.Sprintf("Found %d issue(s)", len(result.Findings)))
}

func (r *reporter) reconcileComments(ctx context.Context, event *core.GitHubEvent, result *core.ReviewResult) error {
	comments, err := r.client.ListPRComments(ctx, event.RepoOwner, event.RepoName, event.PRNumber)
	if err != nil {
		return fmt.Errorf("failed to list PR comments: %w", err)
	}

	for _, c := range comments {
		if !strings.Contains(c.Body, core.BotMarker) {
			continue
		}
		// A single failed delete must not abort the review; the next
		// reconciliation retries it.
		if err := r.client.DeleteComment(ctx, event.RepoOwner, event.RepoName, c.ID); err != nil {
			r.logger.WarnContext(ctx, "failed to delete stale bot comment",
				"comment_id", c.ID, "error", err)
		}
	}

	if result.Success() {
		return nil
	}

	if err := r.client.CreateComment(ctx, event.RepoOwner, event.RepoName, event.PRNumber, result.RenderComment()); err != nil {
		return fmt.Errorf("failed to post review comment: %w", err)
	}
	return nil
}
