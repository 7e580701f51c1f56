// Package jobs implements the review pipeline executed for each webhook
// delivery.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sevigo/code-sentry/internal/analysis"
	"github.com/sevigo/code-sentry/internal/config"
	"github.com/sevigo/code-sentry/internal/core"
	"github.com/sevigo/code-sentry/internal/github"
	"github.com/sevigo/code-sentry/internal/gitutil"
)

// cloneTimeout bounds the git setup phase (clone, fetch, checkout). Analysis
// itself is not bounded here; a hung tool blocks only its own delivery.
const cloneTimeout = 2 * time.Minute

// ReviewJob runs the full review for one pull request event: pending status,
// workspace setup, diff scoping, analysis and reporting.
type ReviewJob struct {
	workspaces gitutil.Manager
	analyzer   analysis.Analyzer
	reporter   github.Reporter
	logger     *slog.Logger
}

// NewReviewJob creates a ReviewJob from its collaborators.
func NewReviewJob(workspaces gitutil.Manager, analyzer analysis.Analyzer, reporter github.Reporter, logger *slog.Logger) core.Job {
	if workspaces == nil {
		panic("workspace manager cannot be nil")
	}
	if analyzer == nil {
		panic("analyzer cannot be nil")
	}
	if reporter == nil {
		panic("reporter cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &ReviewJob{workspaces: workspaces, analyzer: analyzer, reporter: reporter, logger: logger}
}

// Run executes the review pipeline for a given event.
func (j *ReviewJob) Run(ctx context.Context, event *core.GitHubEvent) (*core.ReviewResult, error) {
	if err := j.validateInputs(event); err != nil {
		return nil, fmt.Errorf("input validation failed: %w", err)
	}

	j.logger.InfoContext(ctx, "starting review",
		"repo", event.RepoFullName, "pr", event.PRNumber, "sha", event.HeadSHA)

	// Reflect "checks in progress" before any heavy work. A reporting
	// failure here is logged, not fatal: the review itself can proceed.
	if err := j.reporter.Pending(ctx, event); err != nil {
		j.logger.ErrorContext(ctx, "failed to set pending status", "error", err)
	}

	result, err := j.review(ctx, event)
	if err != nil {
		if stErr := j.reporter.Error(ctx, event, "CI execution failed"); stErr != nil {
			j.logger.ErrorContext(ctx, "failed to set error status", "error", stErr)
		}
		return nil, err
	}

	// Reporting failures leave the delivery in a best-effort state; they
	// must not take the service down or mask the analysis result.
	if err := j.reporter.Report(ctx, event, result); err != nil {
		j.logger.ErrorContext(ctx, "failed to report review result",
			"repo", event.RepoFullName, "pr", event.PRNumber, "error", err)
	}

	j.logger.InfoContext(ctx, "review finished",
		"repo", event.RepoFullName, "pr", event.PRNumber,
		"success", result.Success(), "findings", len(result.Findings))
	return result, nil
}

// review materializes the workspace, scopes the diff and runs the analysis.
// The workspace is released on every exit path.
func (j *ReviewJob) review(ctx context.Context, event *core.GitHubEvent) (*core.ReviewResult, error) {
	ws, err := j.workspaces.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire workspace: %w", err)
	}
	defer ws.Release()

	gitCtx, cancel := context.WithTimeout(ctx, cloneTimeout)
	defer cancel()

	if err := ws.Clone(gitCtx, event.RepoCloneURL); err != nil {
		return nil, fmt.Errorf("failed to clone repository: %w", err)
	}
	if err := ws.FetchBase(gitCtx, event.BaseRef); err != nil {
		return nil, fmt.Errorf("failed to fetch base branch %q: %w", event.BaseRef, err)
	}
	if err := ws.Checkout(gitCtx, event.HeadSHA); err != nil {
		return nil, fmt.Errorf("failed to checkout %s: %w", event.HeadSHA, err)
	}

	repoCfg, err := config.LoadRepoConfig(ws.Path())
	if err != nil && !errors.Is(err, config.ErrConfigNotFound) {
		return nil, fmt.Errorf("failed to load repo config: %w", err)
	}

	changed, err := ws.ChangedFiles(event.BaseRef, event.HeadSHA)
	if err != nil {
		return nil, fmt.Errorf("failed to compute changed files: %w", err)
	}

	scoped := analysis.ScopeFiles(changed, repoCfg)
	j.logger.InfoContext(ctx, "scoped changed files",
		"changed", len(changed), "scoped", len(scoped))

	return j.analyzer.Run(ctx, ws.Path(), scoped)
}

// validateInputs ensures the event contains all required fields.
func (j *ReviewJob) validateInputs(event *core.GitHubEvent) error {
	if event == nil {
		return fmt.Errorf("event cannot be nil")
	}
	if event.RepoOwner == "" {
		return fmt.Errorf("repository owner cannot be empty")
	}
	if event.RepoName == "" {
		return fmt.Errorf("repository name cannot be empty")
	}
	if event.RepoCloneURL == "" {
		return fmt.Errorf("repository clone URL cannot be empty")
	}
	if event.PRNumber <= 0 {
		return fmt.Errorf("pull request number must be positive, got: %d", event.PRNumber)
	}
	if event.BaseRef == "" {
		return fmt.Errorf("base branch ref cannot be empty")
	}
	if event.HeadSHA == "" {
		return fmt.Errorf("head commit SHA cannot be empty")
	}
	return nil
}
