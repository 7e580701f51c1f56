// Package app wires the configuration, GitHub client, review pipeline and
// HTTP server together.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sevigo/code-sentry/internal/analysis"
	"github.com/sevigo/code-sentry/internal/config"
	"github.com/sevigo/code-sentry/internal/execx"
	"github.com/sevigo/code-sentry/internal/github"
	"github.com/sevigo/code-sentry/internal/gitutil"
	"github.com/sevigo/code-sentry/internal/jobs"
	"github.com/sevigo/code-sentry/internal/server"
)

// App holds the main application components.
type App struct {
	cfg    *config.Config
	server *server.Server
	logger *slog.Logger
}

// NewApp sets up the application with all its dependencies.
func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	ghClient, err := github.NewClient(ctx, cfg.GitHubToken, cfg.GitHubAPIURL, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create GitHub client: %w", err)
	}

	runner := execx.New(logger)
	workspaces := gitutil.NewManager(runner, logger)
	analyzer := analysis.NewRunner(runner, logger)
	reporter := github.NewReporter(ghClient, logger)
	reviewJob := jobs.NewReviewJob(workspaces, analyzer, reporter, logger)

	httpServer := server.New(ctx, cfg, reviewJob, logger)

	logger.Info("code-sentry initialized",
		"port", cfg.ServerPort,
		"github_token", cfg.HasToken(),
		"webhook_secret", cfg.HasWebhookSecret())

	return &App{cfg: cfg, server: httpServer, logger: logger}, nil
}

// Start runs the HTTP server and blocks until shutdown or error.
func (a *App) Start() error {
	return a.server.Start()
}

// Stop shuts down the application cleanly.
func (a *App) Stop() error {
	a.logger.Info("shutting down code-sentry")
	return a.server.Stop()
}
