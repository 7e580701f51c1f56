package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/sevigo/code-sentry/internal/analysis"
	"github.com/sevigo/code-sentry/internal/config"
	"github.com/sevigo/code-sentry/internal/core"
	"github.com/sevigo/code-sentry/internal/execx"
	"github.com/sevigo/code-sentry/internal/logger"
)

var (
	titleColor   = color.New(color.FgCyan, color.Bold)
	successColor = color.New(color.FgGreen)
	warnColor    = color.New(color.FgYellow)
	errorColor   = color.New(color.FgRed)
	dimColor     = color.New(color.FgHiBlack)
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Run the bot's checks locally against the last commit",
	Long: `Run the same lint, format and test checks the webhook service applies to
pull requests, scoped to the files changed in the last commit of the current
repository.

Examples:
  code-sentry review
  code-sentry review --verbose`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runLocalReview,
}

func init() { //nolint:gochecknoinits // Cobra command registration
	rootCmd.AddCommand(reviewCmd)
}

func runLocalReview(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	level := "warn"
	if verbose {
		level = "debug"
	}
	log := logger.New(level, "text", os.Stderr)
	runner := execx.New(log)

	root, err := repoRoot(ctx, runner)
	if err != nil {
		return err
	}

	changed, err := lastCommitFiles(ctx, runner, root)
	if err != nil {
		return err
	}

	repoCfg, err := config.LoadRepoConfig(root)
	if err != nil && !errors.Is(err, config.ErrConfigNotFound) {
		return err
	}
	scoped := analysis.ScopeFiles(changed, repoCfg)

	titleColor.Println("🔍 Running code quality checks...")
	if len(scoped) == 0 {
		successColor.Println("✅ No relevant files changed")
		return nil
	}
	dimColor.Printf("Checking %d file(s): %s\n", len(scoped), strings.Join(scoped, ", "))

	result, err := analysis.NewRunner(runner, log).Run(ctx, root, scoped)
	if err != nil {
		return err
	}

	printSummary(result)
	if !result.Success() {
		return fmt.Errorf("found %d issue(s)", len(result.Findings))
	}
	return nil
}

// repoRoot resolves the top-level directory of the current git repository.
func repoRoot(ctx context.Context, runner execx.Runner) (string, error) {
	res, err := runner.Run(ctx, ".", "git", "rev-parse", "--show-toplevel")
	if err != nil {
		return "", err
	}
	if res.ExitCode != 0 {
		return "", fmt.Errorf("not inside a git repository: %s", strings.TrimSpace(res.Stderr))
	}
	return strings.TrimSpace(res.Stdout), nil
}

// lastCommitFiles lists files changed by the last commit that still exist in
// the worktree.
func lastCommitFiles(ctx context.Context, runner execx.Runner, root string) ([]string, error) {
	res, err := runner.Run(ctx, root, "git", "diff", "--name-only", "HEAD~1", "HEAD")
	if err != nil {
		return nil, err
	}
	if res.ExitCode != 0 {
		return nil, fmt.Errorf("git diff failed: %s", strings.TrimSpace(res.Stderr))
	}

	var files []string
	for _, f := range strings.Split(strings.TrimSpace(res.Stdout), "\n") {
		if f == "" {
			continue
		}
		if _, statErr := os.Stat(filepath.Join(root, f)); statErr == nil {
			files = append(files, f)
		}
	}
	return files, nil
}

func printSummary(result *core.ReviewResult) {
	if result.Success() {
		successColor.Println("\n✅ All checks passed!")
		return
	}

	errorColor.Printf("\n❌ Found %d issue(s):\n", len(result.Findings))
	for _, f := range result.Findings {
		line := fmt.Sprintf("  %s %d:%d %s %s", f.File, f.Line, f.Column, f.Code, f.Message)
		if f.Severity == core.SeverityError {
			errorColor.Println(line)
		} else {
			warnColor.Println(line)
		}
	}
	dimColor.Println("\nRun 'ruff check --fix' and 'ruff format' to fix most issues, then re-run the tests.")
}
