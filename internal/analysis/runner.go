package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sevigo/code-sentry/internal/core"
	"github.com/sevigo/code-sentry/internal/execx"
)

const (
	lintTool = "ruff"
	testTool = "pytest"

	codeFormat = "FORMAT"
	codeTest   = "TEST"

	// Synthetic file label for the repo-wide test check.
	testFileLabel = "tests/"
)

// Analyzer executes the analysis checks for one workspace.
type Analyzer interface {
	Run(ctx context.Context, dir string, scoped []string) (*core.ReviewResult, error)
}

// Runner implements Analyzer on top of external lint, format and test tools
// driven through the command runner.
type Runner struct {
	exec   execx.Runner
	logger *slog.Logger
}

// NewRunner creates an analysis Runner.
func NewRunner(exec execx.Runner, logger *slog.Logger) *Runner {
	return &Runner{exec: exec, logger: logger}
}

// Run executes the lint, format and test checks in the workspace rooted at
// dir and merges their findings into one result.
//
// An empty scoped set is an automatic pass: no tool is invoked at all. When
// the set is non-empty all three checks always run; findings from one check
// never short-circuit the others. The returned error is reserved for tools
// that could not be invoked, which is an environment failure for the whole
// review.
func (r *Runner) Run(ctx context.Context, dir string, scoped []string) (*core.ReviewResult, error) {
	result := &core.ReviewResult{}
	if len(scoped) == 0 {
		r.logger.InfoContext(ctx, "no relevant changes, skipping analysis")
		return result, nil
	}

	lint, err := r.runLint(ctx, dir, scoped)
	if err != nil {
		return nil, err
	}
	result.Add(lint...)

	format, err := r.runFormatCheck(ctx, dir, scoped)
	if err != nil {
		return nil, err
	}
	result.Add(format...)

	tests, err := r.runTests(ctx, dir)
	if err != nil {
		return nil, err
	}
	result.Add(tests...)

	result.Sort()
	r.logger.InfoContext(ctx, "analysis finished",
		"files", len(scoped), "findings", len(result.Findings))
	return result, nil
}

// ruffIssue mirrors one entry of `ruff check --output-format=json`.
type ruffIssue struct {
	Filename string `json:"filename"`
	Code     string `json:"code"`
	Message  string `json:"message"`
	Location struct {
		Row    int `json:"row"`
		Column int `json:"column"`
	} `json:"location"`
}

func (r *Runner) runLint(ctx context.Context, dir string, files []string) ([]core.Finding, error) {
	args := append([]string{"check", "--output-format=json"}, files...)
	res, err := r.exec.Run(ctx, dir, lintTool, args...)
	if err != nil {
		return nil, fmt.Errorf("lint check failed to run: %w", err)
	}
	if strings.TrimSpace(res.Stdout) == "" {
		return nil, nil
	}

	var issues []ruffIssue
	if err := json.Unmarshal([]byte(res.Stdout), &issues); err != nil {
		// Unparseable tool output must not abort the review.
		r.logger.WarnContext(ctx, "failed to parse linter output, dropping lint results", "error", err)
		return nil, nil
	}

	findings := make([]core.Finding, 0, len(issues))
	for _, issue := range issues {
		findings = append(findings, core.Finding{
			File:     issue.Filename,
			Line:     issue.Location.Row,
			Column:   issue.Location.Column,
			Code:     issue.Code,
			Message:  issue.Message,
			Severity: lintSeverity(issue.Code),
		})
	}
	return findings, nil
}

// lintSeverity maps ruff issue codes to severities: pycodestyle errors (E)
// and pyflakes (F) are errors, everything else is a warning.
func lintSeverity(code string) core.Severity {
	if strings.HasPrefix(code, "E") || strings.HasPrefix(code, "F") {
		return core.SeverityError
	}
	return core.SeverityWarning
}

func (r *Runner) runFormatCheck(ctx context.Context, dir string, files []string) ([]core.Finding, error) {
	args := append([]string{"format", "--check"}, files...)
	res, err := r.exec.Run(ctx, dir, lintTool, args...)
	if err != nil {
		return nil, fmt.Errorf("format check failed to run: %w", err)
	}
	if res.ExitCode == 0 {
		return nil, nil
	}

	findings := make([]core.Finding, 0, len(files))
	for _, f := range files {
		findings = append(findings, core.Finding{
			File:     f,
			Line:     1,
			Column:   1,
			Code:     codeFormat,
			Message:  "File is not properly formatted. Run 'ruff format' to fix.",
			Severity: core.SeverityWarning,
		})
	}
	return findings, nil
}

func (r *Runner) runTests(ctx context.Context, dir string) ([]core.Finding, error) {
	res, err := r.exec.Run(ctx, dir, testTool, "-v")
	if err != nil {
		return nil, fmt.Errorf("test check failed to run: %w", err)
	}
	if res.ExitCode == 0 {
		return nil, nil
	}

	message := "Tests failed"
	if failed := failedTestLines(res.Stdout); len(failed) > 0 {
		message = "Tests failed:\n" + strings.Join(failed, "\n")
	}
	return []core.Finding{{
		File:     testFileLabel,
		Line:     1,
		Column:   1,
		Code:     codeTest,
		Message:  message,
		Severity: core.SeverityError,
	}}, nil
}

// failedTestLines extracts per-test failure lines from the test runner's
// verbose output. Detail is best effort; the aggregate finding stands on its
// own when the output yields nothing.
func failedTestLines(output string) []string {
	var failed []string
	for _, line := range strings.Split(output, "\n") {
		if strings.Contains(line, "FAILED") {
			failed = append(failed, strings.TrimSpace(line))
		}
	}
	return failed
}
