// Package execx abstracts external process invocation behind a narrow
// interface so git and the analysis tools can be faked in tests.
package execx

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
)

// Result captures the outcome of one command invocation.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Runner runs a named command with arguments inside a working directory.
//
// A non-zero exit code is not an error: it is reported through
// Result.ExitCode so callers can treat "tool ran and complained" differently
// from "tool could not run at all". The returned error is reserved for
// invocation failures such as a missing binary or a cancelled context.
type Runner interface {
	Run(ctx context.Context, dir, name string, args ...string) (Result, error)
}

type runner struct {
	logger *slog.Logger
}

// New returns a Runner backed by os/exec.
func New(logger *slog.Logger) Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &runner{logger: logger}
}

func (r *runner) Run(ctx context.Context, dir, name string, args ...string) (Result, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := Result{Stdout: stdout.String(), Stderr: stderr.String()}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
			r.logger.DebugContext(ctx, "command exited non-zero",
				"cmd", name, "exit_code", res.ExitCode)
			return res, nil
		}
		return res, fmt.Errorf("running %s: %w", name, err)
	}
	return res, nil
}
