// Package gitutil materializes ephemeral, exclusively-owned checkouts of the
// commits under review.
package gitutil

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/utils/merkletrie"

	"github.com/sevigo/code-sentry/internal/execx"
)

// Manager acquires workspaces. One workspace belongs to exactly one in-flight
// review; workspaces are never reused or shared across deliveries.
type Manager interface {
	Acquire(ctx context.Context) (Workspace, error)
}

// Workspace is a disposable checkout of the commit under review. Release must
// run on every exit path, regardless of how far the review got.
type Workspace interface {
	Path() string
	Clone(ctx context.Context, cloneURL string) error
	FetchBase(ctx context.Context, baseRef string) error
	Checkout(ctx context.Context, headSHA string) error
	// ChangedFiles returns the paths added or modified between the base
	// branch tip and the head commit. Deleted paths are dropped: there is
	// nothing left in the worktree to analyze.
	ChangedFiles(baseRef, headSHA string) ([]string, error)
	Release()
}

type manager struct {
	runner execx.Runner
	logger *slog.Logger
}

// NewManager returns a Manager that creates temporary directory workspaces
// and drives git through the given command runner.
func NewManager(runner execx.Runner, logger *slog.Logger) Manager {
	return &manager{runner: runner, logger: logger}
}

func (m *manager) Acquire(_ context.Context) (Workspace, error) {
	dir, err := os.MkdirTemp("", "pr-review-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create workspace directory: %w", err)
	}
	m.logger.Debug("workspace acquired", "path", dir)
	return &workspace{dir: dir, runner: m.runner, logger: m.logger}, nil
}

type workspace struct {
	dir    string
	runner execx.Runner
	logger *slog.Logger
}

func (w *workspace) Path() string { return w.dir }

func (w *workspace) git(ctx context.Context, args ...string) error {
	res, err := w.runner.Run(ctx, w.dir, "git", args...)
	if err != nil {
		return err
	}
	if res.ExitCode != 0 {
		return fmt.Errorf("git %s failed: %s", args[0], strings.TrimSpace(res.Stderr))
	}
	return nil
}

func (w *workspace) Clone(ctx context.Context, cloneURL string) error {
	w.logger.InfoContext(ctx, "cloning repository", "url", cloneURL, "path", w.dir)
	return w.git(ctx, "clone", cloneURL, ".")
}

func (w *workspace) FetchBase(ctx context.Context, baseRef string) error {
	w.logger.InfoContext(ctx, "fetching base branch", "ref", baseRef)
	return w.git(ctx, "fetch", "origin", baseRef)
}

func (w *workspace) Checkout(ctx context.Context, headSHA string) error {
	w.logger.InfoContext(ctx, "checking out commit", "sha", headSHA)
	return w.git(ctx, "checkout", "--force", headSHA)
}

// ChangedFiles diffs the trees of origin/<baseRef> and headSHA.
func (w *workspace) ChangedFiles(baseRef, headSHA string) ([]string, error) {
	repo, err := git.PlainOpen(w.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open repository at %s: %w", w.dir, err)
	}

	baseName := plumbing.NewRemoteReferenceName("origin", baseRef)
	baseRefObj, err := repo.Reference(baseName, true)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", baseName, err)
	}

	baseCommit, err := repo.CommitObject(baseRefObj.Hash())
	if err != nil {
		return nil, fmt.Errorf("failed to get commit for base %s: %w", baseRef, err)
	}
	headCommit, err := repo.CommitObject(plumbing.NewHash(headSHA))
	if err != nil {
		return nil, fmt.Errorf("failed to get commit for head %s: %w", headSHA, err)
	}

	baseTree, err := baseCommit.Tree()
	if err != nil {
		return nil, fmt.Errorf("failed to get tree for base commit: %w", err)
	}
	headTree, err := headCommit.Tree()
	if err != nil {
		return nil, fmt.Errorf("failed to get tree for head commit: %w", err)
	}

	changes, err := object.DiffTree(baseTree, headTree)
	if err != nil {
		return nil, fmt.Errorf("failed to diff trees between %s and %s: %w", baseRef, headSHA, err)
	}

	var files []string
	for _, change := range changes {
		action, err := change.Action()
		if err != nil {
			w.logger.Warn("failed to get action for change, skipping", "error", err)
			continue
		}
		switch action {
		case merkletrie.Insert, merkletrie.Modify:
			files = append(files, change.To.Name)
		case merkletrie.Delete:
		}
	}
	return files, nil
}

// Release deletes the workspace tree. Deletion failures are logged, never
// propagated: a leaked temp dir must not fail a finished review.
func (w *workspace) Release() {
	w.logger.Debug("releasing workspace", "path", w.dir)
	if err := os.RemoveAll(w.dir); err != nil {
		w.logger.Error("failed to remove workspace", "path", w.dir, "error", err)
	}
}
