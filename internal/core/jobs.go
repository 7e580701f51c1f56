package core

import "context"

// Job represents the review work triggered by a single webhook delivery.
type Job interface {
	// Run reviews the commit referenced by the event and returns the
	// analysis outcome. The returned error signals an environment failure
	// (clone, checkout, tool invocation); analysis findings are not errors,
	// they are the normal content of the result.
	Run(ctx context.Context, event *GitHubEvent) (*ReviewResult, error)
}
