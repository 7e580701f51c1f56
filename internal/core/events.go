// Package core defines the essential data structures and interfaces that form
// the backbone of the review pipeline: webhook events, findings, review
// results and the contracts between the dispatcher, workspace, analyzer and
// reporter.
package core

import (
	"fmt"

	"github.com/google/go-github/v73/github"
)

// GitHubEvent represents a simplified, internal view of a pull request
// webhook delivery. It is immutable once built.
type GitHubEvent struct {
	RepoOwner    string
	RepoName     string
	RepoFullName string
	RepoCloneURL string

	PRNumber int
	BaseRef  string
	HeadSHA  string
}

// ReviewableAction reports whether a pull request action introduces new or
// changed commits and therefore triggers a review. Everything else (closed,
// reopened, labeled, ...) is deliberately filtered out.
func ReviewableAction(action string) bool {
	return action == "opened" || action == "synchronize"
}

// EventFromPullRequest transforms a raw GitHub PullRequestEvent into the
// application's internal GitHubEvent representation. It acts as an
// anti-corruption layer: the payload must carry every field the pipeline
// needs, otherwise the delivery is rejected before any work starts.
func EventFromPullRequest(event *github.PullRequestEvent) (*GitHubEvent, error) {
	repo := event.GetRepo()
	if repo == nil || repo.GetOwner().GetLogin() == "" || repo.GetName() == "" {
		return nil, fmt.Errorf("repository or owner information is missing from the event")
	}
	if repo.GetCloneURL() == "" {
		return nil, fmt.Errorf("repository clone URL is missing from the event")
	}

	pr := event.GetPullRequest()
	if pr == nil {
		return nil, fmt.Errorf("pull request information is missing from the event")
	}
	if pr.GetNumber() <= 0 {
		return nil, fmt.Errorf("invalid pull request number: %d", pr.GetNumber())
	}
	if pr.GetBase().GetRef() == "" {
		return nil, fmt.Errorf("base branch ref is missing from the event")
	}
	if pr.GetHead().GetSHA() == "" {
		return nil, fmt.Errorf("head commit SHA is missing from the event")
	}

	return &GitHubEvent{
		RepoOwner:    repo.GetOwner().GetLogin(),
		RepoName:     repo.GetName(),
		RepoFullName: repo.GetFullName(),
		RepoCloneURL: repo.GetCloneURL(),
		PRNumber:     pr.GetNumber(),
		BaseRef:      pr.GetBase().GetRef(),
		HeadSHA:      pr.GetHead().GetSHA(),
	}, nil
}
