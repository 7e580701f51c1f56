// Package github provides the outbound GitHub API surface of the bot: commit
// statuses and pull request comments.
package github

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/gofri/go-github-ratelimit/v2/github_ratelimit"
	"github.com/google/go-github/v73/github"
	"github.com/gregjones/httpcache"
	"golang.org/x/oauth2"
)

// Comment is the subset of an issue comment the reporter needs.
type Comment struct {
	ID   int64
	Body string
}

// Client defines the GitHub operations used by the review pipeline.
type Client interface {
	SetStatus(ctx context.Context, owner, repo, sha, state, description string) error
	ListPRComments(ctx context.Context, owner, repo string, number int) ([]Comment, error)
	DeleteComment(ctx context.Context, owner, repo string, commentID int64) error
	CreateComment(ctx context.Context, owner, repo string, number int, body string) error
}

type gitHubClient struct {
	client *github.Client
	logger *slog.Logger
}

// NewClient creates a GitHub client authenticated with a personal access
// token. The transport stack layers an in-memory conditional-request cache
// and the secondary rate limit middleware underneath the oauth2 token
// source. An empty baseURL targets the public GitHub API.
func NewClient(ctx context.Context, token, baseURL string, logger *slog.Logger) (Client, error) {
	cacheClient := github_ratelimit.NewClient(httpcache.NewMemoryCacheTransport())
	ctx = context.WithValue(ctx, oauth2.HTTPClient, cacheClient)

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	tc := oauth2.NewClient(ctx, ts)

	client := github.NewClient(tc)
	if baseURL != "" {
		u, err := parseBaseURL(baseURL)
		if err != nil {
			return nil, err
		}
		client.BaseURL = u
	}
	return &gitHubClient{client: client, logger: logger}, nil
}

// NewClientWithHTTPClient builds a Client on a caller-supplied http.Client
// and base URL, letting tests point it at an httptest server.
func NewClientWithHTTPClient(httpClient *http.Client, baseURL string, logger *slog.Logger) (Client, error) {
	u, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	client := github.NewClient(httpClient)
	client.BaseURL = u
	return &gitHubClient{client: client, logger: logger}, nil
}

// parseBaseURL normalizes the API base URL; go-github requires the trailing
// slash.
func parseBaseURL(baseURL string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSuffix(baseURL, "/") + "/")
	if err != nil {
		return nil, fmt.Errorf("invalid GitHub API URL %q: %w", baseURL, err)
	}
	return u, nil
}

// SetStatus sets the commit status for a SHA under the bot's fixed status
// context.
func (g *gitHubClient) SetStatus(ctx context.Context, owner, repo, sha, state, description string) error {
	status := &github.RepoStatus{
		State:       github.Ptr(state),
		Description: github.Ptr(description),
		Context:     github.Ptr(StatusContext),
	}
	_, _, err := g.client.Repositories.CreateStatus(ctx, owner, repo, sha, status)
	if err != nil {
		g.logger.Error("failed to set commit status",
			"owner", owner, "repo", repo, "sha", sha, "state", state, "error", err)
	}
	return err
}

// ListPRComments retrieves all issue comments on a pull request. It handles
// pagination automatically, since GitHub returns at most 100 comments per
// page.
func (g *gitHubClient) ListPRComments(ctx context.Context, owner, repo string, number int) ([]Comment, error) {
	var all []Comment
	opts := &github.IssueListCommentsOptions{
		ListOptions: github.ListOptions{PerPage: 100},
	}

	for {
		comments, resp, err := g.client.Issues.ListComments(ctx, owner, repo, number, opts)
		if err != nil {
			g.logger.Error("failed to list PR comments",
				"owner", owner, "repo", repo, "pr", number, "error", err)
			return nil, err
		}

		for _, c := range comments {
			all = append(all, Comment{ID: c.GetID(), Body: c.GetBody()})
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return all, nil
}

// DeleteComment removes a single issue comment by ID.
func (g *gitHubClient) DeleteComment(ctx context.Context, owner, repo string, commentID int64) error {
	_, err := g.client.Issues.DeleteComment(ctx, owner, repo, commentID)
	if err != nil {
		g.logger.Error("failed to delete comment",
			"owner", owner, "repo", repo, "comment_id", commentID, "error", err)
	}
	return err
}

// CreateComment posts a new comment on a pull request.
func (g *gitHubClient) CreateComment(ctx context.Context, owner, repo string, number int, body string) error {
	comment := &github.IssueComment{Body: &body}
	_, _, err := g.client.Issues.CreateComment(ctx, owner, repo, number, comment)
	if err != nil {
		g.logger.Error("failed to create comment",
			"owner", owner, "repo", repo, "pr", number, "error", err)
	}
	return err
}
