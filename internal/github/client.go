// Package github wraps the hosting-API collaborator: PR metadata, raw
// diff and changed-file reads, and the review comment write.
package github

import (
	"context"
	"fmt"
	"strings"

	gh "github.com/google/go-github/v57/github"
	"golang.org/x/oauth2"

	"github.com/fyrsmithlabs/reviewd/internal/config"
	"github.com/fyrsmithlabs/reviewd/internal/logging"
	"github.com/fyrsmithlabs/reviewd/internal/review"
)

// PRDetails is the metadata read for one pull request.
type PRDetails struct {
	Title       string
	Description string
	Author      string
	Branch      string
	BaseBranch  string
	State       string
}

// Client reads PR data and posts review comments.
type Client struct {
	gh     *gh.Client
	retry  *RetryConfig
	logger *logging.Logger
}

// NewClient creates a hosting-API client with token authentication.
// baseURL overrides the API endpoint for GitHub Enterprise; empty means
// api.github.com.
func NewClient(ctx context.Context, token config.Secret, baseURL string, logger *logging.Logger) (*Client, error) {
	if !token.IsSet() {
		return nil, fmt.Errorf("GitHub token not set")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token.Value()})
	client := gh.NewClient(oauth2.NewClient(ctx, ts))

	if baseURL != "" {
		var err error
		client, err = client.WithEnterpriseURLs(baseURL, baseURL)
		if err != nil {
			return nil, fmt.Errorf("invalid GitHub base URL: %w", err)
		}
	}

	return &Client{
		gh:     client,
		retry:  DefaultRetryConfig(),
		logger: logger,
	}, nil
}

// SetRetry overrides the default publish retry policy.
func (c *Client) SetRetry(cfg *RetryConfig) {
	if cfg != nil {
		c.retry = cfg
	}
}

// SplitRepo splits "owner/name" into its parts.
func SplitRepo(repo string) (owner, name string, err error) {
	parts := strings.SplitN(repo, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid repository %q: want owner/name", repo)
	}
	return parts[0], parts[1], nil
}

// PRDetails fetches PR title, description, author, branches, and state.
func (c *Client) PRDetails(ctx context.Context, owner, repo string, number int) (*PRDetails, error) {
	pr, _, err := c.gh.PullRequests.Get(ctx, owner, repo, number)
	if err != nil {
		return nil, fmt.Errorf("fetching PR %s/%s#%d: %w", owner, repo, number, err)
	}
	return &PRDetails{
		Title:       pr.GetTitle(),
		Description: pr.GetBody(),
		Author:      pr.GetUser().GetLogin(),
		Branch:      pr.GetHead().GetRef(),
		BaseBranch:  pr.GetBase().GetRef(),
		State:       pr.GetState(),
	}, nil
}

// Diff fetches the PR diff as raw text.
func (c *Client) Diff(ctx context.Context, owner, repo string, number int) (string, error) {
	diff, _, err := c.gh.PullRequests.GetRaw(ctx, owner, repo, number, gh.RawOptions{Type: gh.Diff})
	if err != nil {
		return "", fmt.Errorf("fetching diff for %s/%s#%d: %w", owner, repo, number, err)
	}
	return diff, nil
}

// ChangedFiles fetches the changed-file list with per-file counts,
// following pagination.
func (c *Client) ChangedFiles(ctx context.Context, owner, repo string, number int) ([]review.ChangedFile, error) {
	opts := &gh.ListOptions{PerPage: 100}
	var files []review.ChangedFile
	for {
		page, resp, err := c.gh.PullRequests.ListFiles(ctx, owner, repo, number, opts)
		if err != nil {
			return nil, fmt.Errorf("listing files for %s/%s#%d: %w", owner, repo, number, err)
		}
		for _, f := range page {
			files = append(files, review.ChangedFile{
				Path:      f.GetFilename(),
				Status:    f.GetStatus(),
				Additions: f.GetAdditions(),
				Deletions: f.GetDeletions(),
				Changes:   f.GetChanges(),
			})
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return files, nil
}

// PostComment posts one comment with the rendered report. This is the
// only operation with a retry policy: transient failures are retried
// with exponential backoff before the error surfaces.
func (c *Client) PostComment(ctx context.Context, owner, repo string, number int, body string) error {
	_, err := withRetry(ctx, c.retry, c.logger, func() (*gh.Response, error) {
		_, resp, err := c.gh.Issues.CreateComment(ctx, owner, repo, number, &gh.IssueComment{
			Body: gh.String(body),
		})
		return resp, err
	})
	if err != nil {
		return fmt.Errorf("posting comment on %s/%s#%d: %w", owner, repo, number, err)
	}
	return nil
}
