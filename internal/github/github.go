// Package github reads repository overview counters from the GitHub REST API.
package github

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	gh "github.com/google/go-github/v62/github"
	"github.com/huangsam/gitinsight/internal/contract"
	"github.com/huangsam/gitinsight/schema"
	"github.com/rs/zerolog/log"
)

// commitsPerPage is the largest page size the commits endpoint accepts.
const commitsPerPage = 100

// Client wraps a go-github client.
type Client struct {
	client *gh.Client
}

var _ contract.OverviewClient = &Client{} // Compile-time check

// NewClient creates an overview client. An empty token makes anonymous requests.
// A non-empty baseURL points the client at a GitHub Enterprise or test server.
func NewClient(token string, timeout time.Duration, baseURL string) (*Client, error) {
	client := gh.NewClient(&http.Client{Timeout: timeout})
	if token != "" {
		client = client.WithAuthToken(token)
	}
	if baseURL != "" {
		if !strings.HasSuffix(baseURL, "/") {
			baseURL += "/"
		}
		parsed, err := url.Parse(baseURL)
		if err != nil {
			return nil, fmt.Errorf("invalid GitHub base URL %q: %w", baseURL, err)
		}
		client.BaseURL = parsed
	}
	return &Client{client: client}, nil
}

// Overview implements the contract.OverviewClient interface.
func (c *Client) Overview(ctx context.Context, repo string) (*schema.Overview, error) {
	if err := contract.ValidateRepo(repo); err != nil {
		return nil, err
	}
	owner, name, _ := strings.Cut(repo, "/")

	repository, _, err := c.client.Repositories.Get(ctx, owner, name)
	if err != nil {
		return nil, fmt.Errorf("failed to get repository %s: %w", repo, err)
	}

	commits, err := c.countCommits(ctx, owner, name)
	if err != nil {
		return nil, err
	}

	return &schema.Overview{
		Stars:   repository.GetStargazersCount(),
		Forks:   repository.GetForksCount(),
		Commits: commits,
	}, nil
}

// countCommits reads the first page and, when paginated, the last page named by the Link header.
func (c *Client) countCommits(ctx context.Context, owner, name string) (int, error) {
	opts := &gh.CommitsListOptions{ListOptions: gh.ListOptions{PerPage: commitsPerPage}}
	first, resp, err := c.client.Repositories.ListCommits(ctx, owner, name, opts)
	if err != nil {
		return 0, fmt.Errorf("failed to list commits of %s/%s: %w", owner, name, err)
	}
	if resp == nil || resp.LastPage == 0 {
		return len(first), nil
	}

	lastPage := resp.LastPage
	opts.Page = lastPage
	last, _, err := c.client.Repositories.ListCommits(ctx, owner, name, opts)
	if err != nil {
		return 0, fmt.Errorf("failed to list last commit page of %s/%s: %w", owner, name, err)
	}
	log.Debug().Str("repo", owner+"/"+name).Int("last_page", lastPage).Msg("Counted commits from last page")
	return (lastPage-1)*commitsPerPage + len(last), nil
}
