// Package opendigger fetches and decodes OpenDigger metric documents.
package opendigger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/huangsam/gitinsight/internal/contract"
	"github.com/rs/zerolog/log"
)

// DefaultBaseURL is the public OpenDigger endpoint for GitHub repositories.
const DefaultBaseURL = "https://oss.open-digger.cn/github"

// ErrUnexpectedStatus is returned when the server answers with a non-200 status.
var ErrUnexpectedStatus = errors.New("unexpected status from opendigger")

// Client reads metric documents over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

var _ contract.SeriesSource = &Client{} // Compile-time check

// NewClient creates a client for baseURL. An empty baseURL uses DefaultBaseURL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// MetricURL returns the document location of one metric of repo.
func (c *Client) MetricURL(repo, metric string) string {
	owner, name, _ := strings.Cut(repo, "/")
	return fmt.Sprintf("%s/%s/%s/%s.json", c.baseURL, url.PathEscape(owner), url.PathEscape(name), url.PathEscape(metric))
}

// Fetch implements the contract.SeriesSource interface.
func (c *Client) Fetch(ctx context.Context, repo, metric string) ([]byte, error) {
	target := c.MetricURL(repo, metric)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", metric, err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s for %s: %w", metric, repo, err)
	}
	defer func() { _ = resp.Body.Close() }()

	log.Debug().
		Str("url", target).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("Fetched metric document")

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s returned %d", ErrUnexpectedStatus, metric, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s for %s: %w", metric, repo, err)
	}
	return body, nil
}
