package httpclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/amansoomro062/codesign/internal/config"
	"github.com/bytedance/sonic"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

// GitHubClient reads public repository statistics from the GitHub REST API.
type GitHubClient struct {
	BaseURL    string
	Repo       string
	Token      string
	HTTPClient *http.Client
	Logger     *zap.Logger
}

func NewGitHubClient(cfg *config.Config, log *zap.Logger) *GitHubClient {
	return &GitHubClient{
		BaseURL: strings.TrimRight(cfg.GitHub.BaseURL, "/"),
		Repo:    cfg.GitHub.Repo,
		Token:   cfg.GitHub.Token,
		HTTPClient: &http.Client{
			Timeout:   10 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		Logger: log,
	}
}

type RepoStats struct {
	Stars        int `json:"stars"`
	Forks        int `json:"forks"`
	Contributors int `json:"contributors"`
}

type repoResponse struct {
	StargazersCount int `json:"stargazers_count"`
	ForksCount      int `json:"forks_count"`
}

var lastPageRe = regexp.MustCompile(`[?&]page=(\d+)[^>]*>;\s*rel="last"`)

// LastPage extracts the rel="last" page number from a Link header.
func LastPage(link string) (int, bool) {
	m := lastPageRe.FindStringSubmatch(link)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

func (c *GitHubClient) get(ctx context.Context, path string) (*http.Response, []byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/vnd.github+json")
	if c.Token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.HTTPClient.Do(httpReq)
	if err != nil {
		return nil, nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		c.Logger.Warn("github request failed",
			zap.String("path", path),
			zap.Int("status_code", resp.StatusCode))
		return nil, nil, fmt.Errorf("request failed with status %d", resp.StatusCode)
	}
	return resp, body, nil
}

// FetchRepoStats returns stars, forks and the contributor count. The
// contributor count comes from the last page of a one-per-page listing.
func (c *GitHubClient) FetchRepoStats(ctx context.Context) (*RepoStats, error) {
	_, body, err := c.get(ctx, "/repos/"+c.Repo)
	if err != nil {
		return nil, err
	}
	var repo repoResponse
	if err := sonic.Unmarshal(body, &repo); err != nil {
		return nil, fmt.Errorf("unmarshal repo: %w", err)
	}

	resp, body, err := c.get(ctx, "/repos/"+c.Repo+"/contributors?per_page=1&anon=true")
	if err != nil {
		return nil, err
	}
	contributors, ok := LastPage(resp.Header.Get("Link"))
	if !ok {
		var list []map[string]any
		if err := sonic.Unmarshal(body, &list); err != nil {
			return nil, fmt.Errorf("unmarshal contributors: %w", err)
		}
		contributors = len(list)
	}

	return &RepoStats{
		Stars:        repo.StargazersCount,
		Forks:        repo.ForksCount,
		Contributors: contributors,
	}, nil
}
