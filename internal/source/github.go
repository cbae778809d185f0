package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"smart-docs/internal/domain"
	"smart-docs/internal/retry"
)

const (
	defaultGitHubAPI   = "https://api.github.com"
	defaultReadmeLimit = 1 << 20 // 1MB
	fetchFailedMessage = "Failed to fetch repository. Please try again."
)

// GitHubConfig configures the README fetcher.
type GitHubConfig struct {
	// APIBaseURL is the base URL for GitHub API.
	// For GitHub Enterprise, use https://<hostname>/api/v3
	APIBaseURL string

	// Token is an optional personal access token.
	Token string

	// Timeout bounds each request.
	Timeout time.Duration

	// MaxRetries is the number of retries for 5xx responses.
	MaxRetries int

	// MaxReadmeSize caps the README body in bytes.
	MaxReadmeSize int64
}

// GitHubFetcher reads README files through the GitHub REST API.
type GitHubFetcher struct {
	log        *slog.Logger
	httpClient *http.Client
	baseURL    string
	token      string
	maxRetries int
	maxSize    int64
	backoff    time.Duration
}

var _ Fetcher = (*GitHubFetcher)(nil)

// NewGitHubFetcher creates a fetcher with defaults for unset fields.
func NewGitHubFetcher(log *slog.Logger, cfg GitHubConfig) *GitHubFetcher {
	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = defaultGitHubAPI
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.MaxReadmeSize <= 0 {
		cfg.MaxReadmeSize = defaultReadmeLimit
	}
	return &GitHubFetcher{
		log:        log,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    strings.TrimSuffix(cfg.APIBaseURL, "/"),
		token:      cfg.Token,
		maxRetries: cfg.MaxRetries,
		maxSize:    cfg.MaxReadmeSize,
		backoff:    500 * time.Millisecond,
	}
}

// FetchReadme returns the raw README of the default branch.
func (f *GitHubFetcher) FetchReadme(ctx context.Context, owner, repo string) (string, error) {
	if !ValidRepoName(owner, repo) {
		return "", domain.Invalid(invalidRepoMessage)
	}
	path := fmt.Sprintf("/repos/%s/%s/readme", url.PathEscape(owner), url.PathEscape(repo))
	resp, err := f.doRequest(ctx, path)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxSize+1))
	if err != nil {
		return "", domain.Wrap(domain.ErrNetwork, fetchFailedMessage, fmt.Errorf("read readme: %w", err))
	}
	if int64(len(body)) > f.maxSize {
		return "", domain.Invalid(fmt.Sprintf("Repository README is too large (max %d bytes).", f.maxSize))
	}
	return string(body), nil
}

// doRequest performs a GET with retry on server errors.
func (f *GitHubFetcher) doRequest(ctx context.Context, path string) (*http.Response, error) {
	var lastErr error
	for attempt := 0; attempt <= f.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, domain.Wrap(domain.ErrNetwork, fetchFailedMessage, ctx.Err())
			case <-time.After(retry.CappedBackoff(attempt-1, f.backoff, 5*time.Second)):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.baseURL+path, nil)
		if err != nil {
			return nil, domain.Wrap(domain.ErrNetwork, fetchFailedMessage, fmt.Errorf("create request: %w", err))
		}
		req.Header.Set("Accept", "application/vnd.github.raw+json")
		req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
		if f.token != "" {
			req.Header.Set("Authorization", "Bearer "+f.token)
		}

		resp, err := f.httpClient.Do(req)
		if err != nil {
			return nil, domain.Wrap(domain.ErrNetwork, fetchFailedMessage, describeTransportError(err))
		}
		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return resp, nil
		}

		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		resp.Body.Close()
		lastErr = fmt.Errorf("GitHub API error %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))

		// Non-retryable
		if resp.StatusCode < 500 {
			break
		}
		if f.log != nil && attempt < f.maxRetries {
			f.log.Warn("github readme fetch failed; retrying", "path", path, "status", resp.StatusCode, "attempt", attempt+1)
		}
	}
	return nil, domain.Wrap(domain.ErrNetwork, fetchFailedMessage, lastErr)
}

func describeTransportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
		return fmt.Errorf("request timed out: %w", err)
	}
	return fmt.Errorf("do request: %w", err)
}

func isTimeout(err error) bool {
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}
