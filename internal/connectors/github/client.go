package github

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	gh "github.com/google/go-github/v80/github"
	"golang.org/x/oauth2"
)

const (
	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultAPIBaseURL is the GitHub REST API root.
	DefaultAPIBaseURL = "https://api.github.com/"

	// DefaultRawBaseURL serves raw file content by owner/repo/ref/path.
	DefaultRawBaseURL = "https://raw.githubusercontent.com"

	// maxErrorBody caps how much of an error response is kept.
	maxErrorBody = 1024
)

// ClientConfig configures a Client.
type ClientConfig struct {
	// Token is an optional personal access token.
	Token string

	// APIBaseURL overrides DefaultAPIBaseURL.
	APIBaseURL string

	// RawBaseURL overrides DefaultRawBaseURL.
	RawBaseURL string

	// RequestsPerSecond overrides ProactiveRate.
	RequestsPerSecond float64

	// Timeout overrides DefaultTimeout.
	Timeout time.Duration
}

// Client wraps the go-github client and a plain HTTP client for raw downloads.
// Both share one rate limiter.
type Client struct {
	gh          *gh.Client
	http        *http.Client
	rawBaseURL  string
	rateLimiter *RateLimiter
}

// NewClient creates a client. With a token, requests carry it as a bearer
// credential through an oauth2 static token source.
func NewClient(ctx context.Context, cfg ClientConfig) (*Client, error) {
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = DefaultAPIBaseURL
	}
	if cfg.RawBaseURL == "" {
		cfg.RawBaseURL = DefaultRawBaseURL
	}

	httpClient := &http.Client{Timeout: cfg.Timeout}
	limit := AnonymousLimit
	if cfg.Token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token})
		httpClient = oauth2.NewClient(ctx, ts)
		httpClient.Timeout = cfg.Timeout
		limit = AuthenticatedLimit
	}

	api := gh.NewClient(httpClient)
	base, err := url.Parse(strings.TrimSuffix(cfg.APIBaseURL, "/") + "/")
	if err != nil {
		return nil, fmt.Errorf("parse API base URL: %w", err)
	}
	api.BaseURL = base

	return &Client{
		gh:          api,
		http:        httpClient,
		rawBaseURL:  strings.TrimSuffix(cfg.RawBaseURL, "/"),
		rateLimiter: NewRateLimiter(cfg.RequestsPerSecond, limit),
	}, nil
}

// GetTree fetches the entire tree at ref recursively in one request.
func (c *Client) GetTree(ctx context.Context, owner, repo, ref string) (*gh.Tree, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	tree, resp, err := c.gh.Git.GetTree(ctx, owner, repo, ref, true)
	c.updateRateLimitFromResponse(resp)
	if err != nil {
		return nil, c.wrapError(err, "get tree")
	}
	return tree, nil
}

// GetRaw downloads a file's content from the raw content host.
func (c *Client) GetRaw(ctx context.Context, owner, repo, ref, path string) (string, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait: %w", err)
	}

	target := c.RawURL(owner, repo, ref, path)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("download %s: %w", path, err)
	}
	defer resp.Body.Close()

	if err := c.rateLimiter.CheckRateLimit(resp); err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return "", &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body)), URL: target}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}

// RawURL returns the raw content URL of path, escaping each segment.
func (c *Client) RawURL(owner, repo, ref, path string) string {
	segments := strings.Split(path, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return fmt.Sprintf("%s/%s/%s/%s/%s", c.rawBaseURL, owner, repo, ref, strings.Join(segments, "/"))
}

// RateLimiter returns the rate limiter for external access.
func (c *Client) RateLimiter() *RateLimiter {
	return c.rateLimiter
}

func (c *Client) updateRateLimitFromResponse(resp *gh.Response) {
	if resp == nil || resp.Response == nil {
		return
	}
	c.rateLimiter.UpdateFromResponse(resp.Response)
}

// wrapError converts go-github errors to this package's error types.
func (c *Client) wrapError(err error, operation string) error {
	var rateLimitErr *gh.RateLimitError
	if errors.As(err, &rateLimitErr) {
		return &RateLimitError{
			ResetAt:   rateLimitErr.Rate.Reset.Time,
			Remaining: rateLimitErr.Rate.Remaining,
			Limit:     rateLimitErr.Rate.Limit,
		}
	}

	var ghErr *gh.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		apiErr := &APIError{StatusCode: ghErr.Response.StatusCode, Message: ghErr.Message}
		if ghErr.Response.Request != nil {
			apiErr.URL = ghErr.Response.Request.URL.String()
		}
		return apiErr
	}

	return fmt.Errorf("%s: %w", operation, err)
}
