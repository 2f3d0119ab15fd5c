// Package redash is a small client for the Redash HTTP API.
package redash

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ppiankov/queryspectre/internal/logging"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultPageSize  = 100
	defaultUserAgent = "queryspectre"
)

// Client talks to a single Redash instance using a user or admin API key
type Client struct {
	baseURL   string
	apiKey    string
	http      *http.Client
	limiter   *RateLimiter
	retry     retryConfig
	pageSize  int
	userAgent string
}

// Option customizes a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout sets the per-request timeout; 0 disables it
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http.Timeout = d
	}
}

// WithPageSize sets the page size used by Paginate
func WithPageSize(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.pageSize = n
		}
	}
}

// WithRateLimit limits the client to rps requests per second; 0 disables it
func WithRateLimit(rps int) Option {
	return func(c *Client) {
		c.limiter = NewRateLimiter(rps)
	}
}

// WithMaxRetries sets how many attempts a request gets before failing
func WithMaxRetries(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.retry.maxAttempts = n
		}
	}
}

// WithUserAgent sets the User-Agent header
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// New creates a client for the Redash instance at rawURL
func New(rawURL, apiKey string, opts ...Option) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(rawURL), "/")
	parsed, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("invalid redash url %q: %w", rawURL, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("invalid redash url %q: scheme must be http or https", rawURL)
	}
	if parsed.Host == "" {
		return nil, fmt.Errorf("invalid redash url %q: host is required", rawURL)
	}
	if apiKey == "" {
		return nil, fmt.Errorf("api key is required")
	}

	c := &Client{
		baseURL:   base,
		apiKey:    apiKey,
		http:      &http.Client{Timeout: defaultTimeout},
		limiter:   NewRateLimiter(0),
		retry:     defaultRetryConfig(),
		pageSize:  defaultPageSize,
		userAgent: defaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// PageSize returns the page size used by Paginate
func (c *Client) PageSize() int {
	return c.pageSize
}

// Get issues an authenticated GET for path (relative to the base URL) and
// decodes the JSON response into out
func (c *Client) Get(ctx context.Context, path string, params url.Values, out any) error {
	endpoint := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	return executeWithRetry(ctx, c.retry, func() error {
		return c.do(ctx, http.MethodGet, endpoint, out)
	})
}

func (c *Client) do(ctx context.Context, method, endpoint string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Key "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	slog.Debug("redash request",
		slog.String("method", method),
		slog.String("url", logging.Mask(endpoint)),
		slog.Int("status", resp.StatusCode),
		slog.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes*2))
		return newAPIError(resp, method, logging.Mask(endpoint), body)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", logging.Mask(endpoint), err)
	}
	return nil
}
