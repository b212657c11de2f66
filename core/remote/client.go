package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"bulk-manager/core/reconcile"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/juju/ratelimit"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Client talks to the remote API. It is safe for concurrent use.
type Client struct {
	baseURL     string
	token       string
	http        *http.Client
	bucket      *ratelimit.Bucket
	cache       *expirable.LRU[string, reconcile.FieldValue]
	reads       singleflight.Group
	concurrency int
	logger      *zap.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// New creates a client from cfg.
func New(cfg Config, logger *zap.Logger, opts ...Option) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, ErrNotConfigured
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &Client{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		token:       cfg.Token,
		http:        &http.Client{Timeout: cfg.Timeout()},
		concurrency: cfg.FetchConcurrency,
		logger:      logger,
	}
	if cfg.RequestsPerSecond > 0 {
		capacity := int64(math.Max(1, math.Ceil(cfg.RequestsPerSecond)))
		c.bucket = ratelimit.NewBucketWithRate(cfg.RequestsPerSecond, capacity)
	}
	if cfg.CacheSize > 0 && cfg.CacheTTLSeconds > 0 {
		c.cache = expirable.NewLRU[string, reconcile.FieldValue](cfg.CacheSize, nil, cfg.CacheTTL())
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// wait blocks until the token bucket grants one request or ctx ends.
func (c *Client) wait(ctx context.Context) error {
	if c.bucket == nil {
		return ctx.Err()
	}
	d := c.bucket.Take(1)
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// endpoint joins path segments onto the base URL.
func (c *Client) endpoint(segments ...string) string {
	escaped := make([]string, len(segments))
	for i, s := range segments {
		escaped[i] = url.PathEscape(s)
	}
	return c.baseURL + "/" + strings.Join(escaped, "/")
}

// do sends one request and decodes a JSON response into out when out is non-nil.
func (c *Client) do(ctx context.Context, method, rawURL string, body, out any) error {
	if err := c.wait(ctx); err != nil {
		return err
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	c.logger.Debug("Remote request",
		zap.String("method", method),
		zap.String("path", req.URL.Path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newAPIError(resp.StatusCode, data)
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// BaseURL returns the API root the client sends requests to.
func (c *Client) BaseURL() string {
	return c.baseURL
}
