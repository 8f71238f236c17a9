// Package http provides the HTTP client used to fetch YouTube pages, with
// retry, per-host rate limiting and a circuit breaker.
package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"ytshorts/internal/retry"
)

// maxErrorBody bounds how much of an error response is kept.
const maxErrorBody = 4 << 10

// Config holds HTTP client configuration.
type Config struct {
	// Timeout for individual HTTP requests.
	Timeout time.Duration

	// UserAgent is sent with every request.
	UserAgent string

	// AcceptLanguage pins the page language so that parsed text is stable.
	AcceptLanguage string

	// RPS is the per-host request rate. Zero disables rate limiting.
	RPS float64

	// Retry configures retries of transient failures.
	Retry retry.Config

	// Breaker configures the per-host circuit breaker.
	Breaker BreakerConfig

	// Transport overrides the underlying round tripper (tests, proxies).
	Transport http.RoundTripper
}

// DefaultConfig returns sensible defaults for fetching youtube.com pages.
func DefaultConfig() *Config {
	return &Config{
		Timeout:        30 * time.Second,
		UserAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		AcceptLanguage: "en-US",
		RPS:            DefaultRPS,
		Retry:          defaultRetry(),
		Breaker:        DefaultBreakerConfig(),
	}
}

// defaultRetry retries network failures and transient statuses only.
func defaultRetry() retry.Config {
	cfg := retry.DefaultConfig()
	cfg.Retryable = IsTransient
	return cfg
}

// Client wraps an HTTP client with retry logic and rate limit handling.
type Client struct {
	base    *http.Client
	config  *Config
	limiter *RateLimiter
	breaker *CircuitBreaker
}

// New creates a new HTTP client with the given configuration.
func New(cfg *Config) *Client {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.Retry.Retryable == nil {
		c := *cfg
		c.Retry.Retryable = IsTransient
		cfg = &c
	}

	transport := cfg.Transport
	if transport == nil {
		transport = &http.Transport{
			MaxIdleConns:        20,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			ForceAttemptHTTP2:   true,
		}
	}

	return &Client{
		base:    &http.Client{Timeout: cfg.Timeout, Transport: transport},
		config:  cfg,
		limiter: NewRateLimiter(cfg.RPS),
		breaker: NewCircuitBreaker(cfg.Breaker),
	}
}

// Response represents an HTTP response with status code and body.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Get fetches urlStr. Transient failures are retried; a 429 response is
// returned immediately as a *RateLimitError so the caller can back off.
func (c *Client) Get(ctx context.Context, urlStr string) (*Response, error) {
	host := hostOf(urlStr)
	if err := c.breaker.Allow(host); err != nil {
		return nil, err
	}

	var out *Response
	err := retry.Do(ctx, c.config.Retry, func(ctx context.Context) error {
		if err := c.limiter.Wait(ctx, urlStr); err != nil {
			return err
		}
		resp, err := c.do(ctx, urlStr)
		if err != nil {
			return err
		}
		out = resp
		return nil
	})
	if err != nil {
		c.breaker.RecordFailure(host, err)
		return nil, err
	}

	c.breaker.RecordSuccess(host)
	return out, nil
}

func (c *Client) do(ctx context.Context, urlStr string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return nil, retry.Permanent(fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("User-Agent", c.config.UserAgent)
	if c.config.AcceptLanguage != "" {
		req.Header.Set("Accept-Language", c.config.AcceptLanguage)
	}

	resp, err := c.base.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		retryAfter := parseRetryAfter(resp.Header)
		c.limiter.Pause(urlStr, retryAfter)
		return nil, &RateLimitError{URL: urlStr, RetryAfter: retryAfter}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &HTTPError{URL: urlStr, StatusCode: resp.StatusCode, Body: body}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
	}, nil
}

// parseRetryAfter reads the Retry-After header as seconds or an HTTP date.
func parseRetryAfter(header http.Header) time.Duration {
	v := header.Get("Retry-After")
	if v == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(v); err == nil {
		return time.Duration(seconds) * time.Second
	}
	if t, err := http.ParseTime(v); err == nil {
		return time.Until(t)
	}
	return 0
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.base.CloseIdleConnections()
	return nil
}
