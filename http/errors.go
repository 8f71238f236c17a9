package http

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// RateLimitError indicates YouTube refused the request with 429 Too Many Requests.
type RateLimitError struct {
	// URL is the requested URL.
	URL string
	// RetryAfter is the server-suggested wait, zero when absent.
	RetryAfter time.Duration
}

// Error returns a string representation of the rate limit error.
func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited fetching %s: retry after %v", e.URL, e.RetryAfter)
	}
	return fmt.Sprintf("rate limited fetching %s", e.URL)
}

// HTTPError indicates a non-2xx response other than a rate limit.
type HTTPError struct {
	// URL is the requested URL.
	URL string
	// StatusCode is the HTTP status code.
	StatusCode int
	// Body holds the start of the response body for diagnostics.
	Body []byte
}

// Error returns a string representation of the HTTP error.
func (e *HTTPError) Error() string {
	return fmt.Sprintf("http error fetching %s: status %d", e.URL, e.StatusCode)
}

// Transient reports whether the status code is worth retrying.
func (e *HTTPError) Transient() bool {
	return e.StatusCode >= 500 || e.StatusCode == 408
}

// ErrCircuitOpen is returned when too many consecutive failures were seen for a host.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// IsRateLimited reports whether err, or any error it wraps, is a RateLimitError.
func IsRateLimited(err error) bool {
	var rl *RateLimitError
	return errors.As(err, &rl)
}

// IsTransient reports whether err should count against a host's circuit and be
// retried: network failures and 5xx responses are transient, 4xx responses,
// rate limits and cancellation are not.
func IsTransient(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if IsRateLimited(err) {
		return false
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Transient()
	}
	return true
}
