package http

import (
	"context"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// DefaultRPS is the request rate used for youtube.com pages.
const DefaultRPS = 2.5

// RateLimiter spaces out requests per host with a token bucket and holds a
// host back after the server asked us to wait.
type RateLimiter struct {
	mu       sync.Mutex
	rps      float64
	perHost  map[string]float64
	limiters map[string]*rate.Limiter
	until    map[string]time.Time
}

// NewRateLimiter creates a limiter allowing rps requests per second per host.
// A zero or negative rps disables limiting.
func NewRateLimiter(rps float64) *RateLimiter {
	return &RateLimiter{
		rps:      rps,
		perHost:  make(map[string]float64),
		limiters: make(map[string]*rate.Limiter),
		until:    make(map[string]time.Time),
	}
}

// SetHostRate overrides the rate for one host.
func (rl *RateLimiter) SetHostRate(host string, rps float64) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.perHost[host] = rps
	delete(rl.limiters, host)
}

// Wait blocks until a request to urlStr may be sent or ctx is done.
func (rl *RateLimiter) Wait(ctx context.Context, urlStr string) error {
	if rl == nil {
		return nil
	}
	host := hostOf(urlStr)

	if d := rl.pause(host); d > 0 {
		select {
		case <-time.After(d):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	limiter := rl.limiter(host)
	if limiter == nil {
		return nil
	}
	return limiter.Wait(ctx)
}

// Pause holds every request to urlStr's host back for d.
func (rl *RateLimiter) Pause(urlStr string, d time.Duration) {
	if rl == nil || d <= 0 {
		return
	}
	host := hostOf(urlStr)

	rl.mu.Lock()
	defer rl.mu.Unlock()
	if until := time.Now().Add(d); until.After(rl.until[host]) {
		rl.until[host] = until
	}
}

func (rl *RateLimiter) pause(host string) time.Duration {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	until, ok := rl.until[host]
	if !ok {
		return 0
	}
	d := time.Until(until)
	if d <= 0 {
		delete(rl.until, host)
		return 0
	}
	return d
}

func (rl *RateLimiter) limiter(host string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rps, ok := rl.perHost[host]
	if !ok {
		rps = rl.rps
	}
	if rps <= 0 {
		return nil
	}
	if l, ok := rl.limiters[host]; ok {
		return l
	}
	l := rate.NewLimiter(rate.Limit(rps), 1)
	rl.limiters[host] = l
	return l
}

// hostOf extracts the host without port from a URL.
func hostOf(urlStr string) string {
	u, err := url.Parse(urlStr)
	if err != nil || u.Host == "" {
		return "unknown"
	}
	host := u.Host
	if i := strings.LastIndexByte(host, ':'); i != -1 && !strings.Contains(host[i:], "]") {
		host = host[:i]
	}
	return host
}
