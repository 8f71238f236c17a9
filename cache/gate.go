package cache

import (
	"context"
	"errors"
	"time"
)

// RateLimitKey is the cache key holding the rate-limit marker.
const RateLimitKey = "youtube_rate_limit"

// Gate refuses outbound work for a cooldown after YouTube answered 429.
// The marker lives in the Store so that every process sharing the store
// backs off together.
type Gate struct {
	store    Store
	cooldown time.Duration
	now      func() time.Time
}

// NewGate creates a gate over store.
func NewGate(store Store, cooldown time.Duration) *Gate {
	return &Gate{store: store, cooldown: cooldown, now: time.Now}
}

// Allow reports whether requests may be sent.
func (g *Gate) Allow(ctx context.Context) (bool, error) {
	_, err := g.store.Get(ctx, RateLimitKey)
	if errors.Is(err, ErrMiss) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return false, nil
}

// Trip closes the gate for the cooldown.
func (g *Gate) Trip(ctx context.Context) error {
	stamp := []byte(g.now().UTC().Format(time.RFC3339))
	return g.store.Set(ctx, RateLimitKey, stamp, g.cooldown)
}

// Cooldown returns how long a trip lasts.
func (g *Gate) Cooldown() time.Duration {
	return g.cooldown
}
