// Package retry runs page requests again with exponential backoff and jitter.
package retry

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"
)

// ErrorClassifier reports whether an error is worth another attempt.
type ErrorClassifier func(error) bool

// Config holds retry configuration.
type Config struct {
	// MaxRetries is the number of attempts made after the first one.
	MaxRetries int
	// InitialBackoff is the delay before the first retry.
	InitialBackoff time.Duration
	// MaxBackoff caps the delay between attempts.
	MaxBackoff time.Duration
	// Multiplier grows the delay after every attempt.
	Multiplier float64
	// JitterFraction randomises each delay by +/- this fraction (0.0-1.0).
	JitterFraction float64
	// Retryable narrows which errors are retried. It is consulted only for
	// errors IsRetryable accepts; nil retries all of them.
	Retryable ErrorClassifier
}

// DefaultConfig returns the defaults used for YouTube page fetches.
func DefaultConfig() Config {
	return Config{
		MaxRetries:     3,
		InitialBackoff: 1 * time.Second,
		MaxBackoff:     30 * time.Second,
		Multiplier:     2.0,
		JitterFraction: 0.2,
	}
}

// ShouldRetry reports whether err may be retried under c.
func (c Config) ShouldRetry(err error) bool {
	if !IsRetryable(err) {
		return false
	}
	return c.Retryable == nil || c.Retryable(err)
}

// permanentError marks an error that must not be retried.
type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent wraps err so that IsRetryable rejects it. Unwrapping still reaches err.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// IsRetryable rejects context errors and errors wrapped with Permanent.
func IsRetryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var perm *permanentError
	return !errors.As(err, &perm)
}

// ExhaustedError is returned when every attempt failed with a retryable error.
type ExhaustedError struct {
	Attempts int
	Err      error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("gave up after %d attempts: %v", e.Attempts, e.Err)
}

func (e *ExhaustedError) Unwrap() error {
	return e.Err
}

// schedule yields the wait before each retry: the base delay grows by
// Multiplier up to MaxBackoff and every wait is jittered and capped.
type schedule struct {
	cfg  Config
	base time.Duration
}

func newSchedule(cfg Config) *schedule {
	return &schedule{cfg: cfg, base: cfg.InitialBackoff}
}

func (s *schedule) next() time.Duration {
	wait := min(s.base+jitter(s.base, s.cfg.JitterFraction), s.cfg.MaxBackoff)
	s.base = min(time.Duration(float64(s.base)*s.cfg.Multiplier), s.cfg.MaxBackoff)
	return max(wait, 0)
}

// Do calls fn until it succeeds, cfg.ShouldRetry rejects its error, the
// retries run out or ctx is done.
func Do(ctx context.Context, cfg Config, fn func(context.Context) error) error {
	waits := newSchedule(cfg)

	for attempt := 1; ; attempt++ {
		err := fn(ctx)
		switch {
		case err == nil:
			return nil
		case !cfg.ShouldRetry(err):
			return err
		case attempt > cfg.MaxRetries:
			return &ExhaustedError{Attempts: attempt, Err: err}
		}

		if err := sleep(ctx, waits.next()); err != nil {
			return err
		}
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// jitter returns a random duration in [-fraction*d, +fraction*d].
func jitter(d time.Duration, fraction float64) time.Duration {
	if fraction <= 0 {
		return 0
	}
	spread := float64(d) * fraction
	return time.Duration((rand.Float64()*2 - 1) * spread)
}
