package http

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newTestBreaker(threshold int) (*CircuitBreaker, *time.Time) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	cb := NewCircuitBreaker(BreakerConfig{FailureThreshold: threshold, RecoveryTimeout: time.Minute})
	cb.now = func() time.Time { return now }
	return cb, &now
}

func TestCircuitBreakerOpensAfterThreshold(t *testing.T) {
	cb, _ := newTestBreaker(3)
	failure := errors.New("connection refused")

	for i := 0; i < 2; i++ {
		cb.RecordFailure("www.youtube.com", failure)
	}
	if err := cb.Allow("www.youtube.com"); err != nil {
		t.Fatalf("circuit should still be closed: %v", err)
	}

	cb.RecordFailure("www.youtube.com", failure)
	if err := cb.Allow("www.youtube.com"); !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("expected ErrCircuitOpen, got %v", err)
	}
	if s := cb.State("www.youtube.com"); s != CircuitOpen {
		t.Errorf("expected open state, got %s", s)
	}
	if err := cb.Allow("img.youtube.com"); err != nil {
		t.Errorf("other hosts must stay closed: %v", err)
	}
}

func TestCircuitBreakerIgnoresPermanentErrors(t *testing.T) {
	cb, _ := newTestBreaker(1)
	cb.RecordFailure("www.youtube.com", &HTTPError{StatusCode: 404})
	cb.RecordFailure("www.youtube.com", &RateLimitError{})

	if s := cb.State("www.youtube.com"); s != CircuitClosed {
		t.Errorf("expected closed state, got %s", s)
	}
}

func TestCircuitBreakerHalfOpenTrial(t *testing.T) {
	cb, now := newTestBreaker(1)
	cb.RecordFailure("h", errors.New("boom"))

	*now = now.Add(2 * time.Minute)
	if s := cb.State("h"); s != CircuitHalfOpen {
		t.Fatalf("expected half-open after recovery timeout, got %s", s)
	}
	if err := cb.Allow("h"); err != nil {
		t.Fatalf("trial request should be allowed: %v", err)
	}
	if err := cb.Allow("h"); !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("only one trial request may run, got %v", err)
	}

	cb.RecordSuccess("h")
	if s := cb.State("h"); s != CircuitClosed {
		t.Errorf("expected closed after a successful trial request, got %s", s)
	}
}

func TestCircuitBreakerTrialFailureReopens(t *testing.T) {
	cb, now := newTestBreaker(1)
	cb.RecordFailure("h", errors.New("boom"))
	*now = now.Add(2 * time.Minute)

	if err := cb.Allow("h"); err != nil {
		t.Fatalf("trial request should be allowed: %v", err)
	}
	cb.RecordFailure("h", errors.New("still down"))

	if err := cb.Allow("h"); !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("expected circuit to reopen, got %v", err)
	}
}

func TestCircuitBreakerHalfOpenSettledByNonTransientError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want CircuitState
	}{
		{"cancelled", context.Canceled, CircuitHalfOpen},
		{"deadline", context.DeadlineExceeded, CircuitHalfOpen},
		{"not found", &HTTPError{StatusCode: 404}, CircuitClosed},
		{"rate limited", &RateLimitError{URL: "u"}, CircuitClosed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cb, now := newTestBreaker(1)
			cb.RecordFailure("h", errors.New("boom"))
			*now = now.Add(2 * time.Minute)

			if err := cb.Allow("h"); err != nil {
				t.Fatalf("trial request should be allowed: %v", err)
			}
			cb.RecordFailure("h", tt.err)

			if s := cb.State("h"); s != tt.want {
				t.Errorf("state = %s, want %s", s, tt.want)
			}
			*now = now.Add(time.Hour)
			if err := cb.Allow("h"); err != nil {
				t.Errorf("circuit must not stay locked after the trial request: %v", err)
			}
		})
	}
}

func TestCircuitStateString(t *testing.T) {
	tests := map[CircuitState]string{
		CircuitClosed:    "closed",
		CircuitOpen:      "open",
		CircuitHalfOpen:  "half-open",
		CircuitState(42): "unknown",
	}
	for s, want := range tests {
		if got := s.String(); got != want {
			t.Errorf("CircuitState(%d).String() = %q, want %q", s, got, want)
		}
	}
}

func TestNilCircuitBreaker(t *testing.T) {
	var cb *CircuitBreaker
	if err := cb.Allow("h"); err != nil {
		t.Errorf("nil breaker should allow: %v", err)
	}
	cb.RecordFailure("h", errors.New("x"))
	cb.RecordSuccess("h")
	if cb.State("h") != CircuitClosed {
		t.Error("nil breaker should report closed")
	}
}
