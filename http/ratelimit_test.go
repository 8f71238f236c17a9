package http

import (
	"context"
	"testing"
	"time"
)

func TestRateLimiterSpacesRequests(t *testing.T) {
	rl := NewRateLimiter(20) // one token every 50ms
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 3; i++ {
		if err := rl.Wait(ctx, "https://www.youtube.com/watch?v=a"); err != nil {
			t.Fatalf("Wait() error = %v", err)
		}
	}
	if elapsed := time.Since(start); elapsed < 80*time.Millisecond {
		t.Errorf("expected requests to be spaced out, took %v", elapsed)
	}
}

func TestRateLimiterDisabled(t *testing.T) {
	rl := NewRateLimiter(0)
	start := time.Now()
	for i := 0; i < 10; i++ {
		if err := rl.Wait(context.Background(), "https://www.youtube.com/"); err != nil {
			t.Fatalf("Wait() error = %v", err)
		}
	}
	if elapsed := time.Since(start); elapsed > 50*time.Millisecond {
		t.Errorf("disabled limiter should not wait, took %v", elapsed)
	}
}

func TestRateLimiterPerHost(t *testing.T) {
	rl := NewRateLimiter(0)
	rl.SetHostRate("slow.example", 1)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	if err := rl.Wait(ctx, "https://slow.example/a"); err != nil {
		t.Fatalf("first Wait() error = %v", err)
	}
	if err := rl.Wait(ctx, "https://slow.example/b"); err == nil {
		t.Error("expected second request to slow host to exceed the deadline")
	}
	if err := rl.Wait(context.Background(), "https://fast.example/"); err != nil {
		t.Errorf("other hosts should not be limited: %v", err)
	}
}

func TestRateLimiterPause(t *testing.T) {
	rl := NewRateLimiter(0)
	rl.Pause("https://www.youtube.com/x", time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := rl.Wait(ctx, "https://www.youtube.com/y"); err == nil {
		t.Error("expected paused host to block until the context expires")
	}
	if err := rl.Wait(context.Background(), "https://img.youtube.com/y"); err != nil {
		t.Errorf("pause must only apply to its host: %v", err)
	}
}

func TestHostOf(t *testing.T) {
	tests := map[string]string{
		"https://www.youtube.com/watch?v=x": "www.youtube.com",
		"http://localhost:8080/path":        "localhost",
		"not a url":                         "unknown",
	}
	for in, want := range tests {
		if got := hostOf(in); got != want {
			t.Errorf("hostOf(%q) = %q, want %q", in, got, want)
		}
	}
}
