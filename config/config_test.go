package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfigIsValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config should be valid: %v", err)
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.BaseURL != "https://www.youtube.com" {
		t.Errorf("BaseURL = %q", cfg.BaseURL)
	}
	if cfg.ItemLimit != 99 {
		t.Errorf("ItemLimit = %d, want 99", cfg.ItemLimit)
	}
	if cfg.WatchPageTTL != 72*time.Hour {
		t.Errorf("WatchPageTTL = %v, want 72h", cfg.WatchPageTTL)
	}
	if cfg.RateLimitCooldown != 16*time.Minute {
		t.Errorf("RateLimitCooldown = %v, want 16m", cfg.RateLimitCooldown)
	}
	if cfg.HTTP.AcceptLanguage != "en-US" {
		t.Errorf("AcceptLanguage = %q", cfg.HTTP.AcceptLanguage)
	}
	if cfg.Cache.MaxEntries != 256 {
		t.Errorf("Cache.MaxEntries = %d, want 256", cfg.Cache.MaxEntries)
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ytshorts.yaml")
	content := strings.Join([]string{
		"base_url: https://www.youtube.com/",
		"item_limit: 20",
		"workers: 8",
		"http:",
		"  rps: 1.5",
		"cache:",
		"  backend: file",
		"  dir: " + dir,
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("YTSHORTS_WORKERS", "2")
	t.Setenv("YTSHORTS_RETRY_MAX_RETRIES", "1")
	t.Setenv("YTSHORTS_WATCH_PAGE_TTL", "1h")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.BaseURL != "https://www.youtube.com" {
		t.Errorf("trailing slash should be trimmed, got %q", cfg.BaseURL)
	}
	if cfg.ItemLimit != 20 {
		t.Errorf("ItemLimit = %d, want 20", cfg.ItemLimit)
	}
	if cfg.Workers != 2 {
		t.Errorf("env should override file: Workers = %d, want 2", cfg.Workers)
	}
	if cfg.Retry.MaxRetries != 1 {
		t.Errorf("Retry.MaxRetries = %d, want 1", cfg.Retry.MaxRetries)
	}
	if cfg.WatchPageTTL != time.Hour {
		t.Errorf("WatchPageTTL = %v, want 1h", cfg.WatchPageTTL)
	}
	if cfg.HTTP.RPS != 1.5 {
		t.Errorf("HTTP.RPS = %v, want 1.5", cfg.HTTP.RPS)
	}
	if cfg.Cache.Backend != "file" || cfg.Cache.Dir != dir {
		t.Errorf("Cache = %+v", cfg.Cache)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing explicit config file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		want   string
	}{
		{"empty base url", func(c *Config) { c.BaseURL = "" }, "base_url"},
		{"zero item limit", func(c *Config) { c.ItemLimit = 0 }, "item_limit"},
		{"item limit too large", func(c *Config) { c.ItemLimit = 100 }, "item_limit"},
		{"no workers", func(c *Config) { c.Workers = 0 }, "workers"},
		{"zero cooldown", func(c *Config) { c.RateLimitCooldown = 0 }, "rate_limit_cooldown"},
		{"negative rps", func(c *Config) { c.HTTP.RPS = -1 }, "http.rps"},
		{"backoff order", func(c *Config) { c.Retry.MaxBackoff = time.Millisecond }, "retry.max_backoff"},
		{"multiplier", func(c *Config) { c.Retry.Multiplier = 1 }, "retry.multiplier"},
		{"unknown backend", func(c *Config) { c.Cache.Backend = "disk" }, "cache.backend"},
		{"memory without room", func(c *Config) { c.Cache.MaxEntries = 0 }, "cache.max_entries"},
		{"file without dir", func(c *Config) { c.Cache.Backend = "file"; c.Cache.Dir = "" }, "cache.dir"},
		{"redis without addr", func(c *Config) { c.Cache.Backend = "redis"; c.Redis.Addr = "" }, "redis.addr"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q should mention %q", err, tt.want)
			}
		})
	}
}
