// Package config manages application configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment variables that override configuration.
const EnvPrefix = "YTSHORTS"

// Config holds all application configuration for building Shorts feeds.
type Config struct {
	// BaseURL is the YouTube origin every relative link is resolved against.
	BaseURL string `mapstructure:"base_url"`
	// ItemLimit is the default number of feed items (1-99).
	ItemLimit int `mapstructure:"item_limit"`
	// Workers bounds the number of concurrent watch page fetches.
	Workers int `mapstructure:"workers"`
	// WatchPageTTL is how long fetched watch pages are cached.
	WatchPageTTL time.Duration `mapstructure:"watch_page_ttl"`
	// RateLimitCooldown is how long feed building is refused after a 429.
	RateLimitCooldown time.Duration `mapstructure:"rate_limit_cooldown"`
	// APIKey enables the YouTube Data API channel lookup when set.
	APIKey string `mapstructure:"api_key"`

	HTTP   HTTPConfig   `mapstructure:"http"`
	Retry  RetryConfig  `mapstructure:"retry"`
	Cache  CacheConfig  `mapstructure:"cache"`
	Redis  RedisConfig  `mapstructure:"redis"`
	Log    LogConfig    `mapstructure:"log"`
	Server ServerConfig `mapstructure:"server"`
}

// HTTPConfig configures the page client.
type HTTPConfig struct {
	Timeout        time.Duration `mapstructure:"timeout"`
	UserAgent      string        `mapstructure:"user_agent"`
	AcceptLanguage string        `mapstructure:"accept_language"`
	RPS            float64       `mapstructure:"rps"`
}

// RetryConfig configures retries of transient page failures.
type RetryConfig struct {
	MaxRetries     int           `mapstructure:"max_retries"`
	InitialBackoff time.Duration `mapstructure:"initial_backoff"`
	MaxBackoff     time.Duration `mapstructure:"max_backoff"`
	Multiplier     float64       `mapstructure:"multiplier"`
}

// CacheConfig selects the cache backend.
type CacheConfig struct {
	// Backend is one of "memory", "redis" or "file".
	Backend string `mapstructure:"backend"`
	// Dir is the directory used by the file backend.
	Dir string `mapstructure:"dir"`
	// MaxEntries bounds the memory backend.
	MaxEntries int `mapstructure:"max_entries"`
}

// RedisConfig configures the redis cache backend.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

// LogConfig configures the structured logger.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ServerConfig configures the feed server.
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// DefaultConfig returns configuration with safe defaults.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:           "https://www.youtube.com",
		ItemLimit:         99,
		Workers:           4,
		WatchPageTTL:      72 * time.Hour,
		RateLimitCooldown: 16 * time.Minute,
		HTTP: HTTPConfig{
			Timeout:        30 * time.Second,
			UserAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			AcceptLanguage: "en-US",
			RPS:            2.5,
		},
		Retry: RetryConfig{
			MaxRetries:     3,
			InitialBackoff: 1 * time.Second,
			MaxBackoff:     30 * time.Second,
			Multiplier:     2.0,
		},
		Cache: CacheConfig{
			Backend:    "memory",
			Dir:        filepath.Join(os.TempDir(), "ytshorts"),
			MaxEntries: 256,
		},
		Redis: RedisConfig{
			Addr:   "localhost:6379",
			Prefix: "ytshorts:",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
	}
}

// Load reads configuration from path (or the default search locations when
// path is empty) and YTSHORTS_* environment variables on top of the defaults.
// Priority: env vars > config file > defaults. A missing config file is not an error.
func Load(path string) (*Config, error) {
	return load(viper.New(), path)
}

func load(v *viper.Viper, path string) (*Config, error) {
	setDefaults(v, DefaultConfig())

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("ytshorts")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "ytshorts"))
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// setDefaults registers every key so that AutomaticEnv can override it.
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("base_url", d.BaseURL)
	v.SetDefault("item_limit", d.ItemLimit)
	v.SetDefault("workers", d.Workers)
	v.SetDefault("watch_page_ttl", d.WatchPageTTL)
	v.SetDefault("rate_limit_cooldown", d.RateLimitCooldown)
	v.SetDefault("api_key", d.APIKey)

	v.SetDefault("http.timeout", d.HTTP.Timeout)
	v.SetDefault("http.user_agent", d.HTTP.UserAgent)
	v.SetDefault("http.accept_language", d.HTTP.AcceptLanguage)
	v.SetDefault("http.rps", d.HTTP.RPS)

	v.SetDefault("retry.max_retries", d.Retry.MaxRetries)
	v.SetDefault("retry.initial_backoff", d.Retry.InitialBackoff)
	v.SetDefault("retry.max_backoff", d.Retry.MaxBackoff)
	v.SetDefault("retry.multiplier", d.Retry.Multiplier)

	v.SetDefault("cache.backend", d.Cache.Backend)
	v.SetDefault("cache.dir", d.Cache.Dir)
	v.SetDefault("cache.max_entries", d.Cache.MaxEntries)

	v.SetDefault("redis.addr", d.Redis.Addr)
	v.SetDefault("redis.password", d.Redis.Password)
	v.SetDefault("redis.db", d.Redis.DB)
	v.SetDefault("redis.prefix", d.Redis.Prefix)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)

	v.SetDefault("server.addr", d.Server.Addr)
}

// Validate checks that configuration values are valid and consistent.
// It returns an error if any configuration value is invalid.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base_url must not be empty")
	}
	if c.ItemLimit < 1 || c.ItemLimit > 99 {
		return fmt.Errorf("item_limit must be between 1 and 99")
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be positive")
	}
	if c.WatchPageTTL < 0 {
		return fmt.Errorf("watch_page_ttl must be non-negative")
	}
	if c.RateLimitCooldown <= 0 {
		return fmt.Errorf("rate_limit_cooldown must be positive")
	}
	if c.HTTP.Timeout <= 0 {
		return fmt.Errorf("http.timeout must be positive")
	}
	if c.HTTP.RPS < 0 {
		return fmt.Errorf("http.rps must be non-negative")
	}
	if c.Retry.MaxRetries < 0 {
		return fmt.Errorf("retry.max_retries must be non-negative")
	}
	if c.Retry.InitialBackoff <= 0 {
		return fmt.Errorf("retry.initial_backoff must be positive")
	}
	if c.Retry.MaxBackoff < c.Retry.InitialBackoff {
		return fmt.Errorf("retry.max_backoff must be >= retry.initial_backoff")
	}
	if c.Retry.Multiplier <= 1 {
		return fmt.Errorf("retry.multiplier must be > 1")
	}
	switch c.Cache.Backend {
	case "memory":
		if c.Cache.MaxEntries < 1 {
			return fmt.Errorf("cache.max_entries must be positive")
		}
	case "redis":
	case "file":
		if c.Cache.Dir == "" {
			return fmt.Errorf("cache.dir is required for the file backend")
		}
	default:
		return fmt.Errorf("cache.backend must be one of memory, redis, file (got %q)", c.Cache.Backend)
	}
	if c.Cache.Backend == "redis" && c.Redis.Addr == "" {
		return fmt.Errorf("redis.addr is required for the redis backend")
	}
	return nil
}
