package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"ytshorts/cache"
	"ytshorts/config"
	"ytshorts/feed"
	ythttp "ytshorts/http"
	"ytshorts/internal/logging"
	"ytshorts/internal/metrics"
	"ytshorts/internal/retry"
	"ytshorts/youtube"
)

// app is the wired feed pipeline.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	store   cache.Store
	client  *ythttp.Client
	gate    *cache.Gate
	metrics *metrics.Metrics
	builder *feed.Builder
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	logger := logging.Logger()

	store, err := cache.Open(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}

	client := ythttp.New(httpConfig(cfg))
	m := metrics.New()

	pages := youtube.NewPageFetcher(client,
		youtube.WithCache(store, cfg.WatchPageTTL),
		youtube.WithFetchObserver(m),
		youtube.WithFetchLogger(logger),
	)

	var channels youtube.ChannelInfoProvider
	if cfg.APIKey != "" {
		api, err := youtube.NewDataAPI(ctx, cfg.APIKey)
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("create data api client: %w", err)
		}
		channels = api
	}

	gate := cache.NewGate(store, cfg.RateLimitCooldown)
	builder := feed.NewBuilder(
		youtube.NewShortsLister(pages, cfg.BaseURL, channels, logger),
		youtube.NewWatchFetcher(pages, cfg.BaseURL),
		feed.WithGate(gate),
		feed.WithBaseURL(cfg.BaseURL),
		feed.WithItemLimit(cfg.ItemLimit),
		feed.WithWorkers(cfg.Workers),
		feed.WithLogger(logger),
		feed.WithObserver(m),
		feed.WithBuildObserver(m),
	)

	return &app{
		cfg:     cfg,
		logger:  logger,
		store:   store,
		client:  client,
		gate:    gate,
		metrics: m,
		builder: builder,
	}, nil
}

func httpConfig(cfg *config.Config) *ythttp.Config {
	hc := ythttp.DefaultConfig()
	hc.Timeout = cfg.HTTP.Timeout
	hc.UserAgent = cfg.HTTP.UserAgent
	hc.AcceptLanguage = cfg.HTTP.AcceptLanguage
	hc.RPS = cfg.HTTP.RPS
	hc.Retry = retry.Config{
		MaxRetries:     cfg.Retry.MaxRetries,
		InitialBackoff: cfg.Retry.InitialBackoff,
		MaxBackoff:     cfg.Retry.MaxBackoff,
		Multiplier:     cfg.Retry.Multiplier,
		JitterFraction: retry.DefaultConfig().JitterFraction,
	}
	return hc
}

func (a *app) Close() error {
	return errors.Join(a.client.Close(), a.store.Close())
}
