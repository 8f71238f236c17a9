package youtube

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"ytshorts/cache"
	ythttp "ytshorts/http"
	"ytshorts/internal/logging"
)

// Page kinds reported to a FetchObserver.
const (
	PageListing = "listing"
	PageWatch   = "watch"
)

// Getter performs a GET request. *ythttp.Client implements it.
type Getter interface {
	Get(ctx context.Context, url string) (*ythttp.Response, error)
}

// FetchObserver is notified of every page fetch.
type FetchObserver interface {
	ObservePageFetch(kind string, cached bool)
}

// PageFetcher downloads YouTube pages, optionally through a cache.
type PageFetcher struct {
	client   Getter
	store    cache.Store
	ttl      time.Duration
	observer FetchObserver
	logger   *slog.Logger
}

// FetcherOption configures a PageFetcher.
type FetcherOption func(*PageFetcher)

// WithCache caches pages fetched with cached=true in store for ttl.
func WithCache(store cache.Store, ttl time.Duration) FetcherOption {
	return func(f *PageFetcher) {
		f.store = store
		f.ttl = ttl
	}
}

// WithFetchObserver reports every fetch to o.
func WithFetchObserver(o FetchObserver) FetcherOption {
	return func(f *PageFetcher) {
		f.observer = o
	}
}

// WithFetchLogger sets the logger.
func WithFetchLogger(l *slog.Logger) FetcherOption {
	return func(f *PageFetcher) {
		f.logger = l
	}
}

// NewPageFetcher creates a fetcher over client.
func NewPageFetcher(client Getter, opts ...FetcherOption) *PageFetcher {
	f := &PageFetcher{client: client}
	for _, opt := range opts {
		opt(f)
	}
	f.logger = logging.OrDefault(f.logger)
	return f
}

// Fetch returns the body of url. When cached is true and a cache is
// configured, a stored copy is returned if present and fresh copies are stored.
func (f *PageFetcher) Fetch(ctx context.Context, kind, url string, cached bool) ([]byte, error) {
	useCache := cached && f.store != nil
	key := "page:" + url

	if useCache {
		body, err := f.store.Get(ctx, key)
		if err == nil {
			f.observe(kind, true)
			return body, nil
		}
		if !errors.Is(err, cache.ErrMiss) {
			f.logger.Warn("page cache read failed", "url", url, "error", err)
		}
	}

	resp, err := f.client.Get(ctx, url)
	if err != nil {
		return nil, err
	}
	f.observe(kind, false)

	if useCache {
		if err := f.store.Set(ctx, key, resp.Body, f.ttl); err != nil {
			f.logger.Warn("page cache write failed", "url", url, "error", err)
		}
	}
	return resp.Body, nil
}

func (f *PageFetcher) observe(kind string, cached bool) {
	if f.observer != nil {
		f.observer.ObservePageFetch(kind, cached)
	}
}
