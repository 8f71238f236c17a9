package feed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/sourcegraph/conc/pool"

	"ytshorts/description"
	ythttp "ytshorts/http"
	"ytshorts/internal/logging"
	"ytshorts/youtube"
)

// Lister lists the Shorts of a channel.
type Lister interface {
	List(ctx context.Context, src youtube.Source, limit int) (*youtube.Listing, error)
}

// DetailFetcher reads the watch page of a video.
type DetailFetcher interface {
	Fetch(ctx context.Context, videoID string) (*youtube.VideoDetails, error)
}

// Gate refuses work after a rate limit. *cache.Gate implements it.
type Gate interface {
	Allow(ctx context.Context) (bool, error)
	Trip(ctx context.Context) error
}

// BuildObserver is told about build durations and rate-limit trips.
type BuildObserver interface {
	ObserveBuild(d time.Duration, err error)
	ObserveRateLimitTrip()
}

// Builder builds feeds.
type Builder struct {
	lister    Lister
	details   DetailFetcher
	gate      Gate
	baseURL   string
	itemLimit int
	workers   int
	logger    *slog.Logger
	observer  description.Observer
	buildObs  BuildObserver
	policy    *bluemonday.Policy
	now       func() time.Time
}

// Option configures a Builder.
type Option func(*Builder)

// WithGate refuses builds while gate is closed and closes it on a 429.
func WithGate(g Gate) Option {
	return func(b *Builder) { b.gate = g }
}

// WithBaseURL sets the YouTube origin. Defaults to https://www.youtube.com.
func WithBaseURL(u string) Option {
	return func(b *Builder) { b.baseURL = strings.TrimRight(u, "/") }
}

// WithItemLimit sets the limit used when Build is called with limit <= 0.
func WithItemLimit(n int) Option {
	return func(b *Builder) { b.itemLimit = n }
}

// WithWorkers bounds concurrent watch page fetches.
func WithWorkers(n int) Option {
	return func(b *Builder) { b.workers = n }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(b *Builder) { b.logger = l }
}

// WithObserver reports every description reconstruction to o.
func WithObserver(o description.Observer) Option {
	return func(b *Builder) { b.observer = o }
}

// WithBuildObserver reports build timings and gate trips to o.
func WithBuildObserver(o BuildObserver) Option {
	return func(b *Builder) { b.buildObs = o }
}

// NewBuilder creates a builder.
func NewBuilder(lister Lister, details DetailFetcher, opts ...Option) *Builder {
	b := &Builder{
		lister:    lister,
		details:   details,
		baseURL:   "https://www.youtube.com",
		itemLimit: DefaultItemLimit,
		workers:   4,
		policy:    newPolicy(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	b.logger = logging.OrDefault(b.logger)
	if b.workers < 1 {
		b.workers = 1
	}
	if b.itemLimit < 1 {
		b.itemLimit = DefaultItemLimit
	}
	return b
}

// Build lists the Shorts of src and builds at most limit items, in listing order.
func (b *Builder) Build(ctx context.Context, src youtube.Source, limit int) (feed *Feed, err error) {
	start := b.now()
	defer func() {
		if b.buildObs != nil {
			b.buildObs.ObserveBuild(b.now().Sub(start), err)
		}
	}()

	if limit <= 0 {
		limit = b.itemLimit
	}

	if b.gate != nil {
		ok, err := b.gate.Allow(ctx)
		if err != nil {
			return nil, fmt.Errorf("check rate limit gate: %w", err)
		}
		if !ok {
			return nil, ErrRateLimited
		}
	}

	feed, err = b.assemble(ctx, src, limit)
	if err != nil && ythttp.IsRateLimited(err) {
		b.trip(ctx)
		return nil, fmt.Errorf("%w: %v", ErrRateLimited, err)
	}
	return feed, err
}

func (b *Builder) assemble(ctx context.Context, src youtube.Source, limit int) (*Feed, error) {
	listing, err := b.lister.List(ctx, src, limit)
	if err != nil {
		return nil, err
	}

	shorts := listing.Shorts
	if len(shorts) > limit {
		shorts = shorts[:limit]
	}

	items := make([]Item, len(shorts))
	p := pool.New().WithMaxGoroutines(b.workers).WithContext(ctx).WithCancelOnError().WithFirstError()
	for i, short := range shorts {
		p.Go(func(ctx context.Context) error {
			item, err := b.buildItem(ctx, short)
			if err != nil {
				return err
			}
			items[i] = item
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return nil, err
	}

	b.logger.Info("feed built", "source", src.String(), "items", len(items))
	return &Feed{
		Title:   listing.Channel.Title + " - YouTube",
		URL:     listing.Channel.URL,
		IconURL: listing.Channel.IconURL,
		Updated: b.now().UTC(),
		Items:   items,
	}, nil
}

// buildItem fetches and renders one Short. Rate limits and malformed pages
// abort the build; other fetch failures leave the item without a description.
func (b *Builder) buildItem(ctx context.Context, short youtube.Short) (Item, error) {
	details, err := b.details.Fetch(ctx, short.VideoID)
	if err != nil {
		if ythttp.IsRateLimited(err) || errors.Is(err, youtube.ErrStructuralData) ||
			errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return Item{}, err
		}
		b.logger.Warn("watch page fetch failed", "video_id", short.VideoID, "error", err)
		return b.newItem(short, nil, description.Result{}), nil
	}

	anns := details.Annotations
	if details.AnnotationErr != nil {
		b.logger.Warn("description links dropped", "video_id", short.VideoID, "error", details.AnnotationErr)
		anns = nil
	}

	opts := []description.Option{
		description.WithBaseURL(b.baseURL),
		description.WithLogger(b.logger.With("video_id", short.VideoID)),
	}
	if b.observer != nil {
		opts = append(opts, description.WithObserver(b.observer))
	}
	desc := description.Reconstruct(details.Description, anns, opts...)
	return b.newItem(short, details, desc), nil
}

func (b *Builder) trip(ctx context.Context) {
	b.logger.Warn("youtube rate limit hit, pausing requests")
	if b.buildObs != nil {
		b.buildObs.ObserveRateLimitTrip()
	}
	if b.gate == nil {
		return
	}
	if err := b.gate.Trip(context.WithoutCancel(ctx)); err != nil {
		b.logger.Error("failed to close rate limit gate", "error", err)
	}
}
