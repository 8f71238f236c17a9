package ytshorts

import (
	"errors"

	"ytshorts/cache"
	"ytshorts/feed"
	ythttp "ytshorts/http"
	"ytshorts/youtube"
)

// Type aliases for convenient error handling.
type (
	// StructuralError reports a page that lacks a field we rely on.
	StructuralError = youtube.StructuralError
	// AnnotationError reports a description link that cannot be mapped.
	AnnotationError = youtube.AnnotationError
	// RateLimitError is a 429 answer from YouTube.
	RateLimitError = ythttp.RateLimitError
	// HTTPError is any other non-2xx answer.
	HTTPError = ythttp.HTTPError
)

// Sentinel errors exported from sub-packages.
var (
	// ErrRateLimited is returned while the rate-limit gate is closed.
	ErrRateLimited = feed.ErrRateLimited
	// ErrStructuralData matches every StructuralError.
	ErrStructuralData = youtube.ErrStructuralData
	// ErrNoInitialData means a page carried no ytInitialData.
	ErrNoInitialData = youtube.ErrNoInitialData
	// ErrInvalidSource means no username, channel id or custom name was given.
	ErrInvalidSource = youtube.ErrInvalidSource
	// ErrChannelNotFound is returned by the Data API lookup.
	ErrChannelNotFound = youtube.ErrChannelNotFound
	// ErrCircuitOpen means a host failed too often and is skipped for a while.
	ErrCircuitOpen = ythttp.ErrCircuitOpen
	// ErrCacheMiss is returned by cache stores for absent keys.
	ErrCacheMiss = cache.ErrMiss
)

// IsRateLimited reports whether err came from YouTube refusing requests,
// either directly or through a closed gate.
func IsRateLimited(err error) bool {
	return ythttp.IsRateLimited(err) || errors.Is(err, feed.ErrRateLimited)
}
