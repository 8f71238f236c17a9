package youtube

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"ytshorts/description"
)

// unavailableMarker appears in the page config of removed or private videos.
var unavailableMarker = []byte("IS_UNAVAILABLE_PAGE")

// hashtagPageType is the navigation type of hashtag links.
const hashtagPageType = "WEB_PAGE_TYPE_BROWSE"

// VideoDetails is what the watch page tells about a video.
type VideoDetails struct {
	Author    string
	Published time.Time
	// Description is the plain description text.
	Description string
	// Annotations are the links of Description, in producer order.
	Annotations []description.Annotation
	// AnnotationErr is set when the command runs could not be mapped;
	// Annotations is then nil and the description must stay unlinked.
	AnnotationErr error
	// Unavailable is true for removed or private videos.
	Unavailable bool
}

// WatchFetcher reads video details from watch pages.
type WatchFetcher struct {
	pages   *PageFetcher
	baseURL string
}

// NewWatchFetcher creates a watch page reader. Pages are fetched through the
// fetcher's cache.
func NewWatchFetcher(pages *PageFetcher, baseURL string) *WatchFetcher {
	return &WatchFetcher{pages: pages, baseURL: strings.TrimRight(baseURL, "/")}
}

// Fetch downloads and parses the watch page of videoID.
func (w *WatchFetcher) Fetch(ctx context.Context, videoID string) (*VideoDetails, error) {
	pageURL := WatchURL(w.baseURL, videoID)
	html, err := w.pages.Fetch(ctx, PageWatch, pageURL, true)
	if err != nil {
		return nil, err
	}
	return ParseWatchPage(pageURL, html)
}

// ParseWatchPage extracts VideoDetails from a watch page.
func ParseWatchPage(pageURL string, html []byte) (*VideoDetails, error) {
	if bytes.Contains(html, unavailableMarker) {
		return &VideoDetails{Unavailable: true}, nil
	}

	details := &VideoDetails{}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse watch page: %w", err)
	}
	if author, ok := doc.Find("span[itemprop=author] > link[itemprop=name]").First().Attr("content"); ok {
		details.Author = author
	}
	if published, ok := doc.Find("meta[itemprop=datePublished]").First().Attr("content"); ok {
		details.Published = parsePublished(published)
	}

	data, err := ExtractInitialData(html)
	if errors.Is(err, ErrNoInitialData) {
		return details, nil
	}
	if err != nil {
		return nil, &StructuralError{URL: pageURL, Field: "ytInitialData", Err: err}
	}
	if data.Contents == nil {
		return details, nil
	}

	watch := data.Contents.TwoColumnWatchNextResults
	if watch == nil || watch.Results == nil || watch.Results.Results == nil || watch.Results.Results.Contents == nil {
		return nil, &StructuralError{URL: pageURL, Field: "watch results"}
	}

	var secondary *VideoSecondaryInfoRenderer
	for _, c := range watch.Results.Results.Contents {
		if c.VideoSecondaryInfoRenderer != nil {
			secondary = c.VideoSecondaryInfoRenderer
			break
		}
	}
	if secondary == nil {
		return nil, &StructuralError{URL: pageURL, Field: "videoSecondaryInfoRenderer"}
	}

	if desc := secondary.AttributedDescription; desc != nil {
		details.Description = desc.Content
		details.Annotations, details.AnnotationErr = MapCommandRuns(desc.CommandRuns)
	}
	return details, nil
}

// MapCommandRuns converts description command runs into annotations.
// Every run must carry a length and a navigation target.
func MapCommandRuns(runs []CommandRun) ([]description.Annotation, error) {
	if len(runs) == 0 {
		return nil, nil
	}
	anns := make([]description.Annotation, 0, len(runs))
	for i, r := range runs {
		md := r.WebCommandMetadata()
		if md == nil {
			return nil, &AnnotationError{Index: i, Reason: "missing command metadata"}
		}
		if md.URL == "" {
			return nil, &AnnotationError{Index: i, Reason: "missing url"}
		}
		if r.Length == nil {
			return nil, &AnnotationError{Index: i, Reason: "missing length"}
		}
		anns = append(anns, description.Annotation{
			ApproxStart: r.StartIndex,
			Length:      *r.Length,
			IsHashtag:   md.WebPageType == hashtagPageType,
			Link:        description.ClassifyURL(md.URL),
		})
	}
	return anns, nil
}

// parsePublished accepts the ISO 8601 forms used by the datePublished meta tag.
func parsePublished(s string) time.Time {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, strings.TrimSpace(s)); err == nil {
			return t
		}
	}
	return time.Time{}
}
