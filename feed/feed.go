// Package feed assembles Shorts feeds from a channel listing and the watch
// page of every Short, and encodes them as Atom or JSON Feed documents.
package feed

import (
	"errors"
	"time"

	"ytshorts/description"
)

// ErrRateLimited is returned while YouTube is refusing our requests.
var ErrRateLimited = errors.New("feed: rate limited by YouTube")

// DefaultItemLimit is the number of items built when no limit is given.
const DefaultItemLimit = 99

// Feed is a built Shorts feed.
type Feed struct {
	Title   string
	URL     string
	IconURL string
	Updated time.Time
	Items   []Item
}

// Item is one Short.
type Item struct {
	// ID is the video id.
	ID string
	// UID is a stable name-based UUID derived from URL.
	UID       string
	Title     string
	Author    string
	Published time.Time
	URL       string
	Thumbnail string
	// Content is the sanitized HTML body: thumbnail link and description.
	Content string
	// Description is the reconstruction the content was rendered from.
	Description description.Result
	// Unavailable is set for removed or private videos.
	Unavailable bool
}
