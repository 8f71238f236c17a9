package feed

import (
	"fmt"
	"html"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"

	"ytshorts/description"
	"ytshorts/youtube"
)

// newPolicy returns the sanitizer applied to item content. Links leaving the
// feed open in a new tab.
func newPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AddTargetBlankToFullyQualifiedLinks(true)
	return p
}

// newItem renders a Short. details may be nil when the watch page could not be read.
func (b *Builder) newItem(short youtube.Short, details *youtube.VideoDetails, desc description.Result) Item {
	watchURL := youtube.WatchURL(b.baseURL, short.VideoID)
	item := Item{
		ID:          short.VideoID,
		UID:         uuid.NewSHA1(uuid.NameSpaceURL, []byte(watchURL)).String(),
		Title:       short.Title,
		URL:         watchURL,
		Thumbnail:   youtube.ThumbnailURL(b.baseURL, short.VideoID),
		Description: desc,
	}
	if details != nil {
		item.Author = details.Author
		item.Published = details.Published
		item.Unavailable = details.Unavailable
	}

	content := fmt.Sprintf(`<a href="%s"><img src="%s" /></a><br />%s`,
		html.EscapeString(item.URL), html.EscapeString(item.Thumbnail), desc.HTML())
	item.Content = b.policy.Sanitize(content)
	return item
}
