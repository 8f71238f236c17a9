package youtube

import (
	"bytes"
	"context"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"ytshorts/internal/logging"
)

// Channel describes the channel a listing belongs to.
type Channel struct {
	Title     string
	URL       string
	IconURL   string
	ChannelID string
}

// Short is one entry of the Shorts tab.
type Short struct {
	VideoID string
	Title   string
}

// Listing is the parsed Shorts tab of a channel.
type Listing struct {
	Channel Channel
	Shorts  []Short
}

// ChannelInfoProvider looks up channel details by channel id.
type ChannelInfoProvider interface {
	ChannelInfo(ctx context.Context, channelID string) (Channel, error)
}

// ShortsLister reads the Shorts tab of a channel page.
type ShortsLister struct {
	pages    *PageFetcher
	baseURL  string
	channels ChannelInfoProvider
	logger   *slog.Logger
}

// NewShortsLister creates a lister. channels may be nil.
func NewShortsLister(pages *PageFetcher, baseURL string, channels ChannelInfoProvider, logger *slog.Logger) *ShortsLister {
	return &ShortsLister{
		pages:    pages,
		baseURL:  strings.TrimRight(baseURL, "/"),
		channels: channels,
		logger:   logging.OrDefault(logger),
	}
}

// List fetches the Shorts tab of src and returns at most limit Shorts in page
// order. A limit <= 0 returns every Short on the page.
func (l *ShortsLister) List(ctx context.Context, src Source, limit int) (*Listing, error) {
	pageURL, err := src.ShortsURL(l.baseURL)
	if err != nil {
		return nil, err
	}

	html, err := l.pages.Fetch(ctx, PageListing, pageURL, false)
	if err != nil {
		return nil, err
	}

	data, err := ExtractInitialData(html)
	if err != nil {
		return nil, &StructuralError{URL: pageURL, Field: "ytInitialData", Err: err}
	}
	if data.Contents == nil || data.Contents.TwoColumnBrowseResultsRenderer == nil {
		return nil, &StructuralError{URL: pageURL, Field: "contents"}
	}

	tab := shortsTab(data.Contents.TwoColumnBrowseResultsRenderer.Tabs)
	if tab == nil || tab.Content == nil || tab.Content.RichGridRenderer == nil {
		return nil, &StructuralError{URL: pageURL, Field: "shorts tab"}
	}

	listing := &Listing{
		Channel: l.channel(ctx, src, pageURL, data, html),
		Shorts:  parseShorts(tab.Content.RichGridRenderer.Contents, limit),
	}
	l.logger.Debug("listed shorts", "source", src.String(), "count", len(listing.Shorts))
	return listing, nil
}

// shortsTab picks the selected tab, else the tab titled "Shorts", else the third tab.
func shortsTab(tabs []Tab) *TabRenderer {
	for _, t := range tabs {
		if t.TabRenderer != nil && t.TabRenderer.Selected {
			return t.TabRenderer
		}
	}
	for _, t := range tabs {
		if t.TabRenderer != nil && strings.EqualFold(t.TabRenderer.Title, "Shorts") {
			return t.TabRenderer
		}
	}
	if len(tabs) > 2 {
		return tabs[2].TabRenderer
	}
	return nil
}

func parseShorts(items []RichGridContent, limit int) []Short {
	var shorts []Short
	for _, item := range items {
		if item.RichItemRenderer == nil || item.RichItemRenderer.Content == nil {
			continue
		}
		s, ok := parseShort(item.RichItemRenderer.Content)
		if !ok {
			continue
		}
		shorts = append(shorts, s)
		if limit > 0 && len(shorts) >= limit {
			break
		}
	}
	return shorts
}

func parseShort(c *RichItemContent) (Short, bool) {
	if vm := c.ShortsLockupViewModel; vm != nil {
		if vm.OnTap == nil || vm.OnTap.InnertubeCommand == nil || vm.OnTap.InnertubeCommand.ReelWatchEndpoint == nil {
			return Short{}, false
		}
		s := Short{VideoID: vm.OnTap.InnertubeCommand.ReelWatchEndpoint.VideoID}
		if vm.OverlayMetadata != nil && vm.OverlayMetadata.PrimaryText != nil {
			s.Title = vm.OverlayMetadata.PrimaryText.Content
		}
		return s, s.VideoID != ""
	}
	if r := c.ReelItemRenderer; r != nil && r.VideoID != "" {
		return Short{VideoID: r.VideoID, Title: r.Headline.GetText()}, true
	}
	return Short{}, false
}

func (l *ShortsLister) channel(ctx context.Context, src Source, pageURL string, data *InitialData, html []byte) Channel {
	ch := Channel{URL: pageURL}
	if data.Metadata != nil && data.Metadata.ChannelMetadataRenderer != nil {
		md := data.Metadata.ChannelMetadataRenderer
		ch.Title = md.Title
		ch.ChannelID = md.ExternalID
		ch.IconURL = md.Avatar.First()
	}
	if ch.ChannelID == "" && src.Kind == SourceChannel {
		ch.ChannelID = src.Value
	}
	if ch.Title == "" {
		ch.Title = pageTitle(html)
	}

	if (ch.Title == "" || ch.IconURL == "") && ch.ChannelID != "" && l.channels != nil {
		info, err := l.channels.ChannelInfo(ctx, ch.ChannelID)
		if err != nil {
			l.logger.Warn("channel lookup failed", "channel_id", ch.ChannelID, "error", err)
			return ch
		}
		if ch.Title == "" {
			ch.Title = info.Title
		}
		if ch.IconURL == "" {
			ch.IconURL = info.IconURL
		}
	}
	return ch
}

// pageTitle returns the document title without the " - YouTube" suffix.
func pageTitle(html []byte) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return ""
	}
	title := strings.TrimSpace(doc.Find("title").First().Text())
	return strings.TrimSpace(strings.Replace(title, " - YouTube", "", 1))
}
