package youtube

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// initialDataRegex captures the JSON assigned to ytInitialData in a page script.
var initialDataRegex = regexp.MustCompile(`var ytInitialData = (.*?);</script>`)

// ExtractInitialData finds and decodes the ytInitialData object of a page.
func ExtractInitialData(html []byte) (*InitialData, error) {
	m := initialDataRegex.FindSubmatch(html)
	if m == nil {
		return nil, ErrNoInitialData
	}
	var data InitialData
	if err := json.Unmarshal(m[1], &data); err != nil {
		return nil, fmt.Errorf("decode ytInitialData: %w", err)
	}
	return &data, nil
}

// InitialData is the subset of ytInitialData read from channel and watch pages.
type InitialData struct {
	Contents *Contents `json:"contents,omitempty"`
	Metadata *Metadata `json:"metadata,omitempty"`
}

// Contents holds the main content structure.
type Contents struct {
	TwoColumnBrowseResultsRenderer *TwoColumnBrowseResultsRenderer `json:"twoColumnBrowseResultsRenderer,omitempty"`
	TwoColumnWatchNextResults      *TwoColumnWatchNextResults      `json:"twoColumnWatchNextResults,omitempty"`
}

// TwoColumnBrowseResultsRenderer is the channel page layout.
type TwoColumnBrowseResultsRenderer struct {
	Tabs []Tab `json:"tabs,omitempty"`
}

// Tab represents a channel tab (Videos, Shorts, etc.).
type Tab struct {
	TabRenderer *TabRenderer `json:"tabRenderer,omitempty"`
}

// TabRenderer contains tab content.
type TabRenderer struct {
	Title    string      `json:"title,omitempty"`
	Selected bool        `json:"selected,omitempty"`
	Content  *TabContent `json:"content,omitempty"`
}

// TabContent holds the content within a tab.
type TabContent struct {
	RichGridRenderer *RichGridRenderer `json:"richGridRenderer,omitempty"`
}

// RichGridRenderer displays items in a grid layout.
type RichGridRenderer struct {
	Contents []RichGridContent `json:"contents,omitempty"`
}

// RichGridContent holds grid items. Continuation entries have no RichItemRenderer.
type RichGridContent struct {
	RichItemRenderer *RichItemRenderer `json:"richItemRenderer,omitempty"`
}

// RichItemRenderer wraps a grid item.
type RichItemRenderer struct {
	Content *RichItemContent `json:"content,omitempty"`
}

// RichItemContent holds the Shorts view model. Older pages used reelItemRenderer.
type RichItemContent struct {
	ShortsLockupViewModel *ShortsLockupViewModel `json:"shortsLockupViewModel,omitempty"`
	ReelItemRenderer      *ReelItemRenderer      `json:"reelItemRenderer,omitempty"`
}

// ShortsLockupViewModel is one Short on the Shorts tab.
type ShortsLockupViewModel struct {
	OnTap           *OnTap           `json:"onTap,omitempty"`
	OverlayMetadata *OverlayMetadata `json:"overlayMetadata,omitempty"`
}

// OverlayMetadata carries the text drawn over a Short's thumbnail.
type OverlayMetadata struct {
	PrimaryText *ContentText `json:"primaryText,omitempty"`
}

// ReelItemRenderer is the previous Shorts item layout.
type ReelItemRenderer struct {
	VideoID  string    `json:"videoId,omitempty"`
	Headline *TextRuns `json:"headline,omitempty"`
}

// OnTap wraps the command run when an element is activated.
type OnTap struct {
	InnertubeCommand *InnertubeCommand `json:"innertubeCommand,omitempty"`
}

// InnertubeCommand is a navigation command.
type InnertubeCommand struct {
	CommandMetadata   *CommandMetadata   `json:"commandMetadata,omitempty"`
	ReelWatchEndpoint *ReelWatchEndpoint `json:"reelWatchEndpoint,omitempty"`
}

// CommandMetadata wraps web navigation details.
type CommandMetadata struct {
	WebCommandMetadata *WebCommandMetadata `json:"webCommandMetadata,omitempty"`
}

// WebCommandMetadata holds the target of a navigation command.
type WebCommandMetadata struct {
	URL         string `json:"url,omitempty"`
	WebPageType string `json:"webPageType,omitempty"`
}

// ReelWatchEndpoint opens a Short.
type ReelWatchEndpoint struct {
	VideoID string `json:"videoId,omitempty"`
}

// ContentText is the text shape used by view models.
type ContentText struct {
	Content string `json:"content,omitempty"`
}

// TwoColumnWatchNextResults is the watch page layout.
type TwoColumnWatchNextResults struct {
	Results *WatchResults `json:"results,omitempty"`
}

// WatchResults is the primary column of a watch page.
type WatchResults struct {
	Results *WatchResultsContents `json:"results,omitempty"`
}

// WatchResultsContents lists the watch page sections.
type WatchResultsContents struct {
	Contents []WatchContent `json:"contents,omitempty"`
}

// WatchContent is one section of the watch page.
type WatchContent struct {
	VideoSecondaryInfoRenderer *VideoSecondaryInfoRenderer `json:"videoSecondaryInfoRenderer,omitempty"`
}

// VideoSecondaryInfoRenderer holds the description block.
type VideoSecondaryInfoRenderer struct {
	AttributedDescription *AttributedDescription `json:"attributedDescription,omitempty"`
}

// AttributedDescription is the plain description text plus its link runs.
type AttributedDescription struct {
	Content     string       `json:"content"`
	CommandRuns []CommandRun `json:"commandRuns,omitempty"`
}

// CommandRun marks a link inside the description. StartIndex is omitted by
// the producer when it is zero; Length is a pointer so absence can be detected.
type CommandRun struct {
	StartIndex int    `json:"startIndex"`
	Length     *int   `json:"length,omitempty"`
	OnTap      *OnTap `json:"onTap,omitempty"`
}

// WebCommandMetadata returns the run's navigation target, or nil.
func (r CommandRun) WebCommandMetadata() *WebCommandMetadata {
	if r.OnTap == nil || r.OnTap.InnertubeCommand == nil || r.OnTap.InnertubeCommand.CommandMetadata == nil {
		return nil
	}
	return r.OnTap.InnertubeCommand.CommandMetadata.WebCommandMetadata
}

// Metadata contains channel metadata.
type Metadata struct {
	ChannelMetadataRenderer *ChannelMetadataRenderer `json:"channelMetadataRenderer,omitempty"`
}

// ChannelMetadataRenderer holds channel metadata details.
type ChannelMetadataRenderer struct {
	Title      string         `json:"title,omitempty"`
	ExternalID string         `json:"externalId,omitempty"`
	ChannelURL string         `json:"channelUrl,omitempty"`
	Avatar     *ThumbnailList `json:"avatar,omitempty"`
}

// TextRuns contains text with optional runs for formatting.
type TextRuns struct {
	Runs       []TextRun `json:"runs,omitempty"`
	SimpleText string    `json:"simpleText,omitempty"`
}

// TextRun is a segment of text.
type TextRun struct {
	Text string `json:"text,omitempty"`
}

// ThumbnailList contains thumbnail images.
type ThumbnailList struct {
	Thumbnails []Thumbnail `json:"thumbnails,omitempty"`
}

// Thumbnail represents a single thumbnail.
type Thumbnail struct {
	URL    string `json:"url,omitempty"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
}

// GetText extracts plain text from TextRuns.
func (t *TextRuns) GetText() string {
	if t == nil {
		return ""
	}
	if t.SimpleText != "" {
		return t.SimpleText
	}
	var b strings.Builder
	for _, run := range t.Runs {
		b.WriteString(run.Text)
	}
	return b.String()
}

// First returns the first thumbnail URL, or "".
func (l *ThumbnailList) First() string {
	if l == nil || len(l.Thumbnails) == 0 {
		return ""
	}
	return l.Thumbnails[0].URL
}
