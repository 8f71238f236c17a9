package youtube

import (
	"fmt"
	"net/url"
	"strings"
)

// SourceKind selects how a channel is addressed.
type SourceKind int

const (
	// SourceUsername addresses a legacy /user/<name> page.
	SourceUsername SourceKind = iota
	// SourceChannel addresses a /channel/<id> page.
	SourceChannel
	// SourceCustom addresses a custom /<name> page such as /@handle.
	SourceCustom
)

func (k SourceKind) String() string {
	switch k {
	case SourceUsername:
		return "username"
	case SourceChannel:
		return "channel"
	case SourceCustom:
		return "custom"
	default:
		return "unknown"
	}
}

// Source identifies the channel whose Shorts are listed.
type Source struct {
	Kind  SourceKind
	Value string
}

// ParseSource picks the first non-empty of username, channel id and custom name.
func ParseSource(username, channel, custom string) (Source, error) {
	switch {
	case strings.TrimSpace(username) != "":
		return Source{Kind: SourceUsername, Value: strings.TrimSpace(username)}, nil
	case strings.TrimSpace(channel) != "":
		return Source{Kind: SourceChannel, Value: strings.TrimSpace(channel)}, nil
	case strings.TrimSpace(custom) != "":
		return Source{Kind: SourceCustom, Value: strings.TrimSpace(custom)}, nil
	default:
		return Source{}, fmt.Errorf("%w: specify a username (u), channel id (c) or custom name (custom)", ErrInvalidSource)
	}
}

// Path returns the channel page path for s.
func (s Source) Path() (string, error) {
	if s.Value == "" {
		return "", fmt.Errorf("%w: empty %s", ErrInvalidSource, s.Kind)
	}
	v := url.PathEscape(s.Value)
	switch s.Kind {
	case SourceUsername:
		return "/user/" + v, nil
	case SourceChannel:
		return "/channel/" + v, nil
	case SourceCustom:
		return "/" + v, nil
	default:
		return "", fmt.Errorf("%w: unknown kind %d", ErrInvalidSource, s.Kind)
	}
}

// ShortsURL returns the Shorts tab URL of s under baseURL.
func (s Source) ShortsURL(baseURL string) (string, error) {
	path, err := s.Path()
	if err != nil {
		return "", err
	}
	return strings.TrimRight(baseURL, "/") + path + "/shorts", nil
}

func (s Source) String() string {
	return s.Kind.String() + ":" + s.Value
}

// WatchURL returns the watch page URL of a video.
func WatchURL(baseURL, videoID string) string {
	return strings.TrimRight(baseURL, "/") + "/watch?v=" + url.QueryEscape(videoID)
}

// ThumbnailURL returns the default thumbnail of a video, served from the
// img. host that mirrors baseURL's www. host.
func ThumbnailURL(baseURL, videoID string) string {
	host := strings.Replace(strings.TrimRight(baseURL, "/"), "/www.", "/img.", 1)
	return host + "/vi/" + url.PathEscape(videoID) + "/0.jpg"
}
