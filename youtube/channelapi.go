package youtube

import (
	"context"
	"fmt"

	"google.golang.org/api/option"
	ytapi "google.golang.org/api/youtube/v3"
)

// DataAPI looks up channel details with the YouTube Data API v3.
type DataAPI struct {
	service *ytapi.Service
}

// NewDataAPI creates a Data API client authenticated with apiKey.
func NewDataAPI(ctx context.Context, apiKey string, opts ...option.ClientOption) (*DataAPI, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("api key required")
	}
	opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	service, err := ytapi.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create youtube service: %w", err)
	}
	return &DataAPI{service: service}, nil
}

// ChannelInfo implements ChannelInfoProvider. It costs one quota unit.
func (d *DataAPI) ChannelInfo(ctx context.Context, channelID string) (Channel, error) {
	resp, err := d.service.Channels.List([]string{"snippet"}).Id(channelID).Context(ctx).Do()
	if err != nil {
		return Channel{}, fmt.Errorf("channels.list %s: %w", channelID, err)
	}
	if len(resp.Items) == 0 || resp.Items[0].Snippet == nil {
		return Channel{}, fmt.Errorf("%w: %s", ErrChannelNotFound, channelID)
	}

	sn := resp.Items[0].Snippet
	ch := Channel{Title: sn.Title, ChannelID: channelID}
	if th := sn.Thumbnails; th != nil {
		for _, t := range []*ytapi.Thumbnail{th.High, th.Medium, th.Default} {
			if t != nil && t.Url != "" {
				ch.IconURL = t.Url
				break
			}
		}
	}
	return ch, nil
}
