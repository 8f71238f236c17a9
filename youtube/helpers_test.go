package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	ythttp "ytshorts/http"
)

type obj = map[string]any

// page wraps data in a minimal YouTube-like HTML document.
func page(title string, head string, data any) []byte {
	b, err := json.Marshal(data)
	if err != nil {
		panic(err)
	}
	return []byte(fmt.Sprintf(`<!DOCTYPE html><html><head><title>%s</title></head><body>%s`+
		`<script nonce="abc">var ytInitialData = %s;</script><script>var other = 1;</script></body></html>`,
		title, head, b))
}

func shortItem(id, title string) obj {
	return obj{"richItemRenderer": obj{"content": obj{"shortsLockupViewModel": obj{
		"onTap":           obj{"innertubeCommand": obj{"reelWatchEndpoint": obj{"videoId": id}}},
		"overlayMetadata": obj{"primaryText": obj{"content": title}},
	}}}}
}

func tab(title string, selected bool, items ...obj) obj {
	t := obj{"title": title, "selected": selected}
	if items != nil {
		t["content"] = obj{"richGridRenderer": obj{"contents": items}}
	}
	return obj{"tabRenderer": t}
}

func listingData(tabs ...obj) obj {
	return obj{
		"contents": obj{"twoColumnBrowseResultsRenderer": obj{"tabs": tabs}},
		"metadata": obj{"channelMetadataRenderer": obj{
			"title":      "Cool Channel",
			"externalId": "UCabcdefghijklmnopqrstuv",
			"avatar":     obj{"thumbnails": []obj{{"url": "https://yt3.example/avatar.jpg"}}},
		}},
	}
}

func commandRun(start, length int, url, pageType string) obj {
	return obj{
		"startIndex": start,
		"length":     length,
		"onTap": obj{"innertubeCommand": obj{"commandMetadata": obj{"webCommandMetadata": obj{
			"url": url, "webPageType": pageType,
		}}}},
	}
}

func watchData(content string, runs ...obj) obj {
	desc := obj{"content": content}
	if runs != nil {
		desc["commandRuns"] = runs
	}
	return obj{"contents": obj{"twoColumnWatchNextResults": obj{"results": obj{"results": obj{"contents": []obj{
		{"videoPrimaryInfoRenderer": obj{}},
		{"videoSecondaryInfoRenderer": obj{"attributedDescription": desc}},
	}}}}}}
}

const watchHead = `<span itemprop="author" itemscope itemtype="http://schema.org/Person">` +
	`<link itemprop="url" href="http://www.youtube.com/@cool"><link itemprop="name" content="Cool Channel"></span>` +
	`<meta itemprop="datePublished" content="2024-03-01T08:00:05-08:00">`

// fakeGetter serves fixed bodies by URL and counts requests.
type fakeGetter struct {
	mu    sync.Mutex
	pages map[string][]byte
	errs  map[string]error
	calls map[string]int
}

func newFakeGetter() *fakeGetter {
	return &fakeGetter{pages: map[string][]byte{}, errs: map[string]error{}, calls: map[string]int{}}
}

func (g *fakeGetter) Get(_ context.Context, url string) (*ythttp.Response, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls[url]++
	if err, ok := g.errs[url]; ok {
		return nil, err
	}
	body, ok := g.pages[url]
	if !ok {
		return nil, &ythttp.HTTPError{URL: url, StatusCode: 404}
	}
	return &ythttp.Response{StatusCode: 200, Body: body}, nil
}

func (g *fakeGetter) count(url string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls[url]
}
