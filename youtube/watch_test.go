package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"ytshorts/description"
)

const watchText = "Check example.com/page and #fun\nMore"

func TestParseWatchPage(t *testing.T) {
	html := page("Video - YouTube", watchHead, watchData(watchText,
		commandRun(6, 16, "https://www.youtube.com/redirect?event=video_description&q=https%3A%2F%2Fexample.com%2Fpage&v=x", "WEB_PAGE_TYPE_UNKNOWN"),
		commandRun(27, 4, "/hashtag/fun", "WEB_PAGE_TYPE_BROWSE"),
	))

	details, err := ParseWatchPage("https://www.youtube.com/watch?v=x", html)
	if err != nil {
		t.Fatalf("ParseWatchPage() error = %v", err)
	}

	if details.Author != "Cool Channel" {
		t.Errorf("Author = %q", details.Author)
	}
	want := time.Date(2024, 3, 1, 16, 0, 5, 0, time.UTC)
	if !details.Published.Equal(want) {
		t.Errorf("Published = %v, want %v", details.Published, want)
	}
	if details.Description != watchText {
		t.Errorf("Description = %q", details.Description)
	}
	if details.AnnotationErr != nil {
		t.Fatalf("AnnotationErr = %v", details.AnnotationErr)
	}

	wantAnns := []description.Annotation{
		{ApproxStart: 6, Length: 16, Link: description.RedirectWrapper("https%3A%2F%2Fexample.com%2Fpage")},
		{ApproxStart: 27, Length: 4, IsHashtag: true, Link: description.RelativePath("/hashtag/fun")},
	}
	if len(details.Annotations) != len(wantAnns) {
		t.Fatalf("got %d annotations, want %d", len(details.Annotations), len(wantAnns))
	}
	for i := range wantAnns {
		if details.Annotations[i] != wantAnns[i] {
			t.Errorf("annotation %d = %v, want %v", i, details.Annotations[i], wantAnns[i])
		}
	}

	res := description.Reconstruct(details.Description, details.Annotations, description.WithBaseURL(testBase))
	wantText := `Check <a href="https://example.com/page">example.com/page</a> and <a href="https://www.youtube.com/hashtag/fun">#fun</a>` + "\nMore"
	if !res.IsLinked() || res.Text != wantText {
		t.Errorf("Reconstruct() = %s %q", res.Kind, res.Text)
	}
}

func TestParseWatchPageUnavailable(t *testing.T) {
	html := []byte(`<html><script>ytcfg.set({"IS_UNAVAILABLE_PAGE":true});</script></html>`)
	details, err := ParseWatchPage("u", html)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !details.Unavailable || details.Author != "" || details.Description != "" {
		t.Errorf("unexpected details %+v", details)
	}
}

func TestParseWatchPageWithoutInitialData(t *testing.T) {
	html := []byte(`<html><body>` + watchHead + `</body></html>`)
	details, err := ParseWatchPage("u", html)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if details.Author != "Cool Channel" || details.Description != "" {
		t.Errorf("unexpected details %+v", details)
	}
}

func TestParseWatchPageStructuralErrors(t *testing.T) {
	tests := []struct {
		name string
		data obj
	}{
		{"no watch results", obj{"contents": obj{}}},
		{"no secondary info", obj{"contents": obj{"twoColumnWatchNextResults": obj{"results": obj{"results": obj{"contents": []obj{
			{"videoPrimaryInfoRenderer": obj{}},
		}}}}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseWatchPage("https://www.youtube.com/watch?v=x", page("x", "", tt.data))
			if !errors.Is(err, ErrStructuralData) {
				t.Errorf("expected ErrStructuralData, got %v", err)
			}
		})
	}
}

func TestParseWatchPageBadRunKeepsText(t *testing.T) {
	run := commandRun(0, 5, "/x", "")
	delete(run, "length")
	html := page("x", "", watchData("hello world", run))

	details, err := ParseWatchPage("u", html)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var annErr *AnnotationError
	if !errors.As(details.AnnotationErr, &annErr) || annErr.Index != 0 {
		t.Errorf("expected AnnotationError for run 0, got %v", details.AnnotationErr)
	}
	if details.Annotations != nil || details.Description != "hello world" {
		t.Errorf("unexpected details %+v", details)
	}
}

func TestMapCommandRuns(t *testing.T) {
	tests := []struct {
		name    string
		json    string
		want    []description.Annotation
		wantErr string
	}{
		{
			name: "omitted start index is zero",
			json: `[{"length":3,"onTap":{"innertubeCommand":{"commandMetadata":{"webCommandMetadata":{"url":"https://x.example/"}}}}}]`,
			want: []description.Annotation{{ApproxStart: 0, Length: 3, Link: description.AbsoluteURL("https://x.example/")}},
		},
		{
			name:    "missing metadata",
			json:    `[{"startIndex":1,"length":3}]`,
			wantErr: "missing command metadata",
		},
		{
			name:    "missing url",
			json:    `[{"startIndex":1,"length":3,"onTap":{"innertubeCommand":{"commandMetadata":{"webCommandMetadata":{"webPageType":"WEB_PAGE_TYPE_BROWSE"}}}}}]`,
			wantErr: "missing url",
		},
		{
			name:    "missing length",
			json:    `[{"startIndex":1,"onTap":{"innertubeCommand":{"commandMetadata":{"webCommandMetadata":{"url":"/x"}}}}}]`,
			wantErr: "missing length",
		},
		{
			name: "empty",
			json: `[]`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var runs []CommandRun
			if err := json.Unmarshal([]byte(tt.json), &runs); err != nil {
				t.Fatal(err)
			}
			got, err := MapCommandRuns(runs)
			if tt.wantErr != "" {
				var annErr *AnnotationError
				if !errors.As(err, &annErr) || annErr.Reason != tt.wantErr {
					t.Fatalf("expected %q, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("annotation %d = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestWatchFetcherUsesCache(t *testing.T) {
	g := newFakeGetter()
	url := WatchURL(testBase, "vid")
	g.pages[url] = page("x", watchHead, watchData("plain"))

	pages := NewPageFetcher(g, WithCache(newMemoryStore(), time.Hour), WithFetchLogger(quietLogger()))
	w := NewWatchFetcher(pages, testBase)

	for i := 0; i < 3; i++ {
		d, err := w.Fetch(context.Background(), "vid")
		if err != nil {
			t.Fatalf("Fetch() error = %v", err)
		}
		if d.Description != "plain" {
			t.Errorf("Description = %q", d.Description)
		}
	}
	if n := g.count(url); n != 1 {
		t.Errorf("expected one network fetch, got %d", n)
	}
}

func TestParsePublished(t *testing.T) {
	tests := map[string]time.Time{
		"2024-03-01T08:00:05-08:00": time.Date(2024, 3, 1, 16, 0, 5, 0, time.UTC),
		"2024-03-01":                time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		"yesterday":                 {},
	}
	for in, want := range tests {
		if got := parsePublished(in); !got.Equal(want) {
			t.Errorf("parsePublished(%q) = %v, want %v", in, got, want)
		}
	}
}
