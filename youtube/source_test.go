package youtube

import (
	"errors"
	"testing"
)

func TestParseSource(t *testing.T) {
	tests := []struct {
		name     string
		username string
		channel  string
		cust     string
		want     Source
		wantErr  bool
	}{
		{"username wins", "linus", "UC1", "c", Source{SourceUsername, "linus"}, false},
		{"channel", "", "UC1", "c", Source{SourceChannel, "UC1"}, false},
		{"custom", "", "", "@handle", Source{SourceCustom, "@handle"}, false},
		{"trimmed", "", " UC1 ", "", Source{SourceChannel, "UC1"}, false},
		{"none", "", " ", "", Source{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSource(tt.username, tt.channel, tt.cust)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidSource) {
					t.Fatalf("expected ErrInvalidSource, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseSource() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestSourceShortsURL(t *testing.T) {
	base := "https://www.youtube.com"
	tests := []struct {
		src  Source
		want string
	}{
		{Source{SourceUsername, "LinusTechTips"}, "https://www.youtube.com/user/LinusTechTips/shorts"},
		{Source{SourceChannel, "UCw38-8_Ibv_L6hlKChHO9dQ"}, "https://www.youtube.com/channel/UCw38-8_Ibv_L6hlKChHO9dQ/shorts"},
		{Source{SourceCustom, "@LinusTechTips"}, "https://www.youtube.com/@LinusTechTips/shorts"},
		{Source{SourceCustom, "a b/c"}, "https://www.youtube.com/a%20b%2Fc/shorts"},
	}
	for _, tt := range tests {
		got, err := tt.src.ShortsURL(base + "/")
		if err != nil {
			t.Fatalf("ShortsURL(%v) error = %v", tt.src, err)
		}
		if got != tt.want {
			t.Errorf("ShortsURL(%v) = %q, want %q", tt.src, got, tt.want)
		}
	}

	if _, err := (Source{Kind: SourceChannel}).ShortsURL(base); !errors.Is(err, ErrInvalidSource) {
		t.Errorf("empty value should be rejected, got %v", err)
	}
}

func TestVideoURLs(t *testing.T) {
	if got := WatchURL("https://www.youtube.com", "abc_123"); got != "https://www.youtube.com/watch?v=abc_123" {
		t.Errorf("WatchURL() = %q", got)
	}
	if got := ThumbnailURL("https://www.youtube.com", "abc_123"); got != "https://img.youtube.com/vi/abc_123/0.jpg" {
		t.Errorf("ThumbnailURL() = %q", got)
	}
}
