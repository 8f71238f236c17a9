package description

import "testing"

func TestResolve(t *testing.T) {
	tests := []struct {
		name string
		link LinkDescriptor
		want string
	}{
		{
			name: "redirect target",
			link: RedirectWrapper("https://example.com/x"),
			want: "https://example.com/x",
		},
		{
			name: "redirect target percent-encoded",
			link: RedirectWrapper("https%3A%2F%2Fexample.com%2Fx%3Fa%3D1"),
			want: "https://example.com/x?a=1",
		},
		{
			name: "redirect target decoded only once",
			link: RedirectWrapper("https%3A%2F%2Fexample.com%2F%2520space"),
			want: "https://example.com/%20space",
		},
		{
			name: "redirect target with invalid escape",
			link: RedirectWrapper("https://example.com/%zz"),
			want: "https://example.com/%zz",
		},
		{
			name: "absolute URL unchanged",
			link: AbsoluteURL("https://www.instagram.com/someone"),
			want: "https://www.instagram.com/someone",
		},
		{
			name: "relative path joined to base",
			link: RelativePath("/hashtag/fun"),
			want: "https://site.example/hashtag/fun",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Resolve(tt.link, base); got != tt.want {
				t.Errorf("Resolve() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestClassifyURL(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want LinkDescriptor
	}{
		{
			name: "redirect wrapper keeps encoded target",
			raw:  "https://www.youtube.com/redirect?event=video_description&redir_token=abc&q=https%3A%2F%2Fexample.com%2Fx&v=vid",
			want: RedirectWrapper("https%3A%2F%2Fexample.com%2Fx"),
		},
		{
			name: "relative redirect wrapper",
			raw:  "/redirect?q=https%3A%2F%2Fexample.com",
			want: RedirectWrapper("https%3A%2F%2Fexample.com"),
		},
		{
			name: "redirect without target is absolute",
			raw:  "https://www.youtube.com/redirect?event=x",
			want: AbsoluteURL("https://www.youtube.com/redirect?event=x"),
		},
		{
			name: "absolute URL",
			raw:  "https://music.youtube.com/channel/UC123",
			want: AbsoluteURL("https://music.youtube.com/channel/UC123"),
		},
		{
			name: "channel handle",
			raw:  "/@SomeChannel",
			want: RelativePath("/@SomeChannel"),
		},
		{
			name: "hashtag",
			raw:  "/hashtag/shorts",
			want: RelativePath("/hashtag/shorts"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyURL(tt.raw); got != tt.want {
				t.Errorf("ClassifyURL() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestReservedLengths(t *testing.T) {
	anns := []Annotation{
		{ApproxStart: 17, Length: 11},
		{ApproxStart: 33, Length: 4},
	}

	got := reservedLengths(anns)

	// 4 for the hashtag, 11 for the channel and one separator between them.
	want := []int{16, 4}
	if !equalInts(got, want) {
		t.Errorf("reservedLengths() = %v, want %v", got, want)
	}
}
