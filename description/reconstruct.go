package description

import (
	"fmt"
	"html"
	"log/slog"
	"strings"
)

// displayCutset is trimmed from the start of a link's display text. Renderer
// artifacts such as "ICON • Video Name" or "ICON / @Channel" leave these behind.
const displayCutset = whitespace + "•/"

type options struct {
	baseURL  string
	logger   *slog.Logger
	observer Observer
}

// Option configures Reconstruct.
type Option func(*options)

// WithBaseURL sets the site root that relative link paths are joined to.
func WithBaseURL(baseURL string) Option {
	return func(o *options) {
		o.baseURL = baseURL
	}
}

// WithLogger sets the logger used to report annotations that cannot be placed.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithObserver registers an observer that is told about every reconstruction.
func WithObserver(obs Observer) Option {
	return func(o *options) {
		o.observer = obs
	}
}

// Reconstruct places every annotation on the text and wraps it in an anchor.
// If any annotation cannot be placed the original text is returned unlinked.
func Reconstruct(text string, anns []Annotation, opts ...Option) Result {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}

	res := reconstruct(text, anns, o)
	if o.observer != nil {
		o.observer.ObserveReconstruction(Outcome{
			Kind:        res.Kind,
			Annotations: len(anns),
			Unmatched:   len(res.Unmatched),
		})
	}
	return res
}

func reconstruct(text string, anns []Annotation, o options) Result {
	unlinked := Result{Kind: Unlinked, Text: text, Original: text}
	if len(anns) == 0 {
		return unlinked
	}

	runes := []rune(text)
	c := newCorrector(runes, anns, o.logger)

	ranges := make([]MatchedRange, 0, len(anns))
	var unmatched []int
	for i, a := range anns {
		r, ok := c.correct(i, a)
		if !ok {
			unmatched = append(unmatched, i)
			continue
		}
		r.URL = Resolve(a.Link, o.baseURL)
		ranges = append(ranges, r)
	}

	if len(ranges) < len(anns) {
		o.logger.Debug("description left unlinked",
			"annotations", len(anns),
			"unmatched", len(unmatched),
		)
		unlinked.Unmatched = unmatched
		return unlinked
	}

	return Result{
		Kind:     Linked,
		Text:     Apply(runes, ranges),
		Original: text,
		Ranges:   ranges,
	}
}

// Apply splices anchors into text for ranges given in ascending order. Ranges
// are applied last to first so earlier offsets stay valid while splicing.
func Apply(text []rune, ranges []MatchedRange) string {
	out := string(text)
	for i := len(ranges) - 1; i >= 0; i-- {
		r := ranges[i]
		runes := []rune(out)
		prefix := string(runes[:r.Start])
		display := trimDisplay(string(runes[r.Start:r.End()]))
		suffix := string(runes[r.End():])
		out = prefix + anchor(r.URL, display) + suffix
	}
	return out
}

// HTML renders the result as a feed body: plain text is escaped, anchors are
// emitted for linked ranges and line breaks become <br /> elements.
func (r Result) HTML() string {
	var b strings.Builder
	runes := []rune(r.Original)
	pos := 0
	if r.Kind == Linked {
		for _, rg := range r.Ranges {
			writeText(&b, string(runes[pos:rg.Start]))
			display := trimDisplay(string(runes[rg.Start:rg.End()]))
			b.WriteString(anchor(html.EscapeString(rg.URL), html.EscapeString(display)))
			pos = rg.End()
		}
	}
	writeText(&b, string(runes[pos:]))
	return b.String()
}

func writeText(b *strings.Builder, s string) {
	b.WriteString(ConvertLineBreaks(html.EscapeString(s)))
}

var lineBreaks = strings.NewReplacer(
	"\r\n", "<br />\r\n",
	"\n", "<br />\n",
	"\r", "<br />\r",
)

// ConvertLineBreaks inserts an HTML line break before every newline.
func ConvertLineBreaks(s string) string {
	return lineBreaks.Replace(s)
}

func anchor(url, display string) string {
	return fmt.Sprintf(`<a href="%s">%s</a>`, url, display)
}

func trimDisplay(s string) string {
	s = strings.TrimLeft(s, displayCutset)
	return strings.TrimRight(s, whitespace)
}
