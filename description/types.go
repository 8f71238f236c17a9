// Package description rebuilds linked video descriptions from a plain text body
// and the link annotations YouTube attaches to it.
//
// Annotation offsets coming from the watch page are only approximately right:
// the producer counts some characters (emoji and other astral-plane runes) with a
// different width than Go does. Reconstruct corrects every offset against the
// actual text and refuses to link anything when one annotation cannot be placed.
package description

import "fmt"

// LinkKind identifies the shape of a link target.
type LinkKind int

const (
	// LinkRelative is a site-relative path such as "/hashtag/fun".
	LinkRelative LinkKind = iota
	// LinkAbsolute is a complete URL with a host.
	LinkAbsolute
	// LinkRedirect is a redirect wrapper whose real target sits in the q parameter.
	LinkRedirect
)

// String returns the string representation of a link kind.
func (k LinkKind) String() string {
	switch k {
	case LinkRelative:
		return "relative"
	case LinkAbsolute:
		return "absolute"
	case LinkRedirect:
		return "redirect"
	default:
		return "unknown"
	}
}

// LinkDescriptor describes where an annotation points.
// Value is the raw (still percent-encoded) query target for LinkRedirect,
// the URL for LinkAbsolute and the path for LinkRelative.
type LinkDescriptor struct {
	Kind  LinkKind
	Value string
}

// RedirectWrapper returns a descriptor for a redirect URL's query target.
func RedirectWrapper(queryTarget string) LinkDescriptor {
	return LinkDescriptor{Kind: LinkRedirect, Value: queryTarget}
}

// AbsoluteURL returns a descriptor for a URL that already has a host.
func AbsoluteURL(url string) LinkDescriptor {
	return LinkDescriptor{Kind: LinkAbsolute, Value: url}
}

// RelativePath returns a descriptor for a path relative to the site root.
func RelativePath(path string) LinkDescriptor {
	return LinkDescriptor{Kind: LinkRelative, Value: path}
}

// Annotation marks a run of the plain text that should become a link.
// ApproxStart and Length count runes; ApproxStart may drift from the true offset.
type Annotation struct {
	ApproxStart int
	Length      int
	IsHashtag   bool
	Link        LinkDescriptor
}

// MatchedRange is the corrected rune window for one annotation.
type MatchedRange struct {
	Start  int
	Length int
	URL    string
}

// End returns the rune offset just past the range.
func (r MatchedRange) End() int {
	return r.Start + r.Length
}

// ResultKind tells whether links were applied.
type ResultKind int

const (
	// Unlinked means the text is returned exactly as given.
	Unlinked ResultKind = iota
	// Linked means every annotation was placed and wrapped in an anchor.
	Linked
)

// String returns the string representation of a result kind.
func (k ResultKind) String() string {
	if k == Linked {
		return "linked"
	}
	return "unlinked"
}

// Result is the outcome of one reconstruction. It is either fully linked or
// the untouched original text, never something in between.
type Result struct {
	Kind ResultKind
	// Text holds the anchored text for Linked and the original text for Unlinked.
	Text string
	// Original is the plain text the result was built from.
	Original string
	// Ranges lists the applied ranges in ascending order (Linked only).
	Ranges []MatchedRange
	// Unmatched holds the indices of annotations whose position could not be corrected.
	Unmatched []int
}

// IsLinked reports whether anchors were applied.
func (r Result) IsLinked() bool {
	return r.Kind == Linked
}

// Outcome summarises a reconstruction for observers such as metrics.
type Outcome struct {
	Kind        ResultKind
	Annotations int
	Unmatched   int
}

// Observer receives one Outcome per reconstruction.
type Observer interface {
	ObserveReconstruction(Outcome)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(Outcome)

// ObserveReconstruction calls f(o).
func (f ObserverFunc) ObserveReconstruction(o Outcome) { f(o) }

func (a Annotation) String() string {
	return fmt.Sprintf("annotation{start=%d len=%d hashtag=%t %s:%q}",
		a.ApproxStart, a.Length, a.IsHashtag, a.Link.Kind, a.Link.Value)
}
