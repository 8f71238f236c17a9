package feed

import (
	"encoding/xml"
	"fmt"
	"io"
	"time"
)

const atomNS = "http://www.w3.org/2005/Atom"

type atomFeed struct {
	XMLName xml.Name    `xml:"feed"`
	NS      string      `xml:"xmlns,attr"`
	ID      string      `xml:"id"`
	Title   string      `xml:"title"`
	Updated string      `xml:"updated"`
	Icon    string      `xml:"icon,omitempty"`
	Links   []atomLink  `xml:"link"`
	Entries []atomEntry `xml:"entry"`
}

type atomLink struct {
	Rel  string `xml:"rel,attr,omitempty"`
	Type string `xml:"type,attr,omitempty"`
	Href string `xml:"href,attr"`
}

type atomAuthor struct {
	Name string `xml:"name"`
}

type atomContent struct {
	Type string `xml:"type,attr"`
	Body string `xml:",chardata"`
}

type atomEntry struct {
	ID        string      `xml:"id"`
	Title     string      `xml:"title"`
	Updated   string      `xml:"updated"`
	Published string      `xml:"published,omitempty"`
	Author    *atomAuthor `xml:"author,omitempty"`
	Links     []atomLink  `xml:"link"`
	Content   atomContent `xml:"content"`
}

// WriteAtom encodes f as an Atom 1.0 document.
func WriteAtom(w io.Writer, f *Feed) error {
	updated := f.Updated
	if updated.IsZero() {
		updated = time.Now().UTC()
	}

	doc := atomFeed{
		NS:      atomNS,
		ID:      f.URL,
		Title:   f.Title,
		Updated: updated.Format(time.RFC3339),
		Icon:    f.IconURL,
		Links:   []atomLink{{Rel: "alternate", Type: "text/html", Href: f.URL}},
	}

	for _, it := range f.Items {
		e := atomEntry{
			ID:      "urn:uuid:" + it.UID,
			Title:   it.Title,
			Updated: updated.Format(time.RFC3339),
			Links: []atomLink{
				{Rel: "alternate", Type: "text/html", Href: it.URL},
				{Rel: "enclosure", Type: "image/jpeg", Href: it.Thumbnail},
			},
			Content: atomContent{Type: "html", Body: it.Content},
		}
		if !it.Published.IsZero() {
			e.Published = it.Published.UTC().Format(time.RFC3339)
			e.Updated = e.Published
		}
		if it.Author != "" {
			e.Author = &atomAuthor{Name: it.Author}
		}
		doc.Entries = append(doc.Entries, e)
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode atom feed: %w", err)
	}
	return enc.Close()
}
