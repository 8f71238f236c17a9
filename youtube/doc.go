// Package youtube scrapes YouTube channel and watch pages: it lists the Shorts
// of a channel and reads each Short's author, publish date, description and
// description links.
//
// Pages carry their data in the ytInitialData script; ExtractInitialData decodes
// the parts of it this package relies on. A page without the expected shape
// yields a *StructuralError.
package youtube
