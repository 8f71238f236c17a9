package youtube

import (
	"errors"
	"fmt"
)

// Sentinel errors for page scraping operations.
var (
	// ErrStructuralData means a page did not have the shape we rely on.
	ErrStructuralData = errors.New("youtube: unable to get data from YouTube")
	// ErrNoInitialData means the ytInitialData script was not found.
	ErrNoInitialData = errors.New("youtube: ytInitialData not found")
	// ErrInvalidSource means no username, channel id or custom name was given.
	ErrInvalidSource = errors.New("youtube: invalid source")
	// ErrChannelNotFound is returned by the Data API lookup for unknown channels.
	ErrChannelNotFound = errors.New("youtube: channel not found")
)

// StructuralError reports a required field missing from a page.
// It matches ErrStructuralData with errors.Is.
type StructuralError struct {
	// URL is the page that was parsed.
	URL string
	// Field names the missing element.
	Field string
	// Err is the underlying cause, if any.
	Err error
}

func (e *StructuralError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("youtube: %s: missing %s: %v", e.URL, e.Field, e.Err)
	}
	return fmt.Sprintf("youtube: %s: missing %s", e.URL, e.Field)
}

func (e *StructuralError) Unwrap() error { return e.Err }

// Is reports ErrStructuralData as a match.
func (e *StructuralError) Is(target error) bool {
	return target == ErrStructuralData
}

// AnnotationError reports a command run that cannot be turned into an annotation.
type AnnotationError struct {
	// Index is the position of the run in the description's command runs.
	Index  int
	Reason string
}

func (e *AnnotationError) Error() string {
	return fmt.Sprintf("youtube: command run %d: %s", e.Index, e.Reason)
}
