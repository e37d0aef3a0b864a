package playlist

import (
	"time"

	"playlist-gen/internal/scanner"
)

// Track is one playlist entry.
type Track struct {
	Index      int
	Path       string
	Location   string
	DurationMS int64
}

// Document is a complete playlist ready to be marshaled.
type Document struct {
	Title  string
	Tracks []Track
}

// NewDocument pairs entries with their durations. durations must have the
// same length as entries.
func NewDocument(title string, entries []scanner.Entry, durations []int64) *Document {
	doc := &Document{
		Title:  title,
		Tracks: make([]Track, len(entries)),
	}
	for i, e := range entries {
		doc.Tracks[i] = Track{
			Index:      i,
			Path:       e.Path,
			Location:   e.Location,
			DurationMS: durations[i],
		}
	}
	return doc
}

// TotalDuration sums the durations of all tracks.
func (d *Document) TotalDuration() time.Duration {
	var total int64
	for _, t := range d.Tracks {
		total += t.DurationMS
	}
	return time.Duration(total) * time.Millisecond
}
