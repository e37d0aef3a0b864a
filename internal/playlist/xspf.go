package playlist

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"strconv"
	"unicode/utf8"

	"github.com/tdewolff/minify/v2"
	minifyxml "github.com/tdewolff/minify/v2/xml"
)

// Namespaces and the VLC extension application URI.
const (
	XSPFNamespace  = "http://xspf.org/ns/0/"
	VLCNamespace   = "http://www.videolan.org/vlc/playlist/ns/0/"
	VLCApplication = "http://www.videolan.org/vlc/playlist/0"

	// ContentType is the registered media type for XSPF.
	ContentType = "application/xspf+xml"
)

// Format selects how Marshal lays out the document.
type Format int

const (
	// FormatIndent writes one element per line, indented by two spaces.
	FormatIndent Format = iota
	// FormatCompact strips all insignificant whitespace.
	FormatCompact
)

func (f Format) String() string {
	switch f {
	case FormatIndent:
		return "indent"
	case FormatCompact:
		return "compact"
	default:
		return "Format(" + strconv.Itoa(int(f)) + ")"
	}
}

// SerializationError reports a failure to render a Document.
type SerializationError struct {
	Err error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("serialize playlist: %v", e.Err)
}

func (e *SerializationError) Unwrap() error { return e.Err }

// ErrInvalidTitle is returned for titles XML 1.0 cannot carry.
var ErrInvalidTitle = errors.New("title is not valid UTF-8 or contains control characters")

// CheckTitle reports whether title can be written unchanged. encoding/xml
// would otherwise replace offending bytes with U+FFFD.
func CheckTitle(title string) error {
	if !utf8.ValidString(title) {
		return fmt.Errorf("%w: %q", ErrInvalidTitle, title)
	}
	for _, r := range title {
		if !isXMLChar(r) {
			return fmt.Errorf("%w: %q", ErrInvalidTitle, title)
		}
	}
	return nil
}

// isXMLChar matches the Char production of XML 1.0.
func isXMLChar(r rune) bool {
	return r == 0x09 || r == 0x0A || r == 0x0D ||
		r >= 0x20 && r <= 0xD7FF ||
		r >= 0xE000 && r <= 0xFFFD ||
		r >= 0x10000 && r <= 0x10FFFF
}

// XSPF structure with the VLC extension. Prefixed names are written
// literally; the prefix is bound by the XmlnsVLC attribute on the root.
type xspfPlaylist struct {
	XMLName   xml.Name       `xml:"playlist"`
	Version   string         `xml:"version,attr"`
	Xmlns     string         `xml:"xmlns,attr"`
	XmlnsVLC  string         `xml:"xmlns:vlc,attr"`
	Title     string         `xml:"title"`
	TrackList xspfTrackList  `xml:"trackList"`
	Extension xspfItemsBlock `xml:"extension"`
}

type xspfTrackList struct {
	Tracks []xspfTrack `xml:"track"`
}

type xspfTrack struct {
	Location  string        `xml:"location"`
	Duration  int64         `xml:"duration"`
	Extension xspfTrackMeta `xml:"extension"`
}

type xspfTrackMeta struct {
	Application string `xml:"application,attr"`
	ID          int    `xml:"vlc:id"`
}

type xspfItemsBlock struct {
	Application string        `xml:"application,attr"`
	Items       []xspfVLCItem `xml:"vlc:item"`
}

type xspfVLCItem struct {
	TID int `xml:"tid,attr"`
}

// Both the track list and the item list are produced from the same slice in
// a single pass, so vlc:id and tid always line up.
func toXSPF(doc *Document) *xspfPlaylist {
	p := &xspfPlaylist{
		Version:  "1",
		Xmlns:    XSPFNamespace,
		XmlnsVLC: VLCNamespace,
		Title:    doc.Title,
		TrackList: xspfTrackList{
			Tracks: make([]xspfTrack, 0, len(doc.Tracks)),
		},
		Extension: xspfItemsBlock{
			Application: VLCApplication,
			Items:       make([]xspfVLCItem, 0, len(doc.Tracks)),
		},
	}

	for _, t := range doc.Tracks {
		p.TrackList.Tracks = append(p.TrackList.Tracks, xspfTrack{
			Location: t.Location,
			Duration: t.DurationMS,
			Extension: xspfTrackMeta{
				Application: VLCApplication,
				ID:          t.Index,
			},
		})
		p.Extension.Items = append(p.Extension.Items, xspfVLCItem{TID: t.Index})
	}
	return p
}

// Marshal renders doc as an XSPF document, XML declaration included.
func Marshal(doc *Document, format Format) ([]byte, error) {
	if doc == nil {
		return nil, &SerializationError{Err: fmt.Errorf("nil document")}
	}
	if err := CheckTitle(doc.Title); err != nil {
		return nil, &SerializationError{Err: err}
	}

	body, err := xml.MarshalIndent(toXSPF(doc), "", "  ")
	if err != nil {
		return nil, &SerializationError{Err: err}
	}

	var buf bytes.Buffer
	buf.Grow(len(xml.Header) + len(body) + 1)
	buf.WriteString(xml.Header)
	buf.Write(body)
	buf.WriteByte('\n')

	switch format {
	case FormatIndent:
		return buf.Bytes(), nil
	case FormatCompact:
		return compact(buf.Bytes())
	default:
		return nil, &SerializationError{Err: fmt.Errorf("unknown format %v", format)}
	}
}

func compact(data []byte) ([]byte, error) {
	m := minify.New()
	m.AddFunc("text/xml", minifyxml.Minify)

	var out bytes.Buffer
	if err := m.Minify("text/xml", &out, bytes.NewReader(data)); err != nil {
		return nil, &SerializationError{Err: fmt.Errorf("minify: %w", err)}
	}
	return out.Bytes(), nil
}
