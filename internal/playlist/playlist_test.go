package playlist

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"playlist-gen/internal/fileuri"
	"playlist-gen/internal/probe"
	"playlist-gen/internal/scanner"
)

// parsed mirrors the XSPF tree with fully qualified names, so tests check
// the namespaces as a consuming player would see them.
type parsed struct {
	XMLName   xml.Name `xml:"http://xspf.org/ns/0/ playlist"`
	Version   string   `xml:"version,attr"`
	Title     string   `xml:"http://xspf.org/ns/0/ title"`
	TrackList *struct {
		Tracks []struct {
			Location  string `xml:"http://xspf.org/ns/0/ location"`
			Duration  int64  `xml:"http://xspf.org/ns/0/ duration"`
			Extension struct {
				Application string `xml:"application,attr"`
				ID          int    `xml:"http://www.videolan.org/vlc/playlist/ns/0/ id"`
			} `xml:"http://xspf.org/ns/0/ extension"`
		} `xml:"http://xspf.org/ns/0/ track"`
	} `xml:"http://xspf.org/ns/0/ trackList"`
	Extension *struct {
		Application string `xml:"application,attr"`
		Items       []struct {
			TID int `xml:"tid,attr"`
		} `xml:"http://www.videolan.org/vlc/playlist/ns/0/ item"`
	} `xml:"http://xspf.org/ns/0/ extension"`
}

func parse(t *testing.T, data []byte) parsed {
	t.Helper()
	var p parsed
	if err := xml.Unmarshal(data, &p); err != nil {
		t.Fatalf("output is not well-formed XSPF: %v\n%s", err, data)
	}
	if p.TrackList == nil {
		t.Fatalf("trackList missing:\n%s", data)
	}
	if p.Extension == nil {
		t.Fatalf("playlist extension missing:\n%s", data)
	}
	return p
}

func entriesFor(paths ...string) []scanner.Entry {
	entries := make([]scanner.Entry, len(paths))
	for i, p := range paths {
		entries[i] = scanner.Entry{Path: p, Location: fileuri.Encode(p)}
	}
	return entries
}

// fixedDurations resolves from a map and fails for anything else.
func fixedDurations(m map[string]int64) probe.Resolver {
	return probe.Func(func(_ context.Context, path string) (int64, error) {
		ms, ok := m[path]
		if !ok {
			return 0, &probe.ResolutionError{Path: path, Reason: probe.ReasonNotFound}
		}
		return ms, nil
	})
}

func build(t *testing.T, b *Builder, title string, entries []scanner.Entry) *Document {
	t.Helper()
	doc, err := b.Build(context.Background(), title, entries)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	return doc
}

func TestMarshalSingleTrackExact(t *testing.T) {
	b := &Builder{Resolver: fixedDurations(map[string]int64{"/media/Movies/a.mp4": 5000})}
	doc := build(t, b, "Movies", entriesFor("/media/Movies/a.mp4"))

	got, err := Marshal(doc, FormatIndent)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	want := `<?xml version="1.0" encoding="UTF-8"?>
<playlist version="1" xmlns="http://xspf.org/ns/0/" xmlns:vlc="http://www.videolan.org/vlc/playlist/ns/0/">
  <title>Movies</title>
  <trackList>
    <track>
      <location>file:/media/Movies/a.mp4</location>
      <duration>5000</duration>
      <extension application="http://www.videolan.org/vlc/playlist/0">
        <vlc:id>0</vlc:id>
      </extension>
    </track>
  </trackList>
  <extension application="http://www.videolan.org/vlc/playlist/0">
    <vlc:item tid="0"></vlc:item>
  </extension>
</playlist>
`
	if string(got) != want {
		t.Errorf("Marshal() mismatch\n got:\n%s\nwant:\n%s", got, want)
	}
}

func TestMarshalEmpty(t *testing.T) {
	b := &Builder{Resolver: fixedDurations(nil)}
	doc := build(t, b, "Empty", nil)

	data, err := Marshal(doc, FormatIndent)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	p := parse(t, data)
	if p.Title != "Empty" {
		t.Errorf("title = %q, want Empty", p.Title)
	}
	if len(p.TrackList.Tracks) != 0 || len(p.Extension.Items) != 0 {
		t.Errorf("expected no tracks and no items, got %d and %d", len(p.TrackList.Tracks), len(p.Extension.Items))
	}
	if p.Extension.Application != VLCApplication {
		t.Errorf("extension application = %q", p.Extension.Application)
	}
}

func TestMarshalEmptyTitleStillEmitted(t *testing.T) {
	data, err := Marshal(&Document{}, FormatIndent)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(data, []byte("<title></title>")) {
		t.Errorf("empty title element missing:\n%s", data)
	}
}

func TestIndexParityAndCount(t *testing.T) {
	paths := []string{"/m/a.mp4", "/m/b.mkv", "/m/c d.avi", "/m/sub/e.mp3", "/m/sub/f#1.ogg"}
	durations := make(map[string]int64)
	for i, p := range paths {
		durations[p] = int64(1000 * (i + 1))
	}

	for _, format := range []Format{FormatIndent, FormatCompact} {
		t.Run(format.String(), func(t *testing.T) {
			b := &Builder{Resolver: fixedDurations(durations), Workers: 3}
			doc := build(t, b, "m", entriesFor(paths...))

			data, err := Marshal(doc, format)
			if err != nil {
				t.Fatal(err)
			}
			p := parse(t, data)

			if len(p.TrackList.Tracks) != len(paths) {
				t.Fatalf("tracks = %d, want %d", len(p.TrackList.Tracks), len(paths))
			}
			if len(p.Extension.Items) != len(paths) {
				t.Fatalf("items = %d, want %d", len(p.Extension.Items), len(paths))
			}
			for i, tr := range p.TrackList.Tracks {
				if tr.Extension.ID != i {
					t.Errorf("track %d vlc:id = %d", i, tr.Extension.ID)
				}
				if p.Extension.Items[i].TID != tr.Extension.ID {
					t.Errorf("item %d tid = %d, want %d", i, p.Extension.Items[i].TID, tr.Extension.ID)
				}
				if tr.Extension.Application != VLCApplication {
					t.Errorf("track %d extension application = %q", i, tr.Extension.Application)
				}
				path, err := fileuri.Decode(tr.Location)
				if err != nil {
					t.Fatalf("Decode(%q) error = %v", tr.Location, err)
				}
				if path != paths[i] {
					t.Errorf("track %d location decodes to %q, want %q", i, path, paths[i])
				}
				if tr.Duration != durations[paths[i]] {
					t.Errorf("track %d duration = %d, want %d", i, tr.Duration, durations[paths[i]])
				}
			}
		})
	}
}

func TestCompactParsesToSameTree(t *testing.T) {
	b := &Builder{Resolver: fixedDurations(map[string]int64{"/x/a.mp4": 1, "/x/b.mp4": 2})}
	doc := build(t, b, "Same Tree", entriesFor("/x/a.mp4", "/x/b.mp4"))

	indented, err := Marshal(doc, FormatIndent)
	if err != nil {
		t.Fatal(err)
	}
	compacted, err := Marshal(doc, FormatCompact)
	if err != nil {
		t.Fatal(err)
	}

	if len(compacted) >= len(indented) {
		t.Errorf("compact output (%d bytes) not smaller than indented (%d bytes)", len(compacted), len(indented))
	}
	if bytes.Contains(compacted, []byte("\n  ")) {
		t.Errorf("compact output still indented:\n%s", compacted)
	}

	a, c := parse(t, indented), parse(t, compacted)
	if !reflect.DeepEqual(a, c) {
		t.Errorf("trees differ\nindent:\n%s\ncompact:\n%s", indented, compacted)
	}
}

func TestMarshalIdempotent(t *testing.T) {
	resolver := fixedDurations(map[string]int64{"/a.mp4": 10, "/b.mp4": 20, "/c.mp4": 30})
	entries := entriesFor("/a.mp4", "/b.mp4", "/c.mp4")

	var outputs [][]byte
	for i := 0; i < 3; i++ {
		doc := build(t, &Builder{Resolver: resolver, Workers: 4}, "t", entries)
		data, err := Marshal(doc, FormatIndent)
		if err != nil {
			t.Fatal(err)
		}
		outputs = append(outputs, data)
	}
	for i := 1; i < len(outputs); i++ {
		if !bytes.Equal(outputs[0], outputs[i]) {
			t.Errorf("run %d output differs from run 0", i)
		}
	}
}

func TestMarshalEscapesTitle(t *testing.T) {
	data, err := Marshal(&Document{Title: "Tom & Jerry <1>"}, FormatIndent)
	if err != nil {
		t.Fatal(err)
	}
	if p := parse(t, data); p.Title != "Tom & Jerry <1>" {
		t.Errorf("title = %q", p.Title)
	}
}

func TestMarshalErrors(t *testing.T) {
	var serr *SerializationError

	if _, err := Marshal(nil, FormatIndent); !errors.As(err, &serr) {
		t.Errorf("Marshal(nil) error = %v, want *SerializationError", err)
	}
	if _, err := Marshal(&Document{}, Format(99)); !errors.As(err, &serr) {
		t.Errorf("Marshal(unknown format) error = %v, want *SerializationError", err)
	}
	if _, err := Marshal(&Document{Title: "t\x01\xffitle"}, FormatIndent); !errors.Is(err, ErrInvalidTitle) {
		t.Errorf("Marshal(invalid title) error = %v, want ErrInvalidTitle", err)
	}
}

func TestCheckTitle(t *testing.T) {
	tests := []struct {
		title   string
		wantErr bool
	}{
		{"", false},
		{"Movies", false},
		{"Tab\tand newline\n", false},
		{"Café & Bar <2>", false},
		{"日本語", false},
		{"bell\x07", true},
		{"nul\x00", true},
		{"bad\xffbyte", true},
		{"noncharacter\uFFFE", true},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%q", tt.title), func(t *testing.T) {
			err := CheckTitle(tt.title)
			if (err != nil) != tt.wantErr {
				t.Errorf("CheckTitle(%q) error = %v, wantErr %v", tt.title, err, tt.wantErr)
			}
		})
	}
}

func TestBuildOrderIndependentOfCompletion(t *testing.T) {
	paths := make([]string, 20)
	for i := range paths {
		paths[i] = fmt.Sprintf("/media/%02d.mp4", i)
	}

	// Earlier files take longer, so completion order is roughly reversed.
	resolver := probe.Func(func(ctx context.Context, path string) (int64, error) {
		var n int
		if _, err := fmt.Sscanf(path, "/media/%02d.mp4", &n); err != nil {
			return 0, err
		}
		time.Sleep(time.Duration(len(paths)-n) * time.Millisecond)
		return int64(n * 100), nil
	})

	var progress []int
	b := &Builder{
		Resolver: resolver,
		Workers:  8,
		Progress: func(done, total int) {
			if total != len(paths) {
				t.Errorf("progress total = %d, want %d", total, len(paths))
			}
			progress = append(progress, done)
		},
	}
	doc := build(t, b, "media", entriesFor(paths...))

	for i, tr := range doc.Tracks {
		if tr.Index != i || tr.Path != paths[i] || tr.DurationMS != int64(i*100) {
			t.Errorf("track %d = %+v", i, tr)
		}
	}
	if len(progress) != len(paths) || progress[len(progress)-1] != len(paths) {
		t.Errorf("progress calls = %v", progress)
	}
}

func TestBuildDuplicatesKept(t *testing.T) {
	b := &Builder{Resolver: fixedDurations(map[string]int64{"/a.mp4": 7})}
	doc := build(t, b, "dup", entriesFor("/a.mp4", "/a.mp4"))
	if len(doc.Tracks) != 2 || doc.Tracks[1].Index != 1 {
		t.Errorf("tracks = %+v", doc.Tracks)
	}
}

func TestBuildFailureIsFatal(t *testing.T) {
	for _, workers := range []int{1, 4} {
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			var calls atomic.Int32
			resolver := probe.Func(func(ctx context.Context, path string) (int64, error) {
				calls.Add(1)
				if strings.HasSuffix(path, "bad.txt") {
					return 0, errors.New("no duration stream")
				}
				return 1000, nil
			})

			b := &Builder{Resolver: resolver, Workers: workers}
			doc, err := b.Build(context.Background(), "t", entriesFor("/a.mp4", "/bad.txt", "/c.mp4"))
			if doc != nil {
				t.Errorf("Build() returned a document despite failure")
			}

			var resErr *probe.ResolutionError
			if !errors.As(err, &resErr) {
				t.Fatalf("Build() error = %v, want *probe.ResolutionError", err)
			}
			if resErr.Path != "/bad.txt" {
				t.Errorf("error path = %q, want /bad.txt", resErr.Path)
			}
			if workers == 1 && calls.Load() != 2 {
				t.Errorf("sequential build made %d resolver calls, want 2", calls.Load())
			}
		})
	}
}

func TestBuildFailureCancelsOutstanding(t *testing.T) {
	release := make(chan struct{})
	var once sync.Once

	resolver := probe.Func(func(ctx context.Context, path string) (int64, error) {
		if path == "/bad" {
			once.Do(func() { close(release) })
			return 0, &probe.ResolutionError{Path: path, Reason: probe.ReasonProbeFailed}
		}
		<-release
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-time.After(5 * time.Second):
			return 1, nil
		}
	})

	b := &Builder{Resolver: resolver, Workers: 4}
	start := time.Now()
	_, err := b.Build(context.Background(), "t", entriesFor("/slow1", "/slow2", "/bad", "/slow3"))
	if err == nil {
		t.Fatal("expected error")
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("Build() took %v; outstanding probes were not cancelled", elapsed)
	}

	var resErr *probe.ResolutionError
	if !errors.As(err, &resErr) || resErr.Path != "/bad" {
		t.Errorf("error = %v, want failure for /bad", err)
	}
}

func TestBuildCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	b := &Builder{Resolver: fixedDurations(map[string]int64{"/a": 1}), Workers: 1}
	if _, err := b.Build(ctx, "t", entriesFor("/a")); !errors.Is(err, context.Canceled) {
		t.Errorf("Build() error = %v, want context.Canceled", err)
	}
}

func TestBuildNegativeDuration(t *testing.T) {
	resolver := negativeResolver{}
	_, err := (&Builder{Resolver: resolver}).Build(context.Background(), "t", entriesFor("/a"))

	var resErr *probe.ResolutionError
	if !errors.As(err, &resErr) || resErr.Reason != probe.ReasonInvalidDuration {
		t.Errorf("Build() error = %v, want invalid_duration", err)
	}
}

type negativeResolver struct{}

func (negativeResolver) Resolve(context.Context, string) (int64, error) { return -1, nil }

func TestBuildWithoutResolver(t *testing.T) {
	if _, err := (&Builder{}).Build(context.Background(), "t", nil); err == nil {
		t.Error("expected error for missing resolver")
	}
}

func TestTotalDuration(t *testing.T) {
	doc := &Document{Tracks: []Track{{DurationMS: 1500}, {DurationMS: 2500}}}
	if got := doc.TotalDuration(); got != 4*time.Second {
		t.Errorf("TotalDuration() = %v, want 4s", got)
	}
}
