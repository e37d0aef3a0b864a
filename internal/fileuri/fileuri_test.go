package fileuri

import (
	"errors"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
)

func TestEncode(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		expected string
	}{
		{"Plain absolute", "/media/a.mp4", "file:/media/a.mp4"},
		{"Relative", "videos/sub/b.mp4", "file:videos/sub/b.mp4"},
		{"Space", "/media/My Movie.mkv", "file:/media/My%20Movie.mkv"},
		{"Unicode", "/media/Ünï.mp3", "file:/media/%C3%9Cn%C3%AF.mp3"},
		{"Reserved characters", "/m/a#b?c%d;e:f@g&h=i+j$k,l", "file:/m/a%23b%3Fc%25d%3Be%3Af%40g%26h%3Di%2Bj%24k%2Cl"},
		{"Brackets and quotes", "/m/[x] 'y' (z)!*", "file:/m/%5Bx%5D%20%27y%27%20%28z%29%21%2A"},
		{"Unreserved kept", "/m/a-b_c.d~e", "file:/m/a-b_c.d~e"},
		{"UNC share", "//server/share/c.mp4", "file:////server/share/c.mp4"},
		{"Empty path", "", "file:"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Encode(tt.path); got != tt.expected {
				t.Errorf("Encode(%q) = %q, want %q", tt.path, got, tt.expected)
			}
		})
	}
}

func TestEncodeProducesValidURI(t *testing.T) {
	paths := []string{
		"/media/My Movie.mkv",
		"/media/日本語/曲.flac",
		"/m/100% [remaster] #2?.mp3",
	}

	for _, p := range paths {
		t.Run(p, func(t *testing.T) {
			encoded := Encode(p)
			u, err := url.Parse(encoded)
			if err != nil {
				t.Fatalf("url.Parse(%q) failed: %v", encoded, err)
			}
			if u.Scheme != "file" {
				t.Errorf("Expected scheme file, got %q", u.Scheme)
			}
			if strings.ContainsAny(encoded, " #?") {
				t.Errorf("Encoded URI contains characters that must be escaped: %q", encoded)
			}
			for i := 0; i < len(encoded); i++ {
				if encoded[i] >= 0x80 {
					t.Fatalf("Encoded URI contains non-ASCII byte at %d: %q", i, encoded)
				}
			}
		})
	}
}

func TestRoundTrip(t *testing.T) {
	paths := []string{
		"/media/a.mp4",
		"relative/dir/b.mp4",
		"/media/My Movie (2020).mkv",
		"/media/Ünïcödé/音楽.flac",
		"/media/a#b?c%d;e:f@g&h=i+j$k,l[m]n!o'p(q)r*s.mp3",
		"/media/%20already-escaped-looking.mp3",
		"/media/tab\there.mp3",
		"//server/share/c.mp4",
	}

	for _, p := range paths {
		t.Run(p, func(t *testing.T) {
			native := filepath.FromSlash(p)
			got, err := Decode(Encode(native))
			if err != nil {
				t.Fatalf("Decode(Encode(%q)) error: %v", native, err)
			}
			if got != native {
				t.Errorf("Round trip mismatch: got %q, want %q", got, native)
			}
		})
	}
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name     string
		uri      string
		expected string
		wantErr  error
	}{
		{"No authority", "file:/media/a%20b.mp4", "/media/a b.mp4", nil},
		{"Empty authority", "file:///media/a.mp4", "/media/a.mp4", nil},
		{"Localhost authority", "file://localhost/media/a.mp4", "/media/a.mp4", nil},
		{"Uppercase scheme", "FILE:/media/a.mp4", "/media/a.mp4", nil},
		{"Plus is literal", "file:/m/a+b.mp3", "/m/a+b.mp3", nil},
		{"Wrong scheme", "http://example.com/a.mp4", "", ErrNotFileURI},
		{"Too short", "fil", "", ErrNotFileURI},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(tt.uri)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Decode(%q) error = %v, want %v", tt.uri, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Decode(%q) unexpected error: %v", tt.uri, err)
			}
			if got != filepath.FromSlash(tt.expected) {
				t.Errorf("Decode(%q) = %q, want %q", tt.uri, got, tt.expected)
			}
		})
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		uri  string
	}{
		{"Remote host", "file://nas/share/a.mp4"},
		{"Authority without path", "file://localhost"},
		{"Bad escape", "file:/media/a%zz.mp4"},
		{"Truncated escape", "file:/media/a%2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decode(tt.uri); err == nil {
				t.Errorf("Decode(%q) expected error", tt.uri)
			}
		})
	}
}

func BenchmarkEncode(b *testing.B) {
	p := "/media/Some Artist/Some Album (Deluxe)/01 - Ünïcode Track #1.flac"
	for i := 0; i < b.N; i++ {
		_ = Encode(p)
	}
}
