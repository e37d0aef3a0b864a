package fileuri

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

// Scheme is the literal prefix of every encoded location.
const Scheme = "file:"

// ErrNotFileURI is returned by Decode for input without the file: scheme.
var ErrNotFileURI = errors.New("not a file URI")

const upperhex = "0123456789ABCDEF"

// Encode returns the file: URI for path.
func Encode(path string) string {
	p := filepath.ToSlash(path)

	var b strings.Builder
	b.Grow(len(Scheme) + 2 + len(p)*3)
	b.WriteString(Scheme)
	if strings.HasPrefix(p, "//") {
		b.WriteString("//")
	}
	for i := 0; i < len(p); i++ {
		c := p[i]
		if c == '/' || isUnreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperhex[c>>4])
		b.WriteByte(upperhex[c&0x0f])
	}
	return b.String()
}

// Decode reverses Encode. It also accepts the file://localhost/ and
// file:/// authority forms written by other tools.
func Decode(uri string) (string, error) {
	if len(uri) < len(Scheme) || !strings.EqualFold(uri[:len(Scheme)], Scheme) {
		return "", fmt.Errorf("%w: %q", ErrNotFileURI, uri)
	}
	rest := uri[len(Scheme):]

	if strings.HasPrefix(rest, "//") {
		authority := rest[2:]
		end := strings.IndexByte(authority, '/')
		if end == -1 {
			return "", fmt.Errorf("file URI %q has no path", uri)
		}
		host := authority[:end]
		if host != "" && !strings.EqualFold(host, "localhost") {
			return "", fmt.Errorf("file URI %q names remote host %q", uri, host)
		}
		rest = authority[end:]
	}

	p, err := url.PathUnescape(rest)
	if err != nil {
		return "", fmt.Errorf("decode file URI %q: %w", uri, err)
	}
	return filepath.FromSlash(p), nil
}

// isUnreserved reports RFC 3986 section 2.3 unreserved characters.
func isUnreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	case c == '-', c == '.', c == '_', c == '~':
		return true
	}
	return false
}
