package comment

import (
	"regexp"
	"strings"
)

// pathTrim strips surrounding whitespace and slashes from each line of a page path.
var pathTrim = regexp.MustCompile(`(?m)^\s*/*\s*|\s*/*\s*$`)

// Target identifies a comment thread: the locale and the normalized page path,
// joined as "{locale}/{path}".
type Target string

// NewTarget builds the thread target for a page path viewed in the given locale.
// The path is kept in the percent-encoded form a browser reports as its
// location pathname, so "/über-uns/" and "/%C3%BCber-uns/" name the same thread.
func NewTarget(locale, path string) Target {
	return Target(locale + "/" + EscapePath(NormalizePath(path)))
}

// EscapePath percent-encodes the bytes of path that may not appear in a URL
// path. Existing %XX escapes are left alone, so escaping is idempotent.
func EscapePath(path string) string {
	const hexDigits = "0123456789ABCDEF"

	var b strings.Builder
	b.Grow(len(path))
	for i := 0; i < len(path); i++ {
		c := path[i]
		switch {
		case c == '%' && i+2 < len(path) && isHex(path[i+1]) && isHex(path[i+2]):
			b.WriteByte(c)
		case isPathByte(c):
			b.WriteByte(c)
		default:
			b.WriteByte('%')
			b.WriteByte(hexDigits[c>>4])
			b.WriteByte(hexDigits[c&0x0f])
		}
	}
	return b.String()
}

func isHex(c byte) bool {
	return '0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F'
}

// isPathByte reports whether c may appear unescaped in a URL path
// (RFC 3986 unreserved, sub-delims, ':', '@' and '/').
func isPathByte(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	return strings.IndexByte("-._~!$&'()*+,;=:@/", c) >= 0
}

// NormalizePath trims leading and trailing slashes (and whitespace around them) from a page path.
func NormalizePath(path string) string {
	return pathTrim.ReplaceAllString(path, "")
}

// Locale returns the locale part of the target.
func (t Target) Locale() string {
	locale, _, _ := strings.Cut(string(t), "/")
	return locale
}

// Path returns the page path part of the target.
func (t Target) Path() string {
	_, path, _ := strings.Cut(string(t), "/")
	return path
}

func (t Target) String() string {
	return string(t)
}
