package comment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/", ""},
		{"", ""},
		{"/blog/post-1/", "blog/post-1"},
		{"blog/post-1", "blog/post-1"},
		{"//company/acme//", "company/acme"},
		{" /blog/ ", "blog"},
		{"/a b/", "a b"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizePath(tt.path))
		})
	}
}

func TestNewTarget(t *testing.T) {
	target := NewTarget("de", "/blog/dsgvo-anfrage/")
	assert.Equal(t, Target("de/blog/dsgvo-anfrage"), target)
	assert.Equal(t, "de", target.Locale())
	assert.Equal(t, "blog/dsgvo-anfrage", target.Path())
	assert.Equal(t, "de/blog/dsgvo-anfrage", target.String())
}

func TestNewTargetRoot(t *testing.T) {
	target := NewTarget("en", "/")
	assert.Equal(t, Target("en/"), target)
	assert.Equal(t, "", target.Path())
}

func TestNewTargetKeepsPercentEncoding(t *testing.T) {
	tests := []struct {
		name string
		path string
		want Target
	}{
		{"decoded non-ascii", "/über-uns/", "en/%C3%BCber-uns"},
		{"already encoded", "/%C3%BCber-uns/", "en/%C3%BCber-uns"},
		{"lower-case escape kept", "/%c3%bcber-uns", "en/%c3%bcber-uns"},
		{"space", "/a b/", "en/a%20b"},
		{"sub-delims kept", "/a,b;c=d/", "en/a,b;c=d"},
		{"encoded comma kept", "/a%2Cb", "en/a%2Cb"},
		{"stray percent", "/100%/", "en/100%25"},
		{"query and fragment bytes", "/a?b#c", "en/a%3Fb%23c"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewTarget("en", tt.path))
		})
	}
}

func TestEscapePathIdempotent(t *testing.T) {
	for _, p := range []string{"über uns/ä", "a%2Fb", "100%", "x?y"} {
		once := EscapePath(p)
		assert.Equal(t, once, EscapePath(once), p)
	}
}
