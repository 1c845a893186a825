// Package i18n loads the widget's string tables and negotiates locales.
package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strings"
	"time"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

//go:embed locales/*.yaml
var localesFS embed.FS

// dateTimeKey is the layout used for timestamps, looked up in the "format" scope.
const dateTimeKey = "datetime"

// Translator looks up a string by key within a scope.
type Translator interface {
	T(key, scope string) string
}

// Locale is the string table of a single locale.
type Locale struct {
	tag      string
	scopes   map[string]map[string]string
	fallback *Locale
	location *time.Location
}

// Tag returns the locale name, e.g. "de".
func (l *Locale) Tag() string {
	return l.tag
}

// T returns the string for key in scope. Missing strings fall back to the
// default locale and then to the key itself.
func (l *Locale) T(key, scope string) string {
	if s, ok := l.scopes[scope][key]; ok {
		return s
	}
	if l.fallback != nil && l.fallback != l {
		return l.fallback.T(key, scope)
	}
	return key
}

// FormatDate renders an ISO-8601 timestamp with the locale's date-time layout.
// Unparseable input is returned unchanged.
func (l *Locale) FormatDate(ts string) string {
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		t, err = time.Parse("2006-01-02", ts)
		if err != nil {
			return ts
		}
	}
	return t.In(l.location).Format(l.T(dateTimeKey, "format"))
}

// Bundle holds the string tables of all supported locales.
type Bundle struct {
	fallback string
	names    []string
	matcher  language.Matcher
	locales  map[string]*Locale
	location *time.Location
}

// Option configures a Bundle.
type Option func(*Bundle)

// WithLocation sets the time zone timestamps are displayed in. Defaults to UTC.
func WithLocation(loc *time.Location) Option {
	return func(b *Bundle) { b.location = loc }
}

// Load reads the embedded string tables for the supported locales. An empty
// supported list enables every embedded locale. fallback must be one of them.
func Load(fallback string, supported []string, opts ...Option) (*Bundle, error) {
	b := &Bundle{
		fallback: fallback,
		locales:  make(map[string]*Locale),
		location: time.UTC,
	}
	for _, opt := range opts {
		opt(b)
	}

	available, err := embeddedLocales()
	if err != nil {
		return nil, err
	}
	if len(supported) == 0 {
		supported = available
	}

	for _, name := range supported {
		name = strings.TrimSpace(name)
		if !slices.Contains(available, name) {
			return nil, fmt.Errorf("locale %q has no string table", name)
		}
		scopes, err := readTable(name)
		if err != nil {
			return nil, err
		}
		b.locales[name] = &Locale{tag: name, scopes: scopes, location: b.location}
	}

	def, ok := b.locales[fallback]
	if !ok {
		return nil, fmt.Errorf("default locale %q is not supported", fallback)
	}

	// The fallback goes first so the matcher prefers it when nothing matches.
	b.names = append(b.names, fallback)
	for name, l := range b.locales {
		l.fallback = def
		if name != fallback {
			b.names = append(b.names, name)
		}
	}
	slices.Sort(b.names[1:])

	tags := make([]language.Tag, len(b.names))
	for i, name := range b.names {
		tags[i] = language.Make(name)
	}
	b.matcher = language.NewMatcher(tags)

	return b, nil
}

// Default returns the name of the fallback locale.
func (b *Bundle) Default() string {
	return b.fallback
}

// Supported returns the supported locale names, default first.
func (b *Bundle) Supported() []string {
	return slices.Clone(b.names)
}

// Match returns the supported locale closest to the requested one, or the
// default when nothing matches.
func (b *Bundle) Match(requested string) string {
	if requested == "" {
		return b.fallback
	}
	tag, err := language.Parse(requested)
	if err != nil {
		return b.fallback
	}
	_, idx, conf := b.matcher.Match(tag)
	if conf == language.No {
		return b.fallback
	}
	return b.names[idx]
}

// Locale returns the string table for the supported locale closest to requested.
func (b *Bundle) Locale(requested string) *Locale {
	return b.locales[b.Match(requested)]
}

// embeddedLocales lists the locale names with an embedded string table.
func embeddedLocales() ([]string, error) {
	entries, err := fs.ReadDir(localesFS, "locales")
	if err != nil {
		return nil, fmt.Errorf("reading locales: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || path.Ext(e.Name()) != ".yaml" {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), ".yaml"))
	}
	return names, nil
}

func readTable(name string) (map[string]map[string]string, error) {
	data, err := localesFS.ReadFile("locales/" + name + ".yaml")
	if err != nil {
		return nil, fmt.Errorf("reading locale %s: %w", name, err)
	}
	var scopes map[string]map[string]string
	if err := yaml.Unmarshal(data, &scopes); err != nil {
		return nil, fmt.Errorf("parsing locale %s: %w", name, err)
	}
	return scopes, nil
}
