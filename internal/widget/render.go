package widget

import (
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/evcraddock/pagecomments/internal/comment"
)

//go:embed templates/*.html
var templateFS embed.FS

// baseTemplates holds the parsed templates. The locale-bound functions are
// placeholders replaced on every render.
var baseTemplates = template.Must(template.New("").Funcs(template.FuncMap{
	"t":          func(key, scope string) string { return key },
	"date":       func(ts string) string { return ts },
	"locale":     func() string { return "" },
	"seq":        tmplSeq,
	"stars":      tmplStars,
	"starsInput": tmplStarsInput,
}).ParseFS(templateFS, "templates/*.html"))

// StarProps are the properties of the star rating control.
type StarProps struct {
	ID       string
	Name     string
	Value    int
	Max      int
	ReadOnly bool
}

// Render writes the whole widget for s.
func Render(w io.Writer, loc Locale, s State) error {
	return execute(w, loc, "widget", s)
}

// RenderForm writes only the submission form and its notifications.
func RenderForm(w io.Writer, loc Locale, s State) error {
	return execute(w, loc, "comment-form", s)
}

// RenderComment writes a single comment.
func RenderComment(w io.Writer, loc Locale, c comment.Comment) error {
	return execute(w, loc, "comment-item", c)
}

func execute(w io.Writer, loc Locale, name string, data interface{}) error {
	tmpl, err := baseTemplates.Clone()
	if err != nil {
		return fmt.Errorf("cloning templates: %w", err)
	}
	tmpl.Funcs(template.FuncMap{
		"t":      loc.T,
		"date":   loc.FormatDate,
		"locale": loc.Tag,
	})
	if err := tmpl.ExecuteTemplate(w, name, data); err != nil {
		return fmt.Errorf("rendering %s: %w", name, err)
	}
	return nil
}

// Template helper functions

func tmplSeq(start, end int) []int {
	var s []int
	for i := start; i <= end; i++ {
		s = append(s, i)
	}
	return s
}

func tmplStars(id string, value int, readOnly bool) StarProps {
	return StarProps{ID: id, Value: value, Max: comment.MaxRating, ReadOnly: readOnly}
}

func tmplStarsInput(id, name string, value int) StarProps {
	return StarProps{ID: id, Name: name, Value: value, Max: comment.MaxRating}
}
