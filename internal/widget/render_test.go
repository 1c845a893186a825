package widget

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evcraddock/pagecomments/internal/comment"
	"github.com/evcraddock/pagecomments/internal/i18n"
)

func TestRenderComment(t *testing.T) {
	c := comment.Comment{
		ID:         "7",
		Author:     "Alice",
		Message:    "first line\nsecond line",
		AddedAt:    "2021-03-04T17:05:09.000Z",
		Additional: &comment.Additional{Rating: comment.RatingPtr(3)},
	}

	var buf bytes.Buffer
	require.NoError(t, RenderComment(&buf, testLocale(t), c))
	out := buf.String()

	assert.Contains(t, out, "<strong>Alice</strong> (3/4/2021, 5:05:09 PM)")
	assert.Contains(t, out, "<span>first line<br></span><span>second line<br></span>")
	assert.Contains(t, out, `id="stars-7"`)
	assert.Equal(t, 3, strings.Count(out, "★"))
	assert.Equal(t, 2, strings.Count(out, "☆"))
}

func TestRenderCommentWithoutRatingOrAuthor(t *testing.T) {
	c := comment.Comment{ID: "8", Message: "anonymous", AddedAt: "2021-03-04T17:05:09Z"}

	var buf bytes.Buffer
	require.NoError(t, RenderComment(&buf, testLocale(t), c))
	out := buf.String()

	assert.Contains(t, out, "<strong></strong>")
	assert.NotContains(t, out, "star-widget")
}

func TestRenderCommentEscapesHTML(t *testing.T) {
	c := comment.Comment{ID: "9", Author: "<b>x</b>", Message: "<script>alert(1)</script>", AddedAt: "2021-03-04T17:05:09Z"}

	var buf bytes.Buffer
	require.NoError(t, RenderComment(&buf, testLocale(t), c))
	out := buf.String()

	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, "&lt;script&gt;")
	assert.NotContains(t, out, "<b>x</b>")
}

func TestRenderCommentLocalized(t *testing.T) {
	b, err := i18n.Load("en", nil)
	require.NoError(t, err)

	c := comment.Comment{ID: "1", Message: "hallo", AddedAt: "2021-03-04T17:05:09Z"}
	var buf bytes.Buffer
	require.NoError(t, RenderComment(&buf, b.Locale("de"), c))

	assert.Contains(t, buf.String(), "(4.3.2021, 17:05:09)")
}

func TestRenderFormRatingInput(t *testing.T) {
	draft, err := comment.NewDraft("Bob", "text", 2)
	require.NoError(t, err)

	state := State{Config: Config{Target: "en/x", AllowRating: true, Action: "/widget/en/x"}, Draft: draft}

	var buf bytes.Buffer
	require.NoError(t, RenderForm(&buf, testLocale(t), state))
	out := buf.String()

	assert.Contains(t, out, `action="/widget/en/x"`)
	assert.Contains(t, out, `value="Bob"`)
	assert.Contains(t, out, ">text</textarea>")
	assert.Contains(t, out, `id="star-widget"`)
	assert.Equal(t, 6, strings.Count(out, `type="radio"`))
	assert.Equal(t, 1, strings.Count(out, " checked"))
	assert.Contains(t, out, `value="2" checked`)
	assert.Contains(t, out, `name="allow_rating"`)
}

func TestRenderFormRatingCanBeCleared(t *testing.T) {
	draft, err := comment.NewDraft("", "text", 0)
	require.NoError(t, err)

	state := State{Config: Config{Target: "en/x", AllowRating: true, Action: "/widget/en/x"}, Draft: draft}

	var buf bytes.Buffer
	require.NoError(t, RenderForm(&buf, testLocale(t), state))
	out := buf.String()

	assert.Contains(t, out, `value="0" checked`)
	assert.Contains(t, out, "No rating")
	assert.Equal(t, 1, strings.Count(out, " checked"))
}

func TestRenderFormWithoutRating(t *testing.T) {
	state := State{Config: Config{Target: "en/x", Action: "/widget/en/x"}}

	var buf bytes.Buffer
	require.NoError(t, RenderForm(&buf, testLocale(t), state))
	out := buf.String()

	assert.NotContains(t, out, "star-widget")
	assert.NotContains(t, out, "allow_rating")
	assert.Contains(t, out, "Leave a comment")
}

func TestRenderFormNotifications(t *testing.T) {
	state := State{
		Config:        Config{Target: "en/x"},
		Notifications: []Notification{{Level: LevelSuccess, Message: "Thanks"}},
	}

	var buf bytes.Buffer
	require.NoError(t, RenderForm(&buf, testLocale(t), state))

	assert.Contains(t, buf.String(), `class="flash-message flash-success"`)
	assert.Contains(t, buf.String(), "Thanks")
}

func TestRenderWidgetLang(t *testing.T) {
	b, err := i18n.Load("en", nil)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, b.Locale("fr"), State{Config: Config{Target: "fr/x"}}))

	assert.Contains(t, buf.String(), `lang="fr"`)
	assert.Contains(t, buf.String(), "<h2>Commentaires</h2>")
}
