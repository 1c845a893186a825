package web

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/evcraddock/pagecomments/internal/comment"
	"github.com/evcraddock/pagecomments/internal/i18n"
	"github.com/evcraddock/pagecomments/internal/reporting"
)

type fakeService struct {
	mu        sync.Mutex
	comments  []comment.Comment
	listErr   error
	submitErr error
	listed    []comment.Target
	submitted []comment.SubmitRequest
}

func (f *fakeService) List(ctx context.Context, target comment.Target) ([]comment.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listed = append(f.listed, target)
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]comment.Comment(nil), f.comments...), nil
}

func (f *fakeService) Submit(ctx context.Context, req comment.SubmitRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitted = append(f.submitted, req)
	return f.submitErr
}

func TestHealthEndpoint(t *testing.T) {
	srv, _ := testServer(t, Options{})

	w := do(srv, httptest.NewRequest("GET", "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestStaticCSS(t *testing.T) {
	srv, _ := testServer(t, Options{})

	w := do(srv, httptest.NewRequest("GET", "/static/widget.css", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "#comments-widget")
}

func TestWidgetEmpty(t *testing.T) {
	srv, svc := testServer(t, Options{})

	w := do(srv, httptest.NewRequest("GET", "/widget/en/blog/post/", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
	body := w.Body.String()
	assert.Contains(t, body, "There are no comments yet")
	assert.Contains(t, body, `id="comment-form"`)
	assert.NotContains(t, body, "star-widget")
	assert.Equal(t, []comment.Target{"en/blog/post"}, svc.listed)
}

func TestWidgetRootPage(t *testing.T) {
	srv, svc := testServer(t, Options{})

	w := do(srv, httptest.NewRequest("GET", "/widget/de", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Es gibt noch keine Kommentare.")
	assert.Equal(t, []comment.Target{"de/"}, svc.listed)
}

func TestWidgetSortedNewestFirst(t *testing.T) {
	srv, svc := testServer(t, Options{})
	svc.comments = []comment.Comment{
		{ID: "old", Message: "old one", AddedAt: "2019-01-01T00:00:00Z"},
		{ID: "new", Message: "new one", AddedAt: "2022-01-01T00:00:00Z"},
	}

	w := do(srv, httptest.NewRequest("GET", "/widget/en/page", nil))

	body := w.Body.String()
	require.Equal(t, http.StatusOK, w.Code)
	assert.Less(t, strings.Index(body, "new one"), strings.Index(body, "old one"))
	assert.NotContains(t, body, "There are no comments yet")
}

func TestWidgetLocaleFallback(t *testing.T) {
	srv, svc := testServer(t, Options{})

	w := do(srv, httptest.NewRequest("GET", "/widget/xx/page", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "<h2>Comments</h2>")
	assert.Equal(t, []comment.Target{"en/page"}, svc.listed)
}

func TestWidgetEscapedPath(t *testing.T) {
	srv, svc := testServer(t, Options{})

	tests := []struct {
		name string
		path string
		want comment.Target
	}{
		{"non-ascii", "/widget/en/%C3%BCber-uns/", "en/%C3%BCber-uns"},
		{"escaped comma", "/widget/en/a%2Cb/c", "en/a%2Cb/c"},
		{"space", "/widget/en/a%20b", "en/a%20b"},
		{"escaped percent", "/widget/en/100%25", "en/100%25"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc.mu.Lock()
			svc.listed = nil
			svc.mu.Unlock()

			w := do(srv, httptest.NewRequest("GET", tt.path, nil))

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, []comment.Target{tt.want}, svc.listed)
		})
	}
}

func TestSubmitEscapedPath(t *testing.T) {
	srv, svc := testServer(t, Options{})

	w := do(srv, formRequest("/widget/en/%C3%BCber-uns/", url.Values{"message": {"Hallo"}}, true))

	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, svc.submitted, 1)
	assert.Equal(t, comment.Target("en/%C3%BCber-uns"), svc.submitted[0].Target)
	assert.Contains(t, w.Body.String(), `/widget/en/%C3%BCber-uns/`)
}

func TestWidgetRatingParam(t *testing.T) {
	srv, _ := testServer(t, Options{})

	w := do(srv, httptest.NewRequest("GET", "/widget/en/page?rating=1", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `id="star-widget"`)
	assert.Contains(t, w.Body.String(), `name="allow_rating"`)
}

func TestWidgetRatingOption(t *testing.T) {
	srv, _ := testServer(t, Options{AllowRating: true})

	w := do(srv, httptest.NewRequest("GET", "/widget/en/page", nil))

	assert.Contains(t, w.Body.String(), `id="star-widget"`)
}

func TestWidgetLoadFailure(t *testing.T) {
	srv, svc := testServer(t, Options{})
	svc.listErr = errors.New("connection refused")

	w := do(srv, httptest.NewRequest("GET", "/widget/en/page", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "The comments could not be loaded.")
	assert.Contains(t, w.Body.String(), "There are no comments yet")
}

func TestSubmitEmptyMessage(t *testing.T) {
	srv, svc := testServer(t, Options{})

	w := do(srv, formRequest("/widget/en/page", url.Values{"author": {"Alice"}, "message": {""}}, false))

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "You need to enter a message.")
	assert.Empty(t, svc.submitted)
}

func TestSubmitHTMXSuccess(t *testing.T) {
	srv, svc := testServer(t, Options{})

	form := url.Values{"author": {"Alice"}, "message": {"Great article"}, "rating": {"4"}}
	w := do(srv, formRequest("/widget/en/blog/post", form, true))

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.True(t, strings.HasPrefix(strings.TrimSpace(body), `<form id="comment-form"`), body)
	assert.Contains(t, body, "flash-success")
	assert.Contains(t, body, `value="Alice"`)
	assert.NotContains(t, body, "Great article")

	require.Len(t, svc.submitted, 1)
	req := svc.submitted[0]
	assert.Equal(t, comment.Target("en/blog/post"), req.Target)
	assert.Equal(t, "Alice", req.Author)
	assert.Equal(t, "Great article", req.Message)
	assert.Nil(t, req.Additional, "rating is not sent when the rating input is disabled")
	assert.Empty(t, svc.listed, "HTMX submit does not reload the thread")
}

func TestSubmitWithRating(t *testing.T) {
	srv, svc := testServer(t, Options{})

	form := url.Values{"message": {"Rated"}, "rating": {"3"}, "allow_rating": {"1"}}
	w := do(srv, formRequest("/widget/en/page", form, true))

	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, svc.submitted, 1)
	require.NotNil(t, svc.submitted[0].Additional)
	assert.Equal(t, 3, *svc.submitted[0].Additional.Rating)
	assert.Contains(t, w.Body.String(), `value="3" checked`)
}

func TestSubmitClearedRating(t *testing.T) {
	srv, svc := testServer(t, Options{})

	form := url.Values{"message": {"Unrated"}, "rating": {"0"}, "allow_rating": {"1"}}
	w := do(srv, formRequest("/widget/en/page", form, true))

	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, svc.submitted, 1)
	assert.Nil(t, svc.submitted[0].Additional)
	assert.Contains(t, w.Body.String(), `value="0" checked`)
}

func TestSubmitPlainPostRendersWidget(t *testing.T) {
	srv, svc := testServer(t, Options{})

	w := do(srv, formRequest("/widget/en/page", url.Values{"message": {"Hi"}}, false))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `id="comments-widget"`)
	assert.Contains(t, w.Body.String(), "flash-success")
	assert.Equal(t, []comment.Target{"en/page"}, svc.listed)
}

func TestSubmitFailureKeepsMessage(t *testing.T) {
	srv, svc := testServer(t, Options{})
	svc.submitErr = errors.New("unexpected response from comments server")

	w := do(srv, formRequest("/widget/en/page", url.Values{"message": {"Keep this"}}, false))

	assert.Equal(t, http.StatusBadGateway, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, ">Keep this</textarea>")
	assert.Contains(t, body, "An error occurred while sending your comment.")
}

func TestSubmitInvalidRating(t *testing.T) {
	srv, svc := testServer(t, Options{})

	for _, rating := range []string{"abc", "9", "-1"} {
		w := do(srv, formRequest("/widget/en/page", url.Values{"message": {"x"}, "rating": {rating}}, false))
		assert.Equal(t, http.StatusBadRequest, w.Code, rating)
	}
	assert.Empty(t, svc.submitted)
}

func TestSubmitThrottled(t *testing.T) {
	srv, svc := testServer(t, Options{SubmitRate: 0.001, SubmitBurst: 1})

	first := do(srv, formRequest("/widget/en/page", url.Values{"message": {"one"}}, true))
	assert.Equal(t, http.StatusOK, first.Code)

	second := do(srv, formRequest("/widget/en/page", url.Values{"message": {"two"}}, false))
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Contains(t, second.Body.String(), "You are sending comments too quickly.")
	assert.Contains(t, second.Body.String(), ">two</textarea>")

	assert.Len(t, svc.submitted, 1)
}

func testServer(t *testing.T, opts Options) (*Server, *fakeService) {
	t.Helper()
	bundle, err := i18n.Load("en", nil)
	require.NoError(t, err)

	svc := &fakeService{}
	logger := zap.NewNop()
	srv, err := NewServer(svc, bundle, reporting.NewLog(logger), logger, opts)
	require.NoError(t, err)
	return srv, svc
}

func formRequest(path string, form url.Values, htmx bool) *http.Request {
	r := httptest.NewRequest("POST", path, strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if htmx {
		r.Header.Set("HX-Request", "true")
	}
	return r
}

func do(srv http.Handler, r *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, r)
	return w
}
