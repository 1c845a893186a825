package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/evcraddock/pagecomments/internal/comment"
	"github.com/evcraddock/pagecomments/internal/i18n"
	"github.com/evcraddock/pagecomments/internal/widget"
)

// handleHealth reports that the server is up.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]string{"status": "ok"}); err != nil {
		http.Error(w, `{"error":"encode failed"}`, http.StatusInternalServerError)
	}
}

// handleWidget renders the widget for the page path in the URL.
func (s *Server) handleWidget(w http.ResponseWriter, r *http.Request) {
	loc, target := s.resolve(r)

	wdg := s.newWidget(r, loc, target, isTrue(r.URL.Query().Get("rating")), nil)
	<-wdg.Init(r.Context())

	s.render(w, http.StatusOK, func(buf *bytes.Buffer) error {
		return widget.Render(buf, loc, wdg.State())
	})
}

// handleSubmit accepts the widget's form post. HTMX requests get the form
// fragment back, plain posts get the whole widget.
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	loc, target := s.resolve(r)

	notes := &widget.Notifications{}
	wdg := s.newWidget(r, loc, target, isTrue(r.PostFormValue("allow_rating")), notes)
	form := wdg.Form()
	form.SetAuthor(r.PostFormValue("author"))
	form.SetMessage(r.PostFormValue("message"))
	if v := r.PostFormValue("rating"); v != "" {
		rating, err := strconv.Atoi(v)
		if err == nil {
			err = form.SetRating(rating)
		}
		if err != nil {
			http.Error(w, fmt.Sprintf("Rating must be 0-%d", comment.MaxRating), http.StatusBadRequest)
			return
		}
	}

	status := http.StatusOK
	if form.Draft().Message() != "" && !s.throttle.allow(clientIP(r)) {
		notes.Flash(widget.Notification{Level: widget.LevelError, Message: loc.T("throttled", "comments")})
		status = http.StatusTooManyRequests
	} else if err := form.Submit(r.Context()); err != nil {
		status = http.StatusBadGateway
		if errors.Is(err, widget.ErrNoMessage) {
			status = http.StatusUnprocessableEntity
		}
	}

	// HTMX only swaps successful responses, so the form fragment always goes out as 200.
	if r.Header.Get("HX-Request") == "true" {
		s.render(w, http.StatusOK, func(buf *bytes.Buffer) error {
			return widget.RenderForm(buf, loc, wdg.State())
		})
		return
	}

	<-wdg.Init(r.Context())
	s.render(w, status, func(buf *bytes.Buffer) error {
		return widget.Render(buf, loc, wdg.State())
	})
}

// resolve derives the locale and thread target from the request path. The
// page path stays percent-encoded the way the client sent it.
func (s *Server) resolve(r *http.Request) (*i18n.Locale, comment.Target) {
	loc := s.bundle.Locale(chi.URLParam(r, "locale"))
	return loc, comment.NewTarget(loc.Tag(), escapedWildcard(r))
}

// escapedWildcard returns the route's wildcard in escaped form. chi matches
// on RawPath when it is set; otherwise the decoded path already has the
// default encoding and escaping it again restores what the client sent.
func escapedWildcard(r *http.Request) string {
	path := chi.URLParam(r, "*")
	if r.URL.RawPath == "" {
		path = (&url.URL{Path: path}).EscapedPath()
	}
	return path
}

func (s *Server) newWidget(r *http.Request, loc *i18n.Locale, target comment.Target, allowRating bool, notifier widget.Notifier) *widget.Widget {
	cfg := widget.Config{
		Target:      target,
		AllowRating: s.opts.AllowRating || allowRating,
		Action:      r.URL.EscapedPath(),
	}
	deps := widget.Deps{
		Service:  s.service,
		Locale:   loc,
		Reporter: s.reporter,
		Logger:   s.logger.With(zap.String("request_id", middleware.GetReqID(r.Context()))),
	}
	if notifier != nil {
		deps.Notifier = notifier
	}
	return widget.New(cfg, deps)
}

// render buffers a template so that errors can still produce a 500.
func (s *Server) render(w http.ResponseWriter, status int, fn func(buf *bytes.Buffer) error) {
	var buf bytes.Buffer
	if err := fn(&buf); err != nil {
		s.logger.Error("rendering widget", zap.Error(err))
		http.Error(w, fmt.Sprintf("Error rendering template: %v", err), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		s.logger.Warn("writing response", zap.Error(err))
	}
}

// clientIP returns the request's IP without the port.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func isTrue(v string) bool {
	b, err := strconv.ParseBool(v)
	return err == nil && b
}
