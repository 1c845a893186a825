// Package web provides the HTTP server that renders the comments widget.
package web

import (
	"embed"
	"fmt"
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/evcraddock/pagecomments/internal/i18n"
	"github.com/evcraddock/pagecomments/internal/logging"
	"github.com/evcraddock/pagecomments/internal/reporting"
	"github.com/evcraddock/pagecomments/internal/widget"
)

//go:embed static/*
var staticFS embed.FS

// Options tune the widget server.
type Options struct {
	// AllowRating enables the rating input on every widget, regardless of the
	// per-request rating parameter.
	AllowRating bool
	// SubmitRate is the sustained number of submissions per second allowed per
	// client IP. Zero disables throttling.
	SubmitRate  rate.Limit
	SubmitBurst int
}

// Server is the widget HTTP server.
type Server struct {
	service  widget.Service
	bundle   *i18n.Bundle
	reporter reporting.Reporter
	logger   *zap.Logger
	opts     Options
	throttle *throttle
	router   chi.Router
}

// NewServer creates a widget server that reads and writes comments through service.
func NewServer(service widget.Service, bundle *i18n.Bundle, reporter reporting.Reporter, logger *zap.Logger, opts Options) (*Server, error) {
	staticContent, err := fs.Sub(staticFS, "static")
	if err != nil {
		return nil, fmt.Errorf("creating static sub-fs: %w", err)
	}

	s := &Server{
		service:  service,
		bundle:   bundle,
		reporter: reporter,
		logger:   logger,
		opts:     opts,
		throttle: newThrottle(opts.SubmitRate, opts.SubmitBurst),
		router:   chi.NewRouter(),
	}

	s.router.Use(
		middleware.RequestID,
		middleware.RealIP,
		logging.RequestLogger(logger),
		middleware.Recoverer,
	)

	s.router.Get("/health", s.handleHealth)
	s.router.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticContent))))
	s.router.Get("/widget/{locale}", s.handleWidget)
	s.router.Get("/widget/{locale}/*", s.handleWidget)
	s.router.Post("/widget/{locale}", s.handleSubmit)
	s.router.Post("/widget/{locale}/*", s.handleSubmit)

	return s, nil
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
