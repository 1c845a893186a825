// Package reporting forwards unexpected errors to an error tracker.
package reporting

import (
	"context"
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
	"go.uber.org/zap"
)

// Reporter receives errors that should be looked at by a developer.
type Reporter interface {
	Report(ctx context.Context, err error)
}

// Log is a Reporter that only writes errors to the log.
type Log struct {
	logger *zap.Logger
}

// NewLog creates a log-only reporter.
func NewLog(logger *zap.Logger) *Log {
	return &Log{logger: logger}
}

// Report logs err at error level.
func (l *Log) Report(ctx context.Context, err error) {
	if err == nil {
		return
	}
	l.logger.Error("unexpected error", zap.Error(err))
}

// SentryOptions configures the Sentry reporter.
type SentryOptions struct {
	DSN         string
	Environment string
	Release     string
	// BeforeSend may drop or modify events before they are sent.
	BeforeSend func(event *sentry.Event, hint *sentry.EventHint) *sentry.Event
}

// Sentry reports errors to Sentry and logs them.
type Sentry struct {
	hub    *sentry.Hub
	logger *zap.Logger
}

// NewSentry creates a Sentry reporter with its own client and hub.
func NewSentry(opts SentryOptions, logger *zap.Logger) (*Sentry, error) {
	client, err := sentry.NewClient(sentry.ClientOptions{
		Dsn:              opts.DSN,
		Environment:      opts.Environment,
		Release:          opts.Release,
		AttachStacktrace: true,
		BeforeSend:       opts.BeforeSend,
	})
	if err != nil {
		return nil, fmt.Errorf("creating sentry client: %w", err)
	}
	return &Sentry{
		hub:    sentry.NewHub(client, sentry.NewScope()),
		logger: logger,
	}, nil
}

// Report captures err with the hub attached to ctx, if any, and logs it.
func (s *Sentry) Report(ctx context.Context, err error) {
	if err == nil {
		return
	}
	hub := s.hub
	if ctxHub := sentry.GetHubFromContext(ctx); ctxHub != nil {
		hub = ctxHub
	}
	id := hub.CaptureException(err)

	fields := []zap.Field{zap.Error(err)}
	if id != nil {
		fields = append(fields, zap.String("sentry_event_id", string(*id)))
	}
	s.logger.Error("unexpected error", fields...)
}

// Flush waits for buffered events to be sent.
func (s *Sentry) Flush(timeout time.Duration) bool {
	return s.hub.Flush(timeout)
}

// New returns a Sentry reporter when a DSN is configured and a log reporter otherwise.
func New(opts SentryOptions, logger *zap.Logger) (Reporter, error) {
	if opts.DSN == "" {
		return NewLog(logger), nil
	}
	return NewSentry(opts, logger)
}
