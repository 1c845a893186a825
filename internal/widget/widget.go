// Package widget implements the page comments widget: loading a thread,
// rendering it, and the comment submission form.
package widget

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/evcraddock/pagecomments/internal/comment"
	"github.com/evcraddock/pagecomments/internal/reporting"
)

// ErrNoMessage is returned when a draft without a message is submitted.
var ErrNoMessage = errors.New("comment message is required")

// Service is the remote comments API.
type Service interface {
	List(ctx context.Context, target comment.Target) ([]comment.Comment, error)
	Submit(ctx context.Context, req comment.SubmitRequest) error
}

// Locale provides translated strings and date formatting.
type Locale interface {
	T(key, scope string) string
	FormatDate(ts string) string
	Tag() string
}

// Config describes one widget instance.
type Config struct {
	Target      comment.Target
	AllowRating bool
	// Action is the URL the submission form posts to.
	Action string
}

// Deps are the collaborators a widget needs.
type Deps struct {
	Service  Service
	Locale   Locale
	Notifier Notifier
	Reporter reporting.Reporter
	Logger   *zap.Logger
}

// State is everything the widget renders.
type State struct {
	Config
	Comments      []comment.Comment
	Loaded        bool
	LoadFailed    bool
	Draft         comment.Draft
	Notifications []Notification
}

// LoadResult is the outcome of the initial thread fetch.
type LoadResult struct {
	Comments []comment.Comment
	Err      error
}

// Widget is the container: it owns the comment list and the submission form.
type Widget struct {
	deps Deps
	form *Form

	mu    sync.Mutex
	state State
}

// New creates a widget. Nothing is fetched until Load or Init is called.
func New(cfg Config, deps Deps) *Widget {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Notifier == nil {
		deps.Notifier = &Notifications{}
	}
	return &Widget{
		deps:  deps,
		form:  NewForm(cfg, deps),
		state: State{Config: cfg, Comments: []comment.Comment{}},
	}
}

// Form returns the widget's submission form.
func (w *Widget) Form() *Form {
	return w.form
}

// Load fetches the thread once and stores it newest first. A failed fetch
// leaves the list empty, flags the state, shows a notification and reports
// the error.
func (w *Widget) Load(ctx context.Context) LoadResult {
	comments, err := w.deps.Service.List(ctx, w.state.Target)
	if err != nil {
		w.deps.Logger.Warn("loading comments failed",
			zap.String("target", w.state.Target.String()),
			zap.Error(err),
		)
		if w.deps.Reporter != nil {
			w.deps.Reporter.Report(ctx, err)
		}
		w.deps.Notifier.Flash(Notification{Level: LevelError, Message: w.deps.Locale.T("load-error", "comments")})
		w.setLoaded(nil, true)
		return LoadResult{Err: err}
	}

	comment.SortNewestFirst(comments)
	w.setLoaded(comments, false)
	return LoadResult{Comments: comments}
}

// Init starts Load in the background. The channel delivers exactly one result.
func (w *Widget) Init(ctx context.Context) <-chan LoadResult {
	ch := make(chan LoadResult, 1)
	go func() {
		defer close(ch)
		ch <- w.Load(ctx)
	}()
	return ch
}

func (w *Widget) setLoaded(comments []comment.Comment, failed bool) {
	if comments == nil {
		comments = []comment.Comment{}
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.state.Comments = comments
	w.state.Loaded = true
	w.state.LoadFailed = failed
}

// State returns a snapshot of the widget for rendering. Notifications are
// included when the notifier is a Notifications collector.
func (w *Widget) State() State {
	w.mu.Lock()
	s := w.state
	w.mu.Unlock()

	s.Draft = w.form.Draft()
	if ns, ok := w.deps.Notifier.(*Notifications); ok {
		s.Notifications = ns.Snapshot()
	}
	return s
}
