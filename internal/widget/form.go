package widget

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/evcraddock/pagecomments/internal/comment"
)

// Form is the comment submission form. It owns the draft.
type Form struct {
	cfg  Config
	deps Deps

	mu    sync.Mutex
	draft comment.Draft
}

// NewForm creates a form with an empty draft.
func NewForm(cfg Config, deps Deps) *Form {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Notifier == nil {
		deps.Notifier = &Notifications{}
	}
	return &Form{cfg: cfg, deps: deps}
}

// Draft returns a copy of the current draft.
func (f *Form) Draft() comment.Draft {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.draft
}

// SetAuthor updates the draft's author.
func (f *Form) SetAuthor(author string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.draft.SetAuthor(author)
}

// SetMessage updates the draft's message.
func (f *Form) SetMessage(message string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.draft.SetMessage(message)
}

// SetRating updates the draft's rating.
func (f *Form) SetRating(rating int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.draft.SetRating(rating)
}

// Submit sends the draft to the comments service.
//
// An empty message shows an error notification and returns ErrNoMessage
// without any request. A failed request is reported, shows an error
// notification and keeps the draft. On success a success notification is
// shown and only the message is cleared.
func (f *Form) Submit(ctx context.Context) error {
	draft := f.Draft()

	if draft.Message() == "" {
		f.flash(LevelError, "error-no-message")
		return ErrNoMessage
	}

	req := draft.Request(f.cfg.Target, f.cfg.AllowRating)
	if err := req.Validate(); err != nil {
		f.fail(ctx, err)
		return err
	}

	if err := f.deps.Service.Submit(ctx, req); err != nil {
		f.fail(ctx, err)
		return fmt.Errorf("sending comment: %w", err)
	}

	f.deps.Logger.Info("comment submitted",
		zap.String("target", f.cfg.Target.String()),
		zap.Bool("rated", req.Additional != nil),
	)
	f.flash(LevelSuccess, "send-success")

	f.mu.Lock()
	f.draft.ResetAfterSuccess()
	f.mu.Unlock()
	return nil
}

func (f *Form) fail(ctx context.Context, err error) {
	f.deps.Logger.Warn("submitting comment failed",
		zap.String("target", f.cfg.Target.String()),
		zap.Error(err),
	)
	if f.deps.Reporter != nil {
		f.deps.Reporter.Report(ctx, err)
	}
	f.flash(LevelError, "send-error")
}

func (f *Form) flash(level Level, key string) {
	f.deps.Notifier.Flash(Notification{Level: level, Message: f.deps.Locale.T(key, "comments")})
}
