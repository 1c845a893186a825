// Package commentsapi is a small local implementation of the comments
// service, backed by SQLite. It serves the same wire format as the public
// service so the widget can be developed offline.
package commentsapi

import (
	"encoding/json"
	"errors"
	"html"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"

	"github.com/evcraddock/pagecomments/internal/auth"
	"github.com/evcraddock/pagecomments/internal/comment"
	"github.com/evcraddock/pagecomments/internal/logging"
)

const maxBodyBytes = 64 << 10

var (
	ErrInternal = errors.New("internal server error")
	ErrBadInput = errors.New("invalid input")
)

// Store is the comment storage the API reads from and writes to.
type Store interface {
	Add(req comment.SubmitRequest) (*comment.Comment, error)
	ListByTarget(target comment.Target) ([]comment.Comment, error)
	Delete(id comment.ID) error
}

// API serves the comments service endpoints.
type API struct {
	router chi.Router
	store  Store
	keys   auth.Validator
	policy *bluemonday.Policy
	logger *zap.Logger
}

// Option configures an API.
type Option func(*API)

// WithModeratorKeys enables DELETE /{id} for requests carrying a valid key.
func WithModeratorKeys(keys auth.Validator) Option {
	return func(api *API) { api.keys = keys }
}

// New returns an API backed by store.
func New(store Store, logger *zap.Logger, opts ...Option) *API {
	api := &API{
		router: chi.NewRouter(),
		store:  store,
		policy: bluemonday.StrictPolicy(),
		logger: logger,
	}
	for _, opt := range opts {
		opt(api)
	}
	api.endpoints()
	return api
}

// ServeHTTP lets the API be used directly as the server handler.
func (api *API) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	api.router.ServeHTTP(w, r)
}

func (api *API) endpoints() {
	api.router.Use(
		middleware.RequestID,
		logging.RequestLogger(api.logger),
		middleware.Recoverer,
		api.headersMiddleware,
	)
	api.router.Get("/get/*", api.handleList)
	api.router.Put("/", api.handleCreate)
	if api.keys != nil {
		api.router.With(auth.RequireAPIKey(api.keys, api.logger)).Delete("/{id}", api.handleDelete)
	}
}

func (api *API) headersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json;charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// WriteJSONError writes {"error": ...}. Internal errors are logged and
// replaced by a generic message.
func (api *API) WriteJSONError(w http.ResponseWriter, r *http.Request, err error, code int) {
	if code >= http.StatusInternalServerError {
		api.logger.Error("comments api",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Error(err),
		)
		err = ErrInternal
	}
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}

// WriteJSON writes data with the given status.
func (api *API) WriteJSON(w http.ResponseWriter, data any, code int) {
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		api.logger.Warn("encoding response", zap.Error(err))
	}
}

func (api *API) handleList(w http.ResponseWriter, r *http.Request) {
	// Targets are stored percent-encoded, so match on the escaped wildcard.
	target := chi.URLParam(r, "*")
	if r.URL.RawPath == "" {
		target = (&url.URL{Path: target}).EscapedPath()
	}

	comments, err := api.store.ListByTarget(comment.Target(comment.EscapePath(target)))
	if err != nil {
		api.WriteJSONError(w, r, err, http.StatusInternalServerError)
		return
	}
	api.WriteJSON(w, comments, http.StatusOK)
}

func (api *API) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req comment.SubmitRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil {
		api.WriteJSONError(w, r, ErrBadInput, http.StatusBadRequest)
		return
	}

	req.Target = comment.Target(comment.EscapePath(string(req.Target)))
	req.Author = api.sanitize(req.Author)
	req.Message = api.sanitize(req.Message)
	if err := req.Validate(); err != nil {
		api.WriteJSONError(w, r, err, http.StatusBadRequest)
		return
	}

	c, err := api.store.Add(req)
	if err != nil {
		api.WriteJSONError(w, r, err, http.StatusInternalServerError)
		return
	}

	api.logger.Info("comment stored",
		zap.String("id", string(c.ID)),
		zap.String("target", string(req.Target)),
	)
	api.WriteJSON(w, c, http.StatusCreated)
}

func (api *API) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := comment.ID(chi.URLParam(r, "id"))
	if err := api.store.Delete(id); err != nil {
		if errors.Is(err, comment.ErrNotFound) {
			api.WriteJSONError(w, r, err, http.StatusNotFound)
			return
		}
		api.WriteJSONError(w, r, err, http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// sanitize strips markup. The template layer escapes on output, so the
// entities bluemonday leaves behind are decoded again.
func (api *API) sanitize(s string) string {
	return strings.TrimSpace(html.UnescapeString(api.policy.Sanitize(s)))
}
