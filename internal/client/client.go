// Package client provides an HTTP client for the remote comments service.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/evcraddock/pagecomments/internal/comment"
)

// DefaultBaseURL is the public comments service.
const DefaultBaseURL = "https://comments.datenanfragen.de"

// ErrUnexpectedResponse is returned when the service answers with a non-success status.
var ErrUnexpectedResponse = errors.New("unexpected response from comments server")

// StatusError describes a non-success response.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %d %s", ErrUnexpectedResponse, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %d %s", ErrUnexpectedResponse, e.Code, http.StatusText(e.Code))
}

func (e *StatusError) Unwrap() error {
	return ErrUnexpectedResponse
}

// Client is an HTTP client for the comments service API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithLogger sets the logger used for transport warnings.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a new comments service client.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// List returns all comments of the thread identified by target, in the
// order the service sends them.
func (c *Client) List(ctx context.Context, target comment.Target) ([]comment.Comment, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/get/"+escapeTarget(target), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	var comments []comment.Comment
	if err := c.do(req, &comments); err != nil {
		return nil, fmt.Errorf("listing comments for %s: %w", target, err)
	}
	if comments == nil {
		comments = []comment.Comment{}
	}
	return comments, nil
}

// Submit sends a new comment to the service with a JSON PUT.
func (c *Client) Submit(ctx context.Context, body comment.SubmitRequest) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.baseURL, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	if err := c.do(req, nil); err != nil {
		return fmt.Errorf("submitting comment for %s: %w", body.Target, err)
	}
	return nil
}

// Delete removes a comment from a service that supports moderation,
// authenticating with a moderator key.
func (c *Client) Delete(ctx context.Context, id comment.ID, apiKey string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/"+url.PathEscape(string(id)), nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)

	if err := c.do(req, nil); err != nil {
		return fmt.Errorf("deleting comment %s: %w", id, err)
	}
	return nil
}

// do executes an HTTP request and decodes a successful response into result.
func (c *Client) do(req *http.Request, result interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.logger.Warn("closing response body", zap.Error(cerr))
		}
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errResp struct {
			Error string `json:"error"`
		}
		serr := &StatusError{Code: resp.StatusCode}
		if json.Unmarshal(respBody, &errResp) == nil {
			serr.Message = errResp.Error
		}
		return serr
	}

	if result != nil && len(bytes.TrimSpace(respBody)) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}

	return nil
}

// escapeTarget makes target safe to append to the URL path. Targets built by
// comment.NewTarget are already escaped and pass through unchanged.
func escapeTarget(target comment.Target) string {
	return comment.EscapePath(string(target))
}
