// Package cache keeps recently fetched comment threads in memory.
package cache

import (
	"context"
	"slices"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/evcraddock/pagecomments/internal/comment"
)

// Service is the comments service API being cached.
type Service interface {
	List(ctx context.Context, target comment.Target) ([]comment.Comment, error)
	Submit(ctx context.Context, req comment.SubmitRequest) error
}

// Threads wraps a Service and caches List results per target.
// A successful Submit drops the cached thread of its target.
type Threads struct {
	next Service
	lru  *expirable.LRU[comment.Target, []comment.Comment]
}

// New caches up to size threads from next, each for at most ttl.
func New(next Service, size int, ttl time.Duration) *Threads {
	return &Threads{
		next: next,
		lru:  expirable.NewLRU[comment.Target, []comment.Comment](size, nil, ttl),
	}
}

// List returns the cached thread for target, fetching it on a miss.
// Failed fetches are not cached. Callers own the returned slice.
func (t *Threads) List(ctx context.Context, target comment.Target) ([]comment.Comment, error) {
	if comments, ok := t.lru.Get(target); ok {
		return slices.Clone(comments), nil
	}

	comments, err := t.next.List(ctx, target)
	if err != nil {
		return nil, err
	}
	t.lru.Add(target, slices.Clone(comments))
	return comments, nil
}

// Submit forwards the comment and invalidates the target's thread on success.
func (t *Threads) Submit(ctx context.Context, req comment.SubmitRequest) error {
	if err := t.next.Submit(ctx, req); err != nil {
		return err
	}
	t.lru.Remove(req.Target)
	return nil
}

// Len returns the number of cached threads.
func (t *Threads) Len() int {
	return t.lru.Len()
}
