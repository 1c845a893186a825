package web

import (
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/time/rate"
)

const (
	throttleClients = 10000
	throttleIdle    = 10 * time.Minute
)

// throttle limits submissions per client key. A nil throttle allows everything.
type throttle struct {
	limit rate.Limit
	burst int

	mu       sync.Mutex
	limiters *expirable.LRU[string, *rate.Limiter]
}

func newThrottle(limit rate.Limit, burst int) *throttle {
	if limit <= 0 {
		return nil
	}
	if burst < 1 {
		burst = 1
	}
	return &throttle{
		limit:    limit,
		burst:    burst,
		limiters: expirable.NewLRU[string, *rate.Limiter](throttleClients, nil, throttleIdle),
	}
}

func (t *throttle) allow(key string) bool {
	if t == nil {
		return true
	}

	t.mu.Lock()
	lim, ok := t.limiters.Get(key)
	if !ok {
		lim = rate.NewLimiter(t.limit, t.burst)
		t.limiters.Add(key, lim)
	}
	t.mu.Unlock()

	return lim.Allow()
}
