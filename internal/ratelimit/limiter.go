// Package ratelimit provides sliding-window admission control for form
// submissions, keyed by client identity (the request's client IP, with
// a fallback to the submitter's contact details off the HTTP path).
//
// Two implementations share the same window semantics: WindowLimiter
// keeps windows in an injected Store (in-process), RedisLimiter runs the
// same check atomically in Redis for multi-process deployments.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Defaults match the production intake limits: 3 submissions per minute
// per client identity.
const (
	DefaultWindow  = time.Minute
	DefaultMaxHits = 3
)

// Window tracks submissions from one identity. Count never exceeds the
// configured maximum; rejected attempts do not increment it or extend
// the window.
type Window struct {
	Start time.Time
	Count int
}

// Store persists rate-limit windows. Implementations must be safe for
// concurrent use.
type Store interface {
	// Get returns the window for an identity, if one is tracked.
	Get(ctx context.Context, identity string) (Window, bool, error)

	// Put creates or replaces the window for an identity.
	Put(ctx context.Context, identity string, w Window) error

	// Sweep removes all windows that started before the cutoff.
	Sweep(ctx context.Context, cutoff time.Time) error
}

// Limiter is the admission-control contract used by the dispatcher.
type Limiter interface {
	// Allow reports whether a submission from the identity is admitted.
	Allow(ctx context.Context, identity string) (bool, error)
}

// WindowLimiter implements Limiter against a Store with a lazy sweep:
// expired windows are removed on each call rather than by a background
// timer, keeping the tracked set bounded at amortized cost.
type WindowLimiter struct {
	store  Store
	window time.Duration
	max    int
	now    func() time.Time
}

// NewWindowLimiter creates a limiter over the given store. Zero values
// for window and max fall back to the defaults.
func NewWindowLimiter(store Store, window time.Duration, max int) *WindowLimiter {
	if window <= 0 {
		window = DefaultWindow
	}
	if max <= 0 {
		max = DefaultMaxHits
	}
	return &WindowLimiter{store: store, window: window, max: max, now: time.Now}
}

// SetClock injects a clock for tests.
func (l *WindowLimiter) SetClock(now func() time.Time) { l.now = now }

// Allow admits the identity if it has made fewer than max submissions
// within the current window. A rejection does not count toward the
// window or extend it.
func (l *WindowLimiter) Allow(ctx context.Context, identity string) (bool, error) {
	now := l.now()

	if err := l.store.Sweep(ctx, now.Add(-l.window)); err != nil {
		return false, err
	}

	w, ok, err := l.store.Get(ctx, identity)
	if err != nil {
		return false, err
	}
	if !ok {
		return true, l.store.Put(ctx, identity, Window{Start: now, Count: 1})
	}
	if w.Count < l.max {
		w.Count++
		return true, l.store.Put(ctx, identity, w)
	}
	return false, nil
}

// MemoryStore is a mutex-guarded in-process Store. Suitable for a
// single-instance deployment or tests; production uses RedisLimiter.
type MemoryStore struct {
	mu      sync.Mutex
	windows map[string]Window
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{windows: make(map[string]Window)}
}

func (s *MemoryStore) Get(_ context.Context, identity string) (Window, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.windows[identity]
	return w, ok, nil
}

func (s *MemoryStore) Put(_ context.Context, identity string, w Window) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.windows[identity] = w
	return nil
}

func (s *MemoryStore) Sweep(_ context.Context, cutoff time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for identity, w := range s.windows {
		if w.Start.Before(cutoff) {
			delete(s.windows, identity)
		}
	}
	return nil
}

// Len reports the number of tracked identities.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.windows)
}
