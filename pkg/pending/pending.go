// Package pending holds parsed events awaiting caregiver confirmation.
package pending

import (
	"context"
	"sync"
	"time"
)

// Clock returns the current time. Tests substitute a fixed clock.
type Clock func() time.Time

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// Store is a map whose entries expire after a fixed TTL. Expired entries are
// never returned and are removed by Sweep. A Store is safe for concurrent use.
type Store[K comparable, V any] struct {
	ttl time.Duration
	now Clock

	mu      sync.Mutex
	entries map[K]entry[V]
}

// Option configures a Store.
type Option func(*options)

type options struct {
	now Clock
}

// WithClock replaces time.Now.
func WithClock(now Clock) Option {
	return func(o *options) {
		o.now = now
	}
}

// New creates a store whose entries live for ttl.
func New[K comparable, V any](ttl time.Duration, opts ...Option) *Store[K, V] {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return &Store[K, V]{
		ttl:     ttl,
		now:     o.now,
		entries: make(map[K]entry[V]),
	}
}

// Put stores value under key, replacing any previous entry and restarting
// its TTL.
func (s *Store[K, V]) Put(key K, value V) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = entry[V]{value: value, expiresAt: s.now().Add(s.ttl)}
}

// Take removes and returns the entry for key. It reports false when the key
// is missing or expired.
func (s *Store[K, V]) Take(key K) (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if ok {
		delete(s.entries, key)
	}
	if !ok || !s.now().Before(e.expiresAt) {
		var zero V
		return zero, false
	}
	return e.value, true
}

// Get returns the entry for key without removing it.
func (s *Store[K, V]) Get(key K) (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok || !s.now().Before(e.expiresAt) {
		var zero V
		return zero, false
	}
	return e.value, true
}

// Len returns the number of stored entries, including expired ones not yet
// swept.
func (s *Store[K, V]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Sweep removes entries expired at now and returns how many were removed.
func (s *Store[K, V]) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for k, e := range s.entries {
		if !now.Before(e.expiresAt) {
			delete(s.entries, k)
			removed++
		}
	}
	return removed
}

// Run sweeps every interval until ctx is done. onSweep, if non-nil, is
// called with the number of entries removed by each sweep.
func (s *Store[K, V]) Run(ctx context.Context, interval time.Duration, onSweep func(removed int)) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			removed := s.Sweep(s.now())
			if onSweep != nil {
				onSweep(removed)
			}
		}
	}
}
