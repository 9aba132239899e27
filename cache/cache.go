// Package cache stores computed dashboard payloads for a limited time.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/etnz/wager/metrics"
)

// Store keeps byte values for a time to live.
type Store interface {
	// Get returns the value of key, and false when it is missing or expired.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores value under key for ttl. A zero ttl never expires.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

type entry struct {
	value   []byte
	expires time.Time
}

// Memory is an in-process Store.
type Memory struct {
	mu      sync.Mutex
	entries map[string]entry
	now     func() time.Time
}

// NewMemory returns an empty in-process Store.
func NewMemory() *Memory {
	return &Memory{entries: make(map[string]entry), now: time.Now}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if !ok {
		return nil, false, nil
	}
	if !e.expires.IsZero() && !m.now().Before(e.expires) {
		delete(m.entries, key)
		return nil, false, nil
	}
	return e.value, true, nil
}

func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := entry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		e.expires = m.now().Add(ttl)
	}
	m.entries[key] = e
	return nil
}

// observed counts the hits and misses of a Store.
type observed struct {
	Store
	backend string
	metrics *metrics.Registry
}

// WithMetrics reports the hits and misses of s under the backend label.
func WithMetrics(s Store, backend string, m *metrics.Registry) Store {
	if m == nil {
		return s
	}
	return &observed{Store: s, backend: backend, metrics: m}
}

func (o *observed) Get(ctx context.Context, key string) ([]byte, bool, error) {
	v, ok, err := o.Store.Get(ctx, key)
	if err == nil {
		o.metrics.ObserveCache(o.backend, ok)
	}
	return v, ok, err
}
