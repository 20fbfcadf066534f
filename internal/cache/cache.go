// Package cache is the process-wide store for fetched resource lists.
//
// Entries are keyed by resource name plus request parameters. Invalidation
// works on the resource name and marks every matching entry stale; the next
// Fetch refetches. A failed fetch keeps the previous data.
package cache

import (
	"context"
	"sync"
	"time"

	adminerrors "github.com/felixgeelhaar/rezai-admin/internal/errors"
	"github.com/felixgeelhaar/rezai-admin/internal/metrics"
)

// Key identifies one cached result.
type Key struct {
	Resource string
	Params   string
}

// String renders the key for logs.
func (k Key) String() string {
	if k.Params == "" {
		return k.Resource
	}
	return k.Resource + "?" + k.Params
}

// State is the lifecycle of an entry.
type State int

const (
	StateIdle State = iota
	StatePending
	StateReady
	StateFailed
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return "idle"
	}
}

// Entry is a snapshot of one cached result.
type Entry struct {
	Data      any
	State     State
	Err       error
	Stale     bool
	UpdatedAt time.Time
}

// Cache holds fetched data by key.
type Cache struct {
	mu         sync.Mutex
	entries    map[Key]*Entry
	generation uint64
	metrics    *metrics.Metrics
	now        func() time.Time
}

// New creates an empty cache. m may be nil.
func New(m *metrics.Metrics) *Cache {
	return &Cache{
		entries: make(map[Key]*Entry),
		metrics: m,
		now:     time.Now,
	}
}

// Peek returns the current entry for key without fetching.
func (c *Cache) Peek(key Key) (Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return Entry{}, false
	}
	return *e, true
}

// Invalidate marks every entry of resource stale.
func (c *Cache) Invalidate(resource string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for k, e := range c.entries {
		if k.Resource == resource {
			e.Stale = true
		}
	}
	c.metrics.CacheInvalidated(resource)
}

// Clear drops every entry. Fetches started before Clear do not write back.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[Key]*Entry)
	c.generation++
}

// Fetch returns the cached value for key when it is ready and fresh, and
// otherwise calls fn. Concurrent fetches of the same key are not merged;
// the last one to finish wins. On failure the previous value (or the zero
// value) is returned together with a fetch error.
func Fetch[T any](ctx context.Context, c *Cache, key Key, fn func(context.Context) (T, error)) (T, error) {
	c.mu.Lock()
	e, ok := c.entries[key]
	if ok && e.State == StateReady && !e.Stale {
		if data, typed := e.Data.(T); typed {
			c.mu.Unlock()
			c.metrics.CacheHit(key.Resource)
			return data, nil
		}
	}
	if !ok {
		e = &Entry{}
		c.entries[key] = e
	}
	e.State = StatePending
	gen := c.generation
	c.mu.Unlock()

	c.metrics.CacheMiss(key.Resource)
	data, err := fn(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	current, ok := c.entries[key]
	if c.generation != gen || !ok {
		if err != nil {
			var zero T
			return zero, adminerrors.NewFetchError(key.Resource, err)
		}
		return data, nil
	}

	if err != nil {
		current.State = StateFailed
		current.Err = err
		prev, _ := current.Data.(T)
		return prev, adminerrors.NewFetchError(key.Resource, err)
	}

	current.Data = data
	current.State = StateReady
	current.Err = nil
	current.Stale = false
	current.UpdatedAt = c.now()
	return data, nil
}

// Update rewrites the data of every ready entry of resource holding a T.
// Entries of other types are left alone.
func Update[T any](c *Cache, resource string, fn func(T) T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for k, e := range c.entries {
		if k.Resource != resource {
			continue
		}
		if data, ok := e.Data.(T); ok {
			e.Data = fn(data)
		}
	}
}

// Get returns the typed data stored for key, if any.
func Get[T any](c *Cache, key Key) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	e, ok := c.entries[key]
	if !ok || e.Data == nil {
		return zero, false
	}
	data, ok := e.Data.(T)
	return data, ok
}
