// Package mirror maintains in-process snapshots of a member's records.
//
// A Collection wraps a loader and caches its last successful result. Reads
// are served from the snapshot; a failed refresh keeps the stale snapshot
// and records the error so callers can surface it without losing data the
// member already saw. Reset bumps an epoch counter so that a refresh still
// in flight when the member signs out cannot write another member's records
// into the fresh state.
package mirror

import (
	"context"
	"sync"
)

// Loader fetches the full collection for one owner from the backing store.
type Loader[T any] func(ctx context.Context, ownerID string) ([]T, error)

// Collection is a cached, owner-scoped view over a Loader. Safe for
// concurrent use.
type Collection[T any] struct {
	mu     sync.Mutex
	loader Loader[T]

	epoch  uint64
	items  []T
	loaded bool
	err    error
}

func NewCollection[T any](loader Loader[T]) *Collection[T] {
	return &Collection[T]{loader: loader}
}

// Refresh reloads the snapshot from the backing store. On failure the
// previous snapshot is kept and the error is recorded and returned. A
// refresh that completes after a Reset is discarded.
func (c *Collection[T]) Refresh(ctx context.Context, ownerID string) error {
	c.mu.Lock()
	epoch := c.epoch
	c.mu.Unlock()

	items, err := c.loader(ctx, ownerID)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.epoch != epoch {
		// Reset happened while the load was in flight.
		return nil
	}
	if err != nil {
		c.err = err
		return err
	}
	c.items = items
	c.loaded = true
	c.err = nil
	return nil
}

// Prepend inserts a record at the head of the snapshot without touching the
// backing store. Used for optimistic updates after a successful append.
func (c *Collection[T]) Prepend(item T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append([]T{item}, c.items...)
}

// Snapshot returns a copy of the current snapshot.
func (c *Collection[T]) Snapshot() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]T(nil), c.items...)
}

// Loaded reports whether at least one refresh has succeeded since the last
// Reset.
func (c *Collection[T]) Loaded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loaded
}

// Err returns the error from the most recent refresh, or nil.
func (c *Collection[T]) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Reset clears the snapshot and invalidates in-flight refreshes.
func (c *Collection[T]) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.epoch++
	c.items = nil
	c.loaded = false
	c.err = nil
}

// Resettable is anything that can be cleared on sign-out.
type Resettable interface {
	Reset()
}

// Registry groups collections so a sign-out can clear them all at once.
type Registry struct {
	mu      sync.Mutex
	members []Resettable
}

func NewRegistry() *Registry {
	return &Registry{}
}

func (r *Registry) Add(m Resettable) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.members = append(r.members, m)
}

// ResetAll clears every registered collection.
func (r *Registry) ResetAll() {
	r.mu.Lock()
	members := append([]Resettable(nil), r.members...)
	r.mu.Unlock()

	for _, m := range members {
		m.Reset()
	}
}
