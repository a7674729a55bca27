package cache

import (
	"context"
	"sync"
)

// LoadFunc fetches a resource's current value from the service.
type LoadFunc[T any] func(ctx context.Context) (T, error)

// Resource caches one server-side collection. The value is replaced
// wholesale on every successful load; there is no partial patching, so the
// cache can never drift into a state the server never had. Concurrent
// reloads collapse into one fetch.
type Resource[T any] struct {
	load LoadFunc[T]

	mu       sync.Mutex
	value    T
	loaded   bool
	lastErr  error
	inflight chan struct{}
}

// NewResource creates an empty resource backed by the given loader.
func NewResource[T any](load LoadFunc[T]) *Resource[T] {
	return &Resource[T]{load: load}
}

// Get returns the cached value and whether a value has been loaded yet.
func (r *Resource[T]) Get() (T, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.value, r.loaded
}

// Err returns the error from the most recent load, nil after a success.
func (r *Resource[T]) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastErr
}

// Loading reports whether a load is in flight.
func (r *Resource[T]) Loading() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.inflight != nil
}

// Reload fetches a fresh value and replaces the cached one. When a load is
// already running, Reload waits for it instead of starting another; both
// callers observe the same outcome. A failed load keeps the previous value.
func (r *Resource[T]) Reload(ctx context.Context) error {
	r.mu.Lock()
	if done := r.inflight; done != nil {
		r.mu.Unlock()
		select {
		case <-done:
			return r.Err()
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	done := make(chan struct{})
	r.inflight = done
	r.mu.Unlock()

	value, err := r.load(ctx)

	r.mu.Lock()
	r.inflight = nil
	if err != nil {
		r.lastErr = err
	} else {
		r.value = value
		r.loaded = true
		r.lastErr = nil
	}
	r.mu.Unlock()
	close(done)
	return err
}

// Ensure loads the resource only if it has never been loaded.
func (r *Resource[T]) Ensure(ctx context.Context) error {
	r.mu.Lock()
	loaded := r.loaded
	r.mu.Unlock()
	if loaded {
		return nil
	}
	return r.Reload(ctx)
}

// Clear drops the cached value, used on logout.
func (r *Resource[T]) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	var zero T
	r.value = zero
	r.loaded = false
	r.lastErr = nil
}
