package listing

import (
	"sync"
	"time"
)

type entry[T any] struct {
	controller *Controller[T]
	lastUsed   time.Time
}

// Registry keeps one controller per client so every visitor has their own
// search, sort and page state over the same kind of collection.
type Registry[T any] struct {
	mu      sync.Mutex
	factory func(key string) *Controller[T]
	entries map[string]*entry[T]
	now     func() time.Time
}

func NewRegistry[T any](factory func(key string) *Controller[T]) *Registry[T] {
	return &Registry[T]{
		factory: factory,
		entries: make(map[string]*entry[T]),
		now:     time.Now,
	}
}

func (r *Registry[T]) SetClock(now func() time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.now = now
}

// For returns the controller for key, creating it on first use.
func (r *Registry[T]) For(key string) *Controller[T] {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[key]
	if !ok {
		e = &entry[T]{controller: r.factory(key)}
		r.entries[key] = e
	}
	e.lastUsed = r.now()
	return e.controller
}

func (r *Registry[T]) Drop(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, key)
}

// Each calls fn for every controller outside the registry lock.
func (r *Registry[T]) Each(fn func(key string, c *Controller[T])) {
	r.mu.Lock()
	snapshot := make(map[string]*Controller[T], len(r.entries))
	for k, e := range r.entries {
		snapshot[k] = e.controller
	}
	r.mu.Unlock()

	for k, c := range snapshot {
		fn(k, c)
	}
}

func (r *Registry[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Sweep drops controllers unused for longer than idle and reports how many went.
func (r *Registry[T]) Sweep(idle time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	cutoff := r.now().Add(-idle)
	n := 0
	for k, e := range r.entries {
		if e.lastUsed.Before(cutoff) {
			delete(r.entries, k)
			n++
		}
	}
	return n
}
