// Package registry provides the generic, insertion-ordered, keyed registry
// used for tools, resources, prompts, and (client role) roots. It is the one
// structure backing all four "owned by the endpoint" collections the spec
// describes in §3's Data Model / Ownership section.
// file: internal/registry/registry.go
package registry

import (
	"sync"

	"github.com/mcpcore/mcpcore/internal/logging"
)

// Registry is a keyed collection that preserves insertion order for List,
// replaces on re-Add (last-writer-wins), and tolerates idempotent Remove.
// A point-in-time List snapshot is taken under RLock so concurrent
// mutation never produces a torn view (spec §5).
type Registry[K comparable, V any] struct {
	mu     sync.RWMutex
	order  []K
	values map[K]V
	logger logging.Logger
	kind   string
}

// New creates an empty registry. kind is used only for log messages (e.g. "tool").
func New[K comparable, V any](kind string, logger logging.Logger) *Registry[K, V] {
	if logger == nil {
		logger = logging.GetNoopLogger()
	}
	return &Registry[K, V]{
		values: make(map[K]V),
		logger: logger.WithField("registry", kind),
		kind:   kind,
	}
}

// Add inserts or replaces the value for key. Re-registering an existing key
// replaces the prior definition in place without disturbing its position in
// List's insertion order (last-writer-wins, spec §4.4.3's tie-break rule).
func (r *Registry[K, V]) Add(key K, value V) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.values[key]; !exists {
		r.order = append(r.order, key)
	} else {
		r.logger.Debug("Replacing existing registration.", "key", key)
	}
	r.values[key] = value
}

// Get looks up a value by key.
func (r *Registry[K, V]) Get(key K) (V, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.values[key]
	return v, ok
}

// Remove deletes key if present; removing an absent key is a no-op (idempotent).
func (r *Registry[K, V]) Remove(key K) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.values[key]; !exists {
		return
	}
	delete(r.values, key)
	for i, k := range r.order {
		if k == key {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// List returns a point-in-time copy of the values in insertion order.
func (r *Registry[K, V]) List() []V {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]V, 0, len(r.order))
	for _, k := range r.order {
		out = append(out, r.values[k])
	}
	return out
}

// Len returns the number of registered entries.
func (r *Registry[K, V]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}
