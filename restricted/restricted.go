// Package restricted holds the registry of call surfaces exposed to
// restricted code. It is the in-process equivalent of publishing a bridge
// API into an isolated runtime's global scope: keys are stable strings,
// values are the generated client surfaces.
package restricted

import (
	"sort"
	"sync"

	"github.com/pkg/errors"
)

// ErrDuplicateKey is returned when a key is exposed twice.
var ErrDuplicateKey = errors.New("key is already exposed")

// Registry is a concurrency-safe map of exposed surfaces.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]interface{}
}

func NewRegistry() *Registry {
	return &Registry{entries: map[string]interface{}{}}
}

// Expose publishes surface under key. Keys are single-assignment; exposing
// the same key twice fails rather than silently replacing a surface some
// consumer may already hold.
func (r *Registry) Expose(key string, surface interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[key]; ok {
		return errors.Wrapf(ErrDuplicateKey, "'%s'", key)
	}
	r.entries[key] = surface
	return nil
}

// Lookup returns the surface exposed under key.
func (r *Registry) Lookup(key string) (interface{}, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.entries[key]
	return s, ok
}

// Keys returns every exposed key in lexical order.
func (r *Registry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]string, 0, len(r.entries))
	for k := range r.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
