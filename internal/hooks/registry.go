package hooks

import (
	"fmt"
	"sort"
	"sync"
)

// Registry holds the chains of one process keyed by extension point name, so
// callers that only know a name can find the chain a component exposes.
type Registry struct {
	mu     sync.Mutex
	chains map[string]any
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{chains: make(map[string]any)}
}

// Lookup returns the chain registered under name, creating it on first use.
// It panics if name was first used with different type parameters, which is
// a programming error.
func Lookup[T, A any](r *Registry, name string) *Chain[T, A] {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.chains[name]; ok {
		c, ok := existing.(*Chain[T, A])
		if !ok {
			panic(fmt.Sprintf("hooks: chain %q registered as %T", name, existing))
		}
		return c
	}
	c := NewChain[T, A](name)
	r.chains[name] = c
	return c
}

// Names lists the registered extension points in sorted order.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.chains))
	for name := range r.chains {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
