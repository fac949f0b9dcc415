// Package hooks implements named extension points: ordered chains of
// callbacks that each receive the current value plus call-site arguments and
// return a (possibly modified) value.
//
// A Chain replaces a global filter registry. Components that expose an
// extension point hold a *Chain and call Apply; callers register behaviour by
// calling Add on the chain they were handed.
package hooks

import (
	"sort"
	"sync"
)

// DefaultPriority is the priority used by callers that do not care about ordering.
const DefaultPriority = 10

// Callback transforms value given the call-site arguments.
type Callback[T, A any] func(value T, args A) T

type entry[T, A any] struct {
	name     string
	priority int
	seq      int
	fn       Callback[T, A]
}

// Chain is an ordered set of named callbacks. Lower priorities run first;
// equal priorities run in registration order. A nil *Chain applies nothing.
type Chain[T, A any] struct {
	name string

	mu      sync.RWMutex
	entries []entry[T, A]
	seq     int
}

// NewChain returns an empty chain identified by name.
func NewChain[T, A any](name string) *Chain[T, A] {
	return &Chain[T, A]{name: name}
}

// Name returns the extension point name.
func (c *Chain[T, A]) Name() string {
	if c == nil {
		return ""
	}
	return c.name
}

// Add registers fn under name. Re-adding a name replaces the earlier callback
// and moves it to the new priority.
func (c *Chain[T, A]) Add(name string, priority int, fn Callback[T, A]) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.removeLocked(name)
	c.seq++
	c.entries = append(c.entries, entry[T, A]{name: name, priority: priority, seq: c.seq, fn: fn})
	sort.SliceStable(c.entries, func(i, j int) bool {
		if c.entries[i].priority != c.entries[j].priority {
			return c.entries[i].priority < c.entries[j].priority
		}
		return c.entries[i].seq < c.entries[j].seq
	})
}

// Remove unregisters the callback called name and reports whether it existed.
func (c *Chain[T, A]) Remove(name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.removeLocked(name)
}

func (c *Chain[T, A]) removeLocked(name string) bool {
	for i, e := range c.entries {
		if e.name == name {
			c.entries = append(c.entries[:i], c.entries[i+1:]...)
			return true
		}
	}
	return false
}

// Apply threads value through every callback in order.
func (c *Chain[T, A]) Apply(value T, args A) T {
	if c == nil {
		return value
	}
	c.mu.RLock()
	entries := make([]entry[T, A], len(c.entries))
	copy(entries, c.entries)
	c.mu.RUnlock()

	for _, e := range entries {
		value = e.fn(value, args)
	}
	return value
}

// Names lists registered callback names in execution order.
func (c *Chain[T, A]) Names() []string {
	if c == nil {
		return nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, len(c.entries))
	for i, e := range c.entries {
		names[i] = e.name
	}
	return names
}

// Len returns the number of registered callbacks.
func (c *Chain[T, A]) Len() int {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
