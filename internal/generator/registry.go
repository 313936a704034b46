package generator

import (
	"fmt"
	"sort"
	"sync"
)

// Registry maps artifact kind identifiers to their strategies. Instances are
// independent so tests and embedding hosts can assemble their own kind sets.
type Registry struct {
	mu    sync.RWMutex
	kinds map[string]Generator
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{kinds: make(map[string]Generator)}
}

// DefaultRegistry returns a registry with the built-in kinds registered.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	// Built-ins never collide, so registration cannot fail here.
	_ = r.Register(NewClientStub())
	_ = r.Register(NewRegistration())
	return r
}

// Register adds a kind strategy. Duplicate kinds are rejected.
func (r *Registry) Register(g Generator) error {
	if g == nil {
		return fmt.Errorf("generator is nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.kinds[g.Kind()]; exists {
		return fmt.Errorf("generator already registered for kind %q", g.Kind())
	}
	r.kinds[g.Kind()] = g
	return nil
}

// Get retrieves the strategy for a kind.
func (r *Registry) Get(kind string) (Generator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	g, ok := r.kinds[kind]
	if !ok {
		return nil, fmt.Errorf("no generator registered for kind %q", kind)
	}
	return g, nil
}

// Kinds lists the registered kind identifiers in sorted order.
func (r *Registry) Kinds() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.kinds))
	for kind := range r.kinds {
		out = append(out, kind)
	}
	sort.Strings(out)
	return out
}
