package graph

import (
	"sync"
	"time"
)

// Generation is one published (graph, edge-table) pair. A query must
// observe a single generation, never a mix of two.
type Generation struct {
	Graph       *Weighted
	Edges       EdgeTable
	Seq         uint64
	PublishedAt time.Time
}

// Registry owns the single active generation. Readers capture both
// references under one read lock and then work entirely against their
// private copies; publishing swaps both references together. The lock
// is only ever held for the pointer swap, never for the cost
// computation that produced the candidate.
type Registry struct {
	mu      sync.RWMutex
	current *Generation
	seq     uint64
}

// NewRegistry creates an empty registry. Current returns false until
// the first Publish.
func NewRegistry() *Registry {
	return &Registry{}
}

// Publish installs a freshly computed graph and its matching edge
// table as the active generation. The caller must have finished all
// expensive computation before calling; the critical section is O(1).
func (r *Registry) Publish(g *Weighted) *Generation {
	gen := &Generation{
		Graph:       g,
		Edges:       g.Costs,
		PublishedAt: time.Now(),
	}

	r.mu.Lock()
	r.seq++
	gen.Seq = r.seq
	r.current = gen
	r.mu.Unlock()

	return gen
}

// Current returns the active generation. The second result is false
// during the startup window before the first publish. The returned
// generation stays internally consistent even if a publish happens
// while the caller is still using it.
func (r *Registry) Current() (*Generation, bool) {
	r.mu.RLock()
	gen := r.current
	r.mu.RUnlock()
	return gen, gen != nil
}
