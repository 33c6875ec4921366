package history

import (
	"context"
	"sync"
)

// InMemoryRepository is an in-memory implementation of Repository,
// used when no database is configured and in tests. It keeps a bounded
// window of samples per zone.
type InMemoryRepository struct {
	mu      sync.RWMutex
	byZone  map[string][]Sample
	maxKeep int
}

// NewInMemoryRepository creates an in-memory history repository
// retaining up to maxKeep samples per zone (default 168, one week of
// hourly refreshes).
func NewInMemoryRepository(maxKeep int) *InMemoryRepository {
	if maxKeep <= 0 {
		maxKeep = 168
	}
	return &InMemoryRepository{
		byZone:  make(map[string][]Sample),
		maxKeep: maxKeep,
	}
}

// RecordBatch stores one refresh's samples.
func (r *InMemoryRepository) RecordBatch(_ context.Context, samples []Sample) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, s := range samples {
		window := append(r.byZone[s.Zone], s)
		if len(window) > r.maxKeep {
			window = window[len(window)-r.maxKeep:]
		}
		r.byZone[s.Zone] = window
	}
	return nil
}

// ListByZone returns the most recent samples for a zone, newest first.
func (r *InMemoryRepository) ListByZone(_ context.Context, zone string, limit int) ([]Sample, error) {
	if limit <= 0 {
		limit = 24
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	window := r.byZone[zone]
	if len(window) > limit {
		window = window[len(window)-limit:]
	}

	// newest first
	out := make([]Sample, len(window))
	for i, s := range window {
		out[len(window)-1-i] = s
	}
	return out, nil
}
