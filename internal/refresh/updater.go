// Package refresh drives the environment-to-graph pipeline: every
// inbound reading set replaces the environment table, the cost engine
// rebuilds a private weighted graph, and the registry swaps it in.
package refresh

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/envroute/envroute/internal/cost"
	"github.com/envroute/envroute/internal/env"
	"github.com/envroute/envroute/internal/geo"
	"github.com/envroute/envroute/internal/graph"
)

// Hook is called with each new table after the graph generation it fed
// has been published. Used for the history recorder and alert rules.
type Hook func(ctx context.Context, table *env.Table)

// Fetcher is implemented by sources that can produce one payload on
// demand (the poller). Bootstrap uses it for the initial synchronous
// pass; the stream source gets its initial snapshot from its first
// event instead.
type Fetcher interface {
	Fetch(ctx context.Context) (env.Payload, error)
}

// Updater owns the background refresh pipeline. All refresh work runs
// either in Bootstrap or on the single source goroutine, so at most
// one cost recalculation is in flight at a time; later triggers queue
// behind the running pass rather than being dropped.
type Updater struct {
	source   env.Source
	store    *env.Store
	index    *geo.Index
	registry *graph.Registry
	logger   zerolog.Logger
	hooks    []Hook
}

// Config holds the pipeline collaborators.
type Config struct {
	Source   env.Source
	Store    *env.Store
	Index    *geo.Index
	Registry *graph.Registry
	Logger   zerolog.Logger
}

// New creates an updater.
func New(cfg Config) *Updater {
	return &Updater{
		source:   cfg.Source,
		store:    cfg.Store,
		index:    cfg.Index,
		registry: cfg.Registry,
		logger:   cfg.Logger,
	}
}

// AddHook registers a post-publish hook. Must be called before Run.
func (u *Updater) AddHook(h Hook) {
	u.hooks = append(u.hooks, h)
}

// Bootstrap runs the pipeline once, synchronously, so a generation is
// published before the service starts answering route queries. For a
// fetch-capable source the initial payload comes from a fetch; a fetch
// failure falls back to a zero-filled table rather than aborting, since
// upstream outages are recoverable. Stream sources start from the
// zero table and replace it on their first event.
func (u *Updater) Bootstrap(ctx context.Context) {
	var payload env.Payload
	if f, ok := u.source.(Fetcher); ok {
		p, err := f.Fetch(ctx)
		if err != nil {
			u.logger.Error().Err(err).Msg("initial readings fetch failed, starting with zero-filled table")
		} else {
			payload = p
		}
	}
	u.apply(ctx, payload)
}

// Run delivers source payloads into the pipeline until ctx is
// canceled. Faults inside a pass are logged and leave the previous
// generation active; they never reach the query path.
func (u *Updater) Run(ctx context.Context) error {
	return u.source.Run(ctx, u.apply)
}

// apply is one full refresh pass: resolve, replace, recompute, publish.
func (u *Updater) apply(ctx context.Context, payload env.Payload) {
	resolved := u.store.Resolve(map[string]env.Reading(payload))
	table := u.store.Replace(resolved)

	weighted := cost.Recalculate(u.index, table, u.logger)
	gen := u.registry.Publish(weighted)

	u.logger.Info().
		Uint64("generation", gen.Seq).
		Int("edges", len(gen.Edges)).
		Int("observed_zones", table.DataPoints()).
		Msg("weighted graph published")

	for _, h := range u.hooks {
		h(ctx, table)
	}
}
