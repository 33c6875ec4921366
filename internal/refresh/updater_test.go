package refresh_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/envroute/envroute/internal/env"
	"github.com/envroute/envroute/internal/geo"
	"github.com/envroute/envroute/internal/graph"
	"github.com/envroute/envroute/internal/refresh"
)

// fakeSource drives the pipeline with scripted payloads and optionally
// answers bootstrap fetches.
type fakeSource struct {
	fetchPayload env.Payload
	fetchErr     error
	runPayloads  []env.Payload
}

func (s *fakeSource) Fetch(_ context.Context) (env.Payload, error) {
	return s.fetchPayload, s.fetchErr
}

func (s *fakeSource) Run(ctx context.Context, handle env.Handler) error {
	for _, p := range s.runPayloads {
		handle(ctx, p)
	}
	<-ctx.Done()
	return ctx.Err()
}

// streamOnlySource has no Fetch method, like the SSE feed.
type streamOnlySource struct{}

func (streamOnlySource) Run(ctx context.Context, _ env.Handler) error {
	<-ctx.Done()
	return ctx.Err()
}

func testIndex(t *testing.T) *geo.Index {
	t.Helper()
	dir := t.TempDir()

	graphPath := filepath.Join(dir, "network.json")
	require.NoError(t, os.WriteFile(graphPath, []byte(`{
		"nodes": [
			{"id": 1, "x": 105.850, "y": 21.03},
			{"id": 2, "x": 105.851, "y": 21.03}
		],
		"edges": [
			{"u": 1, "v": 2, "length": 100, "name": "Trang Tien",
				"geometry": [[105.850, 21.03], [105.851, 21.03]]}
		]
	}`), 0o600))

	zonesPath := filepath.Join(dir, "zones.geojson")
	require.NoError(t, os.WriteFile(zonesPath, []byte(`{
		"type": "FeatureCollection",
		"features": [{
			"type": "Feature",
			"properties": {"name": "Hoan Kiem"},
			"geometry": {
				"type": "Polygon",
				"coordinates": [[[105.84, 21.02], [105.86, 21.02], [105.86, 21.04], [105.84, 21.04], [105.84, 21.02]]]
			}
		}]
	}`), 0o600))

	ix, err := geo.Load(graphPath, zonesPath, zerolog.Nop())
	require.NoError(t, err)
	return ix
}

func newPipeline(t *testing.T, source env.Source) (*refresh.Updater, *env.Store, *graph.Registry) {
	t.Helper()
	ix := testIndex(t)
	store := env.NewStore(env.StoreConfig{
		ZoneNames: ix.ZoneNames(),
		Resolver:  ix.DisplayName,
		Logger:    zerolog.Nop(),
	})
	registry := graph.NewRegistry()

	u := refresh.New(refresh.Config{
		Source:   source,
		Store:    store,
		Index:    ix,
		Registry: registry,
		Logger:   zerolog.Nop(),
	})
	return u, store, registry
}

func TestBootstrap_PublishesFromFetch(t *testing.T) {
	src := &fakeSource{fetchPayload: env.Payload{
		"HoanKiem": {env.MetricPM25: 30},
	}}
	u, store, registry := newPipeline(t, src)

	u.Bootstrap(context.Background())

	gen, ok := registry.Current()
	require.True(t, ok)
	assert.Equal(t, uint64(1), gen.Seq)

	table := store.Snapshot()
	require.NotNil(t, table)
	assert.True(t, table.HasData())
	assert.InDelta(t, 30, table.Zones["Hoan Kiem"][env.MetricPM25], 1e-9)

	// pollution flowed into the published costs
	assert.Greater(t, gen.Edges.Weight(0, graph.ModeWind), 100.0)
}

func TestBootstrap_FetchFailureFallsBackToZeroTable(t *testing.T) {
	src := &fakeSource{fetchErr: errors.New("upstream down")}
	u, store, registry := newPipeline(t, src)

	u.Bootstrap(context.Background())

	gen, ok := registry.Current()
	require.True(t, ok)

	table := store.Snapshot()
	require.NotNil(t, table)
	assert.False(t, table.HasData())

	// zero pollution: wind cost is raw length
	assert.InDelta(t, 100, gen.Edges.Weight(0, graph.ModeWind), 1e-9)
}

func TestBootstrap_StreamSourceStartsFromZeroTable(t *testing.T) {
	u, store, registry := newPipeline(t, streamOnlySource{})

	u.Bootstrap(context.Background())

	_, ok := registry.Current()
	assert.True(t, ok)
	require.NotNil(t, store.Snapshot())
	assert.False(t, store.Snapshot().HasData())
}

func TestRun_EachPayloadPublishesAGeneration(t *testing.T) {
	src := &fakeSource{runPayloads: []env.Payload{
		{"HoanKiem": {env.MetricPM25: 10}},
		{"HoanKiem": {env.MetricPM25: 50}},
	}}
	u, store, registry := newPipeline(t, src)

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // run drains the scripted payloads, then returns

	err := u.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	gen, ok := registry.Current()
	require.True(t, ok)
	assert.Equal(t, uint64(2), gen.Seq)
	assert.InDelta(t, 50, store.Snapshot().Zones["Hoan Kiem"][env.MetricPM25], 1e-9)
}

func TestHooks_CalledOncePerRefreshAfterPublish(t *testing.T) {
	src := &fakeSource{fetchPayload: env.Payload{
		"HoanKiem": {env.MetricPM25: 25},
	}}
	u, _, registry := newPipeline(t, src)

	var tables []*env.Table
	u.AddHook(func(_ context.Context, table *env.Table) {
		// the generation is already visible when hooks run
		_, ok := registry.Current()
		assert.True(t, ok)
		tables = append(tables, table)
	})

	u.Bootstrap(context.Background())

	require.Len(t, tables, 1)
	assert.InDelta(t, 25, tables[0].Zones["Hoan Kiem"][env.MetricPM25], 1e-9)
}
