package env_test

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/envroute/envroute/internal/env"
)

func testResolver(key string) (string, bool) {
	known := map[string]string{
		"HoanKiem": "Hoan Kiem",
		"BaDinh":   "Ba Dinh",
	}
	name, ok := known[key]
	return name, ok
}

func newTestStore() *env.Store {
	return env.NewStore(env.StoreConfig{
		ZoneNames: testZones,
		Resolver:  testResolver,
		Overrides: map[string]string{"LongBienStation": "Long Bien"},
		Logger:    zerolog.Nop(),
	})
}

func TestStore_ResolveMapsKnownKeys(t *testing.T) {
	store := newTestStore()

	resolved := store.Resolve(map[string]env.Reading{
		"HoanKiem": {env.MetricPM25: 12},
		"BaDinh":   {env.MetricPM25: 34},
	})

	require.Len(t, resolved, 2)
	assert.InDelta(t, 12, resolved["Hoan Kiem"][env.MetricPM25], 1e-9)
	assert.InDelta(t, 34, resolved["Ba Dinh"][env.MetricPM25], 1e-9)
}

func TestStore_ResolveOverridesWinOverResolver(t *testing.T) {
	store := newTestStore()

	resolved := store.Resolve(map[string]env.Reading{
		"LongBienStation": {env.MetricPM25: 7},
	})

	require.Len(t, resolved, 1)
	assert.InDelta(t, 7, resolved["Long Bien"][env.MetricPM25], 1e-9)
}

func TestStore_ResolveDropsUnknownKeys(t *testing.T) {
	store := newTestStore()

	resolved := store.Resolve(map[string]env.Reading{
		"HoanKiem":       {env.MetricPM25: 12},
		"MysteryStation": {env.MetricPM25: 99},
	})

	require.Len(t, resolved, 1)
	_, ok := resolved["MysteryStation"]
	assert.False(t, ok)
}

func TestStore_SnapshotNilBeforeFirstReplace(t *testing.T) {
	store := newTestStore()
	assert.Nil(t, store.Snapshot())
}

func TestStore_ReplaceSwapsWholeTable(t *testing.T) {
	store := newTestStore()

	first := store.Replace(map[string]env.Reading{
		"Hoan Kiem": {env.MetricPM25: 10},
	})
	assert.Same(t, first, store.Snapshot())

	second := store.Replace(map[string]env.Reading{
		"Ba Dinh": {env.MetricPM25: 20},
	})
	assert.Same(t, second, store.Snapshot())

	// replace, not merge: the old zone's value is gone from the new table
	assert.NotContains(t, second.Observed, "Hoan Kiem")

	// the first table stays intact for readers still holding it
	assert.Contains(t, first.Observed, "Hoan Kiem")
}
