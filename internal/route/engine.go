// Package route answers point-to-point route queries against the
// currently published graph generation.
package route

import (
	"context"
	"errors"
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/rs/zerolog"

	"github.com/envroute/envroute/internal/env"
	"github.com/envroute/envroute/internal/graph"
)

// Engine errors.
var (
	// ErrGraphUnavailable means no generation has been published yet
	// (startup window). Distinct from ErrNoPath, which is a normal
	// query outcome.
	ErrGraphUnavailable = errors.New("route graph not loaded yet")

	// ErrNoPath means the two snapped nodes are not connected.
	ErrNoPath = graph.ErrNoPath
)

// assumedSpeedKmh is the fixed speed used to estimate travel time.
const assumedSpeedKmh = 30.0

// Engine runs route queries. It borrows a generation from the registry
// per query; a concurrent publish never affects a query in flight.
type Engine struct {
	registry *graph.Registry
	logger   zerolog.Logger
}

// NewEngine creates a route query engine.
func NewEngine(registry *graph.Registry, logger zerolog.Logger) *Engine {
	return &Engine{registry: registry, logger: logger}
}

// Result is a single-mode route answer.
type Result struct {
	GeoJSON    *geojson.FeatureCollection
	Directions []string
	Mode       graph.Mode
}

// Summary aggregates one mode's route for the comparison endpoint.
type Summary struct {
	GeoJSON    *geojson.FeatureCollection
	Directions []string
	DistanceM  float64
	TimeMin    float64
	PM25Avg    float64
}

// BothResult carries both modes' routes for side-by-side comparison.
type BothResult struct {
	Wind  *Summary
	Short *Summary
}

// FindRoute snaps both coordinates to their nearest graph nodes, runs
// the shortest-path search under the selected cost mode, and derives
// the output geometry and turn instructions.
func (e *Engine) FindRoute(ctx context.Context, start, end orb.Point, mode graph.Mode) (*Result, error) {
	gen, ok := e.registry.Current()
	if !ok {
		return nil, ErrGraphUnavailable
	}

	path, err := e.search(ctx, gen, start, end, mode)
	if err != nil {
		return nil, err
	}

	steps := pathSteps(gen, path)
	return &Result{
		GeoJSON:    routeGeoJSON(gen, path),
		Directions: BuildDirections(steps),
		Mode:       mode,
	}, nil
}

// FindBothRoutes runs both cost modes against the same generation and
// aggregates distance, estimated time, and mean PM2.5 per route.
func (e *Engine) FindBothRoutes(ctx context.Context, start, end orb.Point) (*BothResult, error) {
	gen, ok := e.registry.Current()
	if !ok {
		return nil, ErrGraphUnavailable
	}

	wind, err := e.summarize(ctx, gen, start, end, graph.ModeWind)
	if err != nil {
		return nil, err
	}
	short, err := e.summarize(ctx, gen, start, end, graph.ModeShort)
	if err != nil {
		return nil, err
	}
	return &BothResult{Wind: wind, Short: short}, nil
}

func (e *Engine) summarize(ctx context.Context, gen *graph.Generation, start, end orb.Point, mode graph.Mode) (*Summary, error) {
	path, err := e.search(ctx, gen, start, end, mode)
	if err != nil {
		return nil, err
	}

	var distance, pm25Sum float64
	var pm25Count int
	for _, edgeIdx := range path.Edges {
		distance += gen.Graph.Network.Edges[edgeIdx].Length
		if v, ok := edgePM25(gen, edgeIdx); ok {
			pm25Sum += v
			pm25Count++
		}
	}

	pm25Avg := 0.0
	if pm25Count > 0 {
		pm25Avg = pm25Sum / float64(pm25Count)
	}

	return &Summary{
		GeoJSON:    routeGeoJSON(gen, path),
		Directions: BuildDirections(pathSteps(gen, path)),
		DistanceM:  distance,
		TimeMin:    distance / 1000 / assumedSpeedKmh * 60,
		PM25Avg:    pm25Avg,
	}, nil
}

// search snaps and runs the shortest-path query, translating internal
// faults into logged errors with a generic message for the caller.
func (e *Engine) search(ctx context.Context, gen *graph.Generation, start, end orb.Point, mode graph.Mode) (graph.Path, error) {
	if err := ctx.Err(); err != nil {
		return graph.Path{}, err
	}

	network := gen.Graph.Network
	fromNode := network.NearestNode(start)
	toNode := network.NearestNode(end)

	path, err := gen.ShortestPath(fromNode, toNode, mode)
	if err != nil {
		if errors.Is(err, graph.ErrNoPath) {
			// a normal, reportable outcome
			return graph.Path{}, ErrNoPath
		}
		e.logger.Error().Err(err).
			Uint64("generation", gen.Seq).
			Str("mode", string(mode)).
			Msg("shortest-path search failed")
		return graph.Path{}, fmt.Errorf("route search: %w", err)
	}
	return path, nil
}

// pathSteps converts the edge sequence to direction-builder input.
func pathSteps(gen *graph.Generation, path graph.Path) []Step {
	network := gen.Graph.Network
	steps := make([]Step, 0, len(path.Edges))
	for _, edgeIdx := range path.Edges {
		e := &network.Edges[edgeIdx]
		steps = append(steps, Step{
			Name:     e.Name.String(),
			Length:   e.Length,
			Geometry: e.Geometry,
		})
	}
	return steps
}

// routeGeoJSON renders the route's edges as a feature collection of
// line strings in geographic lon/lat coordinates.
func routeGeoJSON(gen *graph.Generation, path graph.Path) *geojson.FeatureCollection {
	network := gen.Graph.Network
	fc := geojson.NewFeatureCollection()
	for _, edgeIdx := range path.Edges {
		e := &network.Edges[edgeIdx]
		f := geojson.NewFeature(e.Geometry)
		f.Properties = geojson.Properties{
			"name":   e.Name.String(),
			"length": e.Length,
		}
		fc.Append(f)
	}
	return fc
}

// edgePM25 returns the edge's retained PM2.5 average. When the merged
// attribute is absent from the cost table the two endpoint readings
// are averaged instead; the cost engine always computes the merged
// attribute, so the fallback matters for partially filled tables.
func edgePM25(gen *graph.Generation, edgeIdx int) (float64, bool) {
	if avg := gen.Edges[edgeIdx].Avg; avg != nil {
		if v, ok := avg[env.MetricPM25]; ok {
			return v, true
		}
	}
	nodes := gen.Graph.NodeReadings
	if nodes == nil {
		return 0, false
	}
	u, v := gen.Graph.Network.EdgeEndpoints(edgeIdx)
	return (nodes[u][env.MetricPM25] + nodes[v][env.MetricPM25]) / 2, true
}
