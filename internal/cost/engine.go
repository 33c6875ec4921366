// Package cost derives per-edge routing costs from the road network
// and an environment table. Recalculate is a pure function over its
// inputs: it never touches the published generation, so it can run
// while queries continue against the previous one.
package cost

import (
	"github.com/rs/zerolog"

	"github.com/envroute/envroute/internal/env"
	"github.com/envroute/envroute/internal/geo"
	"github.com/envroute/envroute/internal/graph"
)

// Pollutant weights for the two cost functions. The wind mode
// penalizes pollution heavily on top of raw length; the short mode
// scales length up and keeps a lighter pollution term.
var (
	windWeights = map[string]float64{
		env.MetricNO:   10,
		env.MetricO3:   8,
		env.MetricNO2:  12,
		env.MetricNOx:  9,
		env.MetricSO2:  7,
		env.MetricPM25: 15,
		env.MetricPM10: 12,
		env.MetricNH3:  8,
	}
	shortWeights = map[string]float64{
		env.MetricNO:   6,
		env.MetricO3:   5,
		env.MetricNO2:  8,
		env.MetricNOx:  5,
		env.MetricSO2:  4,
		env.MetricPM25: 10,
		env.MetricPM10: 7,
		env.MetricNH3:  5,
	}
)

// Wind-speed discounts subtracted from each mode's cost. There is no
// floor: pathological wind speeds can drive a cost negative, which the
// upstream model also allows. Kept unclamped until the intended
// behavior is confirmed; see DESIGN.md.
const (
	windDiscountWind  = 5
	windDiscountShort = 3
)

// shortLengthFactor scales raw length in the distance-minimizing mode.
const shortLengthFactor = 1.5

// Recalculate spatial-joins every node into its containing zone,
// averages the endpoint readings per edge, and produces a complete new
// weighted graph. Every edge gets a cost: nodes outside all zones, or
// in zones without data, inherit the mean row.
func Recalculate(ix *geo.Index, table *env.Table, log zerolog.Logger) *graph.Weighted {
	network := ix.Network

	log.Debug().Int("nodes", network.NodeCount()).Msg("joining nodes into zones")
	nodeReadings := make([]env.Reading, network.NodeCount())
	for i := range network.Nodes {
		if zone, ok := ix.ZoneContaining(network.Nodes[i].Point()); ok {
			nodeReadings[i] = table.Lookup(zone)
		} else {
			nodeReadings[i] = table.Mean
		}
	}

	log.Debug().Int("edges", network.EdgeCount()).Msg("computing edge costs")
	costs := make(graph.EdgeTable, network.EdgeCount())
	for i := range network.Edges {
		u, v := network.EdgeEndpoints(i)
		avg := averageReadings(nodeReadings[u], nodeReadings[v])
		costs[i] = edgeCost(network.Edges[i].Length, avg)
	}

	return &graph.Weighted{Network: network, Costs: costs, NodeReadings: nodeReadings}
}

// averageReadings averages the two endpoint readings metric-wise.
func averageReadings(a, b env.Reading) env.Reading {
	avg := make(env.Reading, len(env.Metrics))
	for _, m := range env.Metrics {
		avg[m] = (a[m] + b[m]) / 2
	}
	return avg
}

// edgeCost applies both weight functions to an edge.
func edgeCost(length float64, avg env.Reading) graph.EdgeCost {
	var windTerm, shortTerm float64
	for m, w := range windWeights {
		windTerm += avg[m] * w
	}
	for m, w := range shortWeights {
		shortTerm += avg[m] * w
	}
	wind := avg[env.MetricWindSpeed]

	return graph.EdgeCost{
		CostWind:  length + windTerm - wind*windDiscountWind,
		CostShort: length*shortLengthFactor + shortTerm - wind*windDiscountShort,
		Avg:       avg,
	}
}
