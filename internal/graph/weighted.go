// Package graph holds the weighted road graph generations and the
// registry that atomically publishes them to concurrent readers.
package graph

import (
	"errors"

	"github.com/envroute/envroute/internal/env"
	"github.com/envroute/envroute/internal/geo"
)

// Query errors.
var (
	ErrNoPath      = errors.New("no path between the given nodes")
	ErrUnknownMode = errors.New("unknown cost mode")
)

// Mode selects which edge-weight function a query runs against.
type Mode string

const (
	// ModeWind is the pollution-minimizing cost function.
	ModeWind Mode = "wind"
	// ModeShort is the distance-minimizing cost function.
	ModeShort Mode = "short"
)

// ParseMode maps a request string to a cost mode. An absent mode
// means wind; any other string falls back to "short", mirroring the
// upstream treatment of the mode as a wind/other toggle.
func ParseMode(s string) Mode {
	if s == "" || s == string(ModeWind) {
		return ModeWind
	}
	return ModeShort
}

// EdgeCost carries the derived routing costs for one edge, plus the
// averaged pollutant values retained for route-level reporting. Values
// are computed wholesale on every refresh and never mutated afterward.
type EdgeCost struct {
	CostWind  float64
	CostShort float64
	Avg       env.Reading
}

// EdgeTable is the per-edge cost table of one generation, parallel to
// the road network's edge slice.
type EdgeTable []EdgeCost

// Weight returns the cost of an edge under the given mode.
func (t EdgeTable) Weight(edgeIdx int, mode Mode) float64 {
	if mode == ModeWind {
		return t[edgeIdx].CostWind
	}
	return t[edgeIdx].CostShort
}

// Weighted is one complete weighted graph: the immutable road network
// plus one generation's edge costs and the per-node readings the
// costs were derived from, kept for endpoint-level reporting.
type Weighted struct {
	Network      *geo.RoadNetwork
	Costs        EdgeTable
	NodeReadings []env.Reading
}
