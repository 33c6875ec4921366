package geo

import (
	"encoding/json"
	"fmt"
	"os"
)

// RoadNetwork is the directed road multigraph. Nodes are intersections,
// edges are street segments. The structure is immutable after load;
// edge costs live in a separate generation owned by the graph registry.
type RoadNetwork struct {
	CRS   string `json:"crs"`
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`

	nodePos map[int64]int
	out     [][]int32
}

// LoadRoadNetwork reads a road-network JSON export (produced by the
// offline graph-build step) and indexes it for adjacency lookups.
func LoadRoadNetwork(path string) (*RoadNetwork, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read road network %s: %w", path, err)
	}

	var rn RoadNetwork
	if err := json.Unmarshal(raw, &rn); err != nil {
		return nil, fmt.Errorf("parse road network %s: %w", path, err)
	}

	if err := rn.index(); err != nil {
		return nil, fmt.Errorf("index road network %s: %w", path, err)
	}
	return &rn, nil
}

// index builds the node position map and per-node outgoing edge lists,
// validating the graph invariants along the way.
func (rn *RoadNetwork) index() error {
	if len(rn.Nodes) == 0 {
		return ErrNoNodes
	}

	rn.nodePos = make(map[int64]int, len(rn.Nodes))
	for i, n := range rn.Nodes {
		rn.nodePos[n.ID] = i
	}

	rn.out = make([][]int32, len(rn.Nodes))
	for i := range rn.Edges {
		e := &rn.Edges[i]
		if e.Length < 0 {
			return fmt.Errorf("%w: edge %d (%d->%d)", ErrNegativeEdge, i, e.U, e.V)
		}
		u, ok := rn.nodePos[e.U]
		if !ok {
			return fmt.Errorf("%w: edge %d tail %d", ErrDanglingEdge, i, e.U)
		}
		if _, ok := rn.nodePos[e.V]; !ok {
			return fmt.Errorf("%w: edge %d head %d", ErrDanglingEdge, i, e.V)
		}
		rn.out[u] = append(rn.out[u], int32(i))
	}
	return nil
}

// NodeCount returns the number of intersections.
func (rn *RoadNetwork) NodeCount() int { return len(rn.Nodes) }

// EdgeCount returns the number of street segments.
func (rn *RoadNetwork) EdgeCount() int { return len(rn.Edges) }

// NodePos maps a node ID to its positional index, if present.
func (rn *RoadNetwork) NodePos(id int64) (int, bool) {
	pos, ok := rn.nodePos[id]
	return pos, ok
}

// Outgoing returns the edge indexes leaving the node at position pos.
func (rn *RoadNetwork) Outgoing(pos int) []int32 {
	return rn.out[pos]
}

// EdgeEndpoints returns the positional indexes of an edge's tail and head.
func (rn *RoadNetwork) EdgeEndpoints(edgeIdx int) (u, v int) {
	e := &rn.Edges[edgeIdx]
	return rn.nodePos[e.U], rn.nodePos[e.V]
}
