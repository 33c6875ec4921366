// Package geo loads the static road network and administrative zone
// polygons once at startup and answers spatial queries against them.
// All data in this package is read-only after Load returns.
package geo

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/paulmach/orb"
)

// Load errors.
var (
	ErrNoNodes       = errors.New("road network contains no nodes")
	ErrDanglingEdge  = errors.New("edge references a node that does not exist")
	ErrNegativeEdge  = errors.New("edge has negative length")
	ErrNoZones       = errors.New("zone file contains no polygons")
	ErrUnnamedZone   = errors.New("zone polygon has no display name")
	ErrDuplicateZone = errors.New("duplicate zone display name")
)

// UnnamedRoad is the sentinel street name for edges without one.
const UnnamedRoad = "unnamed road"

// Node is a road-network intersection.
type Node struct {
	ID  int64   `json:"id"`
	Lon float64 `json:"x"`
	Lat float64 `json:"y"`
}

// Point returns the node location as an orb point (lon/lat order).
func (n Node) Point() orb.Point {
	return orb.Point{n.Lon, n.Lat}
}

// Edge is a directed street segment between two nodes.
type Edge struct {
	U        int64          `json:"u"`
	V        int64          `json:"v"`
	Length   float64        `json:"length"`
	Name     RoadName       `json:"name"`
	Geometry orb.LineString `json:"geometry"`
}

// RoadName absorbs the upstream shape ambiguity of the street name
// attribute: it may arrive as a string, a list of strings, or be absent.
// It always normalizes to a single string, falling back to UnnamedRoad.
type RoadName string

// UnmarshalJSON accepts a string, an array (first element wins), or null.
func (r *RoadName) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*r = RoadName(s)
		if s == "" {
			*r = UnnamedRoad
		}
		return nil
	}

	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		if len(list) > 0 && list[0] != "" {
			*r = RoadName(list[0])
		} else {
			*r = UnnamedRoad
		}
		return nil
	}

	var null interface{}
	if err := json.Unmarshal(data, &null); err == nil && null == nil {
		*r = UnnamedRoad
		return nil
	}

	return fmt.Errorf("road name: unsupported JSON shape: %s", string(data))
}

// String returns the road name, or UnnamedRoad if empty.
func (r RoadName) String() string {
	if r == "" {
		return UnnamedRoad
	}
	return string(r)
}

// Zone is an administrative polygon (ward or district) used as the
// spatial unit for pollutant readings.
type Zone struct {
	Name    string
	Key     string
	Polygon orb.MultiPolygon
}
