package geo

import (
	"math"

	"github.com/golang/geo/s2"
	"github.com/paulmach/orb"
)

// EarthRadiusMeters is the mean Earth radius used for distance math.
const EarthRadiusMeters = 6371000.0

// HaversineDistance returns the great-circle distance in meters between
// two lon/lat points.
func HaversineDistance(a, b orb.Point) float64 {
	p1 := s2.LatLngFromDegrees(a.Lat(), a.Lon())
	p2 := s2.LatLngFromDegrees(b.Lat(), b.Lon())
	return p1.Distance(p2).Radians() * EarthRadiusMeters
}

// Bearing returns the initial compass bearing in degrees (0-360, 0 =
// north) from point a to point b.
func Bearing(a, b orb.Point) float64 {
	lat1 := a.Lat() * math.Pi / 180
	lat2 := b.Lat() * math.Pi / 180
	dLon := (b.Lon() - a.Lon()) * math.Pi / 180

	x := math.Sin(dLon) * math.Cos(lat2)
	y := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLon)
	deg := math.Atan2(x, y) * 180 / math.Pi
	return math.Mod(deg+360, 360)
}

// TurnAngle returns the signed turn angle in degrees (-180, 180] between
// an entry bearing b1 and an exit bearing b2. Positive is a right turn.
func TurnAngle(b1, b2 float64) float64 {
	return math.Mod(b2-b1+540, 360) - 180
}

// NearestNode returns the positional index of the network node closest
// to p. The scan is linear over all nodes; the network is loaded once
// and sized for city-scale graphs, where this is fast enough that an
// index structure has not been needed.
func (rn *RoadNetwork) NearestNode(p orb.Point) int {
	best := 0
	bestDist := math.Inf(1)
	for i := range rn.Nodes {
		d := HaversineDistance(p, rn.Nodes[i].Point())
		if d < bestDist {
			bestDist = d
			best = i
		}
	}
	return best
}
