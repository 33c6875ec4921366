package route_test

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/envroute/envroute/internal/route"
)

// eastward and northward helpers build 0.001-degree segments around
// Hanoi, short enough that bearings are effectively cardinal.
func east(lon, lat float64) orb.LineString {
	return orb.LineString{{lon, lat}, {lon + 0.001, lat}}
}

func north(lon, lat float64) orb.LineString {
	return orb.LineString{{lon, lat}, {lon, lat + 0.001}}
}

func south(lon, lat float64) orb.LineString {
	return orb.LineString{{lon, lat}, {lon, lat - 0.001}}
}

func TestBuildDirections_SingleEdge(t *testing.T) {
	got := route.BuildDirections([]route.Step{
		{Name: "Trang Tien", Length: 250, Geometry: east(105.85, 21.03)},
	})

	assert.Equal(t, []string{
		"Depart on Trang Tien (about 250 m).",
		"Arrive at destination.",
	}, got)
}

func TestBuildDirections_MergesSameRoadStraight(t *testing.T) {
	got := route.BuildDirections([]route.Step{
		{Name: "Trang Tien", Length: 100, Geometry: east(105.850, 21.03)},
		{Name: "Trang Tien", Length: 150, Geometry: east(105.851, 21.03)},
		{Name: "Trang Tien", Length: 50, Geometry: east(105.852, 21.03)},
	})

	assert.Equal(t, []string{
		"Depart on Trang Tien (about 300 m).",
		"Arrive at destination.",
	}, got)
}

func TestBuildDirections_RightAndLeftTurns(t *testing.T) {
	got := route.BuildDirections([]route.Step{
		{Name: "Hang Bai", Length: 120, Geometry: north(105.85, 21.030)},   // heading north
		{Name: "Trang Tien", Length: 80, Geometry: east(105.85, 21.031)},   // east: right turn
		{Name: "Ngo Quyen", Length: 60, Geometry: north(105.851, 21.031)},  // north again: left turn
	})

	assert.Equal(t, []string{
		"Depart on Hang Bai (about 120 m).",
		"Turn right onto Trang Tien (about 80 m).",
		"Turn left onto Ngo Quyen (about 60 m).",
		"Arrive at destination.",
	}, got)
}

func TestBuildDirections_SharpMoveOnSameStreet(t *testing.T) {
	got := route.BuildDirections([]route.Step{
		{Name: "De La Thanh", Length: 100, Geometry: north(105.85, 21.030)},
		{Name: "De La Thanh", Length: 100, Geometry: east(105.85, 21.031)},
	})

	assert.Equal(t, []string{
		"Depart on De La Thanh (about 100 m).",
		"Turn right to continue on De La Thanh (about 100 m).",
		"Arrive at destination.",
	}, got)
}

func TestBuildDirections_StraightOntoDifferentRoad(t *testing.T) {
	got := route.BuildDirections([]route.Step{
		{Name: "Trang Tien", Length: 100, Geometry: east(105.850, 21.03)},
		{Name: "Trang Thi", Length: 200, Geometry: east(105.851, 21.03)},
	})

	assert.Equal(t, []string{
		"Depart on Trang Tien (about 100 m).",
		"Go straight onto Trang Thi (about 200 m).",
		"Arrive at destination.",
	}, got)
}

func TestBuildDirections_SkipsDegenerateGeometry(t *testing.T) {
	got := route.BuildDirections([]route.Step{
		{Name: "Trang Tien", Length: 100, Geometry: east(105.850, 21.03)},
		{Name: "Stub", Length: 40, Geometry: orb.LineString{{105.851, 21.03}}}, // one coord
		{Name: "Trang Tien", Length: 100, Geometry: east(105.851, 21.03)},
	})

	// the degenerate edge contributes nothing, the street merge survives
	assert.Equal(t, []string{
		"Depart on Trang Tien (about 200 m).",
		"Arrive at destination.",
	}, got)
}

func TestBuildDirections_AllDegenerate(t *testing.T) {
	got := route.BuildDirections([]route.Step{
		{Name: "Stub", Length: 40, Geometry: orb.LineString{{105.85, 21.03}}},
	})
	assert.Nil(t, got)
}

func TestBuildDirections_Empty(t *testing.T) {
	assert.Nil(t, route.BuildDirections(nil))
}

func TestBuildDirections_UnnamedRoadFallback(t *testing.T) {
	got := route.BuildDirections([]route.Step{
		{Name: "", Length: 75, Geometry: east(105.85, 21.03)},
	})

	require.Len(t, got, 2)
	assert.Equal(t, "Depart on unnamed road (about 75 m).", got[0])
}

func TestBuildDirections_UTurnClassifiedAsTurn(t *testing.T) {
	got := route.BuildDirections([]route.Step{
		{Name: "Ton Duc Thang", Length: 100, Geometry: north(105.85, 21.030)},
		{Name: "Ton Duc Thang", Length: 100, Geometry: south(105.85, 21.031)},
	})

	// a 180 degree flip never merges, even on the same street
	require.Len(t, got, 3)
	assert.Contains(t, got[1], "to continue on Ton Duc Thang")
}
