package geo

import (
	"fmt"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
)

// zoneNameProperties lists the GeoJSON feature properties checked, in
// order, for the zone display name. The first is the key used by the
// Hanoi ward export; the rest cover generic re-exports.
var zoneNameProperties = []string{"Tên đơn vị", "name", "Name"}

// LoadZones reads the zone polygon GeoJSON file. Every feature must
// carry a unique display name.
func LoadZones(path string) ([]Zone, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read zones %s: %w", path, err)
	}

	fc, err := geojson.UnmarshalFeatureCollection(raw)
	if err != nil {
		return nil, fmt.Errorf("parse zones %s: %w", path, err)
	}
	if len(fc.Features) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrNoZones)
	}

	zones := make([]Zone, 0, len(fc.Features))
	seen := make(map[string]struct{}, len(fc.Features))
	for i, f := range fc.Features {
		name := featureName(f)
		if name == "" {
			return nil, fmt.Errorf("%s feature %d: %w", path, i, ErrUnnamedZone)
		}
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("%s: %w: %q", path, ErrDuplicateZone, name)
		}
		seen[name] = struct{}{}

		poly, err := featurePolygon(f)
		if err != nil {
			return nil, fmt.Errorf("%s feature %q: %w", path, name, err)
		}

		zones = append(zones, Zone{
			Name:    name,
			Key:     NormalizeZoneName(name),
			Polygon: poly,
		})
	}
	return zones, nil
}

func featureName(f *geojson.Feature) string {
	for _, key := range zoneNameProperties {
		if v, ok := f.Properties[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

func featurePolygon(f *geojson.Feature) (orb.MultiPolygon, error) {
	switch g := f.Geometry.(type) {
	case orb.Polygon:
		return orb.MultiPolygon{g}, nil
	case orb.MultiPolygon:
		return g, nil
	default:
		return nil, fmt.Errorf("unsupported zone geometry %q", f.Geometry.GeoJSONType())
	}
}

// Contains reports whether the point lies within the zone polygon.
// This is a strict "within" test, matching how nodes are joined to
// zones: a node outside every zone falls back to the mean reading.
func (z *Zone) Contains(p orb.Point) bool {
	return planar.MultiPolygonContains(z.Polygon, p)
}
