package geo

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/rs/zerolog"
)

// Index bundles the loaded road network and zone set together with the
// zone name lookup tables. It is built once at startup; a failure here
// is fatal for the process.
type Index struct {
	Network *RoadNetwork
	Zones   []Zone

	nameToKey map[string]string
	keyToName map[string]string
}

// Load reads the road-network file and the zone polygon file. Both are
// startup preconditions: any error means the service cannot run.
func Load(graphPath, zonesPath string, log zerolog.Logger) (*Index, error) {
	network, err := LoadRoadNetwork(graphPath)
	if err != nil {
		return nil, err
	}
	log.Info().
		Str("file", graphPath).
		Int("nodes", network.NodeCount()).
		Int("edges", network.EdgeCount()).
		Msg("road network loaded")

	zones, err := LoadZones(zonesPath)
	if err != nil {
		return nil, err
	}
	log.Info().
		Str("file", zonesPath).
		Int("zones", len(zones)).
		Msg("zone polygons loaded")

	ix := &Index{
		Network:   network,
		Zones:     zones,
		nameToKey: make(map[string]string, len(zones)),
		keyToName: make(map[string]string, len(zones)),
	}
	for _, z := range zones {
		if prev, ok := ix.keyToName[z.Key]; ok {
			return nil, fmt.Errorf("zone key collision: %q and %q both normalize to %q", prev, z.Name, z.Key)
		}
		ix.nameToKey[z.Name] = z.Key
		ix.keyToName[z.Key] = z.Name
	}
	return ix, nil
}

// ZoneNames returns the display names of all loaded zones, in file order.
func (ix *Index) ZoneNames() []string {
	names := make([]string, len(ix.Zones))
	for i, z := range ix.Zones {
		names[i] = z.Name
	}
	return names
}

// Key returns the canonical key for a zone display name.
func (ix *Index) Key(name string) (string, bool) {
	k, ok := ix.nameToKey[name]
	return k, ok
}

// DisplayName resolves a canonical key back to the zone display name.
// Inbound readings arrive keyed this way.
func (ix *Index) DisplayName(key string) (string, bool) {
	n, ok := ix.keyToName[key]
	return n, ok
}

// ZoneContaining returns the display name of the zone whose polygon
// contains p, if any. A point on open water or outside the city matches
// no zone.
func (ix *Index) ZoneContaining(p orb.Point) (string, bool) {
	for i := range ix.Zones {
		if ix.Zones[i].Contains(p) {
			return ix.Zones[i].Name, true
		}
	}
	return "", false
}
