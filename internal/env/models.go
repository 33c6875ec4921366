// Package env maintains the latest per-zone environmental reading table
// and the pluggable sources that refresh it.
package env

import "time"

// Metric keys, as they appear in the reading table and the cost model.
// The casing follows the upstream NGSI-LD property names.
const (
	MetricNO        = "NO"
	MetricO3        = "O3"
	MetricNO2       = "NO2"
	MetricNOx       = "NOx"
	MetricSO2       = "SO2"
	MetricPM25      = "pm2_5"
	MetricPM10      = "pm10"
	MetricNH3       = "NH3"
	MetricWindSpeed = "windSpeed"
)

// MeanKey is the synthetic row holding the column-wise mean across all
// zones with data. It doubles as the fallback for unmapped zones.
const MeanKey = "_mean_"

// Metrics lists every reading column, in table order.
var Metrics = []string{
	MetricNO, MetricO3, MetricNO2, MetricNOx, MetricSO2,
	MetricPM25, MetricPM10, MetricNH3, MetricWindSpeed,
}

// Reading maps metric keys to non-negative values for one zone.
type Reading map[string]float64

// clone returns a copy of the reading.
func (r Reading) clone() Reading {
	out := make(Reading, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// ZeroReading returns a reading with every metric present and zero.
func ZeroReading() Reading {
	r := make(Reading, len(Metrics))
	for _, m := range Metrics {
		r[m] = 0
	}
	return r
}

// Table is one complete, immutable refresh result: a reading per known
// zone plus the mean row. Refreshes replace the whole table, they never
// merge into it.
type Table struct {
	// Zones is keyed by zone display name. Every known zone has an
	// entry; zones absent from the inbound data carry the mean.
	Zones map[string]Reading

	// Mean is the column-wise mean over the zones that had data.
	Mean Reading

	// Observed lists the zones that actually carried inbound data, as
	// opposed to inheriting the mean.
	Observed []string

	// UpdatedAt is when this table was built.
	UpdatedAt time.Time
}

// BuildTable reindexes inbound per-zone data over the full known zone
// list. The mean is computed over the zones present in data only; zones
// missing from data receive the freshly computed mean, never a stale
// prior value. With no data at all the table is zero-filled.
func BuildTable(zoneNames []string, data map[string]Reading) *Table {
	t := &Table{
		Zones:     make(map[string]Reading, len(zoneNames)),
		Mean:      ZeroReading(),
		UpdatedAt: time.Now(),
	}

	if len(data) > 0 {
		counts := make(map[string]int, len(Metrics))
		sums := make(map[string]float64, len(Metrics))
		for _, r := range data {
			for _, m := range Metrics {
				if v, ok := r[m]; ok {
					sums[m] += v
					counts[m]++
				}
			}
		}
		for _, m := range Metrics {
			if counts[m] > 0 {
				t.Mean[m] = sums[m] / float64(counts[m])
			}
		}
	}

	for _, name := range zoneNames {
		if r, ok := data[name]; ok {
			row := t.Mean.clone()
			for k, v := range r {
				row[k] = v
			}
			t.Zones[name] = row
			t.Observed = append(t.Observed, name)
			continue
		}
		t.Zones[name] = t.Mean.clone()
	}
	return t
}

// ZeroTable returns a fully zero-filled table over the known zones.
// Used when the very first fetch fails and there is nothing better.
func ZeroTable(zoneNames []string) *Table {
	return BuildTable(zoneNames, nil)
}

// Lookup returns the reading for a zone display name, falling back to
// the mean row for unknown zones.
func (t *Table) Lookup(zone string) Reading {
	if r, ok := t.Zones[zone]; ok {
		return r
	}
	return t.Mean
}

// HasData reports whether any zone in the table carried real inbound
// data, as opposed to a zero fill.
func (t *Table) HasData() bool {
	return len(t.Observed) > 0
}

// DataPoints returns the number of zone rows with real inbound data.
func (t *Table) DataPoints() int {
	return len(t.Observed)
}
