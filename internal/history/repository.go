// Package history persists per-zone readings from each refresh so the
// API can serve recent environmental trends.
package history

import (
	"context"
	"time"

	"github.com/envroute/envroute/internal/env"
)

// Sample is one zone's reading at one refresh.
type Sample struct {
	Zone       string      `json:"zone"`
	Metrics    env.Reading `json:"metrics"`
	ObservedAt time.Time   `json:"observed_at"`
}

// Repository defines the reading-history persistence interface.
type Repository interface {
	// RecordBatch stores one refresh's worth of samples.
	RecordBatch(ctx context.Context, samples []Sample) error

	// ListByZone returns the most recent samples for a zone, newest
	// first.
	ListByZone(ctx context.Context, zone string, limit int) ([]Sample, error)
}

// SamplesFromTable converts one environment table into samples, one
// per zone that carried real inbound data. Mean-filled zones are not
// recorded; they would only replay the mean row.
func SamplesFromTable(table *env.Table) []Sample {
	samples := make([]Sample, 0, len(table.Observed))
	for _, zone := range table.Observed {
		samples = append(samples, Sample{
			Zone:       zone,
			Metrics:    table.Zones[zone],
			ObservedAt: table.UpdatedAt,
		})
	}
	return samples
}
