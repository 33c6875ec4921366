package history

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/envroute/envroute/internal/env"
)

const recordTimeout = 10 * time.Second

// Recorder persists each refreshed table as one batch of samples. It
// is registered as a post-publish hook, so a slow or failing database
// never blocks the refresh pipeline beyond the write timeout.
type Recorder struct {
	repo   Repository
	logger zerolog.Logger
}

// NewRecorder creates a recorder backed by repo.
func NewRecorder(repo Repository, logger zerolog.Logger) *Recorder {
	return &Recorder{repo: repo, logger: logger}
}

// Record stores the observed zones of the table. Mean-filled zones are
// not persisted; history reflects what upstream actually reported.
func (r *Recorder) Record(ctx context.Context, table *env.Table) {
	samples := SamplesFromTable(table)
	if len(samples) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, recordTimeout)
	defer cancel()

	if err := r.repo.RecordBatch(ctx, samples); err != nil {
		r.logger.Error().Err(err).Int("samples", len(samples)).Msg("failed to record environment history")
		return
	}
	r.logger.Debug().Int("samples", len(samples)).Msg("environment history recorded")
}
