package alert

import (
	"context"

	"github.com/rs/zerolog"
)

// LogNotifier writes alert events to the structured log. It is the
// default notifier and always part of the chain.
type LogNotifier struct {
	logger zerolog.Logger
}

// NewLogNotifier creates a log notifier.
func NewLogNotifier(logger zerolog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify logs one warning per event.
func (n *LogNotifier) Notify(_ context.Context, events []Event) error {
	for _, ev := range events {
		n.logger.Warn().
			Str("zone", ev.Zone).
			Str("metric", ev.Metric).
			Float64("value", ev.Value).
			Float64("threshold", ev.Threshold).
			Time("observed_at", ev.ObservedAt).
			Msg("environment alert fired")
	}
	return nil
}
