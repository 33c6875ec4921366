package alert

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/envroute/envroute/internal/env"
)

// Event is one fired alert.
type Event struct {
	Zone       string    `json:"zone"`
	Metric     string    `json:"metric"`
	Value      float64   `json:"value"`
	Threshold  float64   `json:"threshold"`
	Message    string    `json:"message,omitempty"`
	ObservedAt time.Time `json:"observed_at"`
}

// Notifier delivers fired alert events.
type Notifier interface {
	Notify(ctx context.Context, events []Event) error
}

// Evaluator checks rules against each refreshed table. A rule that
// fired within its cooldown window stays silent until the window
// passes, so an hour-long pollution episode produces one alert, not
// one per refresh.
type Evaluator struct {
	rules     []Rule
	notifiers []Notifier
	logger    zerolog.Logger
	now       func() time.Time

	lastFired map[string]time.Time
}

// NewEvaluator creates an evaluator over the given rules.
func NewEvaluator(rules []Rule, logger zerolog.Logger, notifiers ...Notifier) *Evaluator {
	return &Evaluator{
		rules:     rules,
		notifiers: notifiers,
		logger:    logger,
		now:       time.Now,
		lastFired: make(map[string]time.Time),
	}
}

// SetClock overrides the time source. Used in tests to step through
// cooldown windows.
func (e *Evaluator) SetClock(now func() time.Time) {
	e.now = now
}

// Evaluate runs all rules against the table and notifies on matches.
// It runs on the refresh goroutine, so no locking is needed on the
// cooldown state.
func (e *Evaluator) Evaluate(ctx context.Context, table *env.Table) {
	now := e.now()
	var events []Event

	for _, rule := range e.rules {
		for _, zone := range e.zonesFor(rule, table) {
			reading, ok := table.Zones[zone]
			if !ok {
				continue
			}
			value := reading[rule.Metric]
			if !rule.matches(value) {
				continue
			}

			key := zone + "/" + rule.Metric + "/" + rule.Op
			if last, ok := e.lastFired[key]; ok && now.Sub(last) < time.Duration(rule.Cooldown) {
				continue
			}
			e.lastFired[key] = now

			events = append(events, Event{
				Zone:       zone,
				Metric:     rule.Metric,
				Value:      value,
				Threshold:  rule.Threshold,
				Message:    rule.Message,
				ObservedAt: table.UpdatedAt,
			})
		}
	}

	if len(events) == 0 {
		return
	}

	for _, n := range e.notifiers {
		if err := n.Notify(ctx, events); err != nil {
			e.logger.Error().Err(err).Int("events", len(events)).Msg("alert notification failed")
		}
	}
}

// zonesFor expands a wildcard rule to every observed zone.
func (e *Evaluator) zonesFor(rule Rule, table *env.Table) []string {
	if rule.Zone != "*" {
		return []string{rule.Zone}
	}
	return table.Observed
}
