// Package alert evaluates threshold rules against each refreshed
// environment table and fans matches out to notifiers.
package alert

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/envroute/envroute/internal/env"
)

// Operators supported by rule conditions.
const (
	OpGreaterThan = "gt"
	OpLessThan    = "lt"
)

// Rule describes one threshold condition. Zone may be "*" to match
// every zone in the table.
type Rule struct {
	Zone      string   `json:"zone"`
	Metric    string   `json:"metric"`
	Op        string   `json:"op"`
	Threshold float64  `json:"threshold"`
	Cooldown  Duration `json:"cooldown"`
	Message   string   `json:"message"`
}

// Duration is a time.Duration that unmarshals from JSON strings like
// "30m" or "1h".
type Duration time.Duration

// UnmarshalJSON parses a duration string.
func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("parsing cooldown %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Validate checks the rule for usable values.
func (r Rule) Validate() error {
	if r.Zone == "" {
		return fmt.Errorf("rule missing zone")
	}
	valid := false
	for _, m := range env.Metrics {
		if r.Metric == m {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("rule for zone %q: unknown metric %q", r.Zone, r.Metric)
	}
	if r.Op != OpGreaterThan && r.Op != OpLessThan {
		return fmt.Errorf("rule for zone %q: unknown op %q", r.Zone, r.Op)
	}
	return nil
}

// matches reports whether value trips the rule.
func (r Rule) matches(value float64) bool {
	switch r.Op {
	case OpGreaterThan:
		return value > r.Threshold
	case OpLessThan:
		return value < r.Threshold
	default:
		return false
	}
}

// LoadRules reads a JSON array of rules from path.
func LoadRules(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading alert rules: %w", err)
	}

	var rules []Rule
	if err := json.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("parsing alert rules: %w", err)
	}

	for _, r := range rules {
		if err := r.Validate(); err != nil {
			return nil, err
		}
	}
	return rules, nil
}
