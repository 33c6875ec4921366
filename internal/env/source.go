package env

import (
	"context"
	"encoding/json"
	"fmt"
)

// Payload is one inbound reading set keyed by external identifier, as
// delivered by either feed variant before zone resolution.
type Payload map[string]Reading

// Handler consumes one full reading payload. Sources call it from a
// single goroutine, so at most one downstream refresh pass runs at a
// time; later payloads queue behind it.
type Handler func(ctx context.Context, p Payload)

// Source is a feed of environmental readings. The two variants — the
// interval poller and the server-push stream subscriber — both deliver
// the same payload shape into the same store entry point.
type Source interface {
	// Run blocks, delivering payloads to handle until ctx is canceled.
	// Transient upstream faults are retried internally per the source's
	// policy; Run only returns on ctx cancellation.
	Run(ctx context.Context, handle Handler) error
}

// wireReading mirrors the upstream aggregation DTO field names.
type wireReading struct {
	NO        float64 `json:"no"`
	O3        float64 `json:"o3"`
	NO2       float64 `json:"no2"`
	NOx       float64 `json:"nox"`
	SO2       float64 `json:"so2"`
	PM25      float64 `json:"pm2_5"`
	PM10      float64 `json:"pm10"`
	NH3       float64 `json:"nh3"`
	WindSpeed float64 `json:"windSpeed"`
}

func (w wireReading) reading() Reading {
	return Reading{
		MetricNO:        w.NO,
		MetricO3:        w.O3,
		MetricNO2:       w.NO2,
		MetricNOx:       w.NOx,
		MetricSO2:       w.SO2,
		MetricPM25:      w.PM25,
		MetricPM10:      w.PM10,
		MetricNH3:       w.NH3,
		MetricWindSpeed: w.WindSpeed,
	}
}

// ParsePayload decodes an upstream reading-set document: a JSON object
// keyed by station identifier with lowercase pollutant fields.
func ParsePayload(data []byte) (Payload, error) {
	var wire map[string]wireReading
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("decode reading set: %w", err)
	}
	p := make(Payload, len(wire))
	for key, w := range wire {
		p[key] = w.reading()
	}
	return p, nil
}
