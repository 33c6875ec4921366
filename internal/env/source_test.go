package env_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/envroute/envroute/internal/env"
)

func TestParsePayload_WireFormat(t *testing.T) {
	data := []byte(`{
		"HoanKiem": {"no": 1.5, "o3": 2, "no2": 3, "nox": 4, "so2": 5,
			"pm2_5": 35.2, "pm10": 48, "nh3": 0.9, "windSpeed": 2.4},
		"BaDinh": {"pm2_5": 12}
	}`)

	p, err := env.ParsePayload(data)
	require.NoError(t, err)
	require.Len(t, p, 2)

	hk := p["HoanKiem"]
	assert.InDelta(t, 1.5, hk[env.MetricNO], 1e-9)
	assert.InDelta(t, 35.2, hk[env.MetricPM25], 1e-9)
	assert.InDelta(t, 48, hk[env.MetricPM10], 1e-9)
	assert.InDelta(t, 0.9, hk[env.MetricNH3], 1e-9)
	assert.InDelta(t, 2.4, hk[env.MetricWindSpeed], 1e-9)

	// omitted fields decode as zero
	assert.Zero(t, p["BaDinh"][env.MetricNO2])
	assert.InDelta(t, 12, p["BaDinh"][env.MetricPM25], 1e-9)
}

func TestParsePayload_EmptyObject(t *testing.T) {
	p, err := env.ParsePayload([]byte(`{}`))
	require.NoError(t, err)
	assert.Empty(t, p)
}

func TestParsePayload_Malformed(t *testing.T) {
	_, err := env.ParsePayload([]byte(`[1,2,3]`))
	assert.Error(t, err)
}
