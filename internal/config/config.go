// Package config collects the environment-driven service settings.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Feed mode values for EnvSourceMode.
const (
	ModePoll   = "poll"
	ModeStream = "stream"
)

// Config holds all recognized service options.
type Config struct {
	// GraphFile is the road-network JSON export. Startup precondition.
	GraphFile string

	// ZonesFile is the zone polygon GeoJSON file. Startup precondition.
	ZonesFile string

	// EnvSourceURL is the upstream environment-data endpoint: the
	// aggregation endpoint in poll mode, the SSE endpoint in stream
	// mode.
	EnvSourceURL string

	// EnvSourceMode selects the feed variant: "poll" or "stream".
	EnvSourceMode string

	// RefreshInterval between pull-mode fetches. Ignored in stream
	// mode, which reconnects immediately on drop.
	RefreshInterval time.Duration

	// ReconnectDelay before stream-mode re-dials.
	ReconnectDelay time.Duration

	// Host and Port for the HTTP listener.
	Host string
	Port string

	// Debug enables human-readable console logging and debug level.
	Debug bool

	// DatabaseURL enables the reading-history recorder when set.
	DatabaseURL string

	// AlertRulesFile enables threshold alert evaluation when set.
	AlertRulesFile string

	// PubSubProjectID and AlertTopic route fired alerts to Pub/Sub
	// when both are set; otherwise alerts are only logged.
	PubSubProjectID string
	AlertTopic      string

	// OTELEnabled turns on trace export to OTLPEndpoint.
	OTELEnabled  bool
	OTLPEndpoint string
	Environment  string
}

// FromEnv reads the configuration from environment variables, applying
// defaults that match the upstream deployment.
func FromEnv() (Config, error) {
	refreshSecs, err := strconv.Atoi(getEnvOrDefault("REFRESH_INTERVAL_SECONDS", "3600"))
	if err != nil {
		return Config{}, fmt.Errorf("REFRESH_INTERVAL_SECONDS: %w", err)
	}
	reconnectSecs, err := strconv.Atoi(getEnvOrDefault("RECONNECT_DELAY_SECONDS", "5"))
	if err != nil {
		return Config{}, fmt.Errorf("RECONNECT_DELAY_SECONDS: %w", err)
	}

	mode := getEnvOrDefault("ENV_SOURCE_MODE", ModePoll)
	if mode != ModePoll && mode != ModeStream {
		return Config{}, fmt.Errorf("ENV_SOURCE_MODE: unknown mode %q", mode)
	}

	return Config{
		GraphFile:       getEnvOrDefault("GRAPH_FILE", "hanoi_road_network.json"),
		ZonesFile:       getEnvOrDefault("ZONES_FILE", "ha_noi_with_latlon.geojson"),
		EnvSourceURL:    getEnvOrDefault("ENV_SOURCE_URL", "http://localhost:8081/api/v1/environment-data"),
		EnvSourceMode:   mode,
		RefreshInterval: time.Duration(refreshSecs) * time.Second,
		ReconnectDelay:  time.Duration(reconnectSecs) * time.Second,
		Host:            getEnvOrDefault("APP_HOST", "0.0.0.0"),
		Port:            getEnvOrDefault("APP_PORT", "5000"),
		Debug:           os.Getenv("APP_DEBUG") == "true",
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		AlertRulesFile:  os.Getenv("ALERT_RULES_FILE"),
		PubSubProjectID: os.Getenv("PUBSUB_PROJECT_ID"),
		AlertTopic:      os.Getenv("ALERT_TOPIC"),
		OTELEnabled:     os.Getenv("OTEL_ENABLED") == "true",
		OTLPEndpoint:    getEnvOrDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		Environment:     getEnvOrDefault("APP_ENV", "development"),
	}, nil
}

// Addr returns the listen address.
func (c Config) Addr() string {
	return c.Host + ":" + c.Port
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
