package models

import "time"

// EnvResponse is the latest per-zone reading table. The synthetic mean
// row is internal to the cost model and not exposed.
type EnvResponse struct {
	Zones     map[string]map[string]float64 `json:"zones"`
	UpdatedAt time.Time                     `json:"updated_at"`
}

// HistorySample is one persisted refresh for a zone.
type HistorySample struct {
	Zone       string             `json:"zone"`
	Metrics    map[string]float64 `json:"metrics"`
	ObservedAt time.Time          `json:"observed_at"`
}

// HistoryResponse lists recent persisted samples for one zone, newest
// first.
type HistoryResponse struct {
	Zone    string          `json:"zone"`
	Samples []HistorySample `json:"samples"`
}

// HealthStats summarizes the loaded data set.
type HealthStats struct {
	Zones         int `json:"zones"`
	Nodes         int `json:"nodes"`
	Edges         int `json:"edges"`
	EnvDataPoints int `json:"env_data_points"`
}

// HealthResponse is the operational health report.
type HealthResponse struct {
	Status           string      `json:"status"`
	GraphLoaded      bool        `json:"graph_loaded"`
	EnvDataAvailable bool        `json:"env_data_available"`
	Stats            HealthStats `json:"stats"`
}
