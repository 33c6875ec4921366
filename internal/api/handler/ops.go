package handler

import (
	"net/http"

	"github.com/envroute/envroute/internal/api/models"
	"github.com/envroute/envroute/internal/api/response"
	"github.com/envroute/envroute/internal/env"
	"github.com/envroute/envroute/internal/geo"
	"github.com/envroute/envroute/internal/graph"
)

// OpsHandler serves the operational endpoints.
type OpsHandler struct {
	index    *geo.Index
	store    *env.Store
	registry *graph.Registry
}

// NewOpsHandler creates an ops handler.
func NewOpsHandler(index *geo.Index, store *env.Store, registry *graph.Registry) *OpsHandler {
	return &OpsHandler{index: index, store: store, registry: registry}
}

// Health handles GET /health. The service reports 503 until the first
// graph generation is published; after that it stays 200 and the
// env_data_available flag tells whether real readings have arrived.
func (h *OpsHandler) Health(w http.ResponseWriter, r *http.Request) {
	_, graphLoaded := h.registry.Current()

	envAvailable := false
	dataPoints := 0
	if table := h.store.Snapshot(); table != nil {
		envAvailable = table.HasData()
		dataPoints = table.DataPoints()
	}

	body := models.HealthResponse{
		GraphLoaded:      graphLoaded,
		EnvDataAvailable: envAvailable,
		Stats: models.HealthStats{
			Zones:         len(h.index.ZoneNames()),
			Nodes:         h.index.Network.NodeCount(),
			Edges:         h.index.Network.EdgeCount(),
			EnvDataPoints: dataPoints,
		},
	}

	if !graphLoaded {
		body.Status = "initializing"
		response.JSON(w, r, http.StatusServiceUnavailable, body)
		return
	}

	if envAvailable {
		body.Status = "healthy"
	} else {
		body.Status = "degraded"
	}
	response.JSON(w, r, http.StatusOK, body)
}
