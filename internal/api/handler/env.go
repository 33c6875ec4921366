package handler

import (
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/envroute/envroute/internal/api/models"
	"github.com/envroute/envroute/internal/api/response"
	"github.com/envroute/envroute/internal/env"
	"github.com/envroute/envroute/internal/history"
)

// EnvHandler serves the environment table and its persisted history.
type EnvHandler struct {
	store  *env.Store
	repo   history.Repository
	logger zerolog.Logger
}

// NewEnvHandler creates an environment handler. repo may be nil when
// history persistence is disabled; the history route is then not
// mounted.
func NewEnvHandler(store *env.Store, repo history.Repository, logger zerolog.Logger) *EnvHandler {
	return &EnvHandler{store: store, repo: repo, logger: logger}
}

// HistoryEnabled reports whether the history endpoint can be served.
func (h *EnvHandler) HistoryEnabled() bool {
	return h.repo != nil
}

// GetEnv handles GET /api/get-env. The synthetic mean row is internal
// to the cost model and not part of the response.
func (h *EnvHandler) GetEnv(w http.ResponseWriter, r *http.Request) {
	table := h.store.Snapshot()
	if table == nil {
		response.ServiceUnavailable(w, r, "environment table is still loading")
		return
	}

	zones := make(map[string]map[string]float64, len(table.Zones))
	for name, reading := range table.Zones {
		zones[name] = reading
	}

	response.JSON(w, r, http.StatusOK, models.EnvResponse{
		Zones:     zones,
		UpdatedAt: table.UpdatedAt,
	})
}

// EnvHistory handles GET /api/env-history?zone=...&limit=N.
func (h *EnvHandler) EnvHistory(w http.ResponseWriter, r *http.Request) {
	zone := r.URL.Query().Get("zone")
	if zone == "" {
		response.BadRequest(w, r, "missing zone parameter", []models.FieldError{
			{Field: "zone", Message: "required", Code: "missing_parameter"},
		})
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			response.BadRequest(w, r, "invalid limit parameter", []models.FieldError{
				{Field: "limit", Message: "must be a positive integer", Code: "invalid_parameter"},
			})
			return
		}
		limit = n
	}

	samples, err := h.repo.ListByZone(r.Context(), zone, limit)
	if err != nil {
		h.logger.Error().Err(err).Str("zone", zone).Msg("failed to load environment history")
		response.InternalError(w, r, "failed to load history")
		return
	}

	out := make([]models.HistorySample, 0, len(samples))
	for _, s := range samples {
		out = append(out, models.HistorySample{
			Zone:       s.Zone,
			Metrics:    s.Metrics,
			ObservedAt: s.ObservedAt,
		})
	}

	response.JSON(w, r, http.StatusOK, models.HistoryResponse{
		Zone:    zone,
		Samples: out,
	})
}
