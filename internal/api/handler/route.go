// Package handler contains the HTTP handlers for the route engine API.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/paulmach/orb"
	"github.com/rs/zerolog"

	"github.com/envroute/envroute/internal/api/models"
	"github.com/envroute/envroute/internal/api/response"
	"github.com/envroute/envroute/internal/graph"
	"github.com/envroute/envroute/internal/route"
)

// RouteHandler serves the shortest-path endpoints.
type RouteHandler struct {
	engine *route.Engine
	logger zerolog.Logger
}

// NewRouteHandler creates a route handler.
func NewRouteHandler(engine *route.Engine, logger zerolog.Logger) *RouteHandler {
	return &RouteHandler{engine: engine, logger: logger}
}

// FindRoute handles POST /api/find-route.
func (h *RouteHandler) FindRoute(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeRequest(w, r)
	if !ok {
		return
	}

	mode := graph.ParseMode(req.Mode)
	start := orb.Point{req.Start[0], req.Start[1]}
	end := orb.Point{req.End[0], req.End[1]}

	result, err := h.engine.FindRoute(r.Context(), start, end, mode)
	if err != nil {
		h.writeRouteError(w, r, err)
		return
	}

	routeJSON, err := json.Marshal(result.GeoJSON)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to encode route geometry")
		response.InternalError(w, r, "failed to encode route")
		return
	}

	response.JSON(w, r, http.StatusOK, models.RouteResponse{
		Route:      routeJSON,
		Directions: result.Directions,
		Mode:       string(result.Mode),
	})
}

// FindBothRoutes handles POST /api/find-both-routes.
func (h *RouteHandler) FindBothRoutes(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeRequest(w, r)
	if !ok {
		return
	}

	start := orb.Point{req.Start[0], req.Start[1]}
	end := orb.Point{req.End[0], req.End[1]}

	result, err := h.engine.FindBothRoutes(r.Context(), start, end)
	if err != nil {
		h.writeRouteError(w, r, err)
		return
	}

	wind, err := summaryModel(result.Wind)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to encode route geometry")
		response.InternalError(w, r, "failed to encode route")
		return
	}
	short, err := summaryModel(result.Short)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to encode route geometry")
		response.InternalError(w, r, "failed to encode route")
		return
	}

	response.JSON(w, r, http.StatusOK, models.BothRoutesResponse{
		Wind:  wind,
		Short: short,
	})
}

// decodeRequest parses and validates the shared request body. On
// failure it writes the error response and returns ok=false.
func (h *RouteHandler) decodeRequest(w http.ResponseWriter, r *http.Request) (*models.RouteRequest, bool) {
	var req models.RouteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return nil, false
	}
	if errs := req.Validate(); len(errs) > 0 {
		response.BadRequest(w, r, "invalid route request", errs)
		return nil, false
	}
	return &req, true
}

// writeRouteError maps engine errors onto the response taxonomy.
func (h *RouteHandler) writeRouteError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, route.ErrNoPath):
		response.NotFound(w, r, "no route between the given points")
	case errors.Is(err, route.ErrGraphUnavailable):
		response.ServiceUnavailable(w, r, "route graph is still loading")
	default:
		response.InternalError(w, r, "route search failed")
	}
}

func summaryModel(s *route.Summary) (*models.RouteSummary, error) {
	routeJSON, err := json.Marshal(s.GeoJSON)
	if err != nil {
		return nil, err
	}
	return &models.RouteSummary{
		Route:      routeJSON,
		Directions: s.Directions,
		DistanceM:  s.DistanceM,
		TimeMin:    s.TimeMin,
		PM25Avg:    s.PM25Avg,
	}, nil
}
