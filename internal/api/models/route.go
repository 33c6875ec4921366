package models

import "encoding/json"

// RouteRequest is the body of the route-finding endpoints. Coordinates
// are [lon, lat] pairs, matching the GeoJSON axis order used in
// responses.
type RouteRequest struct {
	Start []float64 `json:"start"`
	End   []float64 `json:"end"`
	Mode  string    `json:"mode,omitempty"`
}

// Validate returns field errors for missing or malformed coordinates.
func (r *RouteRequest) Validate() []FieldError {
	var errs []FieldError
	if len(r.Start) != 2 {
		errs = append(errs, FieldError{
			Field:   "start",
			Message: "must be a [lon, lat] pair",
			Code:    "invalid_coordinates",
		})
	}
	if len(r.End) != 2 {
		errs = append(errs, FieldError{
			Field:   "end",
			Message: "must be a [lon, lat] pair",
			Code:    "invalid_coordinates",
		})
	}
	return errs
}

// RouteResponse is a single-mode route answer.
type RouteResponse struct {
	Route      json.RawMessage `json:"route"`
	Directions []string        `json:"directions"`
	Mode       string          `json:"mode"`
}

// RouteSummary is one mode's aggregate in the comparison response.
type RouteSummary struct {
	Route      json.RawMessage `json:"route"`
	Directions []string        `json:"directions"`
	DistanceM  float64         `json:"distance_m"`
	TimeMin    float64         `json:"time_min"`
	PM25Avg    float64         `json:"pm25_avg"`
}

// BothRoutesResponse compares the two cost modes over the same graph
// generation.
type BothRoutesResponse struct {
	Wind  *RouteSummary `json:"wind"`
	Short *RouteSummary `json:"short"`
}
