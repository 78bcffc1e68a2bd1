package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// TravelMode is how the traveller moves along the route.
type TravelMode string

const (
	ModeWalk TravelMode = "WALK"
	ModeCar  TravelMode = "CAR"
)

// RouteProvider selects the upstream backend family.
type RouteProvider string

const (
	// ProviderPathFilter backends return a plain path; hazards are removed afterwards.
	ProviderPathFilter RouteProvider = "PATH_FILTER"
	// ProviderPolygonAvoid backends accept exclusion polygons in the request.
	ProviderPolygonAvoid RouteProvider = "POLYGON_AVOID"
)

// AvoidanceStrategy says when hazard avoidance is applied for a backend.
type AvoidanceStrategy int

const (
	// AvoidPostHoc filters the returned path points.
	AvoidPostHoc AvoidanceStrategy = iota
	// AvoidPreRequest sends exclusion polygons with the upstream request.
	AvoidPreRequest
)

// DefaultAvoidRadiusM is the avoidance radius used when a request names none.
const DefaultAvoidRadiusM = 200

// RouteRequest asks for a route between two points.
type RouteRequest struct {
	Origin        *GeoPoint      `json:"origin"`
	Destination   *GeoPoint      `json:"destination"`
	Mode          TravelMode     `json:"mode"`
	AvoidHazards  bool           `json:"avoid_hazards"`
	AvoidStatuses []HazardStatus `json:"avoid_statuses,omitempty"`
	AvoidRadiusM  int            `json:"avoid_radius_m"`
	Provider      RouteProvider  `json:"provider"`
}

// Validate checks the request before any upstream call is made.
func (r *RouteRequest) Validate() error {
	if r.Origin == nil {
		return &ValidationError{Field: "origin", Reason: "required"}
	}
	if err := r.Origin.Validate("origin"); err != nil {
		return err
	}
	if r.Destination == nil {
		return &ValidationError{Field: "destination", Reason: "required"}
	}
	if err := r.Destination.Validate("destination"); err != nil {
		return err
	}
	switch r.Mode {
	case ModeWalk, ModeCar:
	default:
		return &ValidationError{Field: "mode", Reason: fmt.Sprintf("%q is not one of WALK, CAR", r.Mode)}
	}
	switch r.Provider {
	case ProviderPathFilter, ProviderPolygonAvoid:
	default:
		return &ValidationError{Field: "provider", Reason: fmt.Sprintf("%q is not one of PATH_FILTER, POLYGON_AVOID", r.Provider)}
	}
	if r.AvoidHazards {
		if r.AvoidRadiusM <= 0 {
			return &ValidationError{Field: "avoid_radius_m", Reason: "must be a positive integer"}
		}
		for _, s := range r.AvoidStatuses {
			if _, err := ParseHazardStatus(string(s)); err != nil {
				return &ValidationError{Field: "avoid_status", Reason: err.(*ValidationError).Reason}
			}
		}
	}
	return nil
}

// RouteResult is the normalized route returned to the caller.
type RouteResult struct {
	Mode        TravelMode `json:"mode"`
	DurationSec int        `json:"duration_sec"`
	DistanceM   int        `json:"distance_m"`
	Polyline    []GeoPoint `json:"polyline"`
}

// RouteGeometry is the path shape returned by a backend: either RawPoints
// or EncodedPolyline. It is decoded exactly once, at the gateway boundary.
type RouteGeometry interface {
	isRouteGeometry()
}

// RawPoints is a geometry the backend already returned as coordinates.
type RawPoints []GeoPoint

// EncodedPolyline is a geometry in the signed-varint polyline format.
type EncodedPolyline struct {
	Value     string
	Precision float64
}

func (RawPoints) isRouteGeometry()       {}
func (EncodedPolyline) isRouteGeometry() {}

// RouteLogEntry is the write-once audit record of one computed route.
type RouteLogEntry struct {
	ID          string          `json:"id"`
	Request     RouteRequest    `json:"request"`
	Result      RouteResult     `json:"result"`
	Provider    string          `json:"provider"`
	RawResponse json.RawMessage `json:"raw_response,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}
