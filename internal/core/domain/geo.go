package domain

import (
	"fmt"
	"math"
)

// GeoPoint represents a geographic coordinate (WGS 84).
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lng"`
}

// Validate reports whether the point lies inside the WGS 84 coordinate range.
// field names the request field for the returned ValidationError.
func (p GeoPoint) Validate(field string) error {
	if math.IsNaN(p.Lat) || math.IsInf(p.Lat, 0) || p.Lat < -90 || p.Lat > 90 {
		return &ValidationError{Field: field, Reason: fmt.Sprintf("latitude %v out of range [-90, 90]", p.Lat)}
	}
	if math.IsNaN(p.Lon) || math.IsInf(p.Lon, 0) || p.Lon < -180 || p.Lon > 180 {
		return &ValidationError{Field: field, Reason: fmt.Sprintf("longitude %v out of range [-180, 180]", p.Lon)}
	}
	return nil
}

// Polygon is a closed ring: the first and last vertex are equal.
type Polygon []GeoPoint

// MultiPolygon groups the exclusion rings submitted to polygon-avoid providers.
type MultiPolygon []Polygon

// Bounds represents a geographic bounding box.
type Bounds struct {
	MinLat float64 `json:"min_lat"`
	MinLon float64 `json:"min_lng"`
	MaxLat float64 `json:"max_lat"`
	MaxLon float64 `json:"max_lng"`
}
