package usecases

import (
	"github.com/dasiro/saferoute/internal/core/domain"
	"github.com/dasiro/saferoute/internal/pkg/geospatial"
)

// FilterPath drops every point lying within radiusM (inclusive) of any hazard
// centre. When nothing survives the original path is returned unchanged, so a
// route that cannot avoid a hazard is still a route.
func FilterPath(path []domain.GeoPoint, hazards []domain.HazardZone, radiusM float64) []domain.GeoPoint {
	out, _ := filterPath(path, hazards, radiusM)
	return out
}

// filterPath is FilterPath that also reports whether the fallback was taken.
func filterPath(path []domain.GeoPoint, hazards []domain.HazardZone, radiusM float64) ([]domain.GeoPoint, bool) {
	if len(hazards) == 0 || len(path) == 0 {
		return path, false
	}

	kept := make([]domain.GeoPoint, 0, len(path))
	for _, p := range path {
		if !insideAny(p, hazards, radiusM) {
			kept = append(kept, p)
		}
	}
	if len(kept) == 0 {
		return path, true
	}
	return kept, false
}

func insideAny(p domain.GeoPoint, hazards []domain.HazardZone, radiusM float64) bool {
	for _, h := range hazards {
		if geospatial.Distance(p, h.Center) <= radiusM {
			return true
		}
	}
	return false
}

// AvoidancePolygons builds one closed ring of numPoints vertices per hazard.
func AvoidancePolygons(hazards []domain.HazardZone, radiusM float64, numPoints int) domain.MultiPolygon {
	if len(hazards) == 0 {
		return nil
	}
	mp := make(domain.MultiPolygon, 0, len(hazards))
	for _, h := range hazards {
		mp = append(mp, geospatial.CircleToPolygon(h.Center, radiusM, numPoints))
	}
	return mp
}

// normalizeGeometry turns any backend geometry into points. This is the only
// place encoded polylines are decoded.
func normalizeGeometry(g domain.RouteGeometry) ([]domain.GeoPoint, error) {
	switch v := g.(type) {
	case nil:
		return []domain.GeoPoint{}, nil
	case domain.RawPoints:
		return []domain.GeoPoint(v), nil
	case domain.EncodedPolyline:
		return geospatial.DecodePolyline(v.Value, v.Precision)
	default:
		return nil, &domain.DecodeError{Reason: "unknown geometry type"}
	}
}
