package geospatial

import (
	"math"

	"github.com/dasiro/saferoute/internal/core/domain"
)

// DefaultCirclePoints is the vertex count used when fewer than 3 are requested.
const DefaultCirclePoints = 16

// CircleToPolygon approximates a circle of radiusM meters around center with
// numPoints vertices on the geodesic. The ring is closed: the returned slice
// has numPoints+1 entries and the last equals the first.
func CircleToPolygon(center domain.GeoPoint, radiusM float64, numPoints int) domain.Polygon {
	if numPoints < 3 {
		numPoints = DefaultCirclePoints
	}

	lat1 := toRad(center.Lat)
	lon1 := toRad(center.Lon)
	d := radiusM / earthRadiusM

	ring := make(domain.Polygon, 0, numPoints+1)
	for i := 0; i < numPoints; i++ {
		bearing := 2 * math.Pi * float64(i) / float64(numPoints)

		lat2 := math.Asin(math.Sin(lat1)*math.Cos(d) + math.Cos(lat1)*math.Sin(d)*math.Cos(bearing))
		lon2 := lon1 + math.Atan2(
			math.Sin(bearing)*math.Sin(d)*math.Cos(lat1),
			math.Cos(d)-math.Sin(lat1)*math.Sin(lat2),
		)

		ring = append(ring, domain.GeoPoint{Lat: toDeg(lat2), Lon: normalizeLon(toDeg(lon2))})
	}
	ring = append(ring, ring[0])
	return ring
}

func normalizeLon(lon float64) float64 {
	for lon > 180 {
		lon -= 360
	}
	for lon < -180 {
		lon += 360
	}
	return lon
}
