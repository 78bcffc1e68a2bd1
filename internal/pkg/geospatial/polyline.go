package geospatial

import (
	"math"
	"strings"

	"github.com/dasiro/saferoute/internal/core/domain"
)

// Polyline precisions used by routing providers.
const (
	Precision5 = 1e5
	Precision6 = 1e6
)

// DecodePolyline decodes an encoded polyline into points. Each coordinate is a
// zig-zag signed varint in 5-bit groups offset by 63, delta-encoded against the
// previous point, latitude first.
func DecodePolyline(encoded string, precision float64) ([]domain.GeoPoint, error) {
	if err := checkPrecision(precision); err != nil {
		return nil, err
	}

	points := make([]domain.GeoPoint, 0, len(encoded)/4)
	var lat, lon int64
	i := 0
	for i < len(encoded) {
		dLat, next, err := decodeValue(encoded, i)
		if err != nil {
			return nil, err
		}
		if next >= len(encoded) {
			return nil, &domain.DecodeError{Offset: next, Reason: "latitude without longitude"}
		}
		dLon, next, err := decodeValue(encoded, next)
		if err != nil {
			return nil, err
		}
		i = next

		lat += dLat
		lon += dLon
		points = append(points, domain.GeoPoint{
			Lat: float64(lat) / precision,
			Lon: float64(lon) / precision,
		})
	}
	return points, nil
}

func decodeValue(encoded string, i int) (int64, int, error) {
	var result int64
	var shift uint
	for {
		if i >= len(encoded) {
			return 0, i, &domain.DecodeError{Offset: i, Reason: "truncated value"}
		}
		c := int64(encoded[i])
		if c < 63 || c > 126 {
			return 0, i, &domain.DecodeError{Offset: i, Reason: "character out of range"}
		}
		b := c - 63
		i++
		result |= (b & 0x1f) << shift
		shift += 5
		if b < 0x20 {
			break
		}
		if shift > 60 {
			return 0, i, &domain.DecodeError{Offset: i, Reason: "value overflows 64 bits"}
		}
	}
	if result&1 != 0 {
		return ^(result >> 1), i, nil
	}
	return result >> 1, i, nil
}

// EncodePolyline is the inverse of DecodePolyline and accepts the same precisions.
func EncodePolyline(points []domain.GeoPoint, precision float64) (string, error) {
	if err := checkPrecision(precision); err != nil {
		return "", err
	}

	var sb strings.Builder
	var prevLat, prevLon int64
	for _, p := range points {
		lat := int64(math.Round(p.Lat * precision))
		lon := int64(math.Round(p.Lon * precision))
		encodeValue(&sb, lat-prevLat)
		encodeValue(&sb, lon-prevLon)
		prevLat, prevLon = lat, lon
	}
	return sb.String(), nil
}

func checkPrecision(precision float64) error {
	if precision != Precision5 && precision != Precision6 {
		return &domain.DecodeError{Offset: 0, Reason: "unsupported precision"}
	}
	return nil
}

func encodeValue(sb *strings.Builder, v int64) {
	u := v << 1
	if v < 0 {
		u = ^u
	}
	for u >= 0x20 {
		sb.WriteByte(byte((0x20 | (u & 0x1f)) + 63))
		u >>= 5
	}
	sb.WriteByte(byte(u + 63))
}
