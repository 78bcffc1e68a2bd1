package ports

import (
	"context"
	"encoding/json"

	"github.com/dasiro/saferoute/internal/core/domain"
)

// BackendQuery is the provider-independent input to a routing backend.
type BackendQuery struct {
	Origin      domain.GeoPoint
	Destination domain.GeoPoint
	Mode        domain.TravelMode
	// Avoid is only set for AvoidPreRequest backends.
	Avoid domain.MultiPolygon
}

// BackendRoute is what a backend returned before geometry decoding.
type BackendRoute struct {
	DurationSec int
	DistanceM   int
	Geometry    domain.RouteGeometry
	RawResponse json.RawMessage
}

// RoutingBackend is one upstream directions provider.
type RoutingBackend interface {
	Name() string
	Avoidance() domain.AvoidanceStrategy
	Route(ctx context.Context, q BackendQuery) (*BackendRoute, error)
}

// Geocoder resolves addresses to coordinates and back.
type Geocoder interface {
	Geocode(ctx context.Context, query string) ([]domain.GeocodeItem, error)
	ReverseGeocode(ctx context.Context, p domain.GeoPoint) (*domain.ReverseGeocodeResult, error)
}

// RouteLogSubscriber consumes audit entries published by a broker-backed RouteLogWriter.
type RouteLogSubscriber interface {
	SubscribeRouteLogs(ctx context.Context, handler func(ctx context.Context, entry *domain.RouteLogEntry) error) error
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}
