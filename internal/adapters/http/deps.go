package http

import (
	"github.com/nats-io/nats.go"

	"github.com/dasiro/saferoute/internal/adapters/postgres"
	"github.com/dasiro/saferoute/internal/adapters/valkey"
	"github.com/dasiro/saferoute/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers.
// The infrastructure handles are optional and only consulted by the
// readiness probe and the WebSocket relay.
type Dependencies struct {
	SafeRoutes *usecases.SafeRouteService
	Hazards    *usecases.HazardService
	Districts  *usecases.DistrictService
	Geocode    *usecases.GeocodeService

	// DefaultAvoidRadiusM applies when a route request names no radius.
	DefaultAvoidRadiusM int

	NATS  *nats.Conn
	DB    *postgres.DB
	Cache *valkey.Cache
}
