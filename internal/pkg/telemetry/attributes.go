package telemetry

import "go.opentelemetry.io/otel/attribute"

// Span attribute keys used across the routing pipeline.
const (
	AttrProvider     = attribute.Key("saferoute.provider")
	AttrBackend      = attribute.Key("saferoute.backend")
	AttrMode         = attribute.Key("saferoute.mode")
	AttrAvoidHazards = attribute.Key("saferoute.avoid_hazards")
	AttrHazardCount  = attribute.Key("saferoute.hazard_count")
	AttrPathPoints   = attribute.Key("saferoute.path_points")
	AttrKeptPoints   = attribute.Key("saferoute.kept_points")
	AttrFallback     = attribute.Key("saferoute.filter_fallback")
)
