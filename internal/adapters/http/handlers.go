package http

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/dasiro/saferoute/internal/core/domain"
)

// safeRouteBody is the JSON body of POST /v1/routes/safe.
type safeRouteBody struct {
	Origin         *domain.GeoPoint `json:"origin"`
	Destination    *domain.GeoPoint `json:"destination"`
	Mode           string           `json:"mode"`
	AvoidIncidents *bool            `json:"avoid_incidents"`
	AvoidStatus    []string         `json:"avoid_status"`
	AvoidRadiusM   *int             `json:"avoid_radius_m"`
	Provider       string           `json:"provider"`
}

// toRequest applies the body defaults. A missing avoid_status keeps the
// slice nil so the service falls back to the default statuses.
func (b safeRouteBody) toRequest(defaultRadiusM int) *domain.RouteRequest {
	if defaultRadiusM <= 0 {
		defaultRadiusM = domain.DefaultAvoidRadiusM
	}
	req := &domain.RouteRequest{
		Origin:       b.Origin,
		Destination:  b.Destination,
		Mode:         domain.TravelMode(strings.ToUpper(b.Mode)),
		AvoidHazards: true,
		AvoidRadiusM: defaultRadiusM,
		Provider:     domain.ProviderPathFilter,
	}
	if b.AvoidIncidents != nil {
		req.AvoidHazards = *b.AvoidIncidents
	}
	if b.AvoidRadiusM != nil {
		req.AvoidRadiusM = *b.AvoidRadiusM
	}
	if b.Provider != "" {
		req.Provider = domain.RouteProvider(strings.ToUpper(b.Provider))
	}
	if b.AvoidStatus != nil {
		req.AvoidStatuses = make([]domain.HazardStatus, 0, len(b.AvoidStatus))
		for _, s := range b.AvoidStatus {
			req.AvoidStatuses = append(req.AvoidStatuses, domain.HazardStatus(strings.ToUpper(s)))
		}
	}
	return req
}

// SafeRouteHandler computes a route that steers clear of active hazards.
func SafeRouteHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body safeRouteBody
		if err := c.BodyParser(&body); err != nil {
			return errBadRequest(c, "invalid JSON body: "+err.Error())
		}

		result, err := deps.SafeRoutes.ComputeRoute(c.UserContext(), body.toRequest(deps.DefaultAvoidRadiusM))
		if err != nil {
			return writeDomainError(c, err)
		}

		c.Set("Cache-Control", "no-store")
		return c.JSON(fiber.Map{"routes": []*domain.RouteResult{result}})
	}
}

// GeocodeHandler resolves a free-text address to coordinates.
func GeocodeHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		query := strings.TrimSpace(c.Query("query"))
		if query == "" {
			return errBadRequest(c, "query parameter is required")
		}
		if len(query) > 200 {
			return errBadRequest(c, "query too long (max 200 characters)")
		}

		items, err := deps.Geocode.Geocode(c.UserContext(), query)
		if err != nil {
			return writeDomainError(c, err)
		}

		c.Set("Cache-Control", "public, max-age=600")
		return c.JSON(fiber.Map{"items": items})
	}
}

// ReverseGeocodeHandler resolves a coordinate to an address.
func ReverseGeocodeHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := queryPoint(c)
		if err != nil {
			return writeDomainError(c, err)
		}

		res, err := deps.Geocode.ReverseGeocode(c.UserContext(), p)
		if err != nil {
			return writeDomainError(c, err)
		}

		c.Set("Cache-Control", "public, max-age=600")
		return c.JSON(res)
	}
}

// NearbyHazardsHandler lists hazard zones within a radius of a point.
func NearbyHazardsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := queryPoint(c)
		if err != nil {
			return writeDomainError(c, err)
		}
		radius := c.QueryFloat("radius", 1000)

		var statuses []domain.HazardStatus
		if raw := c.Query("status"); raw != "" {
			for _, s := range strings.Split(raw, ",") {
				st, err := domain.ParseHazardStatus(strings.ToUpper(strings.TrimSpace(s)))
				if err != nil {
					return writeDomainError(c, err)
				}
				statuses = append(statuses, st)
			}
		}

		zones, err := deps.Hazards.Near(c.UserContext(), p, radius, statuses)
		if err != nil {
			return writeDomainError(c, err)
		}

		c.Set("Cache-Control", "public, max-age=30")
		return c.JSON(fiber.Map{"hazards": zones, "count": len(zones)})
	}
}

// NearestDistrictHandler returns the district whose centroid is closest to a point.
func NearestDistrictHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := queryPoint(c)
		if err != nil {
			return writeDomainError(c, err)
		}

		var maxDist *float64
		if raw := c.Query("max_distance"); raw != "" {
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return errBadRequest(c, "max_distance must be a number")
			}
			maxDist = &v
		}

		d, err := deps.Districts.Nearest(c.UserContext(), p, maxDist)
		if err != nil {
			return writeDomainError(c, err)
		}

		c.Set("Cache-Control", "public, max-age=300")
		return c.JSON(d)
	}
}

type matchDistrictBody struct {
	Address string   `json:"address"`
	Lat     *float64 `json:"lat"`
	Lng     *float64 `json:"lng"`
}

// MatchDistrictHandler associates an address, and optionally a coordinate, with a district.
func MatchDistrictHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body matchDistrictBody
		if err := c.BodyParser(&body); err != nil {
			return errBadRequest(c, "invalid JSON body: "+err.Error())
		}

		var p *domain.GeoPoint
		switch {
		case body.Lat != nil && body.Lng != nil:
			p = &domain.GeoPoint{Lat: *body.Lat, Lon: *body.Lng}
		case body.Lat != nil || body.Lng != nil:
			return errBadRequest(c, "lat and lng must be given together")
		}

		m, err := deps.Districts.Match(c.UserContext(), body.Address, p)
		if err != nil {
			return writeDomainError(c, err)
		}
		return c.JSON(m)
	}
}

// DistrictRiskHandler returns the latest risk grade at a coordinate.
func DistrictRiskHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := queryPoint(c)
		if err != nil {
			return writeDomainError(c, err)
		}

		risk, err := deps.Districts.RiskByCoord(c.UserContext(), p)
		if err != nil {
			return writeDomainError(c, err)
		}

		c.Set("Cache-Control", "public, max-age=300")
		return c.JSON(risk)
	}
}

// queryPoint reads the required lat/lng query parameters.
func queryPoint(c *fiber.Ctx) (domain.GeoPoint, error) {
	lat, err := strconv.ParseFloat(c.Query("lat"), 64)
	if err != nil {
		return domain.GeoPoint{}, &domain.ValidationError{Field: "lat", Reason: "required number"}
	}
	lng, err := strconv.ParseFloat(c.Query("lng"), 64)
	if err != nil {
		return domain.GeoPoint{}, &domain.ValidationError{Field: "lng", Reason: "required number"}
	}
	p := domain.GeoPoint{Lat: lat, Lon: lng}
	return p, p.Validate("point")
}
