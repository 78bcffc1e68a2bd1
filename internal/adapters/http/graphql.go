package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/dasiro/saferoute/internal/core/domain"
)

// buildSchema creates the GraphQL schema wired to our services.
// Object fields resolve through the json tags of the domain structs.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	geoPointType := graphql.NewObject(graphql.ObjectConfig{
		Name: "GeoPoint",
		Fields: graphql.Fields{
			"lat": &graphql.Field{Type: graphql.Float},
			"lng": &graphql.Field{Type: graphql.Float},
		},
	})

	geoPointInput := graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "GeoPointInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"lat": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.Float)},
			"lng": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.Float)},
		},
	})

	routeType := graphql.NewObject(graphql.ObjectConfig{
		Name: "SafeRoute",
		Fields: graphql.Fields{
			"mode":         &graphql.Field{Type: graphql.String},
			"duration_sec": &graphql.Field{Type: graphql.Int},
			"distance_m":   &graphql.Field{Type: graphql.Int},
			"polyline":     &graphql.Field{Type: graphql.NewList(geoPointType)},
		},
	})

	districtType := graphql.NewObject(graphql.ObjectConfig{
		Name: "District",
		Fields: graphql.Fields{
			"id":          &graphql.Field{Type: graphql.Int},
			"sido":        &graphql.Field{Type: graphql.String},
			"sigungu":     &graphql.Field{Type: graphql.String},
			"dong":        &graphql.Field{Type: graphql.String},
			"centroid":    &graphql.Field{Type: geoPointType},
			"is_safezone": &graphql.Field{Type: graphql.Boolean},
		},
	})

	hazardType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Hazard",
		Fields: graphql.Fields{
			"id":          &graphql.Field{Type: graphql.String},
			"center":      &graphql.Field{Type: geoPointType},
			"status":      &graphql.Field{Type: graphql.String},
			"radius_m":    &graphql.Field{Type: graphql.Int},
			"address":     &graphql.Field{Type: graphql.String},
			"occurred_at": &graphql.Field{Type: graphql.DateTime},
			"distance_m":  &graphql.Field{Type: graphql.Float},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"safeRoute": &graphql.Field{
				Type:        routeType,
				Description: "Compute a route that avoids active hazard zones",
				Args: graphql.FieldConfigArgument{
					"origin":      &graphql.ArgumentConfig{Type: graphql.NewNonNull(geoPointInput)},
					"destination": &graphql.ArgumentConfig{Type: graphql.NewNonNull(geoPointInput)},
					"mode":        &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: string(domain.ModeWalk)},
					"avoid":       &graphql.ArgumentConfig{Type: graphql.Boolean, DefaultValue: true},
					"radius":      &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: domain.DefaultAvoidRadiusM},
					"provider":    &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: string(domain.ProviderPathFilter)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					origin := pointArg(p.Args["origin"])
					dest := pointArg(p.Args["destination"])
					return deps.SafeRoutes.ComputeRoute(p.Context, &domain.RouteRequest{
						Origin:       &origin,
						Destination:  &dest,
						Mode:         domain.TravelMode(strings.ToUpper(p.Args["mode"].(string))),
						AvoidHazards: p.Args["avoid"].(bool),
						AvoidRadiusM: p.Args["radius"].(int),
						Provider:     domain.RouteProvider(strings.ToUpper(p.Args["provider"].(string))),
					})
				},
			},
			"nearestDistrict": &graphql.Field{
				Type:        districtType,
				Description: "District whose centroid is closest to a point",
				Args: graphql.FieldConfigArgument{
					"lat":          &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"lng":          &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"max_distance": &graphql.ArgumentConfig{Type: graphql.Float},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					pt := domain.GeoPoint{Lat: p.Args["lat"].(float64), Lon: p.Args["lng"].(float64)}
					var maxDist *float64
					if v, ok := p.Args["max_distance"].(float64); ok {
						maxDist = &v
					}
					return deps.Districts.Nearest(p.Context, pt, maxDist)
				},
			},
			"hazardsNear": &graphql.Field{
				Type:        graphql.NewList(hazardType),
				Description: "Hazard zones within a radius of a point, nearest first",
				Args: graphql.FieldConfigArgument{
					"lat":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"lng":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"radius": &graphql.ArgumentConfig{Type: graphql.Float, DefaultValue: 1000.0},
					"status": &graphql.ArgumentConfig{Type: graphql.NewList(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					pt := domain.GeoPoint{Lat: p.Args["lat"].(float64), Lon: p.Args["lng"].(float64)}
					var statuses []domain.HazardStatus
					if raw, ok := p.Args["status"].([]interface{}); ok {
						for _, s := range raw {
							str, _ := s.(string)
							statuses = append(statuses, domain.HazardStatus(strings.ToUpper(str)))
						}
					}
					return deps.Hazards.Near(p.Context, pt, p.Args["radius"].(float64), statuses)
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
}

func pointArg(v interface{}) domain.GeoPoint {
	m, _ := v.(map[string]interface{})
	lat, _ := m["lat"].(float64)
	lng, _ := m["lng"].(float64)
	return domain.GeoPoint{Lat: lat, Lon: lng}
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// This would be a programming error in the schema definition
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil || req.Query == "" {
			return errBadRequest(c, "invalid GraphQL request body")
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.UserContext(),
		})

		return c.JSON(result)
	}
}
