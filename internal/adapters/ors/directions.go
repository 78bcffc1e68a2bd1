package ors

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/dasiro/saferoute/internal/adapters/upstream"
	"github.com/dasiro/saferoute/internal/core/domain"
	"github.com/dasiro/saferoute/internal/core/ports"
	"github.com/dasiro/saferoute/internal/pkg/geospatial"
)

// Directions implements ports.RoutingBackend with the openrouteservice
// directions API, which accepts avoid_polygons in the request body.
type Directions struct {
	baseURL string
	apiKey  string
	client  *upstream.Client
}

var _ ports.RoutingBackend = (*Directions)(nil)

// NewDirections creates an openrouteservice backend.
func NewDirections(baseURL, apiKey string, timeout time.Duration) *Directions {
	return &Directions{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  upstream.New("ors", timeout),
	}
}

func (d *Directions) Name() string { return "ors" }

func (d *Directions) Avoidance() domain.AvoidanceStrategy { return domain.AvoidPreRequest }

// Profile maps a travel mode to an openrouteservice profile.
func Profile(mode domain.TravelMode) string {
	if mode == domain.ModeWalk {
		return "foot-walking"
	}
	return "driving-car"
}

type directionsRequest struct {
	Coordinates [][2]float64 `json:"coordinates"`
	Options     *options     `json:"options,omitempty"`
}

type options struct {
	AvoidPolygons *multiPolygon `json:"avoid_polygons,omitempty"`
}

type multiPolygon struct {
	Type        string           `json:"type"`
	Coordinates [][][][2]float64 `json:"coordinates"`
}

// toGeoJSON converts rings to GeoJSON [lon, lat] order.
func toGeoJSON(mp domain.MultiPolygon) *multiPolygon {
	out := &multiPolygon{Type: "MultiPolygon", Coordinates: make([][][][2]float64, 0, len(mp))}
	for _, ring := range mp {
		coords := make([][2]float64, len(ring))
		for i, p := range ring {
			coords[i] = [2]float64{p.Lon, p.Lat}
		}
		out.Coordinates = append(out.Coordinates, [][][2]float64{coords})
	}
	return out
}

// Route posts the query with its avoidance polygons.
func (d *Directions) Route(ctx context.Context, q ports.BackendQuery) (*ports.BackendRoute, error) {
	if d.apiKey == "" {
		return nil, &domain.UpstreamError{Provider: d.Name(), Detail: "api key not configured"}
	}

	reqBody := directionsRequest{
		Coordinates: [][2]float64{
			{q.Origin.Lon, q.Origin.Lat},
			{q.Destination.Lon, q.Destination.Lat},
		},
	}
	if len(q.Avoid) > 0 {
		reqBody.Options = &options{AvoidPolygons: toGeoJSON(q.Avoid)}
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal ors request: %w", err)
	}

	endpoint := d.baseURL + "/v2/directions/" + Profile(q.Mode)
	body, err := d.client.Do(ctx, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", d.apiKey)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")
		return req, nil
	})
	if err != nil {
		return nil, err
	}

	if !gjson.ValidBytes(body) {
		return nil, d.client.Malformed(errors.New("invalid JSON"))
	}
	routes := gjson.GetBytes(body, "routes")
	if !routes.IsArray() || len(routes.Array()) == 0 {
		return nil, &domain.UpstreamError{Provider: d.Name(), Detail: "empty routes"}
	}
	route := routes.Array()[0]

	geometry, err := parseGeometry(route.Get("geometry"))
	if err != nil {
		return nil, err
	}

	return &ports.BackendRoute{
		DurationSec: int(route.Get("summary.duration").Float() + 0.5),
		DistanceM:   int(route.Get("summary.distance").Float() + 0.5),
		Geometry:    geometry,
		RawResponse: body,
	}, nil
}

// parseGeometry distinguishes the three shapes openrouteservice may return:
// an encoded polyline string, a bare [lon, lat] list, or a GeoJSON LineString.
func parseGeometry(g gjson.Result) (domain.RouteGeometry, error) {
	switch {
	case !g.Exists() || g.Type == gjson.Null:
		return nil, &domain.NotFoundError{What: "route geometry"}
	case g.Type == gjson.String:
		return domain.EncodedPolyline{Value: g.String(), Precision: geospatial.Precision5}, nil
	case g.IsArray():
		return coordinates(g)
	case g.IsObject():
		c := g.Get("coordinates")
		if !c.IsArray() {
			return nil, &domain.UpstreamError{Provider: "ors", Detail: "geometry object without coordinates"}
		}
		return coordinates(c)
	}
	return nil, &domain.UpstreamError{Provider: "ors", Detail: "unrecognised geometry shape"}
}

func coordinates(list gjson.Result) (domain.RawPoints, error) {
	var points domain.RawPoints
	for i, c := range list.Array() {
		pair := c.Array()
		if len(pair) < 2 {
			return nil, &domain.UpstreamError{Provider: "ors", Detail: fmt.Sprintf("coordinate %d has %d values", i, len(pair))}
		}
		points = append(points, domain.GeoPoint{Lat: pair[1].Float(), Lon: pair[0].Float()})
	}
	return points, nil
}
