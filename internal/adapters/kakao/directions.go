package kakao

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dasiro/saferoute/internal/adapters/upstream"
	"github.com/dasiro/saferoute/internal/core/domain"
	"github.com/dasiro/saferoute/internal/core/ports"
)

// resultTooClose is returned when origin and destination are within 5 m.
const resultTooClose = 104

// Directions implements ports.RoutingBackend with the Kakao Mobility car
// directions API. Kakao has no pedestrian profile, so WALK requests are
// served with the car route geometry.
type Directions struct {
	baseURL string
	apiKey  string
	client  *upstream.Client
}

var _ ports.RoutingBackend = (*Directions)(nil)

// NewDirections creates a Kakao directions backend.
func NewDirections(baseURL, apiKey string, timeout time.Duration) *Directions {
	return &Directions{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  upstream.New("kakao", timeout),
	}
}

func (d *Directions) Name() string { return "kakao" }

func (d *Directions) Avoidance() domain.AvoidanceStrategy { return domain.AvoidPostHoc }

type directionsResponse struct {
	Routes []struct {
		ResultCode int    `json:"result_code"`
		ResultMsg  string `json:"result_msg"`
		Summary    struct {
			Distance int `json:"distance"`
			Duration int `json:"duration"`
		} `json:"summary"`
		Sections []struct {
			Roads []struct {
				Vertexes []float64 `json:"vertexes"`
			} `json:"roads"`
		} `json:"sections"`
	} `json:"routes"`
}

// Route requests car directions. Kakao coordinates are "lng,lat".
func (d *Directions) Route(ctx context.Context, q ports.BackendQuery) (*ports.BackendRoute, error) {
	if d.apiKey == "" {
		return nil, &domain.UpstreamError{Provider: d.Name(), Detail: "api key not configured"}
	}

	body, err := d.client.Do(ctx, func(ctx context.Context) (*http.Request, error) {
		params := url.Values{}
		params.Set("origin", lngLat(q.Origin))
		params.Set("destination", lngLat(q.Destination))
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.baseURL+"/v1/directions?"+params.Encode(), nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "KakaoAK "+d.apiKey)
		return req, nil
	})
	if err != nil {
		return nil, err
	}

	var resp directionsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, d.client.Malformed(err)
	}
	if len(resp.Routes) == 0 {
		return nil, &domain.UpstreamError{Provider: d.Name(), Detail: "empty routes"}
	}

	route := resp.Routes[0]
	switch route.ResultCode {
	case 0:
	case resultTooClose:
		// Degenerate route between the two requested endpoints.
		return &ports.BackendRoute{
			Geometry:    domain.RawPoints{q.Origin, q.Destination},
			RawResponse: body,
		}, nil
	default:
		return nil, &domain.NotFoundError{What: fmt.Sprintf("route geometry (kakao result %d: %s)", route.ResultCode, route.ResultMsg)}
	}

	var path domain.RawPoints
	for _, section := range route.Sections {
		for _, road := range section.Roads {
			v := road.Vertexes
			for i := 0; i+1 < len(v); i += 2 {
				path = append(path, domain.GeoPoint{Lat: v[i+1], Lon: v[i]})
			}
		}
	}

	return &ports.BackendRoute{
		DurationSec: route.Summary.Duration,
		DistanceM:   route.Summary.Distance,
		Geometry:    path,
		RawResponse: body,
	}, nil
}

func lngLat(p domain.GeoPoint) string {
	return strconv.FormatFloat(p.Lon, 'f', -1, 64) + "," + strconv.FormatFloat(p.Lat, 'f', -1, 64)
}
