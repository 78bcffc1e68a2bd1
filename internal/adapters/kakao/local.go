package kakao

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dasiro/saferoute/internal/adapters/upstream"
	"github.com/dasiro/saferoute/internal/core/domain"
	"github.com/dasiro/saferoute/internal/core/ports"
)

// Local implements ports.Geocoder with the Kakao Local API.
type Local struct {
	baseURL string
	apiKey  string
	client  *upstream.Client
}

var _ ports.Geocoder = (*Local)(nil)

// NewLocal creates a Kakao Local geocoder.
func NewLocal(baseURL, apiKey string, timeout time.Duration) *Local {
	return &Local{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  upstream.New("kakao-local", timeout),
	}
}

type addressSearchResponse struct {
	Documents []struct {
		AddressName string `json:"address_name"`
		X           string `json:"x"`
		Y           string `json:"y"`
		Address     *struct {
			AddressName string `json:"address_name"`
		} `json:"address"`
	} `json:"documents"`
}

type coord2AddressResponse struct {
	Documents []struct {
		Address *struct {
			AddressName string `json:"address_name"`
			Region1     string `json:"region_1depth_name"`
			Region2     string `json:"region_2depth_name"`
			Region3     string `json:"region_3depth_name"`
		} `json:"address"`
		RoadAddress *struct {
			AddressName string `json:"address_name"`
		} `json:"road_address"`
	} `json:"documents"`
}

// Geocode searches addresses matching query.
func (l *Local) Geocode(ctx context.Context, query string) ([]domain.GeocodeItem, error) {
	params := url.Values{}
	params.Set("query", query)

	body, err := l.get(ctx, "/v2/local/search/address.json", params)
	if err != nil {
		return nil, err
	}

	var resp addressSearchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, l.client.Malformed(err)
	}

	items := make([]domain.GeocodeItem, 0, len(resp.Documents))
	for _, doc := range resp.Documents {
		lat, errLat := strconv.ParseFloat(doc.Y, 64)
		lon, errLon := strconv.ParseFloat(doc.X, 64)
		if errLat != nil || errLon != nil {
			continue
		}
		name := doc.AddressName
		if doc.Address != nil && doc.Address.AddressName != "" {
			name = doc.Address.AddressName
		}
		items = append(items, domain.GeocodeItem{Address: name, Lat: lat, Lon: lon})
	}
	return items, nil
}

// ReverseGeocode finds the lot-number address at p.
func (l *Local) ReverseGeocode(ctx context.Context, p domain.GeoPoint) (*domain.ReverseGeocodeResult, error) {
	params := url.Values{}
	params.Set("x", strconv.FormatFloat(p.Lon, 'f', -1, 64))
	params.Set("y", strconv.FormatFloat(p.Lat, 'f', -1, 64))

	body, err := l.get(ctx, "/v2/local/geo/coord2address.json", params)
	if err != nil {
		return nil, err
	}

	var resp coord2AddressResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, l.client.Malformed(err)
	}
	for _, doc := range resp.Documents {
		if doc.Address == nil {
			continue
		}
		return &domain.ReverseGeocodeResult{
			Address: doc.Address.AddressName,
			Sido:    doc.Address.Region1,
			Sigungu: doc.Address.Region2,
			Dong:    doc.Address.Region3,
		}, nil
	}
	return nil, &domain.NotFoundError{What: "address"}
}

func (l *Local) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	if l.apiKey == "" {
		return nil, &domain.UpstreamError{Provider: "kakao-local", Detail: "api key not configured"}
	}
	return l.client.Do(ctx, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.baseURL+path+"?"+params.Encode(), nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "KakaoAK "+l.apiKey)
		return req, nil
	})
}
