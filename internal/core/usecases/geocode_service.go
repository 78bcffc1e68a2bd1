package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dasiro/saferoute/internal/core/domain"
	"github.com/dasiro/saferoute/internal/core/ports"
	"github.com/dasiro/saferoute/internal/pkg/metrics"
)

// GeocodeService proxies address lookups with a read-through cache.
type GeocodeService struct {
	geocoder ports.Geocoder
	cache    ports.CacheService
}

// NewGeocodeService creates a new GeocodeService.
func NewGeocodeService(geocoder ports.Geocoder, cache ports.CacheService) *GeocodeService {
	return &GeocodeService{geocoder: geocoder, cache: cache}
}

// Geocode returns address candidates for query.
func (s *GeocodeService) Geocode(ctx context.Context, query string) ([]domain.GeocodeItem, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, &domain.ValidationError{Field: "query", Reason: "required"}
	}

	cacheKey := "geocode:" + query
	var items []domain.GeocodeItem
	if s.cached(ctx, cacheKey, "geocode", &items) {
		return items, nil
	}

	items, err := s.geocoder.Geocode(ctx, query)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []domain.GeocodeItem{}
	}

	s.store(ctx, cacheKey, items)
	return items, nil
}

// ReverseGeocode returns the address at p.
func (s *GeocodeService) ReverseGeocode(ctx context.Context, p domain.GeoPoint) (*domain.ReverseGeocodeResult, error) {
	if err := p.Validate("point"); err != nil {
		return nil, err
	}

	cacheKey := fmt.Sprintf("revgeo:%.5f:%.5f", p.Lat, p.Lon)
	var res domain.ReverseGeocodeResult
	if s.cached(ctx, cacheKey, "reverse_geocode", &res) {
		return &res, nil
	}

	out, err := s.geocoder.ReverseGeocode(ctx, p)
	if err != nil {
		return nil, err
	}

	s.store(ctx, cacheKey, out)
	return out, nil
}

func (s *GeocodeService) cached(ctx context.Context, key, op string, dst any) bool {
	if s.cache == nil {
		return false
	}
	if data, err := s.cache.Get(ctx, key); err == nil {
		if err := json.Unmarshal(data, dst); err == nil {
			metrics.CacheHits.WithLabelValues(op).Inc()
			return true
		}
	}
	metrics.CacheMisses.WithLabelValues(op).Inc()
	return false
}

// store caches v for 10 minutes.
func (s *GeocodeService) store(ctx context.Context, key string, v any) {
	if s.cache == nil {
		return
	}
	if data, err := json.Marshal(v); err == nil {
		_ = s.cache.Set(ctx, key, data, 600)
	}
}
