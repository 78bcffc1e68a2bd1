package usecases

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dasiro/saferoute/internal/core/domain"
	"github.com/dasiro/saferoute/internal/core/ports"
	"github.com/dasiro/saferoute/internal/pkg/metrics"
)

const districtsCacheKey = "districts:all"

// DistrictService resolves coordinates and addresses to districts.
type DistrictService struct {
	districts         ports.DistrictRepository
	cache             ports.CacheService
	matchMaxDistanceM float64
}

// NewDistrictService creates a new DistrictService.
func NewDistrictService(districts ports.DistrictRepository, cache ports.CacheService, matchMaxDistanceM float64) *DistrictService {
	if matchMaxDistanceM <= 0 {
		matchMaxDistanceM = DefaultMatchMaxDistanceM
	}
	return &DistrictService{districts: districts, cache: cache, matchMaxDistanceM: matchMaxDistanceM}
}

// All returns every district, cached for 30 minutes.
func (s *DistrictService) All(ctx context.Context) ([]domain.DistrictRef, error) {
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, districtsCacheKey); err == nil {
			var districts []domain.DistrictRef
			if err := json.Unmarshal(data, &districts); err == nil {
				metrics.CacheHits.WithLabelValues("districts").Inc()
				return districts, nil
			}
		}
		metrics.CacheMisses.WithLabelValues("districts").Inc()
	}

	districts, err := s.districts.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("load districts: %w", err)
	}

	if s.cache != nil {
		if data, err := json.Marshal(districts); err == nil {
			_ = s.cache.Set(ctx, districtsCacheKey, data, 1800)
		}
	}
	return districts, nil
}

// Nearest returns the district closest to p, optionally bounded.
func (s *DistrictService) Nearest(ctx context.Context, p domain.GeoPoint, maxDistanceM *float64) (*domain.DistrictRef, error) {
	if err := p.Validate("point"); err != nil {
		return nil, err
	}
	if maxDistanceM != nil && *maxDistanceM <= 0 {
		return nil, &domain.ValidationError{Field: "max_distance", Reason: "must be positive"}
	}
	districts, err := s.All(ctx)
	if err != nil {
		return nil, err
	}
	d, ok := Nearest(p, districts, maxDistanceM)
	if !ok {
		return nil, &domain.NotFoundError{What: "district"}
	}
	return &d, nil
}

// DistrictMatch is the outcome of Match.
type DistrictMatch struct {
	District domain.DistrictRef `json:"district"`
	Kind     MatchKind          `json:"match"`
}

// Match associates a free-text address and optional coordinate with a district.
func (s *DistrictService) Match(ctx context.Context, address string, p *domain.GeoPoint) (*DistrictMatch, error) {
	if address == "" && p == nil {
		return nil, &domain.ValidationError{Field: "address", Reason: "address or coordinate required"}
	}
	if p != nil {
		if err := p.Validate("point"); err != nil {
			return nil, err
		}
	}
	districts, err := s.All(ctx)
	if err != nil {
		return nil, err
	}
	d, kind, ok := MatchByTextThenSpace(address, p, districts, s.matchMaxDistanceM)
	if !ok {
		return nil, &domain.NotFoundError{What: "district"}
	}
	return &DistrictMatch{District: d, Kind: kind}, nil
}

// RiskByCoord returns the latest risk grade of the district nearest to p.
func (s *DistrictService) RiskByCoord(ctx context.Context, p domain.GeoPoint) (*domain.DistrictRisk, error) {
	d, err := s.Nearest(ctx, p, nil)
	if err != nil {
		return nil, err
	}
	m, err := s.districts.LatestMetric(ctx, d.ID)
	if err != nil {
		return nil, err
	}
	return &domain.DistrictRisk{
		District:   *d,
		TotalGrade: m.TotalGrade,
		Danger:     m.TotalGrade.Dangerous(),
		AsOfDate:   m.AsOfDate,
	}, nil
}
