package usecases

import (
	"context"
	"fmt"

	"github.com/dasiro/saferoute/internal/core/domain"
	"github.com/dasiro/saferoute/internal/core/ports"
)

// MaxHazardSearchRadiusM caps HazardService.Near.
const MaxHazardSearchRadiusM = 10000

// HazardService answers hazard lookups around a point.
type HazardService struct {
	hazards ports.HazardRepository
}

// NewHazardService creates a new HazardService.
func NewHazardService(hazards ports.HazardRepository) *HazardService {
	return &HazardService{hazards: hazards}
}

// Near returns hazards within radiusM of p, nearest first. A nil statuses
// means the default avoided statuses.
func (s *HazardService) Near(ctx context.Context, p domain.GeoPoint, radiusM float64, statuses []domain.HazardStatus) ([]domain.HazardZone, error) {
	if err := p.Validate("point"); err != nil {
		return nil, err
	}
	if radiusM <= 0 || radiusM > MaxHazardSearchRadiusM {
		return nil, &domain.ValidationError{Field: "radius", Reason: fmt.Sprintf("must be in (0, %d]", MaxHazardSearchRadiusM)}
	}
	if statuses == nil {
		statuses = domain.DefaultAvoidStatuses
	}
	for _, st := range statuses {
		if _, err := domain.ParseHazardStatus(string(st)); err != nil {
			return nil, err
		}
	}

	zones, err := s.hazards.FindNearby(ctx, p, radiusM, statuses)
	if err != nil {
		return nil, domain.NewUpstreamError(hazardProvider, err)
	}
	if zones == nil {
		zones = []domain.HazardZone{}
	}
	return zones, nil
}
