package ports

import (
	"context"

	"github.com/dasiro/saferoute/internal/core/domain"
)

// HazardRepository reads hazard zones.
type HazardRepository interface {
	// ListActive returns every zone whose status is in statuses.
	ListActive(ctx context.Context, statuses []domain.HazardStatus) ([]domain.HazardZone, error)
	// FindNearby returns zones within radiusMeters of center, nearest first.
	FindNearby(ctx context.Context, center domain.GeoPoint, radiusMeters float64, statuses []domain.HazardStatus) ([]domain.HazardZone, error)
}

// DistrictRepository reads districts and their risk metrics.
type DistrictRepository interface {
	All(ctx context.Context) ([]domain.DistrictRef, error)
	LatestMetric(ctx context.Context, districtID int64) (*domain.DistrictMetric, error)
}

// RouteLogWriter appends route audit entries. Entries are never updated.
type RouteLogWriter interface {
	Append(ctx context.Context, entry *domain.RouteLogEntry) error
}
