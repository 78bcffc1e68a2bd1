package postgres

import (
	"context"
	"sort"

	"github.com/jackc/pgx/v5"

	"github.com/dasiro/saferoute/internal/core/domain"
	"github.com/dasiro/saferoute/internal/pkg/geospatial"
)

// HazardRepo implements ports.HazardRepository with pgx.
type HazardRepo struct {
	db *DB
}

// NewHazardRepo creates a new HazardRepo.
func NewHazardRepo(db *DB) *HazardRepo {
	return &HazardRepo{db: db}
}

const hazardColumns = `id::text, lat, lng, status, radius_m, COALESCE(address, ''), district_id, occurred_at`

// ListActive returns every zone whose status is in statuses.
func (r *HazardRepo) ListActive(ctx context.Context, statuses []domain.HazardStatus) ([]domain.HazardZone, error) {
	if len(statuses) == 0 {
		return nil, nil
	}
	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+hazardColumns+`
		FROM hazard_zones
		WHERE status = ANY($1)
		ORDER BY occurred_at DESC
	`, statusStrings(statuses))
	if err != nil {
		return nil, err
	}
	return collectHazards(rows)
}

// FindNearby returns zones within radiusMeters of center, nearest first. The
// bounding box narrows the scan on the (lat, lng) index; the exact great-circle
// test runs afterwards.
func (r *HazardRepo) FindNearby(ctx context.Context, center domain.GeoPoint, radiusMeters float64, statuses []domain.HazardStatus) ([]domain.HazardZone, error) {
	if len(statuses) == 0 {
		return nil, nil
	}
	box := geospatial.BoundingBox(center, radiusMeters)

	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+hazardColumns+`
		FROM hazard_zones
		WHERE lat BETWEEN $1 AND $2
		  AND lng BETWEEN $3 AND $4
		  AND status = ANY($5)
	`, box.MinLat, box.MaxLat, box.MinLon, box.MaxLon, statusStrings(statuses))
	if err != nil {
		return nil, err
	}
	candidates, err := collectHazards(rows)
	if err != nil {
		return nil, err
	}

	zones := candidates[:0]
	for _, z := range candidates {
		d := geospatial.Distance(center, z.Center)
		if d <= radiusMeters {
			z.Distance = &d
			zones = append(zones, z)
		}
	}
	sort.SliceStable(zones, func(i, j int) bool { return *zones[i].Distance < *zones[j].Distance })
	return zones, nil
}

func collectHazards(rows pgx.Rows) ([]domain.HazardZone, error) {
	defer rows.Close()

	var zones []domain.HazardZone
	for rows.Next() {
		var z domain.HazardZone
		var status string
		if err := rows.Scan(
			&z.ID, &z.Center.Lat, &z.Center.Lon, &status, &z.RadiusM, &z.Address, &z.DistrictID, &z.OccurredAt,
		); err != nil {
			return nil, err
		}
		z.Status = domain.HazardStatus(status)
		zones = append(zones, z)
	}
	return zones, rows.Err()
}

func statusStrings(statuses []domain.HazardStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}
