package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/dasiro/saferoute/internal/core/domain"
)

// DistrictRepo implements ports.DistrictRepository with pgx.
type DistrictRepo struct {
	db *DB
}

// NewDistrictRepo creates a new DistrictRepo.
func NewDistrictRepo(db *DB) *DistrictRepo {
	return &DistrictRepo{db: db}
}

// All returns every district ordered by id, the order the matcher breaks ties in.
func (r *DistrictRepo) All(ctx context.Context) ([]domain.DistrictRef, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, sido, sigungu, dong, center_lat, center_lng, is_safezone
		FROM districts
		ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var districts []domain.DistrictRef
	for rows.Next() {
		var d domain.DistrictRef
		if err := rows.Scan(
			&d.ID, &d.Sido, &d.Sigungu, &d.Dong,
			&d.Centroid.Lat, &d.Centroid.Lon, &d.IsSafezone,
		); err != nil {
			return nil, err
		}
		districts = append(districts, d)
	}
	return districts, rows.Err()
}

// LatestMetric returns the most recent metric for a district.
func (r *DistrictRepo) LatestMetric(ctx context.Context, districtID int64) (*domain.DistrictMetric, error) {
	var m domain.DistrictMetric
	var total, stability, groundwater, density, oldBuilding string
	err := r.db.Pool.QueryRow(ctx, `
		SELECT district_id, as_of_date, total_grade,
		       ground_stability, groundwater_impact, underground_density, old_building_dist,
		       COALESCE(analysis_text, '')
		FROM district_metrics
		WHERE district_id = $1
		ORDER BY as_of_date DESC
		LIMIT 1
	`, districtID).Scan(
		&m.DistrictID, &m.AsOfDate, &total,
		&stability, &groundwater, &density, &oldBuilding,
		&m.AnalysisText,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &domain.NotFoundError{What: fmt.Sprintf("metric for district %d", districtID)}
	}
	if err != nil {
		return nil, err
	}
	m.TotalGrade = domain.RiskGrade(total)
	m.GroundStability = domain.RiskGrade(stability)
	m.GroundwaterImpact = domain.RiskGrade(groundwater)
	m.UndergroundDensity = domain.RiskGrade(density)
	m.OldBuildingDist = domain.RiskGrade(oldBuilding)
	return &m, nil
}
