package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/dasiro/saferoute/internal/core/domain"
)

const importBatchSize = 500

// ImportRepo bulk-loads districts and hazard zones from the public datasets.
type ImportRepo struct {
	db *DB
}

// NewImportRepo creates a new ImportRepo.
func NewImportRepo(db *DB) *ImportRepo {
	return &ImportRepo{db: db}
}

// UpsertDistricts inserts or refreshes districts keyed by (sido, sigungu, dong).
// The safe-zone flag of existing rows is left alone.
func (r *ImportRepo) UpsertDistricts(ctx context.Context, districts []domain.DistrictRef) (int, error) {
	return r.sendBatches(ctx, len(districts), func(b *pgx.Batch, i int) {
		d := districts[i]
		b.Queue(`
			INSERT INTO districts (sido, sigungu, dong, center_lat, center_lng, is_safezone)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (sido, sigungu, dong)
			DO UPDATE SET center_lat = EXCLUDED.center_lat, center_lng = EXCLUDED.center_lng
		`, d.Sido, d.Sigungu, d.Dong, d.Centroid.Lat, d.Centroid.Lon, d.IsSafezone)
	})
}

// InsertHazards appends hazard zones. IDs are assigned by the database.
func (r *ImportRepo) InsertHazards(ctx context.Context, zones []domain.HazardZone) (int, error) {
	return r.sendBatches(ctx, len(zones), func(b *pgx.Batch, i int) {
		z := zones[i]
		b.Queue(`
			INSERT INTO hazard_zones (district_id, lat, lng, status, radius_m, address, occurred_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, z.DistrictID, z.Center.Lat, z.Center.Lon, string(z.Status), z.RadiusM, nilEmpty(z.Address), z.OccurredAt)
	})
}

// sendBatches queues n statements in chunks of importBatchSize and returns
// how many were executed before the first failure.
func (r *ImportRepo) sendBatches(ctx context.Context, n int, queue func(b *pgx.Batch, i int)) (int, error) {
	done := 0
	for start := 0; start < n; start += importBatchSize {
		end := min(start+importBatchSize, n)

		batch := &pgx.Batch{}
		for i := start; i < end; i++ {
			queue(batch, i)
		}

		br := r.db.Pool.SendBatch(ctx, batch)
		for i := start; i < end; i++ {
			if _, err := br.Exec(); err != nil {
				_ = br.Close()
				return done, fmt.Errorf("batch item %d: %w", i, err)
			}
			done++
		}
		if err := br.Close(); err != nil {
			return done, err
		}
	}
	return done, nil
}

func nilEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
