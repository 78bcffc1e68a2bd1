package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dasiro/saferoute/internal/core/domain"
)

// RouteLogRepo implements ports.RouteLogWriter with pgx. Rows are only ever
// inserted.
type RouteLogRepo struct {
	db *DB
}

// NewRouteLogRepo creates a new RouteLogRepo.
func NewRouteLogRepo(db *DB) *RouteLogRepo {
	return &RouteLogRepo{db: db}
}

// Append inserts one audit row. Replaying the same entry ID is a no-op, so
// redelivered broker messages do not duplicate rows.
func (r *RouteLogRepo) Append(ctx context.Context, e *domain.RouteLogEntry) error {
	if e.Request.Origin == nil || e.Request.Destination == nil {
		return &domain.ValidationError{Field: "request", Reason: "origin and destination are required"}
	}
	polyline, err := json.Marshal(e.Result.Polyline)
	if err != nil {
		return fmt.Errorf("marshal polyline: %w", err)
	}
	statuses := statusStrings(e.Request.AvoidStatuses)

	var raw []byte
	if len(e.RawResponse) > 0 {
		raw = e.RawResponse
	}

	_, err = r.db.Pool.Exec(ctx, `
		INSERT INTO route_logs (
			id, origin_lat, origin_lng, dest_lat, dest_lng, mode, provider,
			avoid_hazards, avoid_statuses, avoid_radius_m,
			duration_sec, distance_m, polyline, raw_response, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (id) DO NOTHING
	`, e.ID,
		e.Request.Origin.Lat, e.Request.Origin.Lon,
		e.Request.Destination.Lat, e.Request.Destination.Lon,
		string(e.Request.Mode), e.Provider,
		e.Request.AvoidHazards, statuses, e.Request.AvoidRadiusM,
		e.Result.DurationSec, e.Result.DistanceM, polyline, raw, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert route log: %w", err)
	}
	return nil
}
