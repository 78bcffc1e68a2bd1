//go:build integration
// +build integration

package http_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dasiro/saferoute/internal/adapters/http"
	"github.com/dasiro/saferoute/internal/adapters/postgres"
	"github.com/dasiro/saferoute/internal/core/domain"
	"github.com/dasiro/saferoute/internal/core/ports"
	"github.com/dasiro/saferoute/internal/core/usecases"
	"github.com/dasiro/saferoute/internal/pkg/config"
)

// setupTestDB connects to the database named by SAFEROUTE_DATABASE_* and
// expects the migrations to have been applied.
func setupTestDB(t *testing.T) *postgres.DB {
	cfg, err := config.Load("saferoute-test")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	return db
}

// setupTestDeps wires real repositories, no cache, and a routing backend
// that returns the straight origin-hazard-destination line.
func setupTestDeps(db *postgres.DB, through domain.GeoPoint) *http.Dependencies {
	hazards := postgres.NewHazardRepo(db)
	districts := postgres.NewDistrictRepo(db)
	backend := &mockBackend{
		name:     "line",
		strategy: domain.AvoidPostHoc,
		routeFn: func(ctx context.Context, q ports.BackendQuery) (*ports.BackendRoute, error) {
			return &ports.BackendRoute{Geometry: domain.RawPoints{q.Origin, through, q.Destination}}, nil
		},
	}

	return &http.Dependencies{
		SafeRoutes: usecases.NewSafeRouteService(hazards, postgres.NewRouteLogRepo(db),
			map[domain.RouteProvider]ports.RoutingBackend{domain.ProviderPathFilter: backend}, 16),
		Hazards:   usecases.NewHazardService(hazards),
		Districts: usecases.NewDistrictService(districts, nil, 500),
		Geocode:   usecases.NewGeocodeService(&mockGeocoder{}, nil),
		DB:        db,
	}
}

// seedHazard inserts a hazard and returns its UUID. Each test uses a
// distinct coordinate so runs do not interfere.
func seedHazard(t *testing.T, db *postgres.DB, p domain.GeoPoint, status domain.HazardStatus) string {
	var id string
	if err := db.Pool.QueryRow(context.Background(), `
		INSERT INTO hazard_zones (lat, lng, status, radius_m, address)
		VALUES ($1, $2, $3, 50, 'integration test')
		RETURNING id
	`, p.Lat, p.Lon, string(status)).Scan(&id); err != nil {
		t.Fatalf("seed hazard: %v", err)
	}
	t.Cleanup(func() {
		_, _ = db.Pool.Exec(context.Background(), `DELETE FROM hazard_zones WHERE id = $1`, id)
	})
	return id
}

func TestNearbyHazards_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	db := setupTestDB(t)
	defer db.Close()

	p := domain.GeoPoint{Lat: 33.2501, Lon: 126.5601}
	id := seedHazard(t, db, p, domain.HazardUnderRepair)
	seedHazard(t, db, domain.GeoPoint{Lat: 33.2502, Lon: 126.5602}, domain.HazardRecovered)

	app := setupApp(setupTestDeps(db, p))
	req := httptest.NewRequest("GET", fmt.Sprintf("/v1/hazards/near?lat=%f&lng=%f&radius=100", p.Lat, p.Lon), nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("test request: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result struct {
		Hazards []domain.HazardZone `json:"hazards"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(result.Hazards) != 1 || result.Hazards[0].ID != id {
		t.Fatalf("expected only the UNDER_REPAIR hazard, got %+v", result.Hazards)
	}
	if d := result.Hazards[0].Distance; d == nil || *d > 1 {
		t.Errorf("expected distance near 0, got %v", d)
	}
}

func TestSafeRoute_Integration_AvoidsSeededHazard(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	db := setupTestDB(t)
	defer db.Close()

	hazard := domain.GeoPoint{Lat: 33.4501, Lon: 126.5701}
	seedHazard(t, db, hazard, domain.HazardTempRepaired)

	app := setupApp(setupTestDeps(db, hazard))
	status, body := doJSON(t, app, "POST", "/v1/routes/safe",
		`{"origin":{"lat":33.44,"lng":126.56},"destination":{"lat":33.46,"lng":126.58},"mode":"WALK"}`)
	if status != 200 {
		t.Fatalf("expected 200, got %d: %s", status, body)
	}

	var result struct {
		Routes []domain.RouteResult `json:"routes"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if n := len(result.Routes[0].Polyline); n != 2 {
		t.Errorf("expected hazard point dropped, got %d points", n)
	}

	var logged int
	if err := db.Pool.QueryRow(context.Background(),
		`SELECT count(*) FROM route_logs WHERE created_at > now() - interval '1 minute'`).Scan(&logged); err != nil {
		t.Fatalf("count route logs: %v", err)
	}
	if logged == 0 {
		t.Error("expected an audit row")
	}
}
