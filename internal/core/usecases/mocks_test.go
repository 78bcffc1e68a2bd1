package usecases_test

import (
	"context"
	"errors"
	"sync"

	"github.com/dasiro/saferoute/internal/core/domain"
	"github.com/dasiro/saferoute/internal/core/ports"
)

// --- Mock HazardRepository ---

type mockHazardRepo struct {
	listActiveFn func(ctx context.Context, statuses []domain.HazardStatus) ([]domain.HazardZone, error)
	findNearbyFn func(ctx context.Context, center domain.GeoPoint, radius float64, statuses []domain.HazardStatus) ([]domain.HazardZone, error)
	listCalls    int
}

func (m *mockHazardRepo) ListActive(ctx context.Context, statuses []domain.HazardStatus) ([]domain.HazardZone, error) {
	m.listCalls++
	if m.listActiveFn != nil {
		return m.listActiveFn(ctx, statuses)
	}
	return nil, nil
}

func (m *mockHazardRepo) FindNearby(ctx context.Context, center domain.GeoPoint, radius float64, statuses []domain.HazardStatus) ([]domain.HazardZone, error) {
	if m.findNearbyFn != nil {
		return m.findNearbyFn(ctx, center, radius, statuses)
	}
	return nil, nil
}

// --- Mock DistrictRepository ---

type mockDistrictRepo struct {
	allFn          func(ctx context.Context) ([]domain.DistrictRef, error)
	latestMetricFn func(ctx context.Context, id int64) (*domain.DistrictMetric, error)
	allCalls       int
}

func (m *mockDistrictRepo) All(ctx context.Context) ([]domain.DistrictRef, error) {
	m.allCalls++
	if m.allFn != nil {
		return m.allFn(ctx)
	}
	return nil, nil
}

func (m *mockDistrictRepo) LatestMetric(ctx context.Context, id int64) (*domain.DistrictMetric, error) {
	if m.latestMetricFn != nil {
		return m.latestMetricFn(ctx, id)
	}
	return nil, &domain.NotFoundError{What: "metric"}
}

// --- Mock RoutingBackend ---

type mockBackend struct {
	name     string
	strategy domain.AvoidanceStrategy
	routeFn  func(ctx context.Context, q ports.BackendQuery) (*ports.BackendRoute, error)

	mu      sync.Mutex
	queries []ports.BackendQuery
}

func (m *mockBackend) Name() string                        { return m.name }
func (m *mockBackend) Avoidance() domain.AvoidanceStrategy { return m.strategy }

func (m *mockBackend) Route(ctx context.Context, q ports.BackendQuery) (*ports.BackendRoute, error) {
	m.mu.Lock()
	m.queries = append(m.queries, q)
	m.mu.Unlock()
	if m.routeFn != nil {
		return m.routeFn(ctx, q)
	}
	return &ports.BackendRoute{}, nil
}

func (m *mockBackend) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queries)
}

// --- Mock RouteLogWriter ---

type mockAudit struct {
	appendFn func(ctx context.Context, e *domain.RouteLogEntry) error
	entries  []*domain.RouteLogEntry
}

func (m *mockAudit) Append(ctx context.Context, e *domain.RouteLogEntry) error {
	m.entries = append(m.entries, e)
	if m.appendFn != nil {
		return m.appendFn(ctx, e)
	}
	return nil
}

// --- Mock CacheService ---

var errMiss = errors.New("miss")

type mockCache struct {
	data map[string][]byte
	sets int
}

func newMockCache() *mockCache { return &mockCache{data: map[string][]byte{}} }

func (m *mockCache) Get(ctx context.Context, key string) ([]byte, error) {
	if v, ok := m.data[key]; ok {
		return v, nil
	}
	return nil, errMiss
}

func (m *mockCache) Set(ctx context.Context, key string, value []byte, ttl int) error {
	m.sets++
	m.data[key] = value
	return nil
}

func (m *mockCache) Delete(ctx context.Context, key string) error {
	delete(m.data, key)
	return nil
}

// --- Mock Geocoder ---

type mockGeocoder struct {
	geocodeFn func(ctx context.Context, q string) ([]domain.GeocodeItem, error)
	reverseFn func(ctx context.Context, p domain.GeoPoint) (*domain.ReverseGeocodeResult, error)
	calls     int
}

func (m *mockGeocoder) Geocode(ctx context.Context, q string) ([]domain.GeocodeItem, error) {
	m.calls++
	if m.geocodeFn != nil {
		return m.geocodeFn(ctx, q)
	}
	return nil, nil
}

func (m *mockGeocoder) ReverseGeocode(ctx context.Context, p domain.GeoPoint) (*domain.ReverseGeocodeResult, error) {
	m.calls++
	if m.reverseFn != nil {
		return m.reverseFn(ctx, p)
	}
	return nil, &domain.NotFoundError{What: "address"}
}
