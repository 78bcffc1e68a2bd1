package usecases_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dasiro/saferoute/internal/core/domain"
	"github.com/dasiro/saferoute/internal/core/usecases"
)

func districtRepo() *mockDistrictRepo {
	return &mockDistrictRepo{
		allFn: func(ctx context.Context) ([]domain.DistrictRef, error) { return districts, nil },
	}
}

func TestDistrictService_AllIsCached(t *testing.T) {
	repo := districtRepo()
	cache := newMockCache()
	svc := usecases.NewDistrictService(repo, cache, 500)

	first, err := svc.All(context.Background())
	require.NoError(t, err)
	second, err := svc.All(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, repo.allCalls)
	assert.Equal(t, 1, cache.sets)
}

func TestDistrictService_NearestNotFound(t *testing.T) {
	svc := usecases.NewDistrictService(districtRepo(), nil, 500)
	_, err := svc.Nearest(context.Background(), domain.GeoPoint{Lat: 35.1, Lon: 129.0}, ptr(100))
	var nf *domain.NotFoundError
	require.True(t, errors.As(err, &nf))
}

func TestDistrictService_NearestInvalidPoint(t *testing.T) {
	svc := usecases.NewDistrictService(districtRepo(), nil, 500)
	_, err := svc.Nearest(context.Background(), domain.GeoPoint{Lat: 100}, nil)
	var ve *domain.ValidationError
	require.True(t, errors.As(err, &ve))
}

func TestDistrictService_Match(t *testing.T) {
	svc := usecases.NewDistrictService(districtRepo(), nil, 500)
	m, err := svc.Match(context.Background(), "서울 송파구 잠실3동", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(3), m.District.ID)
	assert.Equal(t, usecases.MatchText, m.Kind)

	_, err = svc.Match(context.Background(), "", nil)
	var ve *domain.ValidationError
	require.True(t, errors.As(err, &ve))
}

func TestDistrictService_RiskByCoord(t *testing.T) {
	asOf := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	repo := districtRepo()
	repo.latestMetricFn = func(ctx context.Context, id int64) (*domain.DistrictMetric, error) {
		assert.Equal(t, int64(1), id)
		return &domain.DistrictMetric{DistrictID: id, TotalGrade: domain.GradeG4, AsOfDate: asOf}, nil
	}
	svc := usecases.NewDistrictService(repo, nil, 500)

	risk, err := svc.RiskByCoord(context.Background(), domain.GeoPoint{Lat: 37.5007, Lon: 127.0365})
	require.NoError(t, err)
	assert.True(t, risk.Danger)
	assert.Equal(t, domain.GradeG4, risk.TotalGrade)
	assert.Equal(t, "역삼동", risk.District.Dong)
	assert.Equal(t, asOf, risk.AsOfDate)
}

func TestDistrictService_RiskByCoordNoMetric(t *testing.T) {
	svc := usecases.NewDistrictService(districtRepo(), nil, 500)
	_, err := svc.RiskByCoord(context.Background(), domain.GeoPoint{Lat: 37.5, Lon: 127.0})
	var nf *domain.NotFoundError
	require.True(t, errors.As(err, &nf))
}
