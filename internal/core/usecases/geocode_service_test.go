package usecases_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dasiro/saferoute/internal/core/domain"
	"github.com/dasiro/saferoute/internal/core/usecases"
)

func TestGeocodeService_CachesResults(t *testing.T) {
	geo := &mockGeocoder{
		geocodeFn: func(ctx context.Context, q string) ([]domain.GeocodeItem, error) {
			return []domain.GeocodeItem{{Address: q, Lat: 37.5, Lon: 127.0}}, nil
		},
	}
	svc := usecases.NewGeocodeService(geo, newMockCache())

	for i := 0; i < 2; i++ {
		items, err := svc.Geocode(context.Background(), " 강남구 역삼동 ")
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, "강남구 역삼동", items[0].Address)
	}
	assert.Equal(t, 1, geo.calls)
}

func TestGeocodeService_EmptyQuery(t *testing.T) {
	geo := &mockGeocoder{}
	_, err := usecases.NewGeocodeService(geo, nil).Geocode(context.Background(), "  ")
	var ve *domain.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, 0, geo.calls)
}

func TestGeocodeService_ReverseNotFound(t *testing.T) {
	_, err := usecases.NewGeocodeService(&mockGeocoder{}, nil).ReverseGeocode(context.Background(), origin)
	var nf *domain.NotFoundError
	require.True(t, errors.As(err, &nf))
}

func TestGeocodeService_ReverseCached(t *testing.T) {
	geo := &mockGeocoder{
		reverseFn: func(ctx context.Context, p domain.GeoPoint) (*domain.ReverseGeocodeResult, error) {
			return &domain.ReverseGeocodeResult{Address: "서울 강남구 역삼동 1", Sigungu: "강남구", Dong: "역삼동"}, nil
		},
	}
	svc := usecases.NewGeocodeService(geo, newMockCache())

	for i := 0; i < 2; i++ {
		res, err := svc.ReverseGeocode(context.Background(), origin)
		require.NoError(t, err)
		assert.Equal(t, "역삼동", res.Dong)
	}
	assert.Equal(t, 1, geo.calls)
}
