package usecases_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dasiro/saferoute/internal/core/domain"
	"github.com/dasiro/saferoute/internal/core/usecases"
)

var districts = []domain.DistrictRef{
	{ID: 1, Sido: "서울특별시", Sigungu: "강남구", Dong: "역삼동", Centroid: domain.GeoPoint{Lat: 37.5006, Lon: 127.0364}},
	{ID: 2, Sido: "서울특별시", Sigungu: "강남구", Dong: "삼성동", Centroid: domain.GeoPoint{Lat: 37.5088, Lon: 127.0631}},
	{ID: 3, Sido: "서울특별시", Sigungu: "송파구", Dong: "잠실동", Centroid: domain.GeoPoint{Lat: 37.5133, Lon: 127.1000}},
}

func ptr(f float64) *float64 { return &f }

func TestNearest_PicksClosest(t *testing.T) {
	d, ok := usecases.Nearest(domain.GeoPoint{Lat: 37.509, Lon: 127.063}, districts, nil)
	require.True(t, ok)
	assert.Equal(t, int64(2), d.ID)
}

func TestNearest_BeyondBoundIsNoMatch(t *testing.T) {
	_, ok := usecases.Nearest(domain.GeoPoint{Lat: 35.1, Lon: 129.0}, districts, ptr(500))
	assert.False(t, ok)
}

func TestNearest_UnboundedAlwaysMatches(t *testing.T) {
	d, ok := usecases.Nearest(domain.GeoPoint{Lat: 35.1, Lon: 129.0}, districts, nil)
	require.True(t, ok)
	assert.Equal(t, int64(3), d.ID)
}

func TestNearest_TieKeepsFirst(t *testing.T) {
	same := domain.GeoPoint{Lat: 37.5, Lon: 127.0}
	cands := []domain.DistrictRef{{ID: 10, Centroid: same}, {ID: 11, Centroid: same}}
	d, ok := usecases.Nearest(domain.GeoPoint{Lat: 37.6, Lon: 127.1}, cands, nil)
	require.True(t, ok)
	assert.Equal(t, int64(10), d.ID)
}

func TestNearest_NoCandidates(t *testing.T) {
	_, ok := usecases.Nearest(domain.GeoPoint{}, nil, nil)
	assert.False(t, ok)
}

func TestNormalizeDong(t *testing.T) {
	cases := map[string]string{
		"서울특별시 강남구 역삼1동 123-4": "역삼동",
		"서울 강남구 역삼제2동":         "역삼동",
		"서울 송파구 잠실동 40":          "잠실동",
		"경기도 성남시 분당":             "",
		"":                      "",
	}
	for in, want := range cases {
		assert.Equal(t, want, usecases.NormalizeDong(in), in)
	}
}

func TestMatchByTextThenSpace_TextWinsOverSpace(t *testing.T) {
	// coordinate sits on 삼성동 but the address names 역삼동
	p := districts[1].Centroid
	d, kind, ok := usecases.MatchByTextThenSpace("서울 강남구 역삼1동 10", &p, districts, 500)
	require.True(t, ok)
	assert.Equal(t, usecases.MatchText, kind)
	assert.Equal(t, int64(1), d.ID)
}

func TestMatchByTextThenSpace_FallsBackToNearest(t *testing.T) {
	p := domain.GeoPoint{Lat: 37.5134, Lon: 127.1001}
	d, kind, ok := usecases.MatchByTextThenSpace("주소 미상", &p, districts, 500)
	require.True(t, ok)
	assert.Equal(t, usecases.MatchSpatial, kind)
	assert.Equal(t, int64(3), d.ID)
}

func TestMatchByTextThenSpace_SpatialBound(t *testing.T) {
	p := domain.GeoPoint{Lat: 37.55, Lon: 127.0}
	_, kind, ok := usecases.MatchByTextThenSpace("", &p, districts, 500)
	assert.False(t, ok)
	assert.Equal(t, usecases.MatchNone, kind)
}

func TestMatchByTextThenSpace_UnknownTokenWithoutPoint(t *testing.T) {
	_, _, ok := usecases.MatchByTextThenSpace("서울 마포구 합정동", nil, districts, 500)
	assert.False(t, ok)
}
