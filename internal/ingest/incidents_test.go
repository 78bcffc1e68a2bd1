package ingest_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dasiro/saferoute/internal/core/domain"
	"github.com/dasiro/saferoute/internal/ingest"
)

func TestParseKoreanDateTime(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2024-03-05 오후 2:30", time.Date(2024, 3, 5, 14, 30, 0, 0, ingest.KST)},
		{"2024-03-05 오전 11:05", time.Date(2024, 3, 5, 11, 5, 0, 0, ingest.KST)},
		{"2024-03-05 오전 12:10", time.Date(2024, 3, 5, 0, 10, 0, 0, ingest.KST)},
		{" 2023-12-31 ", time.Date(2023, 12, 31, 0, 0, 0, 0, ingest.KST)},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ingest.ParseKoreanDateTime(tt.in)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %v", got)
		})
	}

	for _, bad := range []string{"", "어제", "2024/03/05", "2024-03-05 오후"} {
		_, err := ingest.ParseKoreanDateTime(bad)
		assert.Error(t, err, bad)
	}
}

var seoulDistricts = []domain.DistrictRef{
	{ID: 10, Sido: "서울특별시", Sigungu: "강남구", Dong: "역삼1동", Centroid: domain.GeoPoint{Lat: 37.4955, Lon: 127.0330}},
	{ID: 20, Sido: "서울특별시", Sigungu: "종로구", Dong: "청운효자동", Centroid: domain.GeoPoint{Lat: 37.5841, Lon: 126.9706}},
}

func TestReadIncidents(t *testing.T) {
	data := []byte(`[
		{"사고발생위치": "서울 종로구 청운효자동 1-1", "위도": "37.58", "경도": "126.97", "사고발생일자": "2024-05-01 오후 3:00"},
		{"사고발생위치": "서울 어딘가", "위도": 37.4956, "경도": 127.0331, "사고발생일자": "2023-06-10"},
		{"사고발생위치": "서울 부산 근처", "위도": 35.1, "경도": 129.0, "사고발생일자": "2024-01-02"},
		{"사고발생위치": "오래된 사고", "위도": 37.5, "경도": 127.0, "사고발생일자": "2022-12-31"},
		{"사고발생위치": "좌표 없음", "사고발생일자": "2024-01-02"},
		{"사고발생위치": "날짜 오류", "위도": 37.5, "경도": 127.0, "사고발생일자": "unknown"}
	]`)

	zones, skipped, err := ingest.ReadIncidents(data, ingest.IncidentOptions{
		Cutoff:    ingest.DefaultIncidentCutoff,
		Districts: seoulDistricts,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, skipped)
	require.Len(t, zones, 3)

	// text match
	assert.Equal(t, domain.HazardRecovered, zones[0].Status)
	assert.Equal(t, domain.DefaultAvoidRadiusM, zones[0].RadiusM)
	require.NotNil(t, zones[0].DistrictID)
	assert.Equal(t, int64(20), *zones[0].DistrictID)

	// spatial fallback within 500 m
	require.NotNil(t, zones[1].DistrictID)
	assert.Equal(t, int64(10), *zones[1].DistrictID)

	// nothing within reach
	assert.Nil(t, zones[2].DistrictID)
}

func TestReadIncidents_Options(t *testing.T) {
	data := []byte(`[{"위도": 37.5, "경도": 127.0, "사고발생일자": "2024-01-02"}]`)

	zones, _, err := ingest.ReadIncidents(data, ingest.IncidentOptions{
		Status:  domain.HazardUnderRepair,
		RadiusM: 75,
	})
	require.NoError(t, err)
	require.Len(t, zones, 1)
	assert.Equal(t, domain.HazardUnderRepair, zones[0].Status)
	assert.Equal(t, 75, zones[0].RadiusM)
	assert.Nil(t, zones[0].DistrictID)
}

func TestReadIncidents_BadInput(t *testing.T) {
	_, _, err := ingest.ReadIncidents([]byte(`{"위도": 1}`), ingest.IncidentOptions{})
	assert.Error(t, err)

	_, _, err = ingest.ReadIncidents([]byte(`[{`), ingest.IncidentOptions{})
	assert.Error(t, err)
}
