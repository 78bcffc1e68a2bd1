package ingest_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dasiro/saferoute/internal/ingest"
)

func TestReadDistricts(t *testing.T) {
	csv := "\xef\xbb\xbf시도명,시군구명,읍면동명,X,Y\n" +
		"서울특별시,강남구,역삼1동,127.0330,37.4955\n" +
		"서울특별시,종로구,청운효자동,126.9706,37.5841\n" +
		"서울특별시,종로구,,126.97,37.58\n" +
		"서울특별시,종로구,사직동,abc,37.57\n"

	districts, skipped, err := ingest.ReadDistricts(strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 2, skipped)
	require.Len(t, districts, 2)

	assert.Equal(t, "역삼1동", districts[0].Dong)
	assert.InDelta(t, 37.4955, districts[0].Centroid.Lat, 1e-9)
	assert.InDelta(t, 127.0330, districts[0].Centroid.Lon, 1e-9)
	assert.Equal(t, "서울특별시 종로구 청운효자동", districts[1].Name())
}

func TestReadDistricts_MissingColumn(t *testing.T) {
	_, _, err := ingest.ReadDistricts(strings.NewReader("시도명,시군구명,X,Y\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "읍면동명")
}

func TestReadDistricts_Empty(t *testing.T) {
	_, _, err := ingest.ReadDistricts(strings.NewReader(""))
	require.Error(t, err)
}
