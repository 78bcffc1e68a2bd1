// Package ingest parses the public datasets the map is seeded from: the
// administrative district list and the recovered-incident export.
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dasiro/saferoute/internal/core/domain"
)

// District CSV column names.
const (
	colSido    = "시도명"
	colSigungu = "시군구명"
	colDong    = "읍면동명"
	colLng     = "X"
	colLat     = "Y"
)

// ReadDistricts parses the administrative-district CSV. Rows with a missing
// name or an unparsable centroid are reported in skipped, not returned.
func ReadDistricts(r io.Reader) (districts []domain.DistrictRef, skipped int, err error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, 0, fmt.Errorf("read header: %w", err)
	}
	cols := indexColumns(header)
	for _, c := range []string{colSido, colSigungu, colDong, colLng, colLat} {
		if _, ok := cols[c]; !ok {
			return nil, 0, fmt.Errorf("missing column %q", c)
		}
	}

	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, 0, fmt.Errorf("line %d: %w", line, err)
		}

		d := domain.DistrictRef{
			Sido:    getField(record, cols, colSido),
			Sigungu: getField(record, cols, colSigungu),
			Dong:    getField(record, cols, colDong),
		}
		lat, latErr := strconv.ParseFloat(getField(record, cols, colLat), 64)
		lng, lngErr := strconv.ParseFloat(getField(record, cols, colLng), 64)
		d.Centroid = domain.GeoPoint{Lat: lat, Lon: lng}
		if d.Sido == "" || d.Sigungu == "" || d.Dong == "" || latErr != nil || lngErr != nil || d.Centroid.Validate("centroid") != nil {
			skipped++
			continue
		}
		districts = append(districts, d)
	}
	return districts, skipped, nil
}

func indexColumns(header []string) map[string]int {
	m := make(map[string]int, len(header))
	for i, col := range header {
		// Strip BOM from first column
		col = strings.TrimPrefix(col, "\xef\xbb\xbf")
		m[strings.TrimSpace(col)] = i
	}
	return m
}

func getField(record []string, cols map[string]int, name string) string {
	idx, ok := cols[name]
	if !ok || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}
