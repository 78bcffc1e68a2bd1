package ingest

import (
	"fmt"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/dasiro/saferoute/internal/core/domain"
	"github.com/dasiro/saferoute/internal/core/usecases"
)

// Incident export field names.
const (
	fieldAddress    = "사고발생위치"
	fieldLat        = "위도"
	fieldLng        = "경도"
	fieldOccurredAt = "사고발생일자"
)

// KST is the zone the incident export records local times in.
var KST = time.FixedZone("KST", 9*60*60)

// DefaultIncidentCutoff drops incidents older than the current dataset window.
var DefaultIncidentCutoff = time.Date(2023, 1, 1, 0, 0, 0, 0, KST)

// ParseKoreanDateTime accepts "2024-03-05 오후 2:30" and "2024-03-05".
func ParseKoreanDateTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	if strings.Contains(s, "오전") || strings.Contains(s, "오후") {
		s = strings.NewReplacer("오전", "AM", "오후", "PM").Replace(s)
		return time.ParseInLocation("2006-01-02 PM 3:04", s, KST)
	}
	return time.ParseInLocation("2006-01-02", s, KST)
}

// IncidentOptions tunes ReadIncidents.
type IncidentOptions struct {
	Cutoff       time.Time            // incidents before this are skipped
	Status       domain.HazardStatus  // status assigned to every imported zone
	RadiusM      int                  // avoidance radius of every imported zone
	Districts    []domain.DistrictRef // candidates for district assignment
	MaxDistanceM float64              // spatial fallback bound
}

// ReadIncidents parses the incident export, a JSON array of objects whose
// coordinates may be numbers or numeric strings. Each kept incident is
// assigned a district by address text first, then by nearest centroid.
func ReadIncidents(data []byte, opts IncidentOptions) (zones []domain.HazardZone, skipped int, err error) {
	if !gjson.ValidBytes(data) {
		return nil, 0, fmt.Errorf("incident export is not valid JSON")
	}
	root := gjson.ParseBytes(data)
	if !root.IsArray() {
		return nil, 0, fmt.Errorf("incident export must be a JSON array")
	}
	if opts.Status == "" {
		opts.Status = domain.HazardRecovered
	}
	if opts.RadiusM <= 0 {
		opts.RadiusM = domain.DefaultAvoidRadiusM
	}
	if opts.MaxDistanceM <= 0 {
		opts.MaxDistanceM = usecases.DefaultMatchMaxDistanceM
	}

	root.ForEach(func(_, item gjson.Result) bool {
		lat, lng := item.Get(fieldLat), item.Get(fieldLng)
		occurred, perr := ParseKoreanDateTime(item.Get(fieldOccurredAt).String())
		center := domain.GeoPoint{Lat: lat.Float(), Lon: lng.Float()}
		if !lat.Exists() || !lng.Exists() || center.Validate("center") != nil ||
			perr != nil || occurred.Before(opts.Cutoff) {
			skipped++
			return true
		}

		z := domain.HazardZone{
			Center:     center,
			Status:     opts.Status,
			RadiusM:    opts.RadiusM,
			Address:    strings.TrimSpace(item.Get(fieldAddress).String()),
			OccurredAt: occurred,
		}
		if d, _, ok := usecases.MatchByTextThenSpace(z.Address, &center, opts.Districts, opts.MaxDistanceM); ok {
			id := d.ID
			z.DistrictID = &id
		}
		zones = append(zones, z)
		return true
	})
	return zones, skipped, nil
}
