package domain

import (
	"time"
)

// DistrictRef is an administrative neighbourhood (행정동) with its centroid.
type DistrictRef struct {
	ID         int64    `json:"id"`
	Sido       string   `json:"sido"`
	Sigungu    string   `json:"sigungu"`
	Dong       string   `json:"dong"`
	Centroid   GeoPoint `json:"centroid"`
	IsSafezone bool     `json:"is_safezone"`
}

// Name returns the full "sido sigungu dong" label.
func (d DistrictRef) Name() string {
	return d.Sido + " " + d.Sigungu + " " + d.Dong
}

// RiskGrade is a G1 (safest) to G5 (most dangerous) ground-risk grade.
type RiskGrade string

const (
	GradeG1 RiskGrade = "G1"
	GradeG2 RiskGrade = "G2"
	GradeG3 RiskGrade = "G3"
	GradeG4 RiskGrade = "G4"
	GradeG5 RiskGrade = "G5"
)

// Dangerous reports whether the grade is one of the two worst.
func (g RiskGrade) Dangerous() bool {
	return g == GradeG4 || g == GradeG5
}

// DistrictMetric is a dated risk assessment of a district.
type DistrictMetric struct {
	DistrictID         int64     `json:"district_id"`
	AsOfDate           time.Time `json:"as_of_date"`
	TotalGrade         RiskGrade `json:"total_grade"`
	GroundStability    RiskGrade `json:"ground_stability"`
	GroundwaterImpact  RiskGrade `json:"groundwater_impact"`
	UndergroundDensity RiskGrade `json:"underground_density"`
	OldBuildingDist    RiskGrade `json:"old_building_dist"`
	AnalysisText       string    `json:"analysis_text,omitempty"`
}

// DistrictRisk summarises the risk at a coordinate.
type DistrictRisk struct {
	District   DistrictRef `json:"district"`
	TotalGrade RiskGrade   `json:"total_grade"`
	Danger     bool        `json:"danger"`
	AsOfDate   time.Time   `json:"as_of_date"`
}

// GeocodeItem is one address candidate returned by forward geocoding.
type GeocodeItem struct {
	Address string  `json:"address"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lng"`
}

// ReverseGeocodeResult is the address found for a coordinate.
type ReverseGeocodeResult struct {
	Address string `json:"address"`
	Sido    string `json:"sido"`
	Sigungu string `json:"sigungu"`
	Dong    string `json:"dong"`
}
