package domain

import (
	"fmt"
	"time"
)

// HazardStatus is the repair state of a hazard site.
type HazardStatus string

const (
	HazardUnderRepair  HazardStatus = "UNDER_REPAIR"
	HazardTempRepaired HazardStatus = "TEMP_REPAIRED"
	HazardRecovered    HazardStatus = "RECOVERED"
)

// DefaultAvoidStatuses are the statuses avoided when a request names none.
var DefaultAvoidStatuses = []HazardStatus{HazardUnderRepair, HazardTempRepaired}

// ParseHazardStatus validates s against the known statuses.
func ParseHazardStatus(s string) (HazardStatus, error) {
	switch st := HazardStatus(s); st {
	case HazardUnderRepair, HazardTempRepaired, HazardRecovered:
		return st, nil
	}
	return "", &ValidationError{
		Field:  "status",
		Reason: fmt.Sprintf("%q is not one of UNDER_REPAIR, TEMP_REPAIRED, RECOVERED", s),
	}
}

// HazardZone is an incident site (sinkhole, ground repair) with an avoidance radius.
type HazardZone struct {
	ID         string       `json:"id"`
	Center     GeoPoint     `json:"center"`
	Status     HazardStatus `json:"status"`
	RadiusM    int          `json:"radius_m"`
	Address    string       `json:"address,omitempty"`
	DistrictID *int64       `json:"district_id,omitempty"`
	OccurredAt time.Time    `json:"occurred_at"`
	Distance   *float64     `json:"distance_m,omitempty"` // computed field
}
