package usecases

import (
	"regexp"
	"strings"

	"github.com/dasiro/saferoute/internal/core/domain"
	"github.com/dasiro/saferoute/internal/pkg/geospatial"
)

// DefaultMatchMaxDistanceM bounds the spatial stage of MatchByTextThenSpace.
const DefaultMatchMaxDistanceM = 500.0

// MatchKind reports which stage of MatchByTextThenSpace produced the match.
type MatchKind string

const (
	MatchNone    MatchKind = "none"
	MatchText    MatchKind = "text"
	MatchSpatial MatchKind = "spatial"
)

var (
	guDongPattern  = regexp.MustCompile(`([가-힣]+구)\s([가-힣0-9]+동)`)
	ordinalPattern = regexp.MustCompile(`제?\d+동`)
)

// NormalizeDong extracts the neighbourhood token following a "구" in a Korean
// address and strips ordinal markers ("역삼1동" and "역삼제1동" become "역삼동").
// It returns "" when the address has no "<gu> <dong>" pair.
func NormalizeDong(address string) string {
	m := guDongPattern.FindStringSubmatch(address)
	if m == nil {
		return ""
	}
	return ordinalPattern.ReplaceAllString(m[2], "동")
}

// Nearest returns the candidate closest to point. On equal distances the
// earlier candidate wins. With maxDistanceM set, a nearest candidate farther
// than the bound is no match.
func Nearest(point domain.GeoPoint, candidates []domain.DistrictRef, maxDistanceM *float64) (domain.DistrictRef, bool) {
	best := -1
	bestDist := 0.0
	for i, c := range candidates {
		d := geospatial.Distance(point, c.Centroid)
		if best < 0 || d < bestDist {
			best, bestDist = i, d
		}
	}
	if best < 0 {
		return domain.DistrictRef{}, false
	}
	if maxDistanceM != nil && bestDist > *maxDistanceM {
		return domain.DistrictRef{}, false
	}
	return candidates[best], true
}

// MatchByTextThenSpace first looks for a candidate whose Dong contains the
// normalized token of text; only when that fails does it fall back to Nearest
// bounded by maxDistanceM. point may be nil when no coordinate is known.
func MatchByTextThenSpace(text string, point *domain.GeoPoint, candidates []domain.DistrictRef, maxDistanceM float64) (domain.DistrictRef, MatchKind, bool) {
	if token := NormalizeDong(text); token != "" {
		for _, c := range candidates {
			if strings.Contains(c.Dong, token) {
				return c, MatchText, true
			}
		}
	}
	if point == nil {
		return domain.DistrictRef{}, MatchNone, false
	}
	if d, ok := Nearest(*point, candidates, &maxDistanceM); ok {
		return d, MatchSpatial, true
	}
	return domain.DistrictRef{}, MatchNone, false
}
