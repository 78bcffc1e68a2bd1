package natsadapter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dasiro/saferoute/internal/core/domain"
)

func TestHazardSubject(t *testing.T) {
	cases := map[domain.HazardStatus]string{
		domain.HazardUnderRepair:  "saferoute.hazard.under_repair",
		domain.HazardTempRepaired: "saferoute.hazard.temp_repaired",
		domain.HazardRecovered:    "saferoute.hazard.recovered",
	}
	for status, want := range cases {
		got := HazardSubject(status)
		assert.Equal(t, want, got)
		assert.True(t, strings.HasPrefix(got, strings.TrimSuffix(SubjectHazardAll, ">")), got)
	}
}
