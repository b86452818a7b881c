package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/velomet/ridecast/pkg/analysis"
)

func day(sunshine float64, rideable bool) *analysis.DayStats {
	return &analysis.DayStats{SunshineHours: sunshine, IsRideable: rideable, IsDry: rideable}
}

func TestSunniestDaysFiltersAndSorts(t *testing.T) {
	results := []CityResult{
		{City: "Basel", Days: []*analysis.DayStats{day(8, true), day(3, true)}},
		{City: "Freiburg", Days: []*analysis.DayStats{day(9, true), day(7, false)}},
		{City: "Stuttgart", Days: []*analysis.DayStats{day(6.5, true)}},
	}
	out := SunniestDays(results)
	require.Len(t, out, 3)
	assert.Equal(t, "Freiburg", out[0].City)
	assert.Equal(t, "Basel", out[1].City)
	assert.Equal(t, "Stuttgart", out[2].City)
}

func TestSunniestDaysAlphabeticalTieBreak(t *testing.T) {
	results := []CityResult{
		{City: "Stuttgart", Days: []*analysis.DayStats{day(7, true)}},
		{City: "Basel", Days: []*analysis.DayStats{day(7, true)}},
		{City: "Freiburg", Days: []*analysis.DayStats{day(7, true)}},
	}
	out := SunniestDays(results)
	require.Len(t, out, 3)
	assert.Equal(t, "Basel", out[0].City)
	assert.Equal(t, "Freiburg", out[1].City)
	assert.Equal(t, "Stuttgart", out[2].City)
}

func TestSunniestDaysEmptyWhenNothingQualifies(t *testing.T) {
	results := []CityResult{
		{City: "Basel", Days: []*analysis.DayStats{day(5.9, true), day(12, false)}},
	}
	assert.Empty(t, SunniestDays(results))
}

func TestRankBySunshineTotalsAcrossDays(t *testing.T) {
	results := []CityResult{
		{City: "Basel", Days: []*analysis.DayStats{day(4, true), day(4, true)}},
		{City: "Freiburg", Days: []*analysis.DayStats{day(9, false)}},
		{City: "Stuttgart", Days: []*analysis.DayStats{day(3, true)}},
	}
	out := RankBySunshine(results)
	require.Len(t, out, 3)
	// Rankings count sunshine on every day, rideable or not.
	assert.Equal(t, "Freiburg", out[0].City)
	assert.InDelta(t, 9.0, out[0].SunshineHours, 1e-9)
	assert.Equal(t, "Basel", out[1].City)
	assert.Equal(t, "Stuttgart", out[2].City)
}

func TestRankByScore(t *testing.T) {
	results := []CityResult{
		{City: "Basel", MaxScore: 12},
		{City: "Innsbruck", MaxScore: 140},
		{City: "Freiburg", MaxScore: 12},
	}
	out := RankByScore(results)
	require.Len(t, out, 3)
	assert.Equal(t, "Innsbruck", out[0].City)
	assert.Equal(t, "Basel", out[1].City)
	assert.Equal(t, "Freiburg", out[2].City)
}
