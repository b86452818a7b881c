package planner

import (
	"sort"

	"github.com/velomet/ridecast/pkg/analysis"
)

// MinSunshineHours is the sunshine floor for the "sunniest days" list.
const MinSunshineHours = 6.0

// DayRef points at one city's stats for one day slot.
type DayRef struct {
	City  string             `json:"city"`
	Stats *analysis.DayStats `json:"stats"`
}

// CityRank is one row of a whole-roster ranking.
type CityRank struct {
	City          string  `json:"city"`
	SunshineHours float64 `json:"sunshineHours,omitempty"`
	MaxScore      int     `json:"maxScore,omitempty"`
}

// SunniestDays filters every (city, day) pair down to rideable days with at
// least MinSunshineHours of sunshine, sorted by sunshine descending with an
// alphabetical tie-break. Pure function; recompute on every change.
func SunniestDays(results []CityResult) []DayRef {
	var out []DayRef
	for _, r := range results {
		for _, d := range r.Days {
			if d.IsRideable && d.SunshineHours >= MinSunshineHours {
				out = append(out, DayRef{City: r.City, Stats: d})
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Stats.SunshineHours != b.Stats.SunshineHours {
			return a.Stats.SunshineHours > b.Stats.SunshineHours
		}
		return a.City < b.City
	})
	return out
}

// RankBySunshine orders cities by total sunshine across all their day slots,
// descending, ties broken alphabetically.
func RankBySunshine(results []CityResult) []CityRank {
	out := make([]CityRank, 0, len(results))
	for _, r := range results {
		var total float64
		for _, d := range r.Days {
			total += d.SunshineHours
		}
		out = append(out, CityRank{City: r.City, SunshineHours: total})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].SunshineHours != out[j].SunshineHours {
			return out[i].SunshineHours > out[j].SunshineHours
		}
		return out[i].City < out[j].City
	})
	return out
}

// RankByScore orders cities by the highest profile score across all routes
// matched during the sweep, descending, ties broken alphabetically.
func RankByScore(results []CityResult) []CityRank {
	out := make([]CityRank, 0, len(results))
	for _, r := range results {
		out = append(out, CityRank{City: r.City, MaxScore: r.MaxScore})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].MaxScore != out[j].MaxScore {
			return out[i].MaxScore > out[j].MaxScore
		}
		return out[i].City < out[j].City
	})
	return out
}
