// Package geo provides the great-circle primitives used throughout the
// planner: distances between coordinates, initial bearings, and bucketing of
// bearings into the eight compass octants that name route files.
package geo

import (
	"math"

	"github.com/golang/geo/s2"
)

// EarthRadiusKm is the mean Earth radius used for great-circle distances.
const EarthRadiusKm = 6371.0

// HaversineDistanceKm calculates the great-circle distance in kilometres
// between two WGS84 coordinates.
func HaversineDistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	p1 := s2.LatLngFromDegrees(lat1, lon1)
	p2 := s2.LatLngFromDegrees(lat2, lon2)
	return p1.Distance(p2).Radians() * EarthRadiusKm
}

// BearingDegrees calculates the initial bearing (forward azimuth) from point 1
// to point 2. The result is in degrees in [0, 360), where 0 is North and 90
// is East.
func BearingDegrees(lat1, lon1, lat2, lon2 float64) float64 {
	lat1Rad := lat1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180
	lonDiff := (lon2 - lon1) * math.Pi / 180

	y := math.Sin(lonDiff) * math.Cos(lat2Rad)
	x := math.Cos(lat1Rad)*math.Sin(lat2Rad) - math.Sin(lat1Rad)*math.Cos(lat2Rad)*math.Cos(lonDiff)
	bearing := math.Atan2(y, x) * 180 / math.Pi

	return math.Mod(bearing+360, 360)
}

var compassLabels = [8]string{"N", "NE", "E", "SE", "S", "SW", "W", "NW"}

// Compass8 buckets a bearing into the nearest 45-degree octant, wrapping
// correctly across 0/360.
func Compass8(bearing float64) string {
	b := math.Mod(bearing, 360)
	if b < 0 {
		b += 360
	}
	i := int(math.Round(b/45)) % 8
	return compassLabels[i]
}
