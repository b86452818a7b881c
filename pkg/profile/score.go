package profile

import (
	"math"

	"github.com/velomet/ridecast/pkg/track"
)

const scoreNoiseGradientPct = 0.5

// Score reduces a route to a single non-negative difficulty integer. Steeper
// and longer climbs raise it, and climbs close to the finish count
// disproportionately. The profile underneath is always computed at the
// engine's default calibration, so the score is a property of the route, not
// of the pace a rider happens to be viewing.
func Score(t *track.RouteTrack, mountain bool) int {
	return scoreProfile(Compute(t, DefaultTargetSpeedKmh, mountain))
}

func scoreProfile(points []Point) int {
	if len(points) < 2 {
		return 0
	}
	totalKm := points[len(points)-1].DistanceKm
	var sum float64
	for i := 1; i < len(points); i++ {
		g := points[i].Gradient
		if g <= scoreNoiseGradientPct {
			continue
		}
		legKm := points[i].DistanceKm - points[i-1].DistanceKm
		segment := math.Pow(g/2, 2) * legKm
		sum += segment * finishWeight(totalKm-points[i].DistanceKm)
	}
	return int(math.Round(sum))
}

// finishWeight weights a climbing leg by how close to the finish it ends.
func finishWeight(kmToFinish float64) float64 {
	switch {
	case kmToFinish <= 10:
		return 1.0
	case kmToFinish <= 25:
		return 0.8
	case kmToFinish <= 50:
		return 0.6
	case kmToFinish <= 75:
		return 0.4
	default:
		return 0.2
	}
}
