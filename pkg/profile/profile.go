// Package profile derives elevation, gradient, speed and time profiles from a
// route, and reduces them to a single difficulty score. All computations are
// pure and synchronous.
package profile

import (
	"math"

	"github.com/velomet/ridecast/pkg/track"
)

// DefaultTargetSpeedKmh is the reference average speed the engine was
// calibrated against. The profile score always uses it, independent of the
// pace a rider is currently viewing.
const DefaultTargetSpeedKmh = 27.0

const (
	// flatSpeedRatio carries the reference calibration: a 27 km/h route
	// average corresponds to a 32 km/h flat cruising speed.
	flatSpeedRatio = 32.0 / 27.0

	smoothingSigmaKm = 0.6
	gradientWindowKm = 0.2
	minRunM          = 10.0

	descentTriggerPct  = -0.5
	descentGainPerPct  = 0.05
	longDescentKm      = 1.0
	longDescentCapMult = 95.0 / 32.0
	descentCapMult     = 75.0 / 32.0
	minSpeedKmh        = 5.0

	calibrationKMin   = 0.05
	calibrationKMax   = 0.5
	calibrationKSteps = 10
)

// Point is one entry of a computed elevation/speed profile, parallel to the
// route's points.
type Point struct {
	DistanceKm   float64 `json:"dist"`
	Elevation    float64 `json:"ele"`
	RawElevation float64 `json:"rawEle"`
	Gradient     float64 `json:"gradient"`
	SpeedKmh     float64 `json:"speed"`
	TimeH        float64 `json:"time"`
	ClimbM       float64 `json:"climb"`
	RawClimbM    float64 `json:"rawClimb"`
	Lat          float64 `json:"lat"`
	Lon          float64 `json:"lon"`
}

// Compute derives the full profile for a route. targetSpeedKmh is the average
// speed the speed model is calibrated to; it must be positive (callers clamp
// before invoking). mountain raises the descent-speed ceiling on long
// descents. Routes with fewer than two points yield an empty profile.
func Compute(t *track.RouteTrack, targetSpeedKmh float64, mountain bool) []Point {
	if t == nil || len(t.Points) < 2 {
		return nil
	}
	dist := t.CumulativeDistanceKm
	raw := rawElevations(t.Points)
	smooth := gaussianSmooth(dist, raw)
	grad := gradients(dist, smooth)
	k := calibrate(dist, grad, targetSpeedKmh, mountain)
	return integrate(t, dist, raw, smooth, grad, k, targetSpeedKmh, mountain)
}

// rawElevations fills unknown elevations by carrying the last known value
// forward; a run of unknown points at the head takes the first known value.
func rawElevations(points []track.Point) []float64 {
	out := make([]float64, len(points))
	first := 0.0
	for _, p := range points {
		if p.HasElevation {
			first = p.Elevation
			break
		}
	}
	last := first
	for i, p := range points {
		if p.HasElevation {
			last = p.Elevation
		}
		out[i] = last
	}
	return out
}

// gaussianSmooth applies a Gaussian-weighted moving average of elevation
// against cumulative distance. Weighting by distance rather than sample count
// keeps irregular GPX point density from biasing the result; the window
// extends 3 sigma to both sides of each point. Deltas are accumulated
// relative to the centre point's own elevation so that a constant input is
// reproduced bit for bit.
func gaussianSmooth(dist, elev []float64) []float64 {
	sigma := smoothingSigmaKm
	radius := 3 * sigma
	out := make([]float64, len(elev))
	lo := 0
	for i := range elev {
		for lo < i && dist[i]-dist[lo] > radius {
			lo++
		}
		var wsum, dsum float64
		for j := lo; j < len(elev); j++ {
			d := dist[j] - dist[i]
			if d > radius {
				break
			}
			w := math.Exp(-(d * d) / (2 * sigma * sigma))
			wsum += w
			dsum += w * (elev[j] - elev[i])
		}
		out[i] = elev[i] + dsum/wsum
	}
	return out
}

// gradients computes the local gradient (percent) at each point from the
// widest window of neighbours within half the target width on either side.
// Windows whose achievable run is 10 m or less yield gradient zero, so
// duplicate and near-duplicate points cannot blow up the division.
func gradients(dist, smooth []float64) []float64 {
	half := gradientWindowKm / 2
	out := make([]float64, len(dist))
	for i := range dist {
		lo, hi := i, i
		for lo > 0 && dist[i]-dist[lo-1] <= half {
			lo--
		}
		for hi < len(dist)-1 && dist[hi+1]-dist[i] <= half {
			hi++
		}
		runM := (dist[hi] - dist[lo]) * 1000
		if runM <= minRunM {
			continue
		}
		riseM := smooth[hi] - smooth[lo]
		out[i] = riseM / runM * 100
	}
	return out
}

// speedAt models the riding speed at a point. Climbing speed falls away from
// the flat cruising speed with the calibrated steepness factor k; descents
// speed up with gradient but are held under a regional ceiling and above a
// small floor. descentRunKm is the contiguous descent length accumulated up
// to this point.
func speedAt(gradient, k, vFlat, descentRunKm float64, mountain bool) float64 {
	if gradient >= 0 {
		return vFlat / (1 + k*gradient)
	}
	uncapped := vFlat * (1 + descentGainPerPct*math.Abs(gradient))
	ceiling := vFlat * descentCapMult
	if mountain && descentRunKm > longDescentKm {
		ceiling = vFlat * longDescentCapMult
	}
	v := math.Min(uncapped, ceiling)
	return math.Max(v, minSpeedKmh)
}

// routeTimeH walks the whole route with steepness factor k and returns the
// total modeled time in hours. Leg time uses the speed at the arrival point.
func routeTimeH(dist, grad []float64, k, vFlat float64, mountain bool) float64 {
	var timeH, descentRunKm float64
	for i := 1; i < len(dist); i++ {
		legKm := dist[i] - dist[i-1]
		if grad[i] < descentTriggerPct {
			descentRunKm += legKm
		} else {
			descentRunKm = 0
		}
		v := speedAt(grad[i], k, vFlat, descentRunKm, mountain)
		timeH += legKm / v
	}
	return timeH
}

// calibrate picks the steepness factor k whose whole-route average speed
// comes closest to the target. A coarse grid over [kMin, kMax] is refined
// once around the best coarse cell; the result depends on the route and the
// target, so it is recomputed whenever either changes.
func calibrate(dist, grad []float64, targetSpeedKmh float64, mountain bool) float64 {
	vFlat := targetSpeedKmh * flatSpeedRatio
	total := dist[len(dist)-1]
	if total <= 0 {
		return calibrationKMin
	}

	objective := func(k float64) float64 {
		t := routeTimeH(dist, grad, k, vFlat, mountain)
		if t <= 0 {
			return math.Inf(1)
		}
		return math.Abs(total/t - targetSpeedKmh)
	}

	step := (calibrationKMax - calibrationKMin) / float64(calibrationKSteps-1)
	bestK, bestErr := calibrationKMin, math.Inf(1)
	for i := 0; i < calibrationKSteps; i++ {
		k := calibrationKMin + float64(i)*step
		if e := objective(k); e < bestErr {
			bestK, bestErr = k, e
		}
	}

	lo := math.Max(calibrationKMin, bestK-step)
	hi := math.Min(calibrationKMax, bestK+step)
	fine := (hi - lo) / float64(calibrationKSteps-1)
	for i := 0; i < calibrationKSteps; i++ {
		k := lo + float64(i)*fine
		if e := objective(k); e < bestErr {
			bestK, bestErr = k, e
		}
	}
	return bestK
}

// integrate produces the final profile: per-point speed, cumulative time and
// two cumulative climbs. The climb from smoothed elevation drives the score;
// the raw climb is carried alongside because displays need the real total,
// and it skips legs where either raw elevation is unknown.
func integrate(t *track.RouteTrack, dist, raw, smooth, grad []float64, k, targetSpeedKmh float64, mountain bool) []Point {
	vFlat := targetSpeedKmh * flatSpeedRatio
	out := make([]Point, len(dist))
	out[0] = Point{
		DistanceKm:   dist[0],
		Elevation:    smooth[0],
		RawElevation: raw[0],
		Gradient:     grad[0],
		SpeedKmh:     speedAt(grad[0], k, vFlat, 0, mountain),
		Lat:          t.Points[0].Lat,
		Lon:          t.Points[0].Lon,
	}
	var descentRunKm float64
	for i := 1; i < len(dist); i++ {
		legKm := dist[i] - dist[i-1]
		if grad[i] < descentTriggerPct {
			descentRunKm += legKm
		} else {
			descentRunKm = 0
		}
		v := speedAt(grad[i], k, vFlat, descentRunKm, mountain)

		p := Point{
			DistanceKm:   dist[i],
			Elevation:    smooth[i],
			RawElevation: raw[i],
			Gradient:     grad[i],
			SpeedKmh:     v,
			TimeH:        out[i-1].TimeH + legKm/v,
			ClimbM:       out[i-1].ClimbM,
			RawClimbM:    out[i-1].RawClimbM,
			Lat:          t.Points[i].Lat,
			Lon:          t.Points[i].Lon,
		}
		if d := smooth[i] - smooth[i-1]; d > 0 {
			p.ClimbM += d
		}
		if t.Points[i-1].HasElevation && t.Points[i].HasElevation {
			if d := raw[i] - raw[i-1]; d > 0 {
				p.RawClimbM += d
			}
		}
		out[i] = p
	}
	return out
}

// AverageSpeedKmh returns the whole-route average speed of a computed
// profile, or zero for profiles with no modeled time.
func AverageSpeedKmh(points []Point) float64 {
	if len(points) < 2 {
		return 0
	}
	last := points[len(points)-1]
	if last.TimeH <= 0 {
		return 0
	}
	return last.DistanceKm / last.TimeH
}
