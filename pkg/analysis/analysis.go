// Package analysis turns a day of hourly forecast data into a ride-planning
// verdict: whether the day is dry enough to ride, what the wind will do, what
// to wear, and how long the matched route will take.
package analysis

import (
	"fmt"
	"math"
	"time"

	"github.com/velomet/ridecast/pkg/geo"
	"github.com/velomet/ridecast/pkg/registry"
	"github.com/velomet/ridecast/pkg/weather"
)

const (
	// Active riding window, local hours [start, end).
	activeStartHour = 9
	activeEndHour   = 18

	// Rain accumulation for ride eligibility starts earlier than the
	// active window and runs to the end of the day.
	rainStartHour = 4

	morningEndHour = 12

	dryThresholdMm     = 0.5
	morningThresholdMm = 0.1
	wetHourThresholdMm = 0.1

	minRideableTempC = 5.0

	// Coarse duration planning pace; distinct from the interactive pace of
	// the profile engine.
	planningPaceKmh = 30.0
	rideStartHour   = 10

	// Nominal ride length assumed for flight-only destinations.
	flightOnlyRideHours = 3.0
)

// DayStats aggregates one calendar day of forecast for one city. It is
// immutable once built; a new fetch cycle replaces it wholesale.
type DayStats struct {
	City string    `json:"city"`
	Date time.Time `json:"date"`

	TempMinC      float64 `json:"tempMin"`
	TempMaxC      float64 `json:"tempMax"`
	FeelsLikeMinC float64 `json:"feelsLikeMin"`
	FeelsLikeMaxC float64 `json:"feelsLikeMax"`

	WindMinKmh  float64 `json:"windMin"`
	WindMaxKmh  float64 `json:"windMax"`
	GustMaxKmh  float64 `json:"gustMax"`
	WindBearing float64 `json:"windBearing"`
	WindCompass string  `json:"windCompass"`

	PrecipitationMm   float64 `json:"precipitation"`
	PrecipitationProb float64 `json:"precipitationProb"`
	SunshineHours     float64 `json:"sunshineHours"`
	RainHours         string  `json:"rainHours,omitempty"`

	IsDry      bool `json:"isDry"`
	MorningOK  bool `json:"morningOk"`
	IsRideable bool `json:"isRideable"`

	Clothing []string `json:"clothing,omitempty"`

	// Free-air temperatures, reported for mountain cities only.
	Temp850MinC float64 `json:"temp850Min,omitempty"`
	Temp850MaxC float64 `json:"temp850Max,omitempty"`
	Temp700MinC float64 `json:"temp700Min,omitempty"`
	Temp700MaxC float64 `json:"temp700Max,omitempty"`

	// Populated by AttachRide when a route was matched.
	HasRide        bool    `json:"hasRide"`
	RideDuration   string  `json:"rideDuration,omitempty"`
	TempAtStartC   float64 `json:"tempAtStart,omitempty"`
	TempAtEndC     float64 `json:"tempAtEnd,omitempty"`
	Temp850StartC  float64 `json:"temp850Start,omitempty"`
	Temp850EndC    float64 `json:"temp850End,omitempty"`
	Temp700StartC  float64 `json:"temp700Start,omitempty"`
	Temp700EndC    float64 `json:"temp700End,omitempty"`
	RideDurationH  float64 `json:"rideDurationHours,omitempty"`
	RideDistanceKm float64 `json:"rideDistanceKm,omitempty"`
}

// AnalyzeDay reduces a 24-hour forecast slice to a DayStats verdict for the
// given city.
func AnalyzeDay(city registry.City, day *weather.DaySlice) *DayStats {
	s := DayStats{City: city.Name, Date: day.Date}

	active := func(series []float64) []float64 { return series[activeStartHour:activeEndHour] }

	s.TempMinC, s.TempMaxC = minMax(active(day.Temperature))
	s.FeelsLikeMinC, s.FeelsLikeMaxC = minMax(active(day.ApparentTemperature))
	s.WindMinKmh, s.WindMaxKmh = minMax(active(day.WindSpeed))
	_, s.GustMaxKmh = minMax(active(day.WindGusts))
	_, s.PrecipitationProb = minMax(active(day.PrecipitationProbability))

	for _, sec := range active(day.SunshineDuration) {
		s.SunshineHours += sec / 3600
	}

	// The dominant bearing is taken at the hour of peak wind, not averaged:
	// route matching cares about the steadiest exposure, not the mean.
	peak := activeStartHour
	for h := activeStartHour; h < activeEndHour; h++ {
		if day.WindSpeed[h] > day.WindSpeed[peak] {
			peak = h
		}
	}
	s.WindBearing = day.WindDirection[peak]
	s.WindCompass = geo.Compass8(s.WindBearing)

	var activeRain float64
	for h := activeStartHour; h < activeEndHour; h++ {
		activeRain += day.Precipitation[h]
	}
	s.IsDry = activeRain <= dryThresholdMm

	var morningRain float64
	for h := activeStartHour; h < morningEndHour; h++ {
		morningRain += day.Precipitation[h]
	}
	s.MorningOK = morningRain <= morningThresholdMm

	var wetHours []int
	for h := rainStartHour; h < len(day.Precipitation); h++ {
		s.PrecipitationMm += day.Precipitation[h]
		if day.Precipitation[h] > wetHourThresholdMm {
			wetHours = append(wetHours, h)
		}
	}
	s.RainHours = FormatRainHours(wetHours)

	s.IsRideable = s.IsDry && s.TempMaxC >= minRideableTempC

	if city.Mountain {
		s.Temp850MinC, s.Temp850MaxC = minMax(active(day.Temperature850hPa))
		s.Temp700MinC, s.Temp700MaxC = minMax(active(day.Temperature700hPa))
	}

	s.Clothing = clothing(clothingInput{
		tMax:       s.TempMaxC,
		tMin:       s.TempMinC,
		windMax:    s.WindMaxKmh,
		activeRain: activeRain,
		morningOK:  s.MorningOK,
		earlyTempC: mean(day.Temperature[activeStartHour:11]),
		lateTempC:  mean(day.Temperature[11:activeEndHour]),
		mountain:   city.Mountain,
	})
	return &s
}

// AttachRide fills the ride-duration and start/end temperature fields once a
// route has been matched. distanceKm is ignored for flight-only cities,
// which get a fixed nominal ride length instead of a GPX-based one.
func AttachRide(s *DayStats, city registry.City, day *weather.DaySlice, distanceKm float64) {
	durationH := distanceKm / planningPaceKmh
	if city.FlightOnly {
		durationH = flightOnlyRideHours
	} else {
		s.RideDistanceKm = distanceKm
	}
	s.HasRide = true
	s.RideDurationH = durationH
	s.RideDuration = formatDuration(durationH)

	endHour := rideStartHour + int(math.Round(durationH))
	if endHour > 23 {
		endHour = 23
	}
	s.TempAtStartC = day.Temperature[rideStartHour]
	s.TempAtEndC = day.Temperature[endHour]
	if city.Mountain {
		s.Temp850StartC = day.Temperature850hPa[rideStartHour]
		s.Temp850EndC = day.Temperature850hPa[endHour]
		s.Temp700StartC = day.Temperature700hPa[rideStartHour]
		s.Temp700EndC = day.Temperature700hPa[endHour]
	}
}

// FormatRainHours renders a list of wet local hours as merged ranges, e.g.
// hours 13,14,15 and 20 become "13:00–16:00, 20:00".
func FormatRainHours(hours []int) string {
	if len(hours) == 0 {
		return ""
	}
	var out string
	start := hours[0]
	prev := hours[0]
	flush := func() {
		if out != "" {
			out += ", "
		}
		if prev > start {
			out += fmt.Sprintf("%02d:00–%02d:00", start, prev+1)
		} else {
			out += fmt.Sprintf("%02d:00", start)
		}
	}
	for _, h := range hours[1:] {
		if h == prev+1 {
			prev = h
			continue
		}
		flush()
		start, prev = h, h
	}
	flush()
	return out
}

func formatDuration(hours float64) string {
	totalMin := int(math.Round(hours * 60))
	return fmt.Sprintf("%d:%02d", totalMin/60, totalMin%60)
}

func minMax(xs []float64) (float64, float64) {
	if len(xs) == 0 {
		return 0, 0
	}
	lo, hi := xs[0], xs[0]
	for _, x := range xs[1:] {
		if x < lo {
			lo = x
		}
		if x > hi {
			hi = x
		}
	}
	return lo, hi
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}
