// Package weather fetches hourly forecasts from an Open-Meteo compatible API
// and exposes them as typed, bounds-checked day slices. Slicing fails loudly
// on short payloads instead of letting out-of-range hours turn into NaNs
// downstream.
package weather

import (
	"fmt"
	"time"
)

// HourlySeries is the raw hourly payload of a forecast response. All series
// are parallel to Time.
type HourlySeries struct {
	Time                     []string  `json:"time"`
	Temperature2m            []float64 `json:"temperature_2m"`
	ApparentTemperature      []float64 `json:"apparent_temperature"`
	Precipitation            []float64 `json:"precipitation"`
	PrecipitationProbability []float64 `json:"precipitation_probability"`
	WindSpeed10m             []float64 `json:"windspeed_10m"`
	WindGusts10m             []float64 `json:"windgusts_10m"`
	WindDirection10m         []float64 `json:"winddirection_10m"`
	SunshineDuration         []float64 `json:"sunshine_duration"`
	Temperature850hPa        []float64 `json:"temperature_850hPa"`
	Temperature700hPa        []float64 `json:"temperature_700hPa"`
}

// Forecast is a decoded forecast response for one location.
type Forecast struct {
	Latitude  float64      `json:"latitude"`
	Longitude float64      `json:"longitude"`
	Hourly    HourlySeries `json:"hourly"`
}

// DaySlice is a 24-hour view into a forecast, starting at local midnight.
// Index h is the local hour h.
type DaySlice struct {
	Date                     time.Time
	Temperature              []float64
	ApparentTemperature      []float64
	Precipitation            []float64
	PrecipitationProbability []float64
	WindSpeed                []float64
	WindGusts                []float64
	WindDirection            []float64
	SunshineDuration         []float64
	Temperature850hPa        []float64
	Temperature700hPa        []float64
}

const hoursPerDay = 24

// Day returns the 24-hour slice for the given calendar date. It is an error
// if the date is not covered or any hourly series is too short.
func (f *Forecast) Day(date time.Time) (*DaySlice, error) {
	prefix := date.Format("2006-01-02")
	start := -1
	for i, ts := range f.Hourly.Time {
		if len(ts) >= len(prefix) && ts[:len(prefix)] == prefix {
			start = i
			break
		}
	}
	if start < 0 {
		return nil, fmt.Errorf("forecast does not cover %s", prefix)
	}
	end := start + hoursPerDay

	slice := &DaySlice{Date: date}
	for _, s := range []struct {
		name string
		src  []float64
		dst  *[]float64
	}{
		{"temperature_2m", f.Hourly.Temperature2m, &slice.Temperature},
		{"apparent_temperature", f.Hourly.ApparentTemperature, &slice.ApparentTemperature},
		{"precipitation", f.Hourly.Precipitation, &slice.Precipitation},
		{"precipitation_probability", f.Hourly.PrecipitationProbability, &slice.PrecipitationProbability},
		{"windspeed_10m", f.Hourly.WindSpeed10m, &slice.WindSpeed},
		{"windgusts_10m", f.Hourly.WindGusts10m, &slice.WindGusts},
		{"winddirection_10m", f.Hourly.WindDirection10m, &slice.WindDirection},
		{"sunshine_duration", f.Hourly.SunshineDuration, &slice.SunshineDuration},
		{"temperature_850hPa", f.Hourly.Temperature850hPa, &slice.Temperature850hPa},
		{"temperature_700hPa", f.Hourly.Temperature700hPa, &slice.Temperature700hPa},
	} {
		if len(s.src) < end {
			return nil, fmt.Errorf("hourly series %s too short for %s: have %d, need %d", s.name, prefix, len(s.src), end)
		}
		*s.dst = s.src[start:end]
	}
	return slice, nil
}
