// Package planner orchestrates a full fetch-and-analyze sweep: batched
// concurrent weather fetches for the whole roster, ride-suitability analysis
// per city and day, route matching on dry days, and the rankings a display
// layer sorts by.
package planner

import (
	"context"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/velomet/ridecast/pkg/analysis"
	"github.com/velomet/ridecast/pkg/profile"
	"github.com/velomet/ridecast/pkg/registry"
	"github.com/velomet/ridecast/pkg/routes"
	"github.com/velomet/ridecast/pkg/weather"
)

// CityResult is the per-city outcome of one sweep: one DayStats per
// requested date plus the highest profile score across every route that was
// matched for the city.
type CityResult struct {
	City     string               `json:"city"`
	Days     []*analysis.DayStats `json:"days"`
	Routes   []routes.Candidate   `json:"-"`
	MaxScore int                  `json:"maxScore"`
}

// Planner ties the weather client, the route matcher and the registry
// together. It owns no mutable state between sweeps.
type Planner struct {
	reg        *registry.Registry
	weather    *weather.Client
	matcher    *routes.Matcher
	batchSize  int
	batchDelay time.Duration
}

type Option func(*Planner)

// WithBatchSize bounds how many cities are fetched concurrently.
func WithBatchSize(n int) Option {
	return func(p *Planner) {
		p.batchSize = n
	}
}

// WithBatchDelay inserts a pause between batches.
func WithBatchDelay(d time.Duration) Option {
	return func(p *Planner) {
		p.batchDelay = d
	}
}

func New(reg *registry.Registry, w *weather.Client, m *routes.Matcher, opt ...Option) *Planner {
	p := &Planner{
		reg:       reg,
		weather:   w,
		matcher:   m,
		batchSize: 10,
	}
	for _, f := range opt {
		f(p)
	}
	return p
}

// Plan runs a sweep over the whole roster for the given dates. Cities whose
// fetch fails are retried in a second pass after the first full sweep; a
// city that still fails is simply absent from the result set. Results keep
// request order within each batch; callers re-sort for display.
func (p *Planner) Plan(ctx context.Context, dates []time.Time) []CityResult {
	if len(dates) == 0 {
		return nil
	}
	cities := p.reg.Cities()

	results, failed := p.sweep(ctx, cities, dates)
	if len(failed) > 0 {
		log.Printf("Retrying %d failed cities", len(failed))
		retried, stillFailed := p.sweep(ctx, failed, dates)
		results = append(results, retried...)
		for _, c := range stillFailed {
			log.Printf("No result for %s", c.Name)
		}
	}
	return results
}

func (p *Planner) sweep(ctx context.Context, cities []registry.City, dates []time.Time) ([]CityResult, []registry.City) {
	var results []CityResult
	var failed []registry.City
	for start := 0; start < len(cities); start += p.batchSize {
		end := start + p.batchSize
		if end > len(cities) {
			end = len(cities)
		}
		batch := cities[start:end]

		slots := make([]*CityResult, len(batch))
		g, gctx := errgroup.WithContext(ctx)
		for i, city := range batch {
			i, city := i, city
			g.Go(func() error {
				r, err := p.analyzeCity(gctx, city, dates)
				if err != nil {
					log.Printf("Error analyzing %s: %v", city.Name, err)
					return nil
				}
				slots[i] = r
				return nil
			})
		}
		g.Wait()

		for i, r := range slots {
			if r == nil {
				failed = append(failed, batch[i])
				continue
			}
			results = append(results, *r)
		}
		if p.batchDelay > 0 && end < len(cities) {
			select {
			case <-ctx.Done():
				return results, failed
			case <-time.After(p.batchDelay):
			}
		}
	}
	return results, failed
}

// analyzeCity fetches one city's forecast and builds its DayStats. Dry days
// trigger route matching; a matched route (or flight-only status) attaches
// the ride-duration estimate, and the best profile score across matched
// routes is kept for the ranking.
func (p *Planner) analyzeCity(ctx context.Context, city registry.City, dates []time.Time) (*CityResult, error) {
	start, end := dateRange(dates)
	forecast, err := p.weather.Forecast(ctx, city.Lat, city.Lon, start, end)
	if err != nil {
		return nil, err
	}

	result := CityResult{City: city.Name}
	for _, date := range dates {
		day, err := forecast.Day(date)
		if err != nil {
			return nil, err
		}
		stats := analysis.AnalyzeDay(city, day)

		if stats.IsDry {
			switch {
			case city.FlightOnly:
				analysis.AttachRide(stats, city, day, 0)
			default:
				cands := p.matcher.Match(ctx, city.Name, stats.WindBearing)
				if len(cands) > 0 {
					analysis.AttachRide(stats, city, day, cands[0].Track.TotalDistanceKm)
					result.Routes = append(result.Routes, cands...)
					for _, c := range cands {
						if s := profile.Score(c.Track, city.Mountain); s > result.MaxScore {
							result.MaxScore = s
						}
					}
				}
			}
		}
		result.Days = append(result.Days, stats)
	}
	return &result, nil
}

func dateRange(dates []time.Time) (time.Time, time.Time) {
	start, end := dates[0], dates[0]
	for _, d := range dates[1:] {
		if d.Before(start) {
			start = d
		}
		if d.After(end) {
			end = d
		}
	}
	return start, end
}

// WeekendDates returns the next two weekends (Saturday and Sunday each)
// relative to now, in chronological order. A weekend already in progress
// counts as the first one.
func WeekendDates(now time.Time) []time.Time {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	// Walk back to the Saturday of the current week, so a Sunday "now"
	// still yields the running weekend.
	sat := day
	for sat.Weekday() != time.Saturday {
		if sat.Weekday() == time.Sunday {
			sat = sat.AddDate(0, 0, -1)
			break
		}
		sat = sat.AddDate(0, 0, 1)
	}
	var dates []time.Time
	for w := 0; w < 2; w++ {
		wd := sat.AddDate(0, 0, 7*w)
		dates = append(dates, wd, wd.AddDate(0, 0, 1))
	}
	return dates
}
