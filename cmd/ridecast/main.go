package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/velomet/ridecast/pkg/planner"
	"github.com/velomet/ridecast/pkg/profile"
	"github.com/velomet/ridecast/pkg/registry"
	"github.com/velomet/ridecast/pkg/routes"
	"github.com/velomet/ridecast/pkg/track"
	"github.com/velomet/ridecast/pkg/weather"
)

func main() {
	log.SetFlags(0)
	app := &cli.App{
		Name:  "ridecast",
		Usage: "Weather-aware road ride planning for a fixed city roster",
		Commands: []*cli.Command{
			{
				Name:  "forecast",
				Usage: "Analyze the roster for the upcoming two weekends and print ranked results",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "weather-url",
						Usage: "Override the forecast API base URL",
					},
					&cli.StringFlag{
						Name:  "routes-url",
						Usage: "Override the route file base URL",
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of cities fetched concurrently",
						Value: 10,
					},
				},
				Action: runForecast,
			},
			{
				Name:  "score",
				Usage: "Compute the elevation profile and difficulty score of a local GPX file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "gpx-file",
						Aliases:  []string{"g"},
						Usage:    "Name of GPX file to score",
						Required: true,
					},
					&cli.Float64Flag{
						Name:    "speed",
						Aliases: []string{"s"},
						Usage:   "Target average speed in km/h",
						Value:   profile.DefaultTargetSpeedKmh,
					},
					&cli.BoolFlag{
						Name:  "mountain",
						Usage: "Use the mountain-region descent speed ceiling",
					},
				},
				Action: runScore,
			},
		},
	}
	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func runForecast(c *cli.Context) error {
	reg := registry.Default()

	var weatherOpts []weather.Option
	if u := c.String("weather-url"); u != "" {
		weatherOpts = append(weatherOpts, weather.WithBaseURL(u))
	}
	var routeOpts []routes.Option
	if u := c.String("routes-url"); u != "" {
		routeOpts = append(routeOpts, routes.WithBaseURL(u))
	}

	pl := planner.New(
		reg,
		weather.NewClient(weatherOpts...),
		routes.NewMatcher(reg, routeOpts...),
		planner.WithBatchSize(c.Int("batch-size")),
	)

	dates := planner.WeekendDates(time.Now())
	results := pl.Plan(c.Context, dates)

	fmt.Println("Sunniest rideable days:")
	for _, d := range planner.SunniestDays(results) {
		fmt.Printf("  %s %s  %0.1fh sun, %0.0f–%0.0f°C, wind %0.0f km/h %s",
			d.Stats.Date.Format("Mon 02 Jan"), d.City,
			d.Stats.SunshineHours, d.Stats.TempMinC, d.Stats.TempMaxC,
			d.Stats.WindMaxKmh, d.Stats.WindCompass)
		if d.Stats.HasRide {
			fmt.Printf("  ride %s", d.Stats.RideDuration)
		}
		fmt.Println()
	}

	fmt.Println("\nBy total sunshine:")
	for _, r := range planner.RankBySunshine(results) {
		fmt.Printf("  %-14s %0.1fh\n", r.City, r.SunshineHours)
	}

	fmt.Println("\nBy route difficulty:")
	for _, r := range planner.RankByScore(results) {
		fmt.Printf("  %-14s %d\n", r.City, r.MaxScore)
	}
	return nil
}

func runScore(c *cli.Context) error {
	filename := c.String("gpx-file")
	r, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("error opening %s for reading: %v", filename, err)
	}
	defer r.Close()
	t, err := track.Parse(r)
	if err != nil {
		return fmt.Errorf("error parsing GPX track %s: %v", filename, err)
	}

	speed := c.Float64("speed")
	if speed <= 0 {
		return fmt.Errorf("speed must be positive, got %f", speed)
	}
	mountain := c.Bool("mountain")

	points := profile.Compute(t, speed, mountain)
	score := profile.Score(t, mountain)

	fmt.Printf("Distance:  %0.1f km\n", t.TotalDistanceKm)
	fmt.Printf("Ascent:    %0.0f m (raw)\n", t.TotalAscentM)
	if len(points) > 0 {
		last := points[len(points)-1]
		fmt.Printf("Climb:     %0.0f m (smoothed)\n", last.ClimbM)
		fmt.Printf("Time:      %0.2f h at target %0.0f km/h\n", last.TimeH, speed)
		fmt.Printf("Average:   %0.1f km/h\n", profile.AverageSpeedKmh(points))
	}
	fmt.Printf("Score:     %d\n", score)

	if city, distKm, ok := registry.Default().Nearest(t.Points[0].Lat, t.Points[0].Lon); ok {
		fmt.Printf("Nearest city: %s (%0.1f km from start)\n", city.Name, distKm)
	}
	return nil
}
