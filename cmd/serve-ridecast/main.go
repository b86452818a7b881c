package main

import (
	"encoding/json"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/velomet/ridecast/pkg/planner"
	"github.com/velomet/ridecast/pkg/profile"
	"github.com/velomet/ridecast/pkg/registry"
	"github.com/velomet/ridecast/pkg/routes"
	"github.com/velomet/ridecast/pkg/weather"
)

func main() {
	godotenv.Load()

	listenAddr := os.Getenv("LISTEN_ADDR")
	if listenAddr == "" {
		listenAddr = ":8000"
	}

	reg := registry.Default()

	var weatherOpts []weather.Option
	if u := os.Getenv("WEATHER_BASE_URL"); u != "" {
		weatherOpts = append(weatherOpts, weather.WithBaseURL(u))
	}
	var routeOpts []routes.Option
	if u := os.Getenv("ROUTES_BASE_URL"); u != "" {
		routeOpts = append(routeOpts, routes.WithBaseURL(u))
	}

	wc := weather.NewClient(weatherOpts...)
	matcher := routes.NewMatcher(reg, routeOpts...)
	pl := planner.New(reg, wc, matcher)

	h := &handler{reg: reg, matcher: matcher, planner: pl}
	http.HandleFunc("/health", h.health)
	http.HandleFunc("/forecast", h.forecast)
	http.HandleFunc("/route", h.route)
	log.Printf("Listening on %s", listenAddr)
	log.Fatal(http.ListenAndServe(listenAddr, nil))
}

type handler struct {
	reg     *registry.Registry
	matcher *routes.Matcher
	planner *planner.Planner
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

// forecast runs a full sweep for the upcoming two weekends and returns the
// per-city results plus the rankings a client sorts its lists by.
func (h *handler) forecast(w http.ResponseWriter, r *http.Request) {
	dates := planner.WeekendDates(time.Now())
	log.Printf("Handling forecast request for %d dates", len(dates))
	results := h.planner.Plan(r.Context(), dates)
	writeJSON(w, map[string]interface{}{
		"results":      results,
		"sunniestDays": planner.SunniestDays(results),
		"bySunshine":   planner.RankBySunshine(results),
		"byScore":      planner.RankByScore(results),
	})
}

// route matches routes for one city and wind bearing and returns each
// candidate's elevation/speed profile and score.
func (h *handler) route(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	cityName := q.Get("city")
	if cityName == "" {
		http.Error(w, "city is required", http.StatusBadRequest)
		return
	}
	city, ok := h.reg.City(cityName)
	if !ok {
		http.Error(w, "unknown city: "+cityName, http.StatusNotFound)
		return
	}
	bearing, err := strconv.ParseFloat(q.Get("bearing"), 64)
	if err != nil {
		http.Error(w, "invalid bearing", http.StatusBadRequest)
		return
	}
	speed := profile.DefaultTargetSpeedKmh
	if raw := q.Get("speed"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			http.Error(w, "invalid speed", http.StatusBadRequest)
			return
		}
		speed = clamp(v, 23, 38)
	}

	log.Printf("Handling route request for city=%s bearing=%.0f", cityName, bearing)
	cands := h.matcher.Match(r.Context(), cityName, bearing)
	type routeResponse struct {
		Filename string          `json:"filename"`
		Variant  int             `json:"variant"`
		Distance float64         `json:"distanceKm"`
		Ascent   float64         `json:"ascentM"`
		Score    int             `json:"score"`
		Profile  []profile.Point `json:"profile"`
	}
	out := make([]routeResponse, 0, len(cands))
	for _, c := range cands {
		out = append(out, routeResponse{
			Filename: c.Filename,
			Variant:  c.Variant,
			Distance: c.Track.TotalDistanceKm,
			Ascent:   c.Track.TotalAscentM,
			Score:    profile.Score(c.Track, city.Mountain),
			Profile:  profile.Compute(c.Track, speed, city.Mountain),
		})
	}
	writeJSON(w, map[string]interface{}{
		"city":   cityName,
		"routes": out,
	})
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Add("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
