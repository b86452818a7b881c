// Package track parses GPX payloads into the route representation consumed by
// the profile engine. Both the track-point (trkpt) and route-point (rtept)
// vocabularies are accepted.
package track

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/velomet/ridecast/pkg/geo"
)

// ErrNoRoute is returned when a payload contains no usable points: malformed
// XML, neither trkpt nor rtept elements, or no point with valid coordinates.
var ErrNoRoute = errors.New("no usable route")

// Point is a single geographic point of a route. Elevation is only
// meaningful when HasElevation is true; a GPX point is free to omit <ele>,
// and an absent elevation must not be confused with sea level.
type Point struct {
	Lat          float64
	Lon          float64
	Elevation    float64
	HasElevation bool
}

// RouteTrack is an ordered, immutable sequence of route points with the
// cumulative great-circle distance to each point.
//
// TotalAscentM is the naive ascent: the sum of positive elevation deltas
// between consecutive raw points where both elevations are known. No
// smoothing is applied at parse time.
type RouteTrack struct {
	Points               []Point
	CumulativeDistanceKm []float64
	TotalDistanceKm      float64
	TotalAscentM         float64
}

type gpxDocument struct {
	XMLName   xml.Name   `xml:"gpx"`
	TrkPoints []rawPoint `xml:"trk>trkseg>trkpt"`
	RtePoints []rawPoint `xml:"rte>rtept"`
}

type rawPoint struct {
	Lat string  `xml:"lat,attr"`
	Lon string  `xml:"lon,attr"`
	Ele *string `xml:"ele"`
}

// Parse reads a GPX document and builds a RouteTrack. Points with a missing
// or non-finite latitude or longitude are dropped; a missing elevation keeps
// the point but marks its elevation unknown.
func Parse(r io.Reader) (*RouteTrack, error) {
	var doc gpxDocument
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoRoute, err)
	}
	raw := doc.TrkPoints
	if len(raw) == 0 {
		raw = doc.RtePoints
	}
	if len(raw) == 0 {
		return nil, ErrNoRoute
	}

	points := make([]Point, 0, len(raw))
	for _, rp := range raw {
		lat, ok1 := parseCoord(rp.Lat)
		lon, ok2 := parseCoord(rp.Lon)
		if !ok1 || !ok2 {
			continue
		}
		p := Point{Lat: lat, Lon: lon}
		if rp.Ele != nil {
			if e, ok := parseCoord(*rp.Ele); ok {
				p.Elevation = e
				p.HasElevation = true
			}
		}
		points = append(points, p)
	}
	if len(points) == 0 {
		return nil, ErrNoRoute
	}

	t := RouteTrack{
		Points:               points,
		CumulativeDistanceKm: make([]float64, len(points)),
	}
	for i := 1; i < len(points); i++ {
		prev, cur := points[i-1], points[i]
		leg := geo.HaversineDistanceKm(prev.Lat, prev.Lon, cur.Lat, cur.Lon)
		t.CumulativeDistanceKm[i] = t.CumulativeDistanceKm[i-1] + leg
		if prev.HasElevation && cur.HasElevation {
			if d := cur.Elevation - prev.Elevation; d > 0 {
				t.TotalAscentM += d
			}
		}
	}
	t.TotalDistanceKm = t.CumulativeDistanceKm[len(points)-1]
	return &t, nil
}

func parseCoord(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
