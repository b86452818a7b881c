// Package registry holds the immutable city configuration driving the
// planner: coordinates, route-file name tokens, flight-only destinations and
// mountain cities. The registry is injected wherever city knowledge is
// needed, so tests can substitute a small synthetic roster.
package registry

import (
	"math"
	"sort"

	"github.com/dhconnelly/rtreego"

	"github.com/velomet/ridecast/pkg/geo"
)

// City is one entry of the roster.
//
// Token is the latinised filename token used to construct route-file names;
// it defaults to the lower-cased name. FlightOnly marks destinations reached
// by air, which are exempt from route matching. Mountain cities report
// free-air temperatures and get the raised descent-speed ceiling.
type City struct {
	Name       string
	Lat        float64
	Lon        float64
	Token      string
	FlightOnly bool
	Mountain   bool
}

// Registry is an immutable set of cities with a spatial index for
// nearest-city lookups.
type Registry struct {
	cities []City
	byName map[string]int
	index  *rtreego.Rtree
	cosLat float64
}

type cityEntry struct {
	idx      int
	location rtreego.Point
}

func (e *cityEntry) Bounds() *rtreego.Rect {
	return e.location.ToRect(0.1)
}

// New builds a registry from a list of cities. Cities without a token get
// one derived from their name. The input is copied; the registry never
// mutates after construction.
func New(cities []City) *Registry {
	r := Registry{
		cities: make([]City, len(cities)),
		byName: make(map[string]int, len(cities)),
	}
	var latSum float64
	for _, c := range cities {
		latSum += c.Lat
	}
	meanLat := 0.0
	if len(cities) > 0 {
		meanLat = latSum / float64(len(cities))
	}
	r.cosLat = math.Cos(meanLat * math.Pi / 180)

	entries := make([]rtreego.Spatial, 0, len(cities))
	for i, c := range cities {
		if c.Token == "" {
			c.Token = defaultToken(c.Name)
		}
		r.cities[i] = c
		r.byName[c.Name] = i
		entries = append(entries, &cityEntry{idx: i, location: r.project(c.Lat, c.Lon)})
	}
	if len(entries) > 0 {
		r.index = rtreego.NewTree(2, 2, 8, entries...)
	}
	return &r
}

// project maps a coordinate onto a local equirectangular plane in
// kilometres, good enough to pick nearest-neighbour candidates over a
// regional roster. Exact distances are recomputed with the haversine.
func (r *Registry) project(lat, lon float64) rtreego.Point {
	kmPerDeg := geo.EarthRadiusKm * math.Pi / 180
	return rtreego.Point{lon * r.cosLat * kmPerDeg, lat * kmPerDeg}
}

// Cities returns the roster in a stable, name-sorted order.
func (r *Registry) Cities() []City {
	out := make([]City, len(r.cities))
	copy(out, r.cities)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// City looks a city up by name.
func (r *Registry) City(name string) (City, bool) {
	i, ok := r.byName[name]
	if !ok {
		return City{}, false
	}
	return r.cities[i], true
}

// Token returns the filename token for a city, falling back to the name
// itself when the city is not in the roster.
func (r *Registry) Token(name string) string {
	if c, ok := r.City(name); ok {
		return c.Token
	}
	return defaultToken(name)
}

// Nearest returns the roster city closest to a coordinate and its
// great-circle distance in kilometres. ok is false for an empty registry.
func (r *Registry) Nearest(lat, lon float64) (City, float64, bool) {
	if r.index == nil {
		return City{}, 0, false
	}
	e, ok := r.index.NearestNeighbor(r.project(lat, lon)).(*cityEntry)
	if !ok {
		return City{}, 0, false
	}
	c := r.cities[e.idx]
	return c, geo.HaversineDistanceKm(lat, lon, c.Lat, c.Lon), true
}

func defaultToken(name string) string {
	out := make([]rune, 0, len(name))
	for _, r := range name {
		switch {
		case r >= 'A' && r <= 'Z':
			out = append(out, r+('a'-'A'))
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			out = append(out, r)
		case r == 'ä':
			out = append(out, 'a', 'e')
		case r == 'ö':
			out = append(out, 'o', 'e')
		case r == 'ü':
			out = append(out, 'u', 'e')
		case r == 'ß':
			out = append(out, 's', 's')
		}
	}
	return string(out)
}
