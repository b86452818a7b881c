// Package routes matches pre-authored GPX routes to a forecast wind
// direction. Route files live behind a static HTTP prefix and are addressed
// as <cityToken>_<compassDirection>[_<variant>].gpx; up to four filename
// variants exist per direction and all that exist are offered to the rider.
package routes

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/velomet/ridecast/pkg/geo"
	"github.com/velomet/ridecast/pkg/registry"
	"github.com/velomet/ridecast/pkg/track"
)

const maxVariants = 4

// Candidate is one matched route file.
type Candidate struct {
	Filename string
	Variant  int
	Track    *track.RouteTrack
}

// Matcher fetches and caches route candidates. Fetched payloads are held in
// a TTL cache so flipping between wind directions does not refetch GPX files.
type Matcher struct {
	baseURL    string
	httpClient *http.Client
	reg        *registry.Registry
	cache      *cache
}

type Option func(*Matcher)

func WithBaseURL(u string) Option {
	return func(m *Matcher) {
		m.baseURL = u
	}
}

func WithHTTPClient(h *http.Client) Option {
	return func(m *Matcher) {
		m.httpClient = h
	}
}

func NewMatcher(reg *registry.Registry, opt ...Option) *Matcher {
	m := &Matcher{
		baseURL:    "https://routes.velomet.cc/gpx",
		httpClient: &http.Client{Timeout: 15 * time.Second},
		reg:        reg,
		cache:      newCache(4 * time.Hour),
	}
	for _, f := range opt {
		f(m)
	}
	return m
}

// Match returns every route candidate for the city that suits the given wind
// bearing, in variant order with the lowest existing variant first. An empty
// result is the normal "no route built for this wind" outcome, not an error.
func (m *Matcher) Match(ctx context.Context, cityName string, windBearing float64) []Candidate {
	token := m.reg.Token(cityName)
	dir := geo.Compass8(windBearing)

	found := make([]*track.RouteTrack, maxVariants)
	names := make([]string, maxVariants)
	g, ctx := errgroup.WithContext(ctx)
	for v := 0; v < maxVariants; v++ {
		v := v
		names[v] = candidateFilename(token, dir, v)
		g.Go(func() error {
			t, err := m.fetch(ctx, names[v])
			if err != nil {
				// Not found and unparseable are the same outcome: this
				// variant does not exist.
				return nil
			}
			found[v] = t
			return nil
		})
	}
	g.Wait()

	var out []Candidate
	for v, t := range found {
		if t != nil {
			out = append(out, Candidate{Filename: names[v], Variant: v, Track: t})
		}
	}
	return out
}

func candidateFilename(token, dir string, variant int) string {
	if variant == 0 {
		return fmt.Sprintf("%s_%s.gpx", token, dir)
	}
	return fmt.Sprintf("%s_%s_%d.gpx", token, dir, variant)
}

func (m *Matcher) fetch(ctx context.Context, filename string) (*track.RouteTrack, error) {
	return m.cache.get(filename, func() (*track.RouteTrack, error) {
		data, err := m.download(ctx, filename)
		if err != nil {
			return nil, err
		}
		t, err := track.Parse(bytes.NewReader(data))
		if err != nil {
			log.Printf("Route file %s is not a usable GPX track: %v", filename, err)
			return nil, err
		}
		return t, nil
	})
}

func (m *Matcher) download(ctx context.Context, filename string) ([]byte, error) {
	// Cache-busting timestamp keeps intermediaries from pinning stale files.
	u := fmt.Sprintf("%s/%s?v=%d", m.baseURL, filename, time.Now().Unix())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error getting %s: %v", u, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("unexpected status %s for %s", resp.Status, u)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response from %s: %v", u, err)
	}
	return data, nil
}
