package routes

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/velomet/ridecast/pkg/registry"
)

const validGPX = `<?xml version="1.0"?>
<gpx version="1.1" creator="test">
  <trk><trkseg>
    <trkpt lat="48.0" lon="7.8"><ele>250</ele></trkpt>
    <trkpt lat="48.1" lon="7.8"><ele>300</ele></trkpt>
    <trkpt lat="48.2" lon="7.8"><ele>280</ele></trkpt>
  </trkseg></trk>
</gpx>`

func testRegistry() *registry.Registry {
	return registry.New([]registry.City{
		{Name: "Testheim", Lat: 48.0, Lon: 7.8, Token: "testheim"},
	})
}

// routeServer serves exactly the named files and counts requests per file.
func routeServer(files map[string]string, counts *map[string]*int64) *httptest.Server {
	c := make(map[string]*int64)
	for name := range files {
		c[name] = new(int64)
	}
	*counts = c
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(r.URL.Path, "/")
		body, ok := files[name]
		if !ok {
			http.NotFound(w, r)
			return
		}
		atomic.AddInt64(c[name], 1)
		fmt.Fprint(w, body)
	}))
}

func TestMatchSingleVariant(t *testing.T) {
	var counts map[string]*int64
	srv := routeServer(map[string]string{
		"testheim_NW_2.gpx": validGPX,
	}, &counts)
	defer srv.Close()

	m := NewMatcher(testRegistry(), WithBaseURL(srv.URL))
	cands := m.Match(context.Background(), "Testheim", 315)
	require.Len(t, cands, 1)
	assert.Equal(t, "testheim_NW_2.gpx", cands[0].Filename)
	assert.Equal(t, 2, cands[0].Variant)
	require.NotNil(t, cands[0].Track)
	assert.Len(t, cands[0].Track.Points, 3)
}

func TestMatchMultipleVariantsKeepOrder(t *testing.T) {
	var counts map[string]*int64
	srv := routeServer(map[string]string{
		"testheim_S.gpx":   validGPX,
		"testheim_S_1.gpx": validGPX,
		"testheim_S_3.gpx": validGPX,
	}, &counts)
	defer srv.Close()

	m := NewMatcher(testRegistry(), WithBaseURL(srv.URL))
	cands := m.Match(context.Background(), "Testheim", 180)
	require.Len(t, cands, 3)
	assert.Equal(t, 0, cands[0].Variant)
	assert.Equal(t, 1, cands[1].Variant)
	assert.Equal(t, 3, cands[2].Variant)
}

func TestMatchNoRouteForWind(t *testing.T) {
	var counts map[string]*int64
	srv := routeServer(map[string]string{
		"testheim_N.gpx": validGPX,
	}, &counts)
	defer srv.Close()

	m := NewMatcher(testRegistry(), WithBaseURL(srv.URL))
	// Wind from the east; only a north route exists.
	cands := m.Match(context.Background(), "Testheim", 90)
	assert.Empty(t, cands)
}

func TestMatchUnparseableFileIsNotACandidate(t *testing.T) {
	var counts map[string]*int64
	srv := routeServer(map[string]string{
		"testheim_E.gpx": "<html>this is not gpx</html>",
	}, &counts)
	defer srv.Close()

	m := NewMatcher(testRegistry(), WithBaseURL(srv.URL))
	cands := m.Match(context.Background(), "Testheim", 90)
	assert.Empty(t, cands)
}

func TestMatchCachesFetchedRoutes(t *testing.T) {
	var counts map[string]*int64
	srv := routeServer(map[string]string{
		"testheim_W.gpx": validGPX,
	}, &counts)
	defer srv.Close()

	m := NewMatcher(testRegistry(), WithBaseURL(srv.URL))
	for i := 0; i < 3; i++ {
		cands := m.Match(context.Background(), "Testheim", 270)
		require.Len(t, cands, 1)
	}
	assert.EqualValues(t, 1, atomic.LoadInt64(counts["testheim_W.gpx"]))
}

func TestMatchUnknownCityFallsBackToName(t *testing.T) {
	var counts map[string]*int64
	srv := routeServer(map[string]string{
		"elsewhere_N.gpx": validGPX,
	}, &counts)
	defer srv.Close()

	m := NewMatcher(testRegistry(), WithBaseURL(srv.URL))
	cands := m.Match(context.Background(), "Elsewhere", 0)
	require.Len(t, cands, 1)
	assert.Equal(t, "elsewhere_N.gpx", cands[0].Filename)
}
