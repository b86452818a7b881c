package track

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-gpx"

	"github.com/velomet/ridecast/pkg/geo"
)

type wpt struct {
	lat, lon, ele float64
}

// syntheticGPX renders a track document with go-gpx, the same shape the
// pre-authored route files have.
func syntheticGPX(t *testing.T, points []wpt) string {
	trkPts := make([]*gpx.WptType, len(points))
	for i, p := range points {
		trkPts[i] = &gpx.WptType{Lat: p.lat, Lon: p.lon, Ele: p.ele}
	}
	g := &gpx.GPX{
		Version: "1.1",
		Creator: "ridecast-test",
		Trk: []*gpx.TrkType{
			{TrkSeg: []*gpx.TrkSegType{{TrkPt: trkPts}}},
		},
	}
	var buf bytes.Buffer
	require.NoError(t, g.Write(&buf))
	return buf.String()
}

func TestParseRoundTrip(t *testing.T) {
	points := []wpt{
		{47.9990, 7.8421, 280},
		{48.0090, 7.8421, 300},
		{48.0190, 7.8521, 290},
		{48.0290, 7.8621, 350},
	}
	doc := syntheticGPX(t, points)

	tr, err := Parse(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, tr.Points, len(points))

	var wantDist float64
	for i, p := range points {
		assert.InDelta(t, p.lat, tr.Points[i].Lat, 1e-6)
		assert.InDelta(t, p.lon, tr.Points[i].Lon, 1e-6)
		require.True(t, tr.Points[i].HasElevation)
		assert.InDelta(t, p.ele, tr.Points[i].Elevation, 1e-6)
		if i > 0 {
			prev := points[i-1]
			wantDist += geo.HaversineDistanceKm(prev.lat, prev.lon, p.lat, p.lon)
			assert.InDelta(t, wantDist, tr.CumulativeDistanceKm[i], 1e-9)
		}
	}
	assert.InDelta(t, wantDist, tr.TotalDistanceKm, 1e-9)
	// Positive deltas: +20 and +60.
	assert.InDelta(t, 80, tr.TotalAscentM, 1e-9)
	assert.Zero(t, tr.CumulativeDistanceKm[0])
}

func TestParseRoutePointVocabulary(t *testing.T) {
	doc := `<?xml version="1.0"?>
<gpx version="1.1" creator="test">
  <rte>
    <rtept lat="48.0" lon="7.8"><ele>100</ele></rtept>
    <rtept lat="48.1" lon="7.8"><ele>150</ele></rtept>
  </rte>
</gpx>`
	tr, err := Parse(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, tr.Points, 2)
	assert.InDelta(t, 50, tr.TotalAscentM, 1e-9)
}

func TestParseDropsInvalidCoordinates(t *testing.T) {
	doc := `<?xml version="1.0"?>
<gpx version="1.1" creator="test">
  <trk><trkseg>
    <trkpt lat="48.0" lon="7.8"><ele>100</ele></trkpt>
    <trkpt lat="oops" lon="7.9"><ele>120</ele></trkpt>
    <trkpt lat="NaN" lon="7.9"><ele>120</ele></trkpt>
    <trkpt lat="48.2" lon="8.0"><ele>140</ele></trkpt>
  </trkseg></trk>
</gpx>`
	tr, err := Parse(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, tr.Points, 2)
	assert.InDelta(t, 40, tr.TotalAscentM, 1e-9)
}

func TestParseUnknownElevationLegsContributeNoAscent(t *testing.T) {
	doc := `<?xml version="1.0"?>
<gpx version="1.1" creator="test">
  <trk><trkseg>
    <trkpt lat="48.0" lon="7.8"><ele>100</ele></trkpt>
    <trkpt lat="48.1" lon="7.8"></trkpt>
    <trkpt lat="48.2" lon="7.8"><ele>500</ele></trkpt>
    <trkpt lat="48.3" lon="7.8"><ele>520</ele></trkpt>
  </trkseg></trk>
</gpx>`
	tr, err := Parse(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, tr.Points, 4)
	assert.False(t, tr.Points[1].HasElevation)
	// Both legs touching the unknown point are excluded; only the final
	// 500 -> 520 leg counts.
	assert.InDelta(t, 20, tr.TotalAscentM, 1e-9)
}

func TestParseFailures(t *testing.T) {
	cases := map[string]string{
		"malformed":     "<gpx><trk><trkseg>",
		"no vocabulary": `<gpx version="1.1"><wpt lat="1" lon="2"/></gpx>`,
		"no points":     `<gpx version="1.1"><trk><trkseg></trkseg></trk></gpx>`,
		"all invalid":   `<gpx version="1.1"><trk><trkseg><trkpt lat="x" lon="y"/></trkseg></trk></gpx>`,
	}
	for name, doc := range cases {
		_, err := Parse(strings.NewReader(doc))
		assert.ErrorIs(t, err, ErrNoRoute, name)
	}
}
