package clipper

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/floorkit/internal/logging"
	"github.com/chazu/floorkit/pkg/geom"
	"github.com/chazu/floorkit/pkg/polybool"
)

func rect(id geom.ID, x0, y0, x1, y1 float64) polybool.Loop {
	return polybool.Polygon(id, []geom.Point{geom.Pt(x0, y0), geom.Pt(x1, y0), geom.Pt(x1, y1), geom.Pt(x0, y1)})
}

func TestUnionOfOverlappingRects(t *testing.T) {
	e := New(DefaultOptions())
	regions, err := e.Union([]polybool.Loop{rect("a", 0, 0, 2, 1), rect("b", 1, 0, 3, 1)})
	require.NoError(t, err)
	require.Len(t, regions, 1)
	assert.InDelta(t, 3, regions[0].Area(), 1e-6)
	assert.Empty(t, regions[0].Holes)
	assert.Greater(t, geom.SignedArea(regions[0].OuterPoints()), 0.0)
	assert.ElementsMatch(t, []geom.ID{"a", "b"}, regions[0].ProvenanceIDs())
}

func TestUnionKeepsDisjointRegions(t *testing.T) {
	e := New(DefaultOptions())
	regions, err := e.Union([]polybool.Loop{rect("a", 0, 0, 1, 1), rect("b", 5, 5, 6, 6)})
	require.NoError(t, err)
	assert.Len(t, regions, 2)
	assert.InDelta(t, 2, polybool.TotalArea(regions), 1e-6)
}

func TestUnionAcceptsClockwiseInput(t *testing.T) {
	e := New(DefaultOptions())
	cw := polybool.Polygon("cw", geom.Reversed([]geom.Point{geom.Pt(0, 0), geom.Pt(2, 0), geom.Pt(2, 2), geom.Pt(0, 2)}))
	regions, err := e.Union([]polybool.Loop{cw})
	require.NoError(t, err)
	require.Len(t, regions, 1)
	assert.InDelta(t, 4, regions[0].Area(), 1e-6)
}

func TestDifferenceCutsHole(t *testing.T) {
	e := New(DefaultOptions())
	regions, err := e.Difference(
		[]polybool.Loop{rect("room", 0, 0, 10, 10)},
		[]polybool.Loop{rect("column", 4, 4, 6, 6)},
	)
	require.NoError(t, err)
	require.Len(t, regions, 1)
	r := regions[0]
	require.Len(t, r.Holes, 1)
	assert.InDelta(t, 96, r.Area(), 1e-6)
	for _, e := range r.Holes[0] {
		assert.Equal(t, []geom.ID{"column"}, e.OldIDs)
	}
	assert.Equal(t, []geom.ID{"room"}, r.ProvenanceIDs())
	assert.Less(t, geom.SignedArea(r.HolePoints()[0]), 0.0)
}

func TestDifferenceMarksNewBoundary(t *testing.T) {
	e := New(DefaultOptions())
	regions, err := e.Difference(
		[]polybool.Loop{rect("room", 0, 0, 10, 10)},
		[]polybool.Loop{rect("beam", 8, -1, 12, 11)},
	)
	require.NoError(t, err)
	require.Len(t, regions, 1)
	assert.InDelta(t, 80, regions[0].Area(), 1e-6)

	var cut []polybool.Edge
	for _, e := range regions[0].Outer {
		if geom.Near(e.Curve.From, geom.Pt(8, 0), 1e-6) || geom.Near(e.Curve.To, geom.Pt(8, 0), 1e-6) {
			if e.Curve.From.X == e.Curve.To.X {
				cut = append(cut, e)
			}
		}
	}
	require.Len(t, cut, 1)
	assert.Equal(t, []geom.ID{"beam"}, cut[0].OldIDs)
}

func TestDifferenceSplitsIntoIslands(t *testing.T) {
	e := New(DefaultOptions())
	regions, err := e.Difference(
		[]polybool.Loop{rect("room", 0, 0, 10, 4)},
		[]polybool.Loop{rect("beam", 4, -1, 6, 5)},
	)
	require.NoError(t, err)
	assert.Len(t, regions, 2)
	assert.InDelta(t, 32, polybool.TotalArea(regions), 1e-6)
}

func TestArcLoop(t *testing.T) {
	e := New(Options{ArcSegments: 64})
	disc := polybool.Loop{ID: "disc", Curves: []geom.Curve{geom.Circle("disc", geom.Pt(0, 0), 1)}}
	regions, err := e.Union([]polybool.Loop{disc})
	require.NoError(t, err)
	require.Len(t, regions, 1)
	assert.InDelta(t, 3.13, regions[0].Area(), 0.02)
	assert.Equal(t, []geom.ID{"disc"}, regions[0].ProvenanceIDs())
}

func TestCoordinateOverflowIsAnError(t *testing.T) {
	e := New(DefaultOptions())
	_, err := e.Union([]polybool.Loop{rect("huge", 0, 0, 5e12, 5e12)})
	require.Error(t, err)
	assert.True(t, errors.Is(err, polybool.ErrEngine))
}

func TestEmptyInput(t *testing.T) {
	e := New(DefaultOptions())
	regions, err := e.Union(nil)
	require.NoError(t, err)
	assert.Empty(t, regions)
}

func TestDegenerateRegionIsLogged(t *testing.T) {
	var buf bytes.Buffer
	logging.SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	defer logging.SetLogger(nil)

	sliver := polybool.Region{
		Outer: []polybool.Edge{
			{Curve: geom.Line{From: geom.Pt(0, 0), To: geom.Pt(1, 0)}},
			{Curve: geom.Line{From: geom.Pt(1, 0), To: geom.Pt(0, 0)}},
		},
		Holes: [][]polybool.Edge{nil},
	}
	assert.False(t, keep(sliver))
	assert.Contains(t, buf.String(), "discarded degenerate region")
	assert.Contains(t, buf.String(), "edges=2")

	buf.Reset()
	square := rect("a", 0, 0, 1, 1)
	regions, err := New(DefaultOptions()).Union([]polybool.Loop{square})
	require.NoError(t, err)
	require.Len(t, regions, 1)
	assert.True(t, keep(regions[0]))
	assert.NotContains(t, buf.String(), "discarded degenerate region")
}
