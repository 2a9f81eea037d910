package halfedge

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/floorkit/pkg/geom"
)

func square(prefix string, x0, y0, size float64) []geom.Curve {
	p := []geom.Point{
		geom.Pt(x0, y0), geom.Pt(x0+size, y0), geom.Pt(x0+size, y0+size), geom.Pt(x0, y0+size),
	}
	out := make([]geom.Curve, 4)
	for i := range p {
		out[i] = geom.Line{ID: geom.ID(prefix + string(rune('a'+i))), From: p[i], To: p[(i+1)%4]}
	}
	return out
}

func TestWeldIsIdempotent(t *testing.T) {
	n := NewNetwork(DefaultOptions())
	a := n.Weld(geom.Pt(1, 1))
	b := n.Weld(geom.Pt(1.0005, 1))
	c := n.Weld(geom.Pt(1, 1))
	assert.Equal(t, a, b)
	assert.Equal(t, a, c)
	assert.Len(t, n.Vertices, 1)

	d := n.Weld(geom.Pt(1.01, 1))
	assert.NotEqual(t, a, d)
}

func TestWeldFirstVertexWins(t *testing.T) {
	n := NewNetwork(Options{WeldTolerance: 1, ArcSegments: 4})
	a := n.Weld(geom.Pt(0, 0))
	b := n.Weld(geom.Pt(1.5, 0))
	// Within tolerance of both; the earlier vertex is returned.
	got := n.Weld(geom.Pt(0.8, 0))
	assert.Equal(t, a, got)
	assert.NotEqual(t, a, b)
}

func TestPartnersAreConsistent(t *testing.T) {
	curves := append(square("s", 0, 0, 4), geom.Arc{ID: "arc", Center: geom.Pt(2, 4), Radius: 2, Start: 0, Sweep: math.Pi})
	n := Build(curves, DefaultOptions())

	require.Len(t, n.HalfEdges, 10)
	for i := range n.HalfEdges {
		h := n.HalfEdge(HalfEdgeID(i))
		p := n.HalfEdge(h.Partner)
		assert.Equal(t, h.ID, p.Partner)
		assert.Equal(t, h.From, p.To)
		assert.Equal(t, h.To, p.From)
		assert.Equal(t, h.EdgeID, p.EdgeID)
		assert.NotEqual(t, h.Reversed, p.Reversed)
	}
	assert.Len(t, n.Pairs(), 5)
	assert.Len(t, n.Outgoing(0), 2)
}

func TestDegenerateCurveDropped(t *testing.T) {
	n := Build([]geom.Curve{geom.Line{ID: "dot", From: geom.Pt(0, 0), To: geom.Pt(0.0001, 0)}}, DefaultOptions())
	assert.Empty(t, n.HalfEdges)
	assert.Equal(t, []geom.ID{"dot"}, n.Dropped)
}

func TestSquareYieldsOneFace(t *testing.T) {
	n := Build(square("s", 0, 0, 4), DefaultOptions())
	res := FindLoops(n)

	require.Len(t, res.Faces, 1)
	f := res.Faces[0]
	assert.InDelta(t, 16, f.Area, 1e-9)
	assert.False(t, f.Hole)
	assert.ElementsMatch(t, []geom.ID{"sa", "sb", "sc", "sd"}, f.EdgeIDs)
	assert.Empty(t, res.Holes)
	assert.Zero(t, res.Failed)
}

func TestClockwiseInputStillGivesCounterClockwiseFace(t *testing.T) {
	var cw []geom.Curve
	for _, c := range square("s", 0, 0, 4) {
		cw = append(cw, geom.Reverse(c))
	}
	res := FindLoops(Build(cw, DefaultOptions()))
	require.Len(t, res.Faces, 1)
	assert.Greater(t, res.Faces[0].Area, 0.0)
}

func TestDiagonalSplitsSquare(t *testing.T) {
	curves := append(square("s", 0, 0, 4), geom.Line{ID: "diag", From: geom.Pt(0, 0), To: geom.Pt(4, 4)})
	res := FindLoops(Build(curves, DefaultOptions()))

	require.Len(t, res.Faces, 2)
	for _, f := range res.Faces {
		assert.InDelta(t, 8, f.Area, 1e-9)
		assert.Contains(t, f.EdgeIDs, geom.ID("diag"))
	}
}

func TestDanglingSpurIsPruned(t *testing.T) {
	curves := append(square("s", 0, 0, 4),
		geom.Line{ID: "spur", From: geom.Pt(4, 4), To: geom.Pt(6, 6)},
		geom.Line{ID: "spur2", From: geom.Pt(6, 6), To: geom.Pt(7, 6)},
	)
	res := FindLoops(Build(curves, DefaultOptions()))

	require.Len(t, res.Faces, 1)
	assert.InDelta(t, 16, res.Faces[0].Area, 1e-9)
	assert.ElementsMatch(t, []geom.ID{"spur", "spur2"}, res.Dangling)
}

func TestNestedComponentBecomesHole(t *testing.T) {
	curves := append(square("o", 0, 0, 10), square("i", 3, 3, 4)...)
	res := FindLoops(Build(curves, DefaultOptions()))

	require.Len(t, res.Faces, 1)
	outer := res.Faces[0]
	assert.InDelta(t, 100, outer.Area, 1e-9)

	require.Len(t, res.Holes, 1)
	hole := res.Holes[0]
	assert.True(t, hole.Hole)
	assert.InDelta(t, -16, hole.Area, 1e-9)
	assert.Equal(t, []*Loop{hole}, outer.Children)

	require.Len(t, hole.Children, 1)
	inner := hole.Children[0]
	assert.InDelta(t, 16, inner.Area, 1e-9)
	assert.Len(t, res.All, 2)

	assert.True(t, outer.Contains(geom.Pt(1, 1), 1e-6))
	assert.False(t, outer.Contains(geom.Pt(5, 5), 1e-6))
	assert.True(t, inner.Contains(geom.Pt(5, 5), 1e-6))
}

func TestCircleIsItsOwnLoop(t *testing.T) {
	curves := append(square("o", -5, -5, 10), geom.Circle("c", geom.Pt(0, 0), 1))
	res := FindLoops(Build(curves, DefaultOptions()))

	require.Len(t, res.Holes, 1)
	assert.Equal(t, []geom.ID{"c"}, res.Holes[0].EdgeIDs)
	require.Len(t, res.Faces, 1)
	assert.InDelta(t, 100, res.Faces[0].Area, 1e-9)
	assert.Len(t, res.All, 2)
}

func TestOpenPolylineHasNoFaces(t *testing.T) {
	curves := []geom.Curve{
		geom.Line{ID: "a", From: geom.Pt(0, 0), To: geom.Pt(1, 0)},
		geom.Line{ID: "b", From: geom.Pt(1, 0), To: geom.Pt(1, 1)},
	}
	res := FindLoops(Build(curves, DefaultOptions()))
	assert.Empty(t, res.Faces)
	assert.Len(t, res.Dangling, 2)
}
