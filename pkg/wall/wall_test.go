package wall

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/floorkit/pkg/geom"
	"github.com/chazu/floorkit/pkg/polybool/clipper"
)

func mk(id string, x0, y0, x1, y1 float64) Wall {
	return Wall{ID: geom.ID(id), From: geom.Pt(x0, y0), To: geom.Pt(x1, y1), Thickness: 0.1, Bearing: true, Type: "std"}
}

func newMerger() *Merger {
	return NewMerger(clipper.New(clipper.DefaultOptions()), DefaultOptions())
}

func TestFlipSwing(t *testing.T) {
	tests := []struct{ in, want int }{{0, 2}, {1, 3}, {2, 0}, {3, 1}, {7, 7}}
	for _, tt := range tests {
		if got := FlipSwing(tt.in); got != tt.want {
			t.Errorf("FlipSwing(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestMergeEndToEnd(t *testing.T) {
	res := newMerger().Merge([]Wall{mk("W1", 0, 0, 5, 0), mk("W2", 5, 0, 10, 0)}, nil)

	require.Len(t, res.Walls, 1)
	w := res.Walls[0]
	assert.Equal(t, geom.ID("W1"), w.ID)
	assert.True(t, geom.Near(w.From, geom.Pt(0, 0), 1e-9))
	assert.True(t, geom.Near(w.To, geom.Pt(10, 0), 1e-9))
	assert.Equal(t, []geom.ID{"W1", "W2"}, w.OriginWalls)
}

func TestMergeLeavesUnmergedWallsWithoutOrigins(t *testing.T) {
	res := newMerger().Merge([]Wall{mk("A", 0, 0, 5, 0), mk("B", 0, 3, 5, 3)}, nil)

	require.Len(t, res.Walls, 2)
	for _, w := range res.Walls {
		assert.Nil(t, w.OriginWalls, "wall %s was never merged", w.ID)
		assert.Equal(t, []geom.ID{w.ID}, w.Origins())
	}
}

func TestMergeReversedWallFlipsSwing(t *testing.T) {
	walls := []Wall{mk("W1", 0, 0, 5, 0), mk("W2", 10, 0, 5, 0)}
	ops := []Opening{{ID: "D1", Wall: "W2", Position: geom.Pt(7.5, 0.0003), Swing: 1}}

	res := newMerger().Merge(walls, ops)
	require.Len(t, res.Walls, 1)
	assert.True(t, geom.Near(res.Walls[0].To, geom.Pt(10, 0), 1e-9), "direction of the surviving wall is kept")

	require.Len(t, res.Openings, 1)
	o := res.Openings[0]
	assert.Equal(t, geom.ID("W1"), o.Wall)
	assert.Equal(t, 3, o.Swing)
	assert.InDelta(t, 0, o.Position.Y, 1e-12)
	assert.InDelta(t, 7.5, o.Position.X, 1e-12)

	assert.Equal(t, 1, ops[0].Swing, "input openings are not modified")
}

func TestMergeSameDirectionKeepsSwing(t *testing.T) {
	walls := []Wall{mk("W1", 0, 0, 5, 0), mk("W2", 5, 0, 10, 0)}
	ops := []Opening{{ID: "D1", Wall: "W2", Position: geom.Pt(7, 0), Swing: 1}}
	res := newMerger().Merge(walls, ops)
	assert.Equal(t, 1, res.Openings[0].Swing)
}

func TestMergeEligibility(t *testing.T) {
	base := mk("A", 0, 0, 5, 0)
	tests := []struct {
		name  string
		other Wall
		want  int
	}{
		{"overlapping", mk("B", 3, 0, 8, 0), 1},
		{"contained", mk("B", 1, 0, 2, 0), 1},
		{"gap", mk("B", 6, 0, 8, 0), 2},
		{"parallel offset", mk("B", 0, 1, 5, 1), 2},
		{"perpendicular", mk("B", 5, 0, 5, 5), 2},
		{"different type", func() Wall { w := mk("B", 5, 0, 8, 0); w.Type = "glass"; return w }(), 2},
		{"different bearing", func() Wall { w := mk("B", 5, 0, 8, 0); w.Bearing = false; return w }(), 2},
		{"thickness within tolerance", func() Wall { w := mk("B", 5, 0, 8, 0); w.Thickness = 0.1005; return w }(), 1},
		{"thickness outside tolerance", func() Wall { w := mk("B", 5, 0, 8, 0); w.Thickness = 0.12; return w }(), 2},
		{"arc", func() Wall {
			w := mk("B", 5, 0, 8, 0)
			w.Arc = &geom.Arc{Center: geom.Pt(6.5, 0), Radius: 1.5, Start: 3.141592653589793, Sweep: -3.141592653589793}
			return w
		}(), 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := newMerger().Merge([]Wall{base, tt.other}, nil)
			assert.Len(t, res.Walls, tt.want)
		})
	}
}

func TestMergeChainsThroughLaterWalls(t *testing.T) {
	// C only touches A after A has absorbed B.
	walls := []Wall{mk("A", 0, 0, 2, 0), mk("C", 4, 0, 6, 0), mk("B", 2, 0, 4, 0)}
	res := newMerger().Merge(walls, nil)
	require.Len(t, res.Walls, 1)
	assert.InDelta(t, 6, res.Walls[0].Len(), 1e-9)
	assert.ElementsMatch(t, []geom.ID{"A", "B", "C"}, res.Walls[0].OriginWalls)
}

func TestMergeIsIdempotent(t *testing.T) {
	walls := []Wall{
		mk("a", 0, 0, 5, 0), mk("b", 5, 0, 10, 0), mk("c", 10, 0, 10, 5),
		mk("d", 10, 5, 0, 5), mk("e", 0, 5, 0, 0), mk("f", 3, 0, 7, 0),
	}
	ops := []Opening{{ID: "o", Wall: "b", Position: geom.Pt(8, 0), Swing: 2}}
	m := newMerger()
	first := m.Merge(walls, ops)
	second := m.Merge(first.Walls, first.Openings)
	assert.Equal(t, first, second)
}

func TestMergeDiscardsDegenerateWalls(t *testing.T) {
	walls := []Wall{mk("a", 0, 0, 5, 0), mk("dot", 9, 9, 9, 9)}
	ops := []Opening{{ID: "o", Wall: "dot", Position: geom.Pt(9, 9)}}
	res := newMerger().Merge(walls, ops)
	require.Len(t, res.Walls, 1)
	assert.Empty(t, res.Openings)
}

func origins(walls []Wall) []string {
	var ids []string
	for _, w := range walls {
		for _, id := range w.Origins() {
			ids = append(ids, string(id))
		}
	}
	sort.Strings(ids)
	return ids
}

// twoRooms is room A (0..10 x 0..5) sitting on room B (5..10 x -5..0).
// The bottom run of A is outside along x<5 and shared with B beyond.
func twoRooms() []Wall {
	walls := []Wall{
		mk("a1", 0, 0, 5, 0), mk("a2", 5, 0, 10, 0), mk("a3", 10, 0, 10, 5), mk("a4", 10, 5, 0, 5), mk("a5", 0, 5, 0, 0),
		mk("b1", 5, 0, 5, -5), mk("b2", 5, -5, 10, -5), mk("b3", 10, -5, 10, 0),
	}
	for i := range walls {
		walls[i].Thickness = 0.2
	}
	return walls
}

func TestProvenanceIsConserved(t *testing.T) {
	walls := twoRooms()
	res, err := newMerger().MergeAndSegment(walls, nil)
	require.NoError(t, err)
	assert.Equal(t, origins(walls), origins(res.Walls))
}

func TestSegmentSplitsOuterAndInner(t *testing.T) {
	walls := twoRooms()
	ops := []Opening{
		{ID: "win", Wall: "a1", Position: geom.Pt(2, 0), Swing: 0},
		{ID: "door", Wall: "a2", Position: geom.Pt(8, 0), Swing: 1},
	}
	res, err := newMerger().MergeAndSegment(walls, ops)
	require.NoError(t, err)

	byID := map[geom.ID]Wall{}
	for _, w := range res.Walls {
		byID[w.ID] = w
	}
	require.Len(t, res.Walls, 7)

	a1, ok := byID["a1"]
	require.True(t, ok)
	assert.Equal(t, SideOuter, a1.Side)
	assert.Equal(t, []geom.ID{"a1"}, a1.OriginWalls)
	assert.InDelta(t, 4.9, a1.To.X, 1e-3)

	a2, ok := byID["a2"]
	require.True(t, ok)
	assert.Equal(t, SideInner, a2.Side)
	assert.InDelta(t, 10, a2.To.X, 1e-9)

	right := byID["a3"]
	assert.Equal(t, SideOuter, right.Side)
	assert.ElementsMatch(t, []geom.ID{"a3", "b3"}, right.OriginWalls)
	assert.Equal(t, SideOuter, byID["b1"].Side)

	hosts := map[geom.ID]geom.ID{}
	for _, o := range res.Openings {
		hosts[o.ID] = o.Wall
	}
	assert.Equal(t, geom.ID("a1"), hosts["win"])
	assert.Equal(t, geom.ID("a2"), hosts["door"])
}

func TestSegmentInteriorPartition(t *testing.T) {
	walls := []Wall{
		mk("s", 0, 0, 10, 0), mk("e", 10, 0, 10, 10), mk("n", 10, 10, 0, 10), mk("w", 0, 10, 0, 0),
		mk("p", 5, 0, 5, 10),
	}
	res, err := newMerger().MergeAndSegment(walls, nil)
	require.NoError(t, err)
	for _, w := range res.Walls {
		want := SideOuter
		if w.ID == "p" {
			want = SideInner
		}
		assert.Equal(t, want, w.Side, "wall %s", w.ID)
	}
}

func TestSegmentWithoutEngine(t *testing.T) {
	m := NewMerger(nil, DefaultOptions())
	_, err := m.MergeAndSegment([]Wall{mk("a", 0, 0, 1, 0)}, nil)
	assert.Error(t, err)
}

func TestSideText(t *testing.T) {
	for _, s := range []Side{SideUnknown, SideOuter, SideInner, SideMixed} {
		b, err := s.MarshalText()
		require.NoError(t, err)
		var got Side
		require.NoError(t, got.UnmarshalText(b))
		assert.Equal(t, s, got)
	}
	var s Side
	assert.Error(t, s.UnmarshalText([]byte("sideways")))
}
