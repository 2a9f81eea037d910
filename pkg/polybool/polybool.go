// Package polybool defines the polygon boolean engine used by the wall
// merger and the beam orchestrator, and the Region model its results are
// expressed in.
//
// Engines take closed loops of tagged curves and return regions whose edges
// remember which input curves they reproduce. An edge with no OldIDs was
// introduced by the operation itself, for example where two footprints cut
// each other.
package polybool

import (
	"errors"

	"github.com/samber/lo"

	"github.com/chazu/floorkit/pkg/geom"
)

// Epsilon is the coordinate resolution of boolean operations.
const Epsilon = 1e-6

// ErrEngine is returned, wrapped, when the underlying boolean computation
// fails. No partial result accompanies it.
var ErrEngine = errors.New("polybool: boolean engine failed")

// Engine computes boolean combinations of closed loops.
type Engine interface {
	// Union merges all loops into disjoint regions.
	Union(loops []Loop) ([]Region, error)
	// Difference removes the area of clip from subject.
	Difference(subject, clip []Loop) ([]Region, error)
}

// Loop is a closed boundary given as consecutive curves. The end of each
// curve must meet the start of the next, and the last must meet the first.
type Loop struct {
	ID     geom.ID
	Curves []geom.Curve
}

// Polygon returns a loop of straight edges through pts, each tagged with id.
func Polygon(id geom.ID, pts []geom.Point) Loop {
	pts = geom.OpenRing(pts, 0)
	l := Loop{ID: id, Curves: make([]geom.Curve, len(pts))}
	for i := range pts {
		l.Curves[i] = geom.Line{ID: id, From: pts[i], To: pts[(i+1)%len(pts)]}
	}
	return l
}

// Points discretizes the loop into an implicitly closed ring.
func (l Loop) Points(arcSegments int) []geom.Point {
	var pts []geom.Point
	for _, c := range l.Curves {
		s := geom.Discretize(c, arcSegments)
		pts = append(pts, s[:len(s)-1]...)
	}
	return pts
}

// Edge is one straight piece of a region boundary. OldIDs lists the input
// curves it lies on; empty means the edge is new.
type Edge struct {
	Curve  geom.Line
	OldIDs []geom.ID
}

// Synthesized reports whether the edge reproduces no input curve.
func (e Edge) Synthesized() bool {
	return len(e.OldIDs) == 0
}

// Region is a connected area: a counter-clockwise outer boundary and any
// number of clockwise holes.
type Region struct {
	Outer []Edge
	Holes [][]Edge
}

// ProvenanceIDs returns the distinct input ids found on the outer boundary,
// in boundary order.
func (r Region) ProvenanceIDs() []geom.ID {
	var ids []geom.ID
	for _, e := range r.Outer {
		ids = append(ids, e.OldIDs...)
	}
	return lo.Uniq(ids)
}

// OuterPoints returns the vertices of the outer boundary.
func (r Region) OuterPoints() []geom.Point {
	return edgePoints(r.Outer)
}

// HolePoints returns the vertices of every hole.
func (r Region) HolePoints() [][]geom.Point {
	return lo.Map(r.Holes, func(h []Edge, _ int) []geom.Point { return edgePoints(h) })
}

func edgePoints(edges []Edge) []geom.Point {
	return lo.Map(edges, func(e Edge, _ int) geom.Point { return e.Curve.From })
}

// Edges returns every boundary edge, outer first.
func (r Region) Edges() []Edge {
	out := append([]Edge(nil), r.Outer...)
	for _, h := range r.Holes {
		out = append(out, h...)
	}
	return out
}

// Loops converts the region back to engine input: its outer boundary and
// its holes. Each curve carries the first provenance id of its edge, or id
// when the edge is new.
func (r Region) Loops(id geom.ID) (outer Loop, holes []Loop) {
	toLoop := func(edges []Edge) Loop {
		l := Loop{ID: id, Curves: make([]geom.Curve, len(edges))}
		for i, e := range edges {
			c := e.Curve
			c.ID = id
			if len(e.OldIDs) > 0 {
				c.ID = e.OldIDs[0]
			}
			l.Curves[i] = c
		}
		return l
	}
	return toLoop(r.Outer), lo.Map(r.Holes, func(h []Edge, _ int) Loop { return toLoop(h) })
}

// Area returns the outer area minus the hole areas.
func (r Region) Area() float64 {
	a := geom.SignedArea(r.OuterPoints())
	for _, h := range r.HolePoints() {
		a -= abs(geom.SignedArea(h))
	}
	return a
}

// Contains reports whether p lies in the region interior, more than tol
// from any boundary.
func (r Region) Contains(p geom.Point, tol float64) bool {
	if !geom.NewRing(r.OuterPoints()).Inside(p, tol) {
		return false
	}
	for _, h := range r.HolePoints() {
		if geom.NewRing(h).Distance(p) < tol {
			return false
		}
	}
	return true
}

// TotalArea sums the area of regions.
func TotalArea(regions []Region) float64 {
	return lo.SumBy(regions, func(r Region) float64 { return r.Area() })
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
