package geom

import "math"

// Position classifies how two segments relate to each other.
type Position int

const (
	Separate     Position = iota // no contact
	Parallel                     // parallel carriers, offset from each other
	IntersectIn                  // cross at a point interior to both
	IntersectOn                  // touch at an endpoint of one or both
	Overlap                      // collinear, partially overlapping
	TotalOverlap                 // collinear, one covers the other
)

func (p Position) String() string {
	switch p {
	case Separate:
		return "separate"
	case Parallel:
		return "parallel"
	case IntersectIn:
		return "intersect-in"
	case IntersectOn:
		return "intersect-on"
	case Overlap:
		return "overlap"
	case TotalOverlap:
		return "total-overlap"
	default:
		return "unknown"
	}
}

// Judge classifies segment pairs under a distance and an angle tolerance.
type Judge struct {
	Dist  float64 // length units
	Angle float64 // radians
}

// DefaultJudge is the tolerance pair used by collinear wall merging.
func DefaultJudge() Judge {
	return Judge{Dist: 0.00045, Angle: math.Pi / 1800}
}

// IsParallel reports whether the carriers of a and b are parallel, in either
// direction, within the angle tolerance.
func (j Judge) IsParallel(a, b Line) bool {
	da, db := a.Dir(), b.Dir()
	ang := math.Abs(math.Atan2(da.Cross(db), da.Dot(db)))
	return ang <= j.Angle || math.Pi-ang <= j.Angle
}

// IsCollinear reports whether a and b are parallel and lie on the same
// carrier line.
func (j Judge) IsCollinear(a, b Line) bool {
	if !j.IsParallel(a, b) {
		return false
	}
	return a.LineDist(b.From) <= j.Dist && a.LineDist(b.To) <= j.Dist
}

// Intersect returns the intersection of the infinite carriers of a and b.
// ok is false for parallel carriers.
func (j Judge) Intersect(a, b Line) (p Point, ok bool) {
	if j.IsParallel(a, b) {
		return Point{}, false
	}
	return intersectCarriers(a, b)
}

func intersectCarriers(a, b Line) (Point, bool) {
	r := a.To.Sub(a.From)
	s := b.To.Sub(b.From)
	den := r.Cross(s)
	if den == 0 {
		return Point{}, false
	}
	t := b.From.Sub(a.From).Cross(s) / den
	return a.From.Add(r.MulScalar(t)), true
}

// Classify returns the relative position of segments a and b.
func (j Judge) Classify(a, b Line) Position {
	if j.IsParallel(a, b) {
		if !j.IsCollinear(a, b) {
			return Parallel
		}
		la := a.Len()
		tb0, tb1 := a.Param(b.From), a.Param(b.To)
		if tb0 > tb1 {
			tb0, tb1 = tb1, tb0
		}
		overlap := math.Min(la, tb1) - math.Max(0, tb0)
		switch {
		case overlap < -j.Dist:
			return Separate
		case overlap <= j.Dist:
			return IntersectOn
		case tb0 <= j.Dist && tb1 >= la-j.Dist:
			return TotalOverlap
		case tb0 >= -j.Dist && tb1 <= la+j.Dist:
			return TotalOverlap
		default:
			return Overlap
		}
	}

	p, ok := intersectCarriers(a, b)
	if !ok {
		return Separate
	}
	if a.DistTo(p) > j.Dist || b.DistTo(p) > j.Dist {
		return Separate
	}
	for _, e := range []Point{a.From, a.To, b.From, b.To} {
		if Near(p, e, j.Dist) {
			return IntersectOn
		}
	}
	return IntersectIn
}

// Connected reports whether a and b are collinear and touch or overlap.
func (j Judge) Connected(a, b Line) bool {
	switch j.Classify(a, b) {
	case IntersectOn, Overlap, TotalOverlap:
		return j.IsCollinear(a, b)
	}
	return false
}
