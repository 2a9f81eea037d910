package geom

import (
	"math"
	"sort"

	"github.com/deadsy/sdfx/sdf"
)

// SignedArea returns the shoelace area of the implicitly closed ring pts.
// Counter-clockwise rings are positive.
func SignedArea(pts []Point) float64 {
	var a float64
	n := len(pts)
	for i := 0; i < n; i++ {
		a += pts[i].Cross(pts[(i+1)%n])
	}
	return a / 2
}

// OpenRing drops a trailing point that repeats the first one.
func OpenRing(pts []Point, tol float64) []Point {
	if len(pts) > 1 && Near(pts[0], pts[len(pts)-1], tol) {
		return pts[:len(pts)-1]
	}
	return pts
}

// Reversed returns a reversed copy of pts.
func Reversed(pts []Point) []Point {
	out := make([]Point, len(pts))
	for i, p := range pts {
		out[len(pts)-1-i] = p
	}
	return out
}

// Ring is a closed polygon boundary with a signed distance field for
// containment queries.
type Ring struct {
	Points []Point
	Box    sdf.Box2
	field  sdf.SDF2
	closed bool
}

// NewRing builds a ring from an implicitly closed point list. Rings with
// fewer than three points have no interior; Inside always reports false.
// Distances come from sdf.Polygon2D when sdfx accepts the outline and from
// a direct edge scan otherwise.
func NewRing(pts []Point) *Ring {
	pts = OpenRing(pts, 0)
	r := &Ring{Points: pts, Box: BoundsOf(pts)}
	if len(pts) >= 3 {
		r.closed = true
		if s, err := sdf.Polygon2D(pts); err == nil {
			r.field = s
		}
	}
	return r
}

// Area returns the signed area of the ring.
func (r *Ring) Area() float64 {
	return SignedArea(r.Points)
}

// Distance returns the signed distance from p to the ring boundary,
// negative inside. The magnitude comes from the sdfx field; the sign from
// an even-odd crossing count so that ring orientation does not matter.
func (r *Ring) Distance(p Point) float64 {
	if !r.closed {
		return math.Inf(1)
	}
	var d float64
	if r.field != nil {
		d = math.Abs(r.field.Evaluate(p))
	} else {
		d = r.edgeDistance(p)
	}
	if r.crossesOdd(p) {
		return -d
	}
	return d
}

func (r *Ring) edgeDistance(p Point) float64 {
	d := math.Inf(1)
	n := len(r.Points)
	for i := 0; i < n; i++ {
		d = math.Min(d, Line{From: r.Points[i], To: r.Points[(i+1)%n]}.DistTo(p))
	}
	return d
}

// crossesOdd is the even-odd point in polygon test.
func (r *Ring) crossesOdd(p Point) bool {
	in := false
	n := len(r.Points)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		a, b := r.Points[i], r.Points[j]
		if (a.Y > p.Y) != (b.Y > p.Y) && p.X < (b.X-a.X)*(p.Y-a.Y)/(b.Y-a.Y)+a.X {
			in = !in
		}
	}
	return in
}

// Inside reports whether p lies inside the ring and farther than tol from
// its boundary.
func (r *Ring) Inside(p Point, tol float64) bool {
	if !r.closed {
		return false
	}
	if p.X < r.Box.Min.X-tol || p.X > r.Box.Max.X+tol || p.Y < r.Box.Min.Y-tol || p.Y > r.Box.Max.Y+tol {
		return false
	}
	return r.Distance(p) < -tol
}

// OnBoundary reports whether p lies within tol of the ring boundary.
func (r *Ring) OnBoundary(p Point, tol float64) bool {
	n := len(r.Points)
	for i := 0; i < n; i++ {
		if (Line{From: r.Points[i], To: r.Points[(i+1)%n]}).DistTo(p) <= tol {
			return true
		}
	}
	return false
}

// InteriorPoint returns a point strictly inside the ring. It tries the
// vertex average first and then scans horizontal lines through the ring.
func (r *Ring) InteriorPoint(tol float64) (Point, bool) {
	if !r.closed {
		return Point{}, false
	}
	var c Point
	for _, p := range r.Points {
		c = c.Add(p)
	}
	c = c.MulScalar(1 / float64(len(r.Points)))
	if r.Inside(c, tol) {
		return c, true
	}
	for k := 1; k < 16; k++ {
		y := r.Box.Min.Y + (r.Box.Max.Y-r.Box.Min.Y)*float64(k)/16
		xs := r.crossings(y)
		for i := 0; i+1 < len(xs); i += 2 {
			p := Point{X: (xs[i] + xs[i+1]) / 2, Y: y}
			if r.Inside(p, tol) {
				return p, true
			}
		}
	}
	return Point{}, false
}

// crossings returns the sorted x coordinates where the horizontal line at y
// crosses the ring.
func (r *Ring) crossings(y float64) []float64 {
	var xs []float64
	n := len(r.Points)
	for i := 0; i < n; i++ {
		a, b := r.Points[i], r.Points[(i+1)%n]
		if (a.Y <= y) == (b.Y <= y) {
			continue
		}
		t := (y - a.Y) / (b.Y - a.Y)
		xs = append(xs, a.X+t*(b.X-a.X))
	}
	sort.Float64s(xs)
	return xs
}

// Rect returns the counter-clockwise footprint of a segment thickened by
// width (width/2 on each side).
func Rect(l Line, width float64) []Point {
	left := l.Offset(width / 2)
	right := l.Offset(-width / 2)
	return []Point{right.From, right.To, left.To, left.From}
}
