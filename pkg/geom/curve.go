package geom

import (
	"fmt"
	"math"

	"github.com/deadsy/sdfx/sdf"
)

// Curve is a Line or an Arc. The set of implementations is closed; the
// package functions below dispatch on the concrete type.
//
// Curve parameters are arc lengths measured from the start point, so a
// curve's parameter range is [0, Length(c)].
type Curve interface {
	CurveID() ID
	isCurve()
}

// Line is a straight segment from From to To.
type Line struct {
	ID   ID
	From Point
	To   Point
}

// Arc is a circular arc. Sweep is signed: positive sweeps run
// counter-clockwise from Start (radians). An arc whose |Sweep| reaches
// 2*pi is a full circle and has no distinct endpoints.
type Arc struct {
	ID     ID
	Center Point
	Radius float64
	Start  float64
	Sweep  float64
}

func (l Line) CurveID() ID { return l.ID }
func (a Arc) CurveID() ID  { return a.ID }
func (Line) isCurve()      {}
func (Arc) isCurve()       {}

// Circle returns a full counter-clockwise circle.
func Circle(id ID, center Point, radius float64) Arc {
	return Arc{ID: id, Center: center, Radius: radius, Sweep: 2 * math.Pi}
}

// ---------------------------------------------------------------------------
// Line
// ---------------------------------------------------------------------------

// Len returns the segment length.
func (l Line) Len() float64 { return Dist(l.From, l.To) }

// Dir returns the unit direction from From to To.
func (l Line) Dir() Point { return Unit(l.To.Sub(l.From)) }

// Mid returns the midpoint.
func (l Line) Mid() Point { return Lerp(l.From, l.To, 0.5) }

// At returns the point at arc-length parameter t. t may lie outside
// [0, Len()], in which case the point lies on the infinite carrier line.
func (l Line) At(t float64) Point {
	return l.From.Add(l.Dir().MulScalar(t))
}

// Param projects p onto the carrier line and returns its parameter.
func (l Line) Param(p Point) float64 {
	return p.Sub(l.From).Dot(l.Dir())
}

// Closest returns the projection of p onto the infinite carrier line.
func (l Line) Closest(p Point) Point {
	return l.At(l.Param(p))
}

// DistTo returns the distance from p to the segment.
func (l Line) DistTo(p Point) float64 {
	t := math.Max(0, math.Min(l.Len(), l.Param(p)))
	return Dist(p, l.At(t))
}

// LineDist returns the distance from p to the infinite carrier line.
func (l Line) LineDist(p Point) float64 {
	return math.Abs(l.Dir().Cross(p.Sub(l.From)))
}

// Extend lengthens the segment by margin at both ends.
func (l Line) Extend(margin float64) Line {
	d := l.Dir()
	return Line{ID: l.ID, From: l.From.Sub(d.MulScalar(margin)), To: l.To.Add(d.MulScalar(margin))}
}

// Offset translates the segment by d along its left normal. Negative d
// moves it to the right.
func (l Line) Offset(d float64) Line {
	n := LeftNormal(l.Dir()).MulScalar(d)
	return Line{ID: l.ID, From: l.From.Add(n), To: l.To.Add(n)}
}

// Trim returns the part of the carrier line between parameters t0 and t1.
func (l Line) Trim(t0, t1 float64) Line {
	return Line{ID: l.ID, From: l.At(t0), To: l.At(t1)}
}

// Reversed returns the segment with its direction flipped.
func (l Line) Reversed() Line {
	return Line{ID: l.ID, From: l.To, To: l.From}
}

func (l Line) String() string {
	return fmt.Sprintf("line %s (%.4g,%.4g)-(%.4g,%.4g)", l.ID, l.From.X, l.From.Y, l.To.X, l.To.Y)
}

// ---------------------------------------------------------------------------
// Arc
// ---------------------------------------------------------------------------

// IsCircle reports whether the arc closes on itself.
func (a Arc) IsCircle() bool {
	return math.Abs(a.Sweep) >= 2*math.Pi-1e-12
}

// Len returns the arc length.
func (a Arc) Len() float64 {
	return math.Abs(a.Sweep) * a.Radius
}

func (a Arc) pointAtAngle(theta float64) Point {
	return Point{X: a.Center.X + a.Radius*math.Cos(theta), Y: a.Center.Y + a.Radius*math.Sin(theta)}
}

// At returns the point at arc-length parameter t.
func (a Arc) At(t float64) Point {
	if a.Radius == 0 {
		return a.Center
	}
	return a.pointAtAngle(a.Start + math.Copysign(t/a.Radius, a.Sweep))
}

// Param returns the arc-length parameter of the angular position of p,
// measured in the sweep direction and wrapped into [0, 2*pi*R).
func (a Arc) Param(p Point) float64 {
	d := p.Sub(a.Center)
	theta := math.Atan2(d.Y, d.X) - a.Start
	if a.Sweep < 0 {
		theta = -theta
	}
	theta = math.Mod(theta, 2*math.Pi)
	if theta < 0 {
		theta += 2 * math.Pi
	}
	return theta * a.Radius
}

// Reversed returns the arc traversed in the opposite direction.
func (a Arc) Reversed() Arc {
	return Arc{ID: a.ID, Center: a.Center, Radius: a.Radius, Start: a.Start + a.Sweep, Sweep: -a.Sweep}
}

func (a Arc) String() string {
	return fmt.Sprintf("arc %s c=(%.4g,%.4g) r=%.4g start=%.4g sweep=%.4g",
		a.ID, a.Center.X, a.Center.Y, a.Radius, a.Start, a.Sweep)
}

// ---------------------------------------------------------------------------
// Curve dispatch
// ---------------------------------------------------------------------------

// Start returns the first point of c. ok is false for full circles.
func Start(c Curve) (p Point, ok bool) {
	switch v := c.(type) {
	case Line:
		return v.From, true
	case Arc:
		if v.IsCircle() {
			return Point{}, false
		}
		return v.At(0), true
	}
	panic(fmt.Sprintf("geom: unknown curve %T", c))
}

// End returns the last point of c. ok is false for full circles.
func End(c Curve) (p Point, ok bool) {
	switch v := c.(type) {
	case Line:
		return v.To, true
	case Arc:
		if v.IsCircle() {
			return Point{}, false
		}
		return v.At(v.Len()), true
	}
	panic(fmt.Sprintf("geom: unknown curve %T", c))
}

// IsClosed reports whether c is a full circle.
func IsClosed(c Curve) bool {
	a, ok := c.(Arc)
	return ok && a.IsCircle()
}

// Length returns the arc length of c.
func Length(c Curve) float64 {
	switch v := c.(type) {
	case Line:
		return v.Len()
	case Arc:
		return v.Len()
	}
	panic(fmt.Sprintf("geom: unknown curve %T", c))
}

// Range returns the parameter interval of c.
func Range(c Curve) (lo, hi float64) {
	return 0, Length(c)
}

// PointAt evaluates c at parameter t.
func PointAt(c Curve, t float64) Point {
	switch v := c.(type) {
	case Line:
		return v.At(t)
	case Arc:
		return v.At(t)
	}
	panic(fmt.Sprintf("geom: unknown curve %T", c))
}

// ParamAt returns the parameter of p on c. Points off the curve are
// projected first.
func ParamAt(c Curve, p Point) float64 {
	switch v := c.(type) {
	case Line:
		return v.Param(p)
	case Arc:
		return v.Param(p)
	}
	panic(fmt.Sprintf("geom: unknown curve %T", c))
}

// Contains reports whether p lies on c within tol.
func Contains(c Curve, p Point, tol float64) bool {
	switch v := c.(type) {
	case Line:
		return v.DistTo(p) <= tol
	case Arc:
		if math.Abs(Dist(p, v.Center)-v.Radius) > tol {
			return false
		}
		if v.IsCircle() {
			return true
		}
		t := v.Param(p)
		if t <= v.Len()+tol {
			return true
		}
		// Just before the start point, wrapped to the far end of the circle.
		return 2*math.Pi*v.Radius-t <= tol
	}
	panic(fmt.Sprintf("geom: unknown curve %T", c))
}

// Reverse returns c traversed in the opposite direction.
func Reverse(c Curve) Curve {
	switch v := c.(type) {
	case Line:
		return v.Reversed()
	case Arc:
		return v.Reversed()
	}
	panic(fmt.Sprintf("geom: unknown curve %T", c))
}

// Discretize samples c into n segments and returns n+1 points including
// both endpoints. Lines always yield just their two endpoints. For a full
// circle the last point repeats the first.
func Discretize(c Curve, n int) []Point {
	if n < 1 {
		n = 1
	}
	if l, ok := c.(Line); ok {
		return []Point{l.From, l.To}
	}
	length := Length(c)
	pts := make([]Point, n+1)
	for i := 0; i <= n; i++ {
		pts[i] = PointAt(c, length*float64(i)/float64(n))
	}
	return pts
}

// DiscretizeDensity samples c with segments no longer than step. Arcs get
// at least minArcSegments segments.
func DiscretizeDensity(c Curve, step float64, minArcSegments int) []Point {
	if _, ok := c.(Line); ok || step <= 0 {
		return Discretize(c, minArcSegments)
	}
	n := int(math.Ceil(Length(c) / step))
	if n < minArcSegments {
		n = minArcSegments
	}
	return Discretize(c, n)
}

// Bounds returns the box enclosing a discretization of c.
func Bounds(c Curve) sdf.Box2 {
	return BoundsOf(Discretize(c, 32))
}
