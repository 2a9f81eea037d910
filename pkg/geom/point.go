// Package geom provides the planar primitives used by the floor-plan kernel:
// points, the Line/Arc curve union, the curve position judge, and polygon
// helpers. Points are sdfx 2D vectors so that sdfx boxes and signed distance
// functions can be used directly on kernel data.
package geom

import (
	"math"

	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"
)

// Point is an immutable 2D position. Compare points with Near, never ==.
type Point = v2.Vec

// ID identifies a curve, wall, room or beam. IDs are supplied by the caller
// and are stable across reordering.
type ID string

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Near reports whether a and b are within tol of each other.
func Near(a, b Point, tol float64) bool {
	return a.Sub(b).Length() <= tol
}

// Dist returns the distance between a and b.
func Dist(a, b Point) float64 {
	return a.Sub(b).Length()
}

// Lerp interpolates between a (t=0) and b (t=1).
func Lerp(a, b Point, t float64) Point {
	return a.Add(b.Sub(a).MulScalar(t))
}

// Unit returns d scaled to length 1, or the zero vector when d has no length.
func Unit(d Point) Point {
	l := d.Length()
	if l == 0 {
		return Point{}
	}
	return d.MulScalar(1 / l)
}

// LeftNormal rotates d by +90 degrees.
func LeftNormal(d Point) Point {
	return Point{X: -d.Y, Y: d.X}
}

// TurnAngle returns the signed angle in (-pi, pi] from direction a to
// direction b. Positive values are counter-clockwise turns.
func TurnAngle(a, b Point) float64 {
	return math.Atan2(a.Cross(b), a.Dot(b))
}

// BoundsOf returns the axis-aligned box enclosing pts.
func BoundsOf(pts []Point) sdf.Box2 {
	if len(pts) == 0 {
		return sdf.Box2{}
	}
	lo, hi := pts[0], pts[0]
	for _, p := range pts[1:] {
		lo = Point{X: math.Min(lo.X, p.X), Y: math.Min(lo.Y, p.Y)}
		hi = Point{X: math.Max(hi.X, p.X), Y: math.Max(hi.Y, p.Y)}
	}
	return sdf.Box2{Min: lo, Max: hi}
}

// BoxesOverlap reports whether two boxes intersect, allowing tol slack.
func BoxesOverlap(a, b sdf.Box2, tol float64) bool {
	return a.Min.X <= b.Max.X+tol && b.Min.X <= a.Max.X+tol &&
		a.Min.Y <= b.Max.Y+tol && b.Min.Y <= a.Max.Y+tol
}
