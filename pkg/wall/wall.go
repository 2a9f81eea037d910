// Package wall holds the wall and opening model and the collinear merger
// that reduces a wall list to a minimal set of non-overlapping runs.
package wall

import (
	"fmt"

	"github.com/chazu/floorkit/pkg/geom"
	"github.com/chazu/floorkit/pkg/polybool"
)

// Side tells whether a wall run faces the outside of the building.
type Side int

const (
	SideUnknown Side = iota
	SideOuter        // one face lies on the building outline
	SideInner        // both faces are interior
	SideMixed        // partly outer, but made from a single original wall
)

func (s Side) String() string {
	switch s {
	case SideOuter:
		return "outer"
	case SideInner:
		return "inner"
	case SideMixed:
		return "mixed"
	default:
		return "unknown"
	}
}

// MarshalText renders the side by name.
func (s Side) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses a name written by MarshalText.
func (s *Side) UnmarshalText(b []byte) error {
	for _, c := range []Side{SideUnknown, SideOuter, SideInner, SideMixed} {
		if c.String() == string(b) {
			*s = c
			return nil
		}
	}
	return fmt.Errorf("wall: unknown side %q", b)
}

// Wall is a straight or arced wall centre line with its build attributes.
// OriginWalls lists the input walls a merged wall was built from; it is
// empty for walls that were never merged.
type Wall struct {
	ID        geom.ID
	From      geom.Point
	To        geom.Point
	Thickness float64
	Bearing   bool
	Height    float64
	Type      string

	// HeightEditable marks non-structural partitions. They never bound a
	// room for beam clipping.
	HeightEditable bool

	// Arc is set for curved walls; From and To are then its endpoints.
	Arc *geom.Arc

	OriginWalls []geom.ID
	Side        Side
}

// Line returns the centre line as a segment carrying the wall id.
func (w Wall) Line() geom.Line {
	return geom.Line{ID: w.ID, From: w.From, To: w.To}
}

// Curve returns the centre line, as an arc for curved walls.
func (w Wall) Curve() geom.Curve {
	if w.Arc != nil {
		a := *w.Arc
		a.ID = w.ID
		return a
	}
	return w.Line()
}

// Len returns the centre line length.
func (w Wall) Len() float64 {
	return geom.Length(w.Curve())
}

// Origins returns OriginWalls, or the wall's own id when it was never
// merged. The result is a fresh slice.
func (w Wall) Origins() []geom.ID {
	if len(w.OriginWalls) == 0 {
		return []geom.ID{w.ID}
	}
	return append([]geom.ID(nil), w.OriginWalls...)
}

// Structural reports whether the wall bounds rooms.
func (w Wall) Structural() bool {
	return !w.HeightEditable
}

// Footprint returns the counter-clockwise outline of the wall as if it
// were straight.
func (w Wall) Footprint() []geom.Point {
	return geom.Rect(w.Line(), w.Thickness)
}

// FootprintLoop returns the wall outline as a boolean-engine loop. Curved
// walls are bounded by two concentric arcs.
func (w Wall) FootprintLoop() polybool.Loop {
	if w.Arc == nil {
		return polybool.Polygon(w.ID, w.Footprint())
	}
	half := w.Thickness / 2
	outer, inner := *w.Arc, *w.Arc
	outer.ID, inner.ID = w.ID, w.ID
	outer.Radius += half
	inner.Radius = max(inner.Radius-half, 0)
	inner = inner.Reversed()

	oe, _ := geom.End(outer)
	is, _ := geom.Start(inner)
	ie, _ := geom.End(inner)
	os, _ := geom.Start(outer)
	return polybool.Loop{ID: w.ID, Curves: []geom.Curve{
		outer,
		geom.Line{ID: w.ID, From: oe, To: is},
		inner,
		geom.Line{ID: w.ID, From: ie, To: os},
	}}
}

// Opening is a door or window hosted by a wall. Swing is a quadrant code
// 0..3 relative to the host wall direction.
type Opening struct {
	ID       geom.ID
	Wall     geom.ID
	Position geom.Point
	Swing    int
}

var swingFlip = [4]int{2, 3, 0, 1}

// FlipSwing maps a swing code onto a host wall running the opposite way.
// Codes outside 0..3 are returned unchanged.
func FlipSwing(s int) int {
	if s < 0 || s > 3 {
		return s
	}
	return swingFlip[s]
}
