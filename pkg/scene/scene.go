// Package scene is the plain document the kernel works on: walls,
// openings, rooms, beams and free curves, all referring to each other by id.
package scene

import (
	"github.com/samber/lo"

	"github.com/chazu/floorkit/pkg/beam"
	"github.com/chazu/floorkit/pkg/geom"
	"github.com/chazu/floorkit/pkg/wall"
)

// Room names the walls that enclose it.
type Room struct {
	ID    geom.ID
	Walls []geom.ID
}

// Scene is an ordered collection of plan entities. Order is preserved
// because merging and loop extraction are order sensitive.
type Scene struct {
	Walls    []wall.Wall
	Openings []wall.Opening
	Rooms    []Room
	Beams    []beam.Beam
	Curves   []geom.Curve // free curves such as column outlines and sketch lines
}

// New creates an empty scene.
func New() *Scene {
	return &Scene{}
}

// AddWall appends a wall.
func (s *Scene) AddWall(w wall.Wall) { s.Walls = append(s.Walls, w) }

// AddOpening appends an opening.
func (s *Scene) AddOpening(o wall.Opening) { s.Openings = append(s.Openings, o) }

// AddRoom appends a room.
func (s *Scene) AddRoom(r Room) { s.Rooms = append(s.Rooms, r) }

// AddBeam appends a beam.
func (s *Scene) AddBeam(b beam.Beam) { s.Beams = append(s.Beams, b) }

// AddCurve appends a free curve.
func (s *Scene) AddCurve(c geom.Curve) { s.Curves = append(s.Curves, c) }

// Wall returns the wall with the given id.
func (s *Scene) Wall(id geom.ID) (wall.Wall, bool) {
	return lo.Find(s.Walls, func(w wall.Wall) bool { return w.ID == id })
}

// BeamRooms resolves every room to its wall geometry. Unknown wall ids are
// skipped.
func (s *Scene) BeamRooms() []beam.Room {
	byID := lo.KeyBy(s.Walls, func(w wall.Wall) geom.ID { return w.ID })
	return lo.Map(s.Rooms, func(r Room, _ int) beam.Room {
		return beam.Room{ID: r.ID, Walls: lo.FilterMap(r.Walls, func(id geom.ID, _ int) (wall.Wall, bool) {
			w, ok := byID[id]
			return w, ok
		})}
	})
}

// Outline returns the wall centre lines followed by the free curves, the
// input for face extraction.
func (s *Scene) Outline() []geom.Curve {
	curves := lo.Map(s.Walls, func(w wall.Wall, _ int) geom.Curve { return w.Curve() })
	return append(curves, s.Curves...)
}
