// Package beam fits beams to the free space of the rooms they span.
//
// A beam is trimmed or extended along its own axis until both of its long
// edges stop at room walls or at other beams. Rooms are cut out of their
// structural walls once per Orchestrator and cached.
package beam

import (
	"github.com/samber/lo"

	"github.com/chazu/floorkit/pkg/geom"
	"github.com/chazu/floorkit/pkg/polybool"
	"github.com/chazu/floorkit/pkg/wall"
)

// Beam is a straight beam seen from above.
type Beam struct {
	ID     geom.ID
	Center geom.Line // axis; direction defines the local parameter
	Width  float64   // cross-section width
	Rooms  []geom.ID // rooms the beam spans; empty means any

	Position geom.Point // midpoint of Center
	Length   float64    // length of Center
}

// New returns a beam along center with Position and Length filled in.
func New(id geom.ID, center geom.Line, width float64, rooms ...geom.ID) Beam {
	center.ID = id
	return Beam{ID: id, Center: center, Width: width, Rooms: rooms, Position: center.Mid(), Length: center.Len()}
}

// Footprint returns the beam outline as a boolean-engine loop.
func (b Beam) Footprint() polybool.Loop {
	return polybool.Polygon(b.ID, geom.Rect(b.Center, b.Width))
}

// inRoom reports whether the beam is assigned to room id.
func (b Beam) inRoom(id geom.ID) bool {
	return len(b.Rooms) == 0 || lo.Contains(b.Rooms, id)
}

// Room is a room bounded by walls. Only structural walls bound the free
// space beams are fitted to.
type Room struct {
	ID    geom.ID
	Walls []wall.Wall
}
