package scene

import (
	"fmt"

	"github.com/chazu/floorkit/pkg/geom"
	"github.com/chazu/floorkit/pkg/wall"
)

// ---------------------------------------------------------------------------
// Tier 2: geometric validation (warnings)
// ---------------------------------------------------------------------------

// degenerateLength is the length below which the merger discards a wall.
const degenerateLength = 1e-6

// validateGeometry runs all Tier 2 geometric checks. None of them block:
// the kernel filters degenerate input on its own.
func validateGeometry(s *Scene) []ValidationWarning {
	var warnings []ValidationWarning
	warnings = append(warnings, validateWallLengths(s)...)
	warnings = append(warnings, validateRoomWalls(s)...)
	warnings = append(warnings, validateBeamRooms(s)...)
	warnings = append(warnings, validateOpeningPositions(s)...)
	return warnings
}

// validateWallLengths flags walls the merger will discard.
func validateWallLengths(s *Scene) []ValidationWarning {
	var warnings []ValidationWarning
	for _, w := range s.Walls {
		if w.Len() <= degenerateLength {
			warnings = append(warnings, ValidationWarning{
				ID:      w.ID,
				Message: "wall has zero length and will be discarded",
			})
		}
	}
	return warnings
}

// validateRoomWalls flags rooms that cannot enclose any space.
func validateRoomWalls(s *Scene) []ValidationWarning {
	var warnings []ValidationWarning
	for _, r := range s.BeamRooms() {
		n := 0
		for _, w := range r.Walls {
			if w.Structural() {
				n++
			}
		}
		if n < 3 {
			warnings = append(warnings, ValidationWarning{
				ID:      r.ID,
				Message: fmt.Sprintf("room has %d structural walls; beams cannot be fitted to it", n),
			})
		}
	}
	return warnings
}

// validateBeamRooms flags beams that are not assigned to any room.
func validateBeamRooms(s *Scene) []ValidationWarning {
	var warnings []ValidationWarning
	for _, b := range s.Beams {
		if len(b.Rooms) == 0 {
			warnings = append(warnings, ValidationWarning{
				ID:      b.ID,
				Message: "beam is not assigned to a room; every room will be tried",
			})
		}
	}
	return warnings
}

// validateOpeningPositions flags openings lying off their host wall.
func validateOpeningPositions(s *Scene) []ValidationWarning {
	var warnings []ValidationWarning
	for _, o := range s.Openings {
		w, ok := s.Wall(o.Wall)
		if !ok || w.Arc != nil {
			continue
		}
		if d := distanceToWall(w, o.Position); d > w.Thickness/2 {
			warnings = append(warnings, ValidationWarning{
				ID:      o.ID,
				Message: fmt.Sprintf("opening lies %.4f off wall %s", d, w.ID),
			})
		}
	}
	return warnings
}

func distanceToWall(w wall.Wall, p geom.Point) float64 {
	return w.Line().DistTo(p)
}
