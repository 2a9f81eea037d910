package scene

import (
	"fmt"

	"github.com/chazu/floorkit/pkg/geom"
)

// ValidationSeverity indicates whether a validation finding blocks kernel
// evaluation or is merely informational.
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // blocks evaluation
	SeverityWarning                           // informational
)

func (s ValidationSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("ValidationSeverity(%d)", int(s))
	}
}

// ValidationError describes a single validation finding.
type ValidationError struct {
	ID       geom.ID            // offending entity (empty if scene-level)
	Message  string             // human-readable description
	Severity ValidationSeverity // error or warning
}

func (e ValidationError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Severity, e.ID, e.Message)
}

// ValidationWarning describes a non-blocking advisory finding.
type ValidationWarning struct {
	ID      geom.ID
	Message string
}

// ValidationResult bundles errors (blocking) and warnings (advisory)
// from all validation tiers.
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationWarning
}

// OK reports whether there are no blocking errors.
func (r ValidationResult) OK() bool {
	return len(r.Errors) == 0
}

// Validate runs the Tier 1 structural checks. An empty slice means the
// scene can be handed to the kernel. The scene is not modified.
func Validate(s *Scene) []ValidationError {
	var errs []ValidationError
	errs = append(errs, validateIDs(s)...)
	errs = append(errs, validateReferences(s)...)
	errs = append(errs, validateDimensions(s)...)
	return errs
}

// ValidateAll runs both tiers and separates errors from warnings.
func ValidateAll(s *Scene) ValidationResult {
	var result ValidationResult
	for _, e := range Validate(s) {
		if e.Severity == SeverityWarning {
			result.Warnings = append(result.Warnings, ValidationWarning{ID: e.ID, Message: e.Message})
			continue
		}
		result.Errors = append(result.Errors, e)
	}
	result.Warnings = append(result.Warnings, validateGeometry(s)...)
	return result
}

// validateIDs checks that ids are present and unique within each kind.
// Curves share the wall namespace since both end up in one network.
func validateIDs(s *Scene) []ValidationError {
	var errs []ValidationError
	check := func(kind string, seen map[geom.ID]bool, id geom.ID) {
		if id == "" {
			errs = append(errs, ValidationError{Message: fmt.Sprintf("%s has an empty id", kind), Severity: SeverityError})
			return
		}
		if seen[id] {
			errs = append(errs, ValidationError{ID: id, Message: fmt.Sprintf("duplicate %s id", kind), Severity: SeverityError})
		}
		seen[id] = true
	}

	curves := map[geom.ID]bool{}
	for _, w := range s.Walls {
		check("wall", curves, w.ID)
	}
	for _, c := range s.Curves {
		check("curve", curves, c.CurveID())
	}
	openings := map[geom.ID]bool{}
	for _, o := range s.Openings {
		check("opening", openings, o.ID)
	}
	rooms := map[geom.ID]bool{}
	for _, r := range s.Rooms {
		check("room", rooms, r.ID)
	}
	beams := map[geom.ID]bool{}
	for _, b := range s.Beams {
		check("beam", beams, b.ID)
	}
	return errs
}

// validateReferences checks that openings, rooms and beams point at
// entities that exist.
func validateReferences(s *Scene) []ValidationError {
	var errs []ValidationError
	walls := map[geom.ID]bool{}
	for _, w := range s.Walls {
		walls[w.ID] = true
	}
	rooms := map[geom.ID]bool{}
	for _, r := range s.Rooms {
		rooms[r.ID] = true
	}

	for _, o := range s.Openings {
		if !walls[o.Wall] {
			errs = append(errs, ValidationError{
				ID:       o.ID,
				Message:  fmt.Sprintf("opening references non-existent wall %q", o.Wall),
				Severity: SeverityError,
			})
		}
	}
	for _, r := range s.Rooms {
		for _, id := range r.Walls {
			if !walls[id] {
				errs = append(errs, ValidationError{
					ID:       r.ID,
					Message:  fmt.Sprintf("room references non-existent wall %q", id),
					Severity: SeverityError,
				})
			}
		}
	}
	for _, b := range s.Beams {
		for _, id := range b.Rooms {
			if !rooms[id] {
				errs = append(errs, ValidationError{
					ID:       b.ID,
					Message:  fmt.Sprintf("beam references non-existent room %q", id),
					Severity: SeverityError,
				})
			}
		}
	}
	return errs
}

// validateDimensions checks thicknesses, widths and swing codes.
func validateDimensions(s *Scene) []ValidationError {
	var errs []ValidationError
	for _, w := range s.Walls {
		if w.Thickness <= 0 {
			errs = append(errs, ValidationError{
				ID:       w.ID,
				Message:  fmt.Sprintf("wall thickness is %.4f, must be positive", w.Thickness),
				Severity: SeverityError,
			})
		}
		if w.Arc != nil && w.Arc.Radius <= w.Thickness/2 {
			errs = append(errs, ValidationError{
				ID:       w.ID,
				Message:  fmt.Sprintf("arc wall radius %.4f does not clear half its thickness", w.Arc.Radius),
				Severity: SeverityError,
			})
		}
	}
	for _, b := range s.Beams {
		if b.Width <= 0 {
			errs = append(errs, ValidationError{
				ID:       b.ID,
				Message:  fmt.Sprintf("beam width is %.4f, must be positive", b.Width),
				Severity: SeverityError,
			})
		}
	}
	for _, o := range s.Openings {
		if o.Swing < 0 || o.Swing > 3 {
			errs = append(errs, ValidationError{
				ID:       o.ID,
				Message:  fmt.Sprintf("swing %d is outside 0..3", o.Swing),
				Severity: SeverityError,
			})
		}
	}
	return errs
}
