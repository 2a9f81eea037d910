package engine

import (
	"math"
	"strings"
	"testing"

	"github.com/chazu/floorkit/pkg/geom"
	"github.com/chazu/floorkit/pkg/scene"
)

// ---------------------------------------------------------------------------
// Preprocessing tests
// ---------------------------------------------------------------------------

func TestPreprocessKeywords(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		expect string
	}{
		{
			name:   "simple keyword",
			input:  `(wall "w1" :thickness 0.2)`,
			expect: `(wall "w1" "__kw_thickness" 0.2)`,
		},
		{
			name:   "multiple keywords",
			input:  `(beam "b" :width 0.3 :rooms r)`,
			expect: `(beam "b" "__kw_width" 0.3 "__kw_rooms" r)`,
		},
		{
			name:   "keyword in string preserved",
			input:  `"thing with :keyword inside"`,
			expect: `"thing with :keyword inside"`,
		},
		{
			name:   "assignment operator preserved",
			input:  `(def x := 10)`,
			expect: `(def x := 10)`,
		},
		{
			name:   "kebab-case identifier",
			input:  `(arc-wall "a" :radius 3)`,
			expect: `(arc_wall "a" "__kw_radius" 3)`,
		},
		{
			name:   "minus operator preserved",
			input:  `(- 10 5)`,
			expect: `(- 10 5)`,
		},
		{
			name:   "negative literal preserved",
			input:  `(pt -1 -2.5)`,
			expect: `(pt -1 -2.5)`,
		},
		{
			name:   "comment converted to // style",
			input:  `;; comment with :keyword`,
			expect: `// comment with :keyword`,
		},
		{
			name:   "hyphen in keyword preserved",
			input:  `:side-a`,
			expect: `"__kw_side-a"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := preprocessSource(tt.input)
			if got != tt.expect {
				t.Errorf("preprocessSource(%q) = %q, want %q", tt.input, got, tt.expect)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Plan forms
// ---------------------------------------------------------------------------

func evalPlan(t *testing.T, source string) *scene.Scene {
	t.Helper()
	s, evalErrs, err := NewEngine().Evaluate(source)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("eval errors: %v", evalErrs)
	}
	if s == nil {
		t.Fatal("expected non-nil scene")
	}
	return s
}

func TestWallForm(t *testing.T) {
	s := evalPlan(t, `
(wall "w1" :from (pt 0 0) :to (pt 5 0) :thickness 0.2 :height 2.8
           :type "brick" :bearing true)
(wall "p1" :from (pt 0 2) :to (pt 5 2) :thickness 0.1 :editable)
`)
	if len(s.Walls) != 2 {
		t.Fatalf("expected 2 walls, got %d", len(s.Walls))
	}
	w := s.Walls[0]
	if w.ID != "w1" {
		t.Errorf("expected id w1, got %q", w.ID)
	}
	if w.From != geom.Pt(0, 0) || w.To != geom.Pt(5, 0) {
		t.Errorf("expected (0,0)->(5,0), got %v->%v", w.From, w.To)
	}
	if w.Thickness != 0.2 || w.Height != 2.8 {
		t.Errorf("expected thickness=0.2 height=2.8, got %f %f", w.Thickness, w.Height)
	}
	if w.Type != "brick" || !w.Bearing || w.HeightEditable {
		t.Errorf("unexpected wall properties: %+v", w)
	}
	if !s.Walls[1].HeightEditable {
		t.Error("expected trailing :editable to mark p1 as a partition")
	}
}

func TestArcWallForm(t *testing.T) {
	s := evalPlan(t, `(arc-wall "a1" :center (pt 0 0) :radius 2 :start 0 :sweep 90 :thickness 0.2)`)
	if len(s.Walls) != 1 {
		t.Fatalf("expected 1 wall, got %d", len(s.Walls))
	}
	w := s.Walls[0]
	if w.Arc == nil {
		t.Fatal("expected arc geometry")
	}
	if math.Abs(w.Arc.Sweep-math.Pi/2) > 1e-12 {
		t.Errorf("expected sweep pi/2, got %f", w.Arc.Sweep)
	}
	if !geom.Near(w.From, geom.Pt(2, 0), 1e-9) || !geom.Near(w.To, geom.Pt(0, 2), 1e-9) {
		t.Errorf("expected endpoints (2,0) and (0,2), got %v and %v", w.From, w.To)
	}
}

func TestRoomOpeningBeamForms(t *testing.T) {
	s := evalPlan(t, `
(def th 0.2)
(def s (wall "s" :from (pt 0 0) :to (pt 4 0) :thickness th))
(wall "e" :from (pt 4 0) :to (pt 4 4) :thickness th)
(wall "n" :from (pt 4 4) :to (pt 0 4) :thickness th)
(wall "w" :from (pt 0 4) :to (pt 0 0) :thickness th)
(opening "door" :wall s :at (pt 2 0) :swing 3)
(room "r" :walls (list s "e" "n" "w"))
(beam "b" :from (pt 0 2) :to (pt 4 2) :width 0.3 :rooms (list "r"))
`)
	if len(s.Openings) != 1 || s.Openings[0].Wall != "s" || s.Openings[0].Swing != 3 {
		t.Errorf("unexpected openings: %+v", s.Openings)
	}
	if len(s.Rooms) != 1 || len(s.Rooms[0].Walls) != 4 || s.Rooms[0].Walls[0] != "s" {
		t.Errorf("unexpected rooms: %+v", s.Rooms)
	}
	if len(s.Beams) != 1 {
		t.Fatalf("expected 1 beam, got %d", len(s.Beams))
	}
	b := s.Beams[0]
	if b.Width != 0.3 || b.Length != 4 || len(b.Rooms) != 1 || b.Rooms[0] != "r" {
		t.Errorf("unexpected beam: %+v", b)
	}
	if errs := scene.Validate(s); len(errs) != 0 {
		t.Errorf("expected a valid scene, got %v", errs)
	}
}

func TestCurveForms(t *testing.T) {
	s := evalPlan(t, `
(line "l1" (pt 0 0) (pt 1 1))
(line (pt 1 1) (pt 2 0))
(circle "col" :center (pt 2 2) :radius 0.3)
`)
	if len(s.Curves) != 3 {
		t.Fatalf("expected 3 curves, got %d", len(s.Curves))
	}
	if s.Curves[0].CurveID() != "l1" {
		t.Errorf("expected l1, got %q", s.Curves[0].CurveID())
	}
	if got := s.Curves[1].CurveID(); got != "line_anon_1" {
		t.Errorf("expected line_anon_1, got %q", got)
	}
	c, ok := s.Curves[2].(geom.Arc)
	if !ok || !c.IsCircle() || c.Radius != 0.3 {
		t.Errorf("expected circle of radius 0.3, got %#v", s.Curves[2])
	}
}

func TestFormErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{"wall without id", `(wall :from (pt 0 0) :to (pt 1 0))`, "id"},
		{"wall without to", `(wall "w" :from (pt 0 0))`, "missing :to"},
		{"point arity", `(pt 1)`, "exactly 2"},
		{"bad thickness", `(wall "w" :from (pt 0 0) :to (pt 1 0) :thickness "thick")`, "thickness"},
		{"full circle arc wall", `(arc-wall "a" :center (pt 0 0) :radius 1 :sweep 360)`, "sweep"},
		{"opening without wall", `(opening "d" :at (pt 0 0))`, "missing :wall"},
		{"bad room list", `(room "r" :walls 3)`, "list"},
		{"negative circle", `(circle "c" :center (pt 0 0) :radius -1)`, "radius"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, evalErrs, err := NewEngine().Evaluate(tt.source)
			if err != nil {
				t.Fatalf("expected non-fatal eval error, got fatal: %v", err)
			}
			if s != nil {
				t.Fatal("expected nil scene on form error")
			}
			if len(evalErrs) == 0 {
				t.Fatal("expected an eval error")
			}
			if !strings.Contains(evalErrs[0].Message, tt.want) {
				t.Errorf("message = %q, want containing %q", evalErrs[0].Message, tt.want)
			}
		})
	}
}

func TestEvaluationsAreIsolated(t *testing.T) {
	eng := NewEngine()
	if _, _, err := eng.Evaluate(`(line (pt 0 0) (pt 1 0))`); err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	s, _, err := eng.Evaluate(`(line (pt 0 0) (pt 1 0))`)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if got := s.Curves[0].CurveID(); got != "line_anon_1" {
		t.Errorf("expected numbering to restart per evaluation, got %q", got)
	}
}
