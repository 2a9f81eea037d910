package engine

import (
	"fmt"
	"math"
	"strings"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/chazu/floorkit/pkg/beam"
	"github.com/chazu/floorkit/pkg/geom"
	"github.com/chazu/floorkit/pkg/scene"
	"github.com/chazu/floorkit/pkg/wall"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource transforms plan source before passing it to zygomys. It
// performs three transformations outside of string literals:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal), so
//     keywords never collide with user variables.
//
//  2. Kebab-case to underscore: arc-wall -> arc_wall. zygomys reads a
//     hyphen inside an identifier as subtraction.
//
//  3. ; line comments become // comments.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		// Double-quoted string literals are copied verbatim.
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		if b[i] == '`' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '`' {
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		if b[i] == ':' && i+1 < len(b) {
			// := is assignment.
			if b[i+1] == '=' {
				result = append(result, b[i], b[i+1])
				i += 2
				continue
			}
			if isLetter(b[i+1]) {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				result = append(result, '"')
				result = append(result, kwPrefix...)
				result = append(result, b[i+1:j]...)
				result = append(result, '"')
				i = j
				continue
			}
		}
		// A hyphen between identifier characters joins words; anywhere else
		// it is the minus operator or a sign.
		if b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isLetter(b[i+1]) {
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpPoint wraps a geom.Point returned by `pt`.
type sexpPoint struct {
	p geom.Point
}

func (p *sexpPoint) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(pt %g %g)", p.p.X, p.p.Y)
}
func (p *sexpPoint) Type() *zygo.RegisteredType { return nil }

// sexpRef is returned by every entity form so that later forms can refer
// to an entity by value as well as by its id string.
type sexpRef struct {
	kind string
	id   geom.ID
}

func (r *sexpRef) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(%s %q)", r.kind, r.id)
}
func (r *sexpRef) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW reports whether s is a preprocessed keyword and returns its name.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds a mixed positional and keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if ok {
			if i+1 < len(args) {
				result.kw[name] = args[i+1]
				i += 2
			} else {
				result.kw[name] = zygo.SexpNull
				i++
			}
		} else {
			result.positional = append(result.positional, args[i])
			i++
		}
	}
	return result
}

// float reads keyword name into dst when present.
func (a kwArgs) float(form, name string, dst *float64) error {
	v, ok := a.kw[name]
	if !ok {
		return nil
	}
	f, err := toFloat64(v)
	if err != nil {
		return fmt.Errorf("%s: %s: %w", form, name, err)
	}
	*dst = f
	return nil
}

// point reads keyword name into dst; required points must be present.
func (a kwArgs) point(form, name string, required bool, dst *geom.Point) error {
	v, ok := a.kw[name]
	if !ok {
		if required {
			return fmt.Errorf("%s: missing :%s", form, name)
		}
		return nil
	}
	p, err := toPoint(v)
	if err != nil {
		return fmt.Errorf("%s: %s: %w", form, name, err)
	}
	*dst = p
	return nil
}

// flag reads a boolean keyword into dst. A trailing keyword with no value
// sets the flag.
func (a kwArgs) flag(form, name string, dst *bool) error {
	v, ok := a.kw[name]
	if !ok {
		return nil
	}
	if v == zygo.SexpNull {
		*dst = true
		return nil
	}
	b, err := toBool(v)
	if err != nil {
		return fmt.Errorf("%s: %s: %w", form, name, err)
	}
	*dst = b
	return nil
}

// ids reads a list of ids.
func (a kwArgs) ids(form, name string) ([]geom.ID, error) {
	v, ok := a.kw[name]
	if !ok {
		return nil, nil
	}
	items, err := sexpListToSlice(v)
	if err != nil {
		return nil, fmt.Errorf("%s: %s: %w", form, name, err)
	}
	out := make([]geom.ID, 0, len(items))
	for _, item := range items {
		id, err := toID(item)
		if err != nil {
			return nil, fmt.Errorf("%s: %s entry: %w", form, name, err)
		}
		out = append(out, id)
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

func toBool(s zygo.Sexp) (bool, error) {
	if b, ok := s.(*zygo.SexpBool); ok {
		return b.Val, nil
	}
	return false, fmt.Errorf("expected true or false, got %T (%s)", s, s.SexpString(nil))
}

func toPoint(s zygo.Sexp) (geom.Point, error) {
	if p, ok := s.(*sexpPoint); ok {
		return p.p, nil
	}
	return geom.Point{}, fmt.Errorf("expected (pt x y), got %T (%s)", s, s.SexpString(nil))
}

// toID accepts an entity reference or a plain id string.
func toID(s zygo.Sexp) (geom.ID, error) {
	switch v := s.(type) {
	case *sexpRef:
		return v.id, nil
	case *zygo.SexpStr:
		if _, kw := isKW(v); !kw {
			return geom.ID(v.S), nil
		}
	}
	return "", fmt.Errorf("expected id string or entity, got %T (%s)", s, s.SexpString(nil))
}

// sexpListToSlice converts a SexpPair (Lisp list) or SexpArray to a Go slice.
func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("expected list or array, got %T", s)
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs the plan forms into a zygomys environment. The
// forms append to s in evaluation order.
//
// Source must be preprocessed with preprocessSource so that :keyword tokens
// arrive as recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, s *scene.Scene) {
	// Anonymous curves are numbered per evaluation so ids stay deterministic.
	anon := 0
	curveID := func(kind string, pos []zygo.Sexp) (geom.ID, []zygo.Sexp) {
		if len(pos) > 0 {
			if str, ok := pos[0].(*zygo.SexpStr); ok {
				return geom.ID(str.S), pos[1:]
			}
		}
		anon++
		return geom.ID(fmt.Sprintf("%s_anon_%d", kind, anon)), pos
	}
	name := func(form string, pos []zygo.Sexp) (geom.ID, error) {
		if len(pos) < 1 {
			return "", fmt.Errorf("%s requires an id argument", form)
		}
		id, err := toString(pos[0])
		if err != nil {
			return "", fmt.Errorf("%s: id: %w", form, err)
		}
		return geom.ID(id), nil
	}

	// -----------------------------------------------------------------------
	// (pt 1.5 2)
	// -----------------------------------------------------------------------
	env.AddFunction("pt", func(env *zygo.Zlisp, _ string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("pt requires exactly 2 arguments, got %d", len(args))
		}
		x, err := toFloat64(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("pt: x: %w", err)
		}
		y, err := toFloat64(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("pt: y: %w", err)
		}
		return &sexpPoint{p: geom.Pt(x, y)}, nil
	})

	// wallProps reads the keywords shared by wall and arc-wall.
	wallProps := func(form string, pa kwArgs, w *wall.Wall) error {
		if err := pa.float(form, "thickness", &w.Thickness); err != nil {
			return err
		}
		if err := pa.float(form, "height", &w.Height); err != nil {
			return err
		}
		if err := pa.flag(form, "bearing", &w.Bearing); err != nil {
			return err
		}
		if err := pa.flag(form, "editable", &w.HeightEditable); err != nil {
			return err
		}
		if v, ok := pa.kw["type"]; ok {
			t, err := toString(v)
			if err != nil {
				return fmt.Errorf("%s: type: %w", form, err)
			}
			w.Type = t
		}
		return nil
	}

	// -----------------------------------------------------------------------
	// (wall "w1" :from (pt 0 0) :to (pt 5 0) :thickness 0.2
	//            :height 2.8 :type "brick" :bearing true :editable false)
	// -----------------------------------------------------------------------
	env.AddFunction("wall", func(env *zygo.Zlisp, _ string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		id, err := name("wall", pa.positional)
		if err != nil {
			return zygo.SexpNull, err
		}
		w := wall.Wall{ID: id}
		if err := pa.point("wall", "from", true, &w.From); err != nil {
			return zygo.SexpNull, err
		}
		if err := pa.point("wall", "to", true, &w.To); err != nil {
			return zygo.SexpNull, err
		}
		if err := wallProps("wall", pa, &w); err != nil {
			return zygo.SexpNull, err
		}
		s.AddWall(w)
		return &sexpRef{kind: "wall", id: id}, nil
	})

	// -----------------------------------------------------------------------
	// (arc-wall "a1" :center (pt 0 0) :radius 3 :start 0 :sweep 90
	//                :thickness 0.2)
	//
	// Angles are in degrees; a positive sweep runs counter-clockwise.
	// Registered as "arc_wall"; the preprocessor rewrites the hyphen.
	// -----------------------------------------------------------------------
	env.AddFunction("arc_wall", func(env *zygo.Zlisp, _ string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		id, err := name("arc-wall", pa.positional)
		if err != nil {
			return zygo.SexpNull, err
		}
		arc := geom.Arc{ID: id}
		if err := pa.point("arc-wall", "center", true, &arc.Center); err != nil {
			return zygo.SexpNull, err
		}
		var start, sweep float64
		if err := pa.float("arc-wall", "radius", &arc.Radius); err != nil {
			return zygo.SexpNull, err
		}
		if err := pa.float("arc-wall", "start", &start); err != nil {
			return zygo.SexpNull, err
		}
		if err := pa.float("arc-wall", "sweep", &sweep); err != nil {
			return zygo.SexpNull, err
		}
		if arc.Radius <= 0 || sweep == 0 || math.Abs(sweep) >= 360 {
			return zygo.SexpNull, fmt.Errorf("arc-wall: needs a positive :radius and a :sweep strictly between -360 and 360")
		}
		arc.Start = start * math.Pi / 180
		arc.Sweep = sweep * math.Pi / 180

		w := wall.Wall{ID: id, Arc: &arc}
		w.From, _ = geom.Start(arc)
		w.To, _ = geom.End(arc)
		if err := wallProps("arc-wall", pa, &w); err != nil {
			return zygo.SexpNull, err
		}
		s.AddWall(w)
		return &sexpRef{kind: "wall", id: id}, nil
	})

	// -----------------------------------------------------------------------
	// (opening "d1" :wall "w1" :at (pt 2 0) :swing 1)
	// -----------------------------------------------------------------------
	env.AddFunction("opening", func(env *zygo.Zlisp, _ string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		id, err := name("opening", pa.positional)
		if err != nil {
			return zygo.SexpNull, err
		}
		o := wall.Opening{ID: id}
		v, ok := pa.kw["wall"]
		if !ok {
			return zygo.SexpNull, fmt.Errorf("opening: missing :wall")
		}
		if o.Wall, err = toID(v); err != nil {
			return zygo.SexpNull, fmt.Errorf("opening: wall: %w", err)
		}
		if err := pa.point("opening", "at", true, &o.Position); err != nil {
			return zygo.SexpNull, err
		}
		var swing float64
		if err := pa.float("opening", "swing", &swing); err != nil {
			return zygo.SexpNull, err
		}
		o.Swing = int(swing)
		s.AddOpening(o)
		return &sexpRef{kind: "opening", id: id}, nil
	})

	// -----------------------------------------------------------------------
	// (room "r1" :walls (list "w1" "w2" "w3" "w4"))
	// -----------------------------------------------------------------------
	env.AddFunction("room", func(env *zygo.Zlisp, _ string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		id, err := name("room", pa.positional)
		if err != nil {
			return zygo.SexpNull, err
		}
		walls, err := pa.ids("room", "walls")
		if err != nil {
			return zygo.SexpNull, err
		}
		s.AddRoom(scene.Room{ID: id, Walls: walls})
		return &sexpRef{kind: "room", id: id}, nil
	})

	// -----------------------------------------------------------------------
	// (beam "b1" :from (pt 0 2) :to (pt 6 2) :width 0.3 :rooms (list "r1"))
	// -----------------------------------------------------------------------
	env.AddFunction("beam", func(env *zygo.Zlisp, _ string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		id, err := name("beam", pa.positional)
		if err != nil {
			return zygo.SexpNull, err
		}
		var center geom.Line
		if err := pa.point("beam", "from", true, &center.From); err != nil {
			return zygo.SexpNull, err
		}
		if err := pa.point("beam", "to", true, &center.To); err != nil {
			return zygo.SexpNull, err
		}
		var width float64
		if err := pa.float("beam", "width", &width); err != nil {
			return zygo.SexpNull, err
		}
		rooms, err := pa.ids("beam", "rooms")
		if err != nil {
			return zygo.SexpNull, err
		}
		s.AddBeam(beam.New(id, center, width, rooms...))
		return &sexpRef{kind: "beam", id: id}, nil
	})

	// -----------------------------------------------------------------------
	// (line "l1" (pt 0 0) (pt 1 1)) or (line (pt 0 0) (pt 1 1))
	// -----------------------------------------------------------------------
	env.AddFunction("line", func(env *zygo.Zlisp, _ string, args []zygo.Sexp) (zygo.Sexp, error) {
		id, pos := curveID("line", args)
		if len(pos) != 2 {
			return zygo.SexpNull, fmt.Errorf("line requires two points, got %d arguments", len(pos))
		}
		from, err := toPoint(pos[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("line: from: %w", err)
		}
		to, err := toPoint(pos[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("line: to: %w", err)
		}
		s.AddCurve(geom.Line{ID: id, From: from, To: to})
		return &sexpRef{kind: "line", id: id}, nil
	})

	// -----------------------------------------------------------------------
	// (circle "c1" :center (pt 2 2) :radius 0.3)
	// -----------------------------------------------------------------------
	env.AddFunction("circle", func(env *zygo.Zlisp, _ string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		id, _ := curveID("circle", pa.positional)
		var center geom.Point
		if err := pa.point("circle", "center", true, &center); err != nil {
			return zygo.SexpNull, err
		}
		var radius float64
		if err := pa.float("circle", "radius", &radius); err != nil {
			return zygo.SexpNull, err
		}
		if radius <= 0 {
			return zygo.SexpNull, fmt.Errorf("circle: radius must be positive, got %g", radius)
		}
		s.AddCurve(geom.Circle(id, center, radius))
		return &sexpRef{kind: "circle", id: id}, nil
	})
}
