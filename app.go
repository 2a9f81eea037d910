package main

import (
	"sync"

	"github.com/samber/lo"

	"github.com/chazu/floorkit/internal/logging"
	"github.com/chazu/floorkit/pkg/beam"
	"github.com/chazu/floorkit/pkg/config"
	"github.com/chazu/floorkit/pkg/engine"
	"github.com/chazu/floorkit/pkg/geom"
	"github.com/chazu/floorkit/pkg/halfedge"
	"github.com/chazu/floorkit/pkg/kernel"
	"github.com/chazu/floorkit/pkg/scene"
	"github.com/chazu/floorkit/pkg/wall"
)

// App runs plan source through the engine and the kernel. Calls to
// Evaluate are serialized because the kernel caches room outlines.
type App struct {
	mu     sync.Mutex
	engine *engine.Engine
	kernel *kernel.Kernel
}

// PointData is an [x, y] pair.
type PointData [2]float64

// ArcData describes the geometry of a curved wall. Angles are radians.
type ArcData struct {
	Center PointData `json:"center"`
	Radius float64   `json:"radius"`
	Start  float64   `json:"start"`
	Sweep  float64   `json:"sweep"`
}

// WallData is a merged and segmented wall.
type WallData struct {
	ID        string    `json:"id"`
	From      PointData `json:"from"`
	To        PointData `json:"to"`
	Thickness float64   `json:"thickness"`
	Side      wall.Side `json:"side"`
	Origins   []string  `json:"origins"`
	Arc       *ArcData  `json:"arc,omitempty"`
}

// OpeningData is an opening after re-homing onto merged walls.
type OpeningData struct {
	ID       string    `json:"id"`
	Wall     string    `json:"wall"`
	Position PointData `json:"position"`
	Swing    int       `json:"swing"`
}

// FaceData is a bounded face of the plan outline.
type FaceData struct {
	Curves   []string      `json:"curves"`
	Boundary []PointData   `json:"boundary"`
	Area     float64       `json:"area"`
	Holes    [][]PointData `json:"holes"`
}

// BeamData is a beam after fitting.
type BeamData struct {
	ID     string    `json:"id"`
	From   PointData `json:"from"`
	To     PointData `json:"to"`
	Width  float64   `json:"width"`
	Length float64   `json:"length"`
	Rooms  []string  `json:"rooms"`
}

// EvalErrorData is a JSON-serializable error or warning.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	ID      string `json:"id,omitempty"`
	Message string `json:"message"`
}

// Result is the full output of one evaluation.
type Result struct {
	Walls    []WallData      `json:"walls"`
	Openings []OpeningData   `json:"openings"`
	Faces    []FaceData      `json:"faces"`
	Beams    []BeamData      `json:"beams"`
	Errors   []EvalErrorData `json:"errors"`
	Warnings []EvalErrorData `json:"warnings"`
}

// NewApp creates an App whose kernel is built from cfg.
func NewApp(cfg config.Config) *App {
	return &App{
		engine: engine.NewEngine(),
		kernel: kernel.New(cfg),
	}
}

// Evaluate takes plan source and returns the processed plan. Evaluation,
// validation and kernel errors are reported in Result.Errors; nothing is
// computed once an error has been recorded.
func (a *App) Evaluate(source string) Result {
	a.mu.Lock()
	defer a.mu.Unlock()

	result := Result{
		Walls:    []WallData{},
		Openings: []OpeningData{},
		Faces:    []FaceData{},
		Beams:    []BeamData{},
		Errors:   []EvalErrorData{},
		Warnings: []EvalErrorData{},
	}
	fail := func(msg string) Result {
		result.Errors = append(result.Errors, EvalErrorData{Message: msg})
		return result
	}

	// Step 1: Evaluate the plan source into a scene.
	s, evalErrs, err := a.engine.Evaluate(source)
	if err != nil {
		logging.Logger().Error("evaluate", "err", err)
		return fail(err.Error())
	}
	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			result.Errors = append(result.Errors, EvalErrorData{Line: e.Line, Col: e.Col, Message: e.Message})
		}
		return result
	}

	// Step 2: Validate references and dimensions.
	v := scene.ValidateAll(s)
	for _, w := range v.Warnings {
		logging.Logger().Warn("validation", "id", w.ID, "msg", w.Message)
		result.Warnings = append(result.Warnings, EvalErrorData{ID: string(w.ID), Message: w.Message})
	}
	if !v.OK() {
		for _, e := range v.Errors {
			result.Errors = append(result.Errors, EvalErrorData{ID: string(e.ID), Message: e.Message})
		}
		return result
	}

	// Walls may have changed since the last call.
	a.kernel.Invalidate()

	// Step 3: Merge collinear walls and split them by side.
	segmented, err := a.kernel.SegmentWalls(s.Walls, s.Openings)
	if err != nil {
		return fail(err.Error())
	}
	result.Walls = lo.Map(segmented.Walls, func(w wall.Wall, _ int) WallData { return wallData(w) })
	result.Openings = lo.Map(segmented.Openings, func(o wall.Opening, _ int) OpeningData {
		return OpeningData{ID: string(o.ID), Wall: string(o.Wall), Position: pointData(o.Position), Swing: o.Swing}
	})

	// Step 4: Extract faces from the wall centre lines and free curves.
	_, loops := a.kernel.Rooms(s.Outline())
	result.Faces = lo.Map(loops.All, func(l *halfedge.Loop, _ int) FaceData { return faceData(l) })

	// Step 5: Fit beams to their rooms.
	fitted, err := a.kernel.ClipBeams(s.Beams, s.BeamRooms())
	if err != nil {
		return fail(err.Error())
	}
	result.Beams = lo.Map(fitted, func(b beam.Beam, _ int) BeamData { return beamData(b) })

	return result
}

func pointData(p geom.Point) PointData { return PointData{p.X, p.Y} }

func pointsData(pts []geom.Point) []PointData {
	return lo.Map(pts, func(p geom.Point, _ int) PointData { return pointData(p) })
}

func idStrings(ids []geom.ID) []string {
	return lo.Map(ids, func(id geom.ID, _ int) string { return string(id) })
}

func wallData(w wall.Wall) WallData {
	d := WallData{
		ID:        string(w.ID),
		From:      pointData(w.From),
		To:        pointData(w.To),
		Thickness: w.Thickness,
		Side:      w.Side,
		Origins:   idStrings(w.Origins()),
	}
	if w.Arc != nil {
		d.Arc = &ArcData{Center: pointData(w.Arc.Center), Radius: w.Arc.Radius, Start: w.Arc.Start, Sweep: w.Arc.Sweep}
	}
	return d
}

func faceData(l *halfedge.Loop) FaceData {
	holes := lo.FilterMap(l.Children, func(h *halfedge.Loop, _ int) ([]PointData, bool) {
		return pointsData(h.Boundary), h.Hole
	})
	return FaceData{
		Curves:   idStrings(lo.Uniq(l.EdgeIDs)),
		Boundary: pointsData(l.Boundary),
		Area:     l.Area,
		Holes:    holes,
	}
}

func beamData(b beam.Beam) BeamData {
	return BeamData{
		ID:     string(b.ID),
		From:   pointData(b.Center.From),
		To:     pointData(b.Center.To),
		Width:  b.Width,
		Length: b.Length,
		Rooms:  idStrings(b.Rooms),
	}
}
