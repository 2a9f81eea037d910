// Package clipper implements polybool.Engine on top of the Vatti clipping
// library. Coordinates are scaled to integers so the boolean operation
// itself is exact.
package clipper

import (
	"fmt"
	"math"

	clip "github.com/ctessum/go.clipper"

	"github.com/chazu/floorkit/internal/logging"
	"github.com/chazu/floorkit/pkg/geom"
	"github.com/chazu/floorkit/pkg/polybool"
)

// Options configure the engine.
type Options struct {
	Epsilon     float64 // coordinate resolution; one integer unit
	ArcSegments int     // samples per arc
}

// DefaultOptions returns a resolution of polybool.Epsilon and 32 samples
// per arc.
func DefaultOptions() Options {
	return Options{Epsilon: polybool.Epsilon, ArcSegments: 32}
}

// Engine is a clipper-backed polybool.Engine. It holds no state between
// calls.
type Engine struct {
	opts Options
}

var _ polybool.Engine = (*Engine)(nil)

// New returns an engine using opts. Zero fields take their defaults.
func New(opts Options) *Engine {
	def := DefaultOptions()
	if opts.Epsilon <= 0 {
		opts.Epsilon = def.Epsilon
	}
	if opts.ArcSegments <= 0 {
		opts.ArcSegments = def.ArcSegments
	}
	return &Engine{opts: opts}
}

// Union merges loops into disjoint regions.
func (e *Engine) Union(loops []polybool.Loop) ([]polybool.Region, error) {
	return e.execute(clip.CtUnion, loops, nil)
}

// Difference removes clip from subject.
func (e *Engine) Difference(subject, clipLoops []polybool.Loop) ([]polybool.Region, error) {
	return e.execute(clip.CtDifference, subject, clipLoops)
}

func (e *Engine) execute(op clip.ClipType, subject, clipLoops []polybool.Loop) (regions []polybool.Region, err error) {
	defer func() {
		if r := recover(); r != nil {
			regions, err = nil, fmt.Errorf("%w: %v", polybool.ErrEngine, r)
		}
	}()

	subj := e.paths(subject)
	if len(subj) == 0 {
		return nil, nil
	}
	c := clip.NewClipper(clip.IoNone)
	c.AddPaths(subj, clip.PtSubject, true)
	if cl := e.paths(clipLoops); len(cl) > 0 {
		c.AddPaths(cl, clip.PtClip, true)
	}
	tree, ok := c.Execute2(op, clip.PftNonZero, clip.PftNonZero)
	if !ok || tree == nil {
		return nil, fmt.Errorf("%w: execution did not complete", polybool.ErrEngine)
	}

	tracer := polybool.NewTracer(append(append([]polybool.Loop(nil), subject...), clipLoops...),
		e.opts.ArcSegments, 10*e.opts.Epsilon)
	for _, n := range tree.Childs() {
		regions = e.collect(n, tracer, regions)
	}
	logging.Logger().Debug("polybool: boolean done", "subjects", len(subject), "clips", len(clipLoops), "regions", len(regions))
	return regions, nil
}

// collect converts an outer node and its holes to a region, then recurses
// into islands nested in those holes.
func (e *Engine) collect(outer *clip.PolyNode, tracer *polybool.Tracer, out []polybool.Region) []polybool.Region {
	pts := e.points(outer.Contour())
	if geom.SignedArea(pts) < 0 {
		pts = geom.Reversed(pts)
	}
	r := polybool.Region{Outer: tracer.Ring(pts)}
	for _, h := range outer.Childs() {
		hp := e.points(h.Contour())
		if geom.SignedArea(hp) > 0 {
			hp = geom.Reversed(hp)
		}
		r.Holes = append(r.Holes, tracer.Ring(hp))
	}
	if keep(r) {
		out = append(out, r)
	}
	for _, h := range outer.Childs() {
		for _, island := range h.Childs() {
			out = e.collect(island, tracer, out)
		}
	}
	return out
}

// keep reports whether r has an outer ring of at least three edges.
func keep(r polybool.Region) bool {
	if len(r.Outer) >= 3 {
		return true
	}
	logging.Logger().Debug("polybool: discarded degenerate region", "edges", len(r.Outer), "holes", len(r.Holes))
	return false
}

// paths scales loops to integer rings, all counter-clockwise so that the
// non-zero fill rule treats each loop as solid.
func (e *Engine) paths(loops []polybool.Loop) clip.Paths {
	var out clip.Paths
	for _, l := range loops {
		pts := l.Points(e.opts.ArcSegments)
		if len(pts) < 3 {
			continue
		}
		if geom.SignedArea(pts) < 0 {
			pts = geom.Reversed(pts)
		}
		path := make(clip.Path, 0, len(pts))
		for _, p := range pts {
			path = append(path, &clip.IntPoint{X: e.toInt(p.X), Y: e.toInt(p.Y)})
		}
		out = append(out, path)
	}
	return out
}

func (e *Engine) toInt(v float64) clip.CInt {
	return clip.CInt(math.Round(v / e.opts.Epsilon))
}

func (e *Engine) points(path clip.Path) []geom.Point {
	pts := make([]geom.Point, len(path))
	for i, p := range path {
		pts[i] = geom.Pt(float64(p.X)*e.opts.Epsilon, float64(p.Y)*e.opts.Epsilon)
	}
	return pts
}
