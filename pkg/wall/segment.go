package wall

import (
	"fmt"
	"math"
	"sort"

	"github.com/samber/lo"

	"github.com/chazu/floorkit/pkg/geom"
	"github.com/chazu/floorkit/pkg/interval"
	"github.com/chazu/floorkit/pkg/polybool"
)

// MergeAndSegment merges walls and then splits the merged runs at
// outer/inner transitions.
func (m *Merger) MergeAndSegment(walls []Wall, openings []Opening) (Result, error) {
	return m.Segment(m.Merge(walls, openings), walls)
}

// piece is a labelled parameter range along a merged wall.
type piece struct {
	r       interval.Range
	side    Side
	origins []geom.ID
}

// Segment classifies each wall of merged against the outline of the union
// of all wall footprints. Runs built from several original walls that are
// partly on the outline are split into outer and inner walls; every
// original wall ends up in exactly one of the pieces, chosen by its
// midpoint. originals supplies the geometry of the walls named in
// OriginWalls.
func (m *Merger) Segment(merged Result, originals []Wall) (Result, error) {
	if m.engine == nil {
		return Result{}, fmt.Errorf("wall: segment: no boolean engine")
	}
	straight := lo.Filter(merged.Walls, func(w Wall, _ int) bool { return w.Arc == nil })
	loops := lo.Map(straight, func(w Wall, _ int) polybool.Loop { return w.FootprintLoop() })
	regions, err := m.engine.Union(loops)
	if err != nil {
		return Result{}, fmt.Errorf("wall: segment: %w", err)
	}
	var outline []polybool.Edge
	for _, r := range regions {
		outline = append(outline, r.Outer...)
	}

	byID := lo.KeyBy(originals, func(w Wall) geom.ID { return w.ID })
	junction := lo.MaxBy(merged.Walls, func(a, b Wall) bool { return a.Thickness > b.Thickness }).Thickness

	var out []Wall
	ops := append([]Opening(nil), merged.Openings...)
	for _, w := range merged.Walls {
		if w.Arc != nil {
			out = append(out, w)
			continue
		}
		pieces := m.classify(w, outline, junction)
		if len(pieces) == 1 {
			w.Side = pieces[0].side
			out = append(out, w)
			continue
		}
		if len(w.Origins()) < 2 {
			w.Side = SideMixed
			out = append(out, w)
			continue
		}
		pieces = assignOrigins(w, pieces, byID)
		if len(pieces) == 1 {
			w.Side = pieces[0].side
			out = append(out, w)
			continue
		}
		out = append(out, split(w, pieces, ops)...)
	}

	return m.prune(Result{Walls: out, Openings: ops}), nil
}

// classify returns the outer and inner stretches of w in order along it.
// Stretches no longer than junction come from abutting walls and are folded
// into their neighbours.
func (m *Merger) classify(w Wall, outline []polybool.Edge, junction float64) []piece {
	axis := w.Line()
	length := axis.Len()
	half := w.Thickness / 2
	tol := m.opts.SideTolerance

	var outer []interval.Range
	for _, e := range outline {
		if !m.opts.Judge.IsParallel(axis, e.Curve) {
			continue
		}
		if math.Abs(axis.LineDist(e.Curve.From)-half) > tol || math.Abs(axis.LineDist(e.Curve.To)-half) > tol {
			continue
		}
		r := interval.New(axis.Param(e.Curve.From), axis.Param(e.Curve.To))
		r = interval.New(math.Max(0, r.Min), math.Min(length, r.Max))
		if r.Len() > tol {
			outer = append(outer, r)
		}
	}
	outer = interval.SortAndMerge(outer)
	inner := interval.SubtractMany([]interval.Range{interval.New(0, length)}, outer)

	var pieces []piece
	for _, r := range outer {
		pieces = append(pieces, piece{r: r, side: SideOuter})
	}
	for _, r := range inner {
		pieces = append(pieces, piece{r: r, side: SideInner})
	}
	sort.Slice(pieces, func(i, j int) bool { return pieces[i].r.Min < pieces[j].r.Min })
	if len(pieces) == 0 {
		return []piece{{r: interval.New(0, length), side: SideInner}}
	}
	pieces[0].r.Min = 0
	pieces[len(pieces)-1].r.Max = length
	return fold(pieces, func(p piece) bool { return p.r.Len() <= junction })
}

// fold absorbs every piece matching drop into a neighbour, then joins
// neighbours on the same side. The pieces stay contiguous.
func fold(pieces []piece, drop func(piece) bool) []piece {
	if len(pieces) <= 1 {
		return pieces
	}
	var out []piece
	for i, p := range pieces {
		if len(out) > 0 && drop(p) {
			prev := &out[len(out)-1]
			prev.r.Max = p.r.Max
			prev.origins = append(prev.origins, p.origins...)
			continue
		}
		if len(out) == 0 && drop(p) && i+1 < len(pieces) {
			pieces[i+1].r.Min = p.r.Min
			pieces[i+1].origins = append(append([]geom.ID(nil), p.origins...), pieces[i+1].origins...)
			continue
		}
		out = append(out, p)
	}

	joined := out[:1]
	for _, p := range out[1:] {
		prev := &joined[len(joined)-1]
		if prev.side == p.side {
			prev.r.Max = p.r.Max
			prev.origins = append(prev.origins, p.origins...)
			continue
		}
		joined = append(joined, p)
	}
	return joined
}

// assignOrigins hands every original wall of w to the piece holding its
// midpoint, then folds away pieces that received none.
func assignOrigins(w Wall, pieces []piece, byID map[geom.ID]Wall) []piece {
	axis := w.Line()
	for _, id := range w.Origins() {
		t := axis.Len() / 2
		if o, ok := byID[id]; ok {
			t = axis.Param(o.Line().Mid())
		}
		best, bestD := 0, math.Inf(1)
		for i, p := range pieces {
			d := math.Max(0, math.Max(p.r.Min-t, t-p.r.Max))
			if d < bestD {
				best, bestD = i, d
			}
		}
		pieces[best].origins = append(pieces[best].origins, id)
	}
	return fold(pieces, func(p piece) bool { return len(p.origins) == 0 })
}

// split cuts w into one wall per piece. Each piece takes the id of its first
// original wall; openings follow the piece they sit on.
func split(w Wall, pieces []piece, ops []Opening) []Wall {
	axis := w.Line()
	out := make([]Wall, len(pieces))
	for i, p := range pieces {
		seg := axis.Trim(p.r.Min, p.r.Max)
		nw := w
		nw.ID = p.origins[0]
		nw.From, nw.To = seg.From, seg.To
		nw.Side = p.side
		nw.OriginWalls = p.origins
		out[i] = nw
	}
	for k := range ops {
		if ops[k].Wall != w.ID {
			continue
		}
		t := axis.Param(ops[k].Position)
		for i, p := range pieces {
			if t <= p.r.Max || i == len(pieces)-1 {
				ops[k].Wall = out[i].ID
				break
			}
		}
	}
	return out
}
