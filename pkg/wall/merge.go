package wall

import (
	"math"

	"github.com/samber/lo"

	"github.com/chazu/floorkit/internal/logging"
	"github.com/chazu/floorkit/pkg/geom"
	"github.com/chazu/floorkit/pkg/polybool"
)

// Options control merge eligibility and the segmentation pass.
type Options struct {
	Judge              geom.Judge
	ThicknessTolerance float64 // walls whose thickness differs more never merge
	MinLength          float64 // shorter walls are discarded
	ExtendMargin       float64 // carrier extension used when re-clipping a merged line
	SideTolerance      float64 // slack when matching outline edges to wall faces
}

// DefaultOptions returns the merge tolerances used for floor plans.
func DefaultOptions() Options {
	return Options{
		Judge:              geom.DefaultJudge(),
		ThicknessTolerance: 0.001,
		MinLength:          1e-6,
		ExtendMargin:       10000,
		SideTolerance:      1e-4,
	}
}

// Result is a wall list with the openings re-homed onto it.
type Result struct {
	Walls    []Wall
	Openings []Opening
}

// Merger fuses collinear walls. The engine is only needed by Segment.
type Merger struct {
	opts   Options
	engine polybool.Engine
}

// NewMerger returns a merger. engine may be nil when Segment is not used.
func NewMerger(engine polybool.Engine, opts Options) *Merger {
	return &Merger{opts: opts, engine: engine}
}

// Merge greedily fuses walls. Each unprocessed wall absorbs every eligible
// remaining wall until none is left, then is emitted. A merged wall keeps
// the id, direction and attributes of the wall that absorbed the others.
// Openings on absorbed walls move to the survivor. Inputs are not modified.
func (m *Merger) Merge(walls []Wall, openings []Opening) Result {
	ops := append([]Opening(nil), openings...)
	done := make([]bool, len(walls))
	out := make([]Wall, 0, len(walls))

	for i := range walls {
		if done[i] {
			continue
		}
		done[i] = true
		cur := walls[i]

		for merged := cur.Arc == nil; merged; {
			merged = false
			for j := range walls {
				if done[j] || !m.eligible(cur, walls[j]) {
					continue
				}
				cur = m.absorb(cur, walls[j], ops)
				done[j] = true
				merged = true
			}
		}
		out = append(out, cur)
	}

	return m.prune(Result{Walls: out, Openings: ops})
}

// eligible reports whether b may be fused into a.
func (m *Merger) eligible(a, b Wall) bool {
	if a.Arc != nil || b.Arc != nil {
		return false
	}
	if a.Type != b.Type || a.Bearing != b.Bearing || a.HeightEditable != b.HeightEditable {
		return false
	}
	if math.Abs(a.Thickness-b.Thickness) > m.opts.ThicknessTolerance {
		return false
	}
	return m.opts.Judge.Connected(a.Line(), b.Line())
}

// absorb extends cur to cover other. Both walls' endpoints are measured on
// cur's carrier extended far past its ends, and the carrier is clipped to
// the extreme parameters.
func (m *Merger) absorb(cur, other Wall, ops []Opening) Wall {
	carrier := cur.Line().Extend(m.opts.ExtendMargin)
	ts := []float64{
		carrier.Param(cur.From), carrier.Param(cur.To),
		carrier.Param(other.From), carrier.Param(other.To),
	}
	merged := carrier.Trim(lo.Min(ts), lo.Max(ts))

	anti := cur.Line().Dir().Dot(other.Line().Dir()) < 0
	cur.From, cur.To = merged.From, merged.To
	line := cur.Line()
	for k := range ops {
		if ops[k].Wall != other.ID {
			continue
		}
		ops[k].Wall = cur.ID
		ops[k].Position = line.Closest(ops[k].Position)
		if anti {
			ops[k].Swing = FlipSwing(ops[k].Swing)
		}
	}

	cur.OriginWalls = append(cur.Origins(), other.Origins()...)
	logging.Logger().Debug("wall: merged", "into", cur.ID, "absorbed", other.ID, "reversed", anti)
	return cur
}

// prune drops walls shorter than MinLength together with their openings.
func (m *Merger) prune(r Result) Result {
	keep := make(map[geom.ID]bool, len(r.Walls))
	walls := lo.Filter(r.Walls, func(w Wall, _ int) bool {
		if w.Len() <= m.opts.MinLength {
			logging.Logger().Debug("wall: discarded degenerate wall", "wall", w.ID)
			return false
		}
		keep[w.ID] = true
		return true
	})
	ops := lo.Filter(r.Openings, func(o Opening, _ int) bool { return keep[o.Wall] })
	return Result{Walls: walls, Openings: ops}
}
