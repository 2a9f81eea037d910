package beam

import (
	"fmt"
	"math"

	"github.com/samber/lo"

	"github.com/chazu/floorkit/internal/logging"
	"github.com/chazu/floorkit/pkg/geom"
	"github.com/chazu/floorkit/pkg/halfedge"
	"github.com/chazu/floorkit/pkg/interval"
	"github.com/chazu/floorkit/pkg/polybool"
	"github.com/chazu/floorkit/pkg/wall"
)

// Options control beam fitting.
type Options struct {
	ExtendMargin float64          // how far boundary lines reach past the beam
	Tolerance    float64          // on-boundary slack
	Judge        geom.Judge       // decides whether two stop edges are collinear
	Network      halfedge.Options // room outline extraction
}

// DefaultOptions returns the fitting parameters used for floor plans.
func DefaultOptions() Options {
	return Options{
		ExtendMargin: 10000,
		Tolerance:    1e-5,
		Judge:        geom.Judge{Dist: 1e-4, Angle: math.Pi / 1800},
		Network:      halfedge.DefaultOptions(),
	}
}

// Orchestrator fits beams to rooms. It caches each room's free space by
// room id, so ClearCache must be called when room geometry changes. An
// Orchestrator is not safe for concurrent use.
type Orchestrator struct {
	engine polybool.Engine
	opts   Options
	rooms  map[geom.ID][]polybool.Region
}

// NewOrchestrator returns an orchestrator with an empty room cache.
func NewOrchestrator(engine polybool.Engine, opts Options) *Orchestrator {
	return &Orchestrator{engine: engine, opts: opts, rooms: map[geom.ID][]polybool.Region{}}
}

// ClearCache forgets every cached room.
func (o *Orchestrator) ClearCache() {
	clear(o.rooms)
}

// Cached reports whether room id is cached.
func (o *Orchestrator) Cached(id geom.ID) bool {
	_, ok := o.rooms[id]
	return ok
}

// RoomRegions returns the area enclosed by the structural walls of r, less
// the wall footprints. Rooms without a closed structural outline yield no
// regions.
func (o *Orchestrator) RoomRegions(r Room) ([]polybool.Region, error) {
	if regions, ok := o.rooms[r.ID]; ok {
		return regions, nil
	}
	structural := lo.Filter(r.Walls, func(w wall.Wall, _ int) bool { return w.Structural() })

	net := halfedge.Build(lo.Map(structural, func(w wall.Wall, _ int) geom.Curve { return w.Curve() }), o.opts.Network)
	found := halfedge.FindLoops(net)

	subject := lo.Map(found.Faces, func(l *halfedge.Loop, _ int) polybool.Loop { return loopOf(net, l, r.ID) })
	clip := lo.Map(structural, func(w wall.Wall, _ int) polybool.Loop { return w.FootprintLoop() })
	for _, h := range found.Holes {
		clip = append(clip, loopOf(net, h, r.ID))
	}

	var regions []polybool.Region
	if len(subject) > 0 {
		var err error
		regions, err = o.engine.Difference(subject, clip)
		if err != nil {
			return nil, fmt.Errorf("beam: room %s: %w", r.ID, err)
		}
	}
	if len(regions) == 0 {
		logging.Logger().Debug("beam: room has no enclosed space", "room", r.ID, "walls", len(structural))
	}
	o.rooms[r.ID] = regions
	return regions, nil
}

func loopOf(net *halfedge.Network, l *halfedge.Loop, id geom.ID) polybool.Loop {
	return polybool.Loop{ID: id, Curves: lo.Map(l.Edges, func(h halfedge.HalfEdgeID, _ int) geom.Curve {
		return net.HalfEdge(h).Curve
	})}
}

// ClipAll fits every beam to its rooms. Obstructions are the other beams
// as given, not as fitted. Beams that cannot be placed are returned
// unchanged.
func (o *Orchestrator) ClipAll(beams []Beam, rooms []Room) ([]Beam, error) {
	out := make([]Beam, len(beams))
	for i, b := range beams {
		mine := lo.Filter(rooms, func(r Room, _ int) bool { return b.inRoom(r.ID) })
		others := lo.Filter(beams, func(ob Beam, j int) bool {
			return j != i && lo.SomeBy(mine, func(r Room) bool { return ob.inRoom(r.ID) })
		})
		clipped, _, err := o.Clip(b, mine, others)
		if err != nil {
			return nil, err
		}
		out[i] = clipped
	}
	return out, nil
}

// side is one long edge of a beam: its extended line and the free stretch
// around the beam midpoint.
type side struct {
	line geom.Line
	seg  interval.Range
	ok   bool
}

// Clip fits b to each room in turn and keeps the shortest fit. others are
// obstructing beams; beams with b's id are ignored. ok is false and b is
// returned unchanged when no room admits the beam. Only boolean engine
// failures are errors.
func (o *Orchestrator) Clip(b Beam, rooms []Room, others []Beam) (Beam, bool, error) {
	length := b.Center.Len()
	if length <= o.opts.Tolerance || b.Width <= 0 {
		return b, false, nil
	}
	m := o.opts.ExtendMargin
	left := b.Center.Offset(b.Width / 2).Extend(m)
	right := b.Center.Offset(-b.Width / 2).Extend(m)

	obstacles := lo.FilterMap(others, func(ob Beam, _ int) (polybool.Loop, bool) {
		return ob.Footprint(), ob.ID != b.ID && ob.Center.Len() > o.opts.Tolerance && ob.Width > 0
	})

	best, found := b, false
	for _, r := range rooms {
		free, err := o.freeSpace(r, obstacles)
		if err != nil {
			return b, false, err
		}
		t0, t1, ok := o.fit(free, left, right, length)
		if !ok {
			logging.Logger().Debug("beam: no fit in room", "beam", b.ID, "room", r.ID)
			continue
		}
		trimmed := b.Center.Trim(t0, t1)
		if found && trimmed.Len() >= best.Length {
			continue
		}
		best = b
		best.Center = trimmed
		best.Position = trimmed.Mid()
		best.Length = trimmed.Len()
		found = true
	}
	return best, found, nil
}

// freeSpace subtracts obstacle footprints from the room.
func (o *Orchestrator) freeSpace(r Room, obstacles []polybool.Loop) ([]polybool.Region, error) {
	regions, err := o.RoomRegions(r)
	if err != nil || len(regions) == 0 || len(obstacles) == 0 {
		return regions, err
	}
	var subject, clip []polybool.Loop
	for _, reg := range regions {
		outer, holes := reg.Loops(r.ID)
		subject = append(subject, outer)
		clip = append(clip, holes...)
	}
	free, err := o.engine.Difference(subject, append(clip, obstacles...))
	if err != nil {
		return nil, fmt.Errorf("beam: room %s: %w", r.ID, err)
	}
	return free, nil
}

// fit returns the local parameter range the beam should span in free.
func (o *Orchestrator) fit(free []polybool.Region, left, right geom.Line, length float64) (t0, t1 float64, ok bool) {
	if len(free) == 0 {
		return 0, 0, false
	}
	m := o.opts.ExtendMargin
	mid := m + length/2
	sides := lo.Map([]geom.Line{left, right}, func(l geom.Line, _ int) side {
		for _, r := range polybool.ClipLine(free, l, o.opts.Tolerance) {
			if r.Contains(mid) {
				return side{line: l, seg: r, ok: true}
			}
		}
		return side{line: l}
	})
	if !sides[0].ok && !sides[1].ok {
		return 0, 0, false
	}

	start := o.bound(free, sides, func(r interval.Range) float64 { return r.Min }, math.Max, math.Min)
	end := o.bound(free, sides, func(r interval.Range) float64 { return r.Max }, math.Min, math.Max)
	t0, t1 = 0, length
	if !math.IsNaN(start) {
		t0 = start - m
	}
	if !math.IsNaN(end) {
		t1 = end - m
	}
	if t1-t0 <= o.opts.Tolerance {
		return 0, 0, false
	}
	return t0, t1, true
}

// bound picks one end of the fit from the two sides. at selects the end of
// a side's segment. When both sides stop on a boundary the tighter value
// wins, unless they stop on the same straight boundary, where the looser
// one does. NaN means neither side is bounded at this end.
func (o *Orchestrator) bound(free []polybool.Region, sides []side, at func(interval.Range) float64, tighter, looser func(a, b float64) float64) float64 {
	var vals []float64
	var edges []polybool.Edge
	for _, s := range sides {
		if !s.ok {
			continue
		}
		t := at(s.seg)
		e, on := polybool.EdgeAt(free, s.line.At(t), o.opts.Tolerance*10)
		if !on {
			continue
		}
		vals = append(vals, t)
		edges = append(edges, e)
	}
	switch len(vals) {
	case 0:
		return math.NaN()
	case 1:
		return vals[0]
	}
	if o.opts.Judge.IsCollinear(edges[0].Curve, edges[1].Curve) {
		return looser(vals[0], vals[1])
	}
	return tighter(vals[0], vals[1])
}
