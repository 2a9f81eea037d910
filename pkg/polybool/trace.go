package polybool

import (
	"math"

	"github.com/samber/lo"

	"github.com/chazu/floorkit/pkg/geom"
	"github.com/chazu/floorkit/pkg/interval"
)

// Tracer maps output edges back to the input curves they lie on. Arcs are
// matched through the same discretization the engine was fed.
type Tracer struct {
	pieces []geom.Line
	tol    float64
}

// NewTracer indexes the straight pieces of every loop.
func NewTracer(loops []Loop, arcSegments int, tol float64) *Tracer {
	t := &Tracer{tol: tol}
	for _, l := range loops {
		for _, c := range l.Curves {
			s := geom.Discretize(c, arcSegments)
			for i := 0; i+1 < len(s); i++ {
				if geom.Near(s[i], s[i+1], tol) {
					continue
				}
				t.pieces = append(t.pieces, geom.Line{ID: c.CurveID(), From: s[i], To: s[i+1]})
			}
		}
	}
	return t
}

// Edge builds the output edge from a to b with its provenance. An input id
// is recorded when its collinear pieces cover the edge end to end.
func (t *Tracer) Edge(a, b geom.Point) Edge {
	e := geom.Line{From: a, To: b}
	length := e.Len()
	cover := map[geom.ID][]interval.Range{}
	var order []geom.ID

	for _, p := range t.pieces {
		if e.LineDist(p.From) > t.tol || e.LineDist(p.To) > t.tol {
			continue
		}
		r := interval.New(e.Param(p.From), e.Param(p.To))
		if math.Min(r.Max, length)-math.Max(r.Min, 0) <= t.tol {
			continue
		}
		if _, seen := cover[p.ID]; !seen {
			order = append(order, p.ID)
		}
		cover[p.ID] = append(cover[p.ID], r)
	}

	ids := lo.Filter(order, func(id geom.ID, _ int) bool {
		merged := interval.SortAndMerge(cover[id])
		return lo.SomeBy(merged, func(r interval.Range) bool {
			return r.Min <= t.tol && r.Max >= length-t.tol
		})
	})
	return Edge{Curve: e, OldIDs: ids}
}

// Ring converts a closed point ring to edges.
func (t *Tracer) Ring(pts []geom.Point) []Edge {
	edges := make([]Edge, 0, len(pts))
	for i := range pts {
		a, b := pts[i], pts[(i+1)%len(pts)]
		if geom.Near(a, b, t.tol) {
			continue
		}
		edges = append(edges, t.Edge(a, b))
	}
	return edges
}
