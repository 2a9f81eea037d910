package halfedge

import (
	"math"

	"github.com/samber/lo"

	"github.com/chazu/floorkit/internal/logging"
	"github.com/chazu/floorkit/pkg/geom"
)

// Loop is a closed cycle of half-edges. Faces run counter-clockwise and have
// positive Area; holes are the clockwise outlines of components nested in a
// face. A face's Children are its holes and a hole's Children are the faces
// of the component it outlines.
type Loop struct {
	Edges    []HalfEdgeID
	EdgeIDs  []geom.ID
	Boundary []geom.Point
	Area     float64
	Hole     bool
	Children []*Loop

	component int
	ring      *geom.Ring
	parent    *Loop
}

// Ring returns the loop boundary as a containment-capable ring.
func (l *Loop) Ring() *geom.Ring {
	return l.ring
}

// Contains reports whether p lies inside the loop boundary and outside all
// of its holes.
func (l *Loop) Contains(p geom.Point, tol float64) bool {
	if !l.ring.Inside(p, tol) {
		return false
	}
	for _, h := range l.Children {
		if h.Hole && h.ring.Inside(p, tol) {
			return false
		}
	}
	return true
}

// Result is the outcome of loop extraction.
type Result struct {
	Faces    []*Loop   // faces not nested inside any hole
	All      []*Loop   // every face
	Holes    []*Loop   // every outline nested inside a face
	Dangling []geom.ID // curves that cannot be part of any cycle
	Failed   int       // traversals abandoned before closing
}

// FindLoops extracts minimal counter-clockwise faces from n and nests the
// outlines of enclosed components inside them as holes.
func FindLoops(n *Network) Result {
	var res Result
	active := pruneDangling(n, &res)
	used := make([]bool, len(n.HalfEdges))

	var loops []*Loop
	for i := range n.HalfEdges {
		h := HalfEdgeID(i)
		if used[h] || !active[h] {
			continue
		}
		edges, ok := traverse(n, h, active, used)
		if !ok {
			res.Failed++
			logging.Logger().Debug("halfedge: traversal did not close", "start", n.HalfEdges[h].EdgeID)
			continue
		}
		l := newLoop(n, edges)
		if math.Abs(l.Area) <= n.opts.AreaTolerance {
			continue
		}
		loops = append(loops, l)
	}

	assignComponents(n, loops)
	nest(loops, n.opts.WeldTolerance, &res)
	return res
}

// traverse walks from start, always taking the tightest counter-clockwise
// turn, until it returns to start. Half-edges are marked used as they are
// consumed, including on failure.
func traverse(n *Network, start HalfEdgeID, active, used []bool) ([]HalfEdgeID, bool) {
	if n.HalfEdges[start].IsCircle() {
		used[start] = true
		return []HalfEdgeID{start}, true
	}
	edges := []HalfEdgeID{start}
	used[start] = true
	cur := start
	for steps := 0; steps < len(n.HalfEdges); steps++ {
		next, ok := nextEdge(n, cur, active)
		if !ok {
			return nil, false
		}
		if next == start {
			return edges, true
		}
		if used[next] {
			return nil, false
		}
		used[next] = true
		edges = append(edges, next)
		cur = next
	}
	return nil, false
}

// nextEdge picks the outgoing half-edge at the end of cur with the largest
// counter-clockwise turn. Turning back along the partner is never chosen;
// other reversals rank last. Ties go to the lower id.
func nextEdge(n *Network, cur HalfEdgeID, active []bool) (HalfEdgeID, bool) {
	h := &n.HalfEdges[cur]
	best := HalfEdgeID(-1)
	bestTurn := math.Inf(-1)
	for i := range n.HalfEdges {
		c := &n.HalfEdges[i]
		if c.From != h.To || c.ID == h.Partner || !active[i] {
			continue
		}
		turn := geom.TurnAngle(h.EndDir, c.StartDir)
		if turn > math.Pi-1e-9 {
			turn = -math.Pi
		}
		if turn > bestTurn+1e-12 {
			best, bestTurn = c.ID, turn
		}
	}
	return best, best >= 0
}

func newLoop(n *Network, edges []HalfEdgeID) *Loop {
	var pts []geom.Point
	for _, id := range edges {
		h := &n.HalfEdges[id]
		if !h.IsCircle() {
			pts = append(pts, n.Vertices[h.From].Pos)
		}
		pts = append(pts, h.Points...)
	}
	l := &Loop{
		Edges:    edges,
		EdgeIDs:  lo.Map(edges, func(id HalfEdgeID, _ int) geom.ID { return n.HalfEdges[id].EdgeID }),
		Boundary: pts,
		Area:     geom.SignedArea(pts),
	}
	l.Hole = l.Area < 0
	l.ring = geom.NewRing(pts)
	return l
}

// pruneDangling removes chains that end in a vertex of degree one. Their
// curves are reported in res.Dangling.
func pruneDangling(n *Network, res *Result) []bool {
	active := make([]bool, len(n.HalfEdges))
	degree := make([]int, len(n.Vertices))
	for i := range n.HalfEdges {
		active[i] = true
		h := &n.HalfEdges[i]
		if !h.IsCircle() && !h.Reversed {
			degree[h.From]++
			degree[h.To]++
		}
	}

	for changed := true; changed; {
		changed = false
		for i := range n.HalfEdges {
			h := &n.HalfEdges[i]
			if !active[i] || h.IsCircle() || h.Reversed {
				continue
			}
			if degree[h.From] > 1 && degree[h.To] > 1 {
				continue
			}
			active[i], active[h.Partner] = false, false
			degree[h.From]--
			degree[h.To]--
			res.Dangling = append(res.Dangling, h.EdgeID)
			changed = true
		}
	}
	if len(res.Dangling) > 0 {
		logging.Logger().Debug("halfedge: pruned dangling curves", "count", len(res.Dangling))
	}
	return active
}

// assignComponents labels each loop with the connected component of its
// vertices. Circles form components of their own.
func assignComponents(n *Network, loops []*Loop) {
	parent := make([]int, len(n.Vertices))
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(x int) int {
		for parent[x] != x {
			parent[x] = parent[parent[x]]
			x = parent[x]
		}
		return x
	}
	for i := range n.HalfEdges {
		h := &n.HalfEdges[i]
		if h.IsCircle() {
			continue
		}
		parent[find(int(h.From))] = find(int(h.To))
	}
	for _, l := range loops {
		h := &n.HalfEdges[l.Edges[0]]
		if h.IsCircle() {
			l.component = len(n.Vertices) + int(h.ID/2)
			continue
		}
		l.component = find(int(h.From))
	}
}

// nest links outlines to the smallest face of another component that
// encloses them, then links each component's faces to that outline.
// Outlines that no face encloses bound the unbounded face and are dropped.
func nest(loops []*Loop, tol float64, res *Result) {
	faces := lo.Filter(loops, func(l *Loop, _ int) bool { return !l.Hole })
	outlines := lo.Filter(loops, func(l *Loop, _ int) bool { return l.Hole })

	for _, o := range outlines {
		probe := o.Boundary[0]
		var best *Loop
		for _, f := range faces {
			if f.component == o.component || !f.ring.Inside(probe, tol) {
				continue
			}
			if best == nil || f.Area < best.Area {
				best = f
			}
		}
		if best != nil {
			o.parent = best
			best.Children = append(best.Children, o)
			res.Holes = append(res.Holes, o)
		}
	}

	for _, f := range faces {
		res.All = append(res.All, f)
		probe, ok := f.ring.InteriorPoint(tol)
		var host *Loop
		if ok {
			for _, o := range outlines {
				if o.parent == nil || o.component != f.component || !o.ring.Inside(probe, tol) {
					continue
				}
				if host == nil || -o.Area < -host.Area {
					host = o
				}
			}
		}
		if host != nil {
			f.parent = host
			host.Children = append(host.Children, f)
			continue
		}
		res.Faces = append(res.Faces, f)
	}
}
