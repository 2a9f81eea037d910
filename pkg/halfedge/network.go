// Package halfedge turns an unordered list of curves into a half-edge
// network over welded vertices and extracts face loops from it.
//
// Vertices and half-edges live in arenas owned by the Network and refer to
// each other by index. A network is built for one kernel call and thrown
// away; vertex identity is never carried across calls.
package halfedge

import (
	"github.com/chazu/floorkit/internal/logging"
	"github.com/chazu/floorkit/pkg/geom"
)

// VertexID indexes Network.Vertices.
type VertexID int

// HalfEdgeID indexes Network.HalfEdges.
type HalfEdgeID int

// NoVertex marks the missing endpoints of circle half-edges.
const NoVertex VertexID = -1

// Options control welding and sampling.
type Options struct {
	WeldTolerance float64 // vertices closer than this are one vertex
	ArcSegments   int     // samples per arc when discretizing
	AreaTolerance float64 // loops with smaller |area| are discarded
}

// DefaultOptions returns the tolerances used for wall and room graphs.
func DefaultOptions() Options {
	return Options{WeldTolerance: 1e-3, ArcSegments: 16, AreaTolerance: 1e-6}
}

// Vertex is the welded representative of near-coincident endpoints.
type Vertex struct {
	ID  VertexID
	Pos geom.Point
}

// HalfEdge is one traversal direction over a curve.
type HalfEdge struct {
	ID       HalfEdgeID
	EdgeID   geom.ID    // id of the underlying curve
	Curve    geom.Curve // oriented in traversal direction
	From     VertexID
	To       VertexID
	Reversed bool
	Partner  HalfEdgeID

	// Points holds interior samples, endpoints excluded. For circles it
	// holds the whole ring of samples.
	Points []geom.Point

	StartDir geom.Point // unit direction leaving From
	EndDir   geom.Point // unit direction arriving at To
}

// IsCircle reports whether the half-edge runs around a full circle.
func (h *HalfEdge) IsCircle() bool {
	return h.From == NoVertex
}

// Network is a flat arena of welded vertices and partnered half-edges.
type Network struct {
	Vertices  []Vertex
	HalfEdges []HalfEdge
	Dropped   []geom.ID // curves collapsed to a point by welding

	opts Options
}

// NewNetwork returns an empty network.
func NewNetwork(opts Options) *Network {
	if opts.ArcSegments < 2 {
		opts.ArcSegments = 2
	}
	return &Network{opts: opts}
}

// Build welds the endpoints of curves and creates a forward/reverse
// half-edge pair per curve, in input order.
func Build(curves []geom.Curve, opts Options) *Network {
	n := NewNetwork(opts)
	for _, c := range curves {
		n.Add(c)
	}
	return n
}

// Weld returns the first vertex within the weld tolerance of p, creating a
// new vertex when there is none. Later vertices are never reconciled with
// each other, even if p is within tolerance of several of them.
func (n *Network) Weld(p geom.Point) VertexID {
	for _, v := range n.Vertices {
		if geom.Near(v.Pos, p, n.opts.WeldTolerance) {
			return v.ID
		}
	}
	id := VertexID(len(n.Vertices))
	n.Vertices = append(n.Vertices, Vertex{ID: id, Pos: p})
	return id
}

// Add inserts a curve and returns its forward and reverse half-edges. ok is
// false when the curve degenerates to a single welded vertex.
func (n *Network) Add(c geom.Curve) (fwd, rev HalfEdgeID, ok bool) {
	if geom.IsClosed(c) {
		return n.addCircle(c)
	}

	s, _ := geom.Start(c)
	e, _ := geom.End(c)
	from, to := n.Weld(s), n.Weld(e)
	if from == to {
		n.Dropped = append(n.Dropped, c.CurveID())
		logging.Logger().Debug("halfedge: curve collapsed to a point", "curve", c.CurveID())
		return 0, 0, false
	}

	samples := geom.Discretize(c, n.opts.ArcSegments)
	inner := samples[1 : len(samples)-1]

	fwd = HalfEdgeID(len(n.HalfEdges))
	rev = fwd + 1
	n.HalfEdges = append(n.HalfEdges,
		n.halfEdge(fwd, rev, c, from, to, false, inner),
		n.halfEdge(rev, fwd, geom.Reverse(c), to, from, true, geom.Reversed(inner)),
	)
	return fwd, rev, true
}

func (n *Network) halfEdge(id, partner HalfEdgeID, c geom.Curve, from, to VertexID, reversed bool, inner []geom.Point) HalfEdge {
	fp, tp := n.Vertices[from].Pos, n.Vertices[to].Pos
	first, last := tp, fp
	if len(inner) > 0 {
		first, last = inner[0], inner[len(inner)-1]
	}
	return HalfEdge{
		ID:       id,
		EdgeID:   c.CurveID(),
		Curve:    c,
		From:     from,
		To:       to,
		Reversed: reversed,
		Partner:  partner,
		Points:   inner,
		StartDir: geom.Unit(first.Sub(fp)),
		EndDir:   geom.Unit(tp.Sub(last)),
	}
}

func (n *Network) addCircle(c geom.Curve) (fwd, rev HalfEdgeID, ok bool) {
	fwd = HalfEdgeID(len(n.HalfEdges))
	rev = fwd + 1
	rc := geom.Reverse(c)
	n.HalfEdges = append(n.HalfEdges,
		HalfEdge{ID: fwd, EdgeID: c.CurveID(), Curve: c, From: NoVertex, To: NoVertex, Partner: rev,
			Points: geom.OpenRing(geom.Discretize(c, n.opts.ArcSegments), 1e-12)},
		HalfEdge{ID: rev, EdgeID: c.CurveID(), Curve: rc, From: NoVertex, To: NoVertex, Partner: fwd, Reversed: true,
			Points: geom.OpenRing(geom.Discretize(rc, n.opts.ArcSegments), 1e-12)},
	)
	return fwd, rev, true
}

// HalfEdge returns the half-edge with the given id.
func (n *Network) HalfEdge(id HalfEdgeID) *HalfEdge {
	return &n.HalfEdges[id]
}

// Pairs returns every (forward, reverse) half-edge pair in insertion order.
func (n *Network) Pairs() [][2]HalfEdgeID {
	pairs := make([][2]HalfEdgeID, 0, len(n.HalfEdges)/2)
	for i := 0; i+1 < len(n.HalfEdges); i += 2 {
		pairs = append(pairs, [2]HalfEdgeID{HalfEdgeID(i), HalfEdgeID(i + 1)})
	}
	return pairs
}

// Outgoing returns the half-edges leaving v.
func (n *Network) Outgoing(v VertexID) []HalfEdgeID {
	var out []HalfEdgeID
	for i := range n.HalfEdges {
		if n.HalfEdges[i].From == v {
			out = append(out, HalfEdgeID(i))
		}
	}
	return out
}
