package polybool

import (
	"math"
	"sort"

	"github.com/chazu/floorkit/pkg/geom"
	"github.com/chazu/floorkit/pkg/interval"
)

// ClipLine returns the parameter ranges of l that run through the interior
// of regions. Parameters are arc lengths from l.From. Pieces that only run
// along a boundary are excluded.
func ClipLine(regions []Region, l geom.Line, tol float64) []interval.Range {
	length := l.Len()
	if length <= tol {
		return nil
	}
	ts := []float64{0, length}
	for _, r := range regions {
		for _, e := range r.Edges() {
			ts = append(ts, crossings(l, e.Curve, tol)...)
		}
	}
	sort.Float64s(ts)

	var out []interval.Range
	for i := 0; i+1 < len(ts); i++ {
		a, b := math.Max(0, ts[i]), math.Min(length, ts[i+1])
		if b-a <= tol {
			continue
		}
		mid := l.At((a + b) / 2)
		for _, r := range regions {
			if r.Contains(mid, tol) {
				out = append(out, interval.New(a, b))
				break
			}
		}
	}
	return interval.SortAndMerge(out)
}

// crossings returns the parameters on l where e touches it.
func crossings(l, e geom.Line, tol float64) []float64 {
	if l.LineDist(e.From) <= tol && l.LineDist(e.To) <= tol {
		return []float64{l.Param(e.From), l.Param(e.To)}
	}
	j := geom.Judge{Dist: tol, Angle: 1e-12}
	p, ok := j.Intersect(l, e)
	if !ok || e.DistTo(p) > tol || l.DistTo(p) > tol {
		return nil
	}
	return []float64{l.Param(p)}
}

// EdgeAt returns the boundary edge of regions closest to p, if one lies
// within tol.
func EdgeAt(regions []Region, p geom.Point, tol float64) (Edge, bool) {
	var best Edge
	bestD := math.Inf(1)
	for _, r := range regions {
		for _, e := range r.Edges() {
			if d := e.Curve.DistTo(p); d <= tol && d < bestD {
				best, bestD = e, d
			}
		}
	}
	return best, !math.IsInf(bestD, 1)
}
