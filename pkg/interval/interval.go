// Package interval implements 1D range algebra along a parameter axis:
// overlap, union, merge, and subtraction. It is used both for fusing
// collinear wall runs and for occupancy queries along a single edge.
//
// All comparisons use Epsilon so that floating point noise does not
// produce sliver ranges.
package interval

import (
	"fmt"
	"math"
	"sort"
)

// Epsilon is the comparison slack for range endpoints, in length units.
const Epsilon = 0.01

// Range is a closed interval [Min, Max]. Value carries an auxiliary scalar
// such as an elevation; operations keep the Value of the range they start
// from. Zero-length ranges are valid and represent point contacts.
type Range struct {
	Min   float64
	Max   float64
	Value float64
}

// New returns the range spanning a and b in either order.
func New(a, b float64) Range {
	if a > b {
		a, b = b, a
	}
	return Range{Min: a, Max: b}
}

// Len returns Max - Min.
func (r Range) Len() float64 { return r.Max - r.Min }

// Mid returns the centre of the range.
func (r Range) Mid() float64 { return (r.Min + r.Max) / 2 }

// Contains reports whether t lies in r, allowing Epsilon slack.
func (r Range) Contains(t float64) bool {
	return t >= r.Min-Epsilon && t <= r.Max+Epsilon
}

// Clamp limits t to r.
func (r Range) Clamp(t float64) float64 {
	return math.Max(r.Min, math.Min(r.Max, t))
}

func (r Range) String() string {
	return fmt.Sprintf("[%.4g, %.4g]", r.Min, r.Max)
}

// Overlap returns the length shared by a and b. Disjoint ranges yield a
// negative value equal to minus the gap between them.
func Overlap(a, b Range) float64 {
	return math.Min(a.Max, b.Max) - math.Max(a.Min, b.Min)
}

// Union returns the smallest range covering a and b when they overlap or
// touch within Epsilon; ok is false when a gap separates them.
func Union(a, b Range) (r Range, ok bool) {
	if Overlap(a, b) < -Epsilon {
		return Range{}, false
	}
	return Range{Min: math.Min(a.Min, b.Min), Max: math.Max(a.Max, b.Max), Value: a.Value}, true
}

// SortAndMerge sorts ranges by Min and coalesces each range into its
// predecessor when it starts before the predecessor ends.
func SortAndMerge(ranges []Range) []Range {
	if len(ranges) == 0 {
		return nil
	}
	sorted := make([]Range, len(ranges))
	copy(sorted, ranges)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Min < sorted[j].Min })

	out := []Range{sorted[0]}
	for _, next := range sorted[1:] {
		cur := &out[len(out)-1]
		if next.Min < cur.Max+Epsilon {
			cur.Max = math.Max(cur.Max, next.Max)
			continue
		}
		out = append(out, next)
	}
	return out
}

// Subtract removes cut from source. The result has no ranges when cut
// covers source, one when it trims an end or misses, and two when it
// splits source in the middle. Fragments shorter than Epsilon are dropped.
func Subtract(source, cut Range) []Range {
	if cut.Min <= source.Min+Epsilon && cut.Max >= source.Max-Epsilon {
		return nil
	}
	if Overlap(source, cut) <= Epsilon {
		return []Range{source}
	}
	var out []Range
	if cut.Min-source.Min > Epsilon {
		out = append(out, Range{Min: source.Min, Max: cut.Min, Value: source.Value})
	}
	if source.Max-cut.Max > Epsilon {
		out = append(out, Range{Min: cut.Max, Max: source.Max, Value: source.Value})
	}
	return out
}

// SubtractMany merges sources and cuts, then subtracts every cut from every
// source fragment.
func SubtractMany(sources, cuts []Range) []Range {
	frags := SortAndMerge(sources)
	for _, c := range SortAndMerge(cuts) {
		var next []Range
		for _, f := range frags {
			next = append(next, Subtract(f, c)...)
		}
		frags = next
	}
	return frags
}

// Lerp returns the auxiliary value at t, interpolated linearly between
// the Value of a at a.Max and the Value of b at b.Min.
func Lerp(a, b Range, t float64) float64 {
	span := b.Min - a.Max
	if span <= 0 {
		return a.Value
	}
	f := (t - a.Max) / span
	return a.Value + (b.Value-a.Value)*math.Max(0, math.Min(1, f))
}

// Free returns the parts of edge not covered by any occupied range. It
// answers placement queries such as "where along this wall can another
// opening go".
func Free(edge Range, occupied []Range) []Range {
	clipped := make([]Range, 0, len(occupied))
	for _, o := range occupied {
		if Overlap(edge, o) < 0 {
			continue
		}
		clipped = append(clipped, Range{Min: edge.Clamp(o.Min), Max: edge.Clamp(o.Max), Value: o.Value})
	}
	return SubtractMany([]Range{edge}, clipped)
}
