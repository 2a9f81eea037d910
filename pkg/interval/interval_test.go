package interval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOverlapIsSymmetric(t *testing.T) {
	pairs := [][2]Range{
		{New(0, 5), New(3, 8)},
		{New(0, 5), New(6, 8)},
		{New(0, 10), New(2, 3)},
		{New(4, 4), New(0, 10)},
	}
	for _, p := range pairs {
		assert.Equal(t, Overlap(p[0], p[1]), Overlap(p[1], p[0]), "%v %v", p[0], p[1])
	}
	assert.Equal(t, 2.0, Overlap(New(0, 5), New(3, 8)))
	assert.Equal(t, -1.0, Overlap(New(0, 5), New(6, 8)))
}

func TestUnion(t *testing.T) {
	u, ok := Union(New(0, 5), New(5, 10))
	require.True(t, ok)
	assert.Equal(t, Range{Min: 0, Max: 10}, u)

	_, ok = Union(New(0, 5), New(6, 10))
	assert.False(t, ok)

	u, ok = Union(New(0, 5), New(5.005, 10))
	require.True(t, ok, "gaps below Epsilon are bridged")
	assert.Equal(t, 10.0, u.Max)
}

func TestSortAndMerge(t *testing.T) {
	got := SortAndMerge([]Range{New(8, 9), New(0, 2), New(1, 4), New(4, 5), New(6, 7)})
	assert.Equal(t, []Range{{Min: 0, Max: 5}, {Min: 6, Max: 7}, {Min: 8, Max: 9}}, got)
	assert.Nil(t, SortAndMerge(nil))
}

func TestSubtract(t *testing.T) {
	src := New(0, 10)
	tests := []struct {
		name string
		cut  Range
		want []Range
	}{
		{"self", src, nil},
		{"covering", New(-1, 11), nil},
		{"disjoint", New(12, 15), []Range{src}},
		{"touching", New(10, 15), []Range{src}},
		{"trim head", New(-2, 3), []Range{{Min: 3, Max: 10}}},
		{"trim tail", New(7, 12), []Range{{Min: 0, Max: 7}}},
		{"split", New(4, 6), []Range{{Min: 0, Max: 4}, {Min: 6, Max: 10}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Subtract(src, tt.cut))
		})
	}

	point := New(3, 3)
	assert.Empty(t, Subtract(point, point), "subtracting a point range from itself leaves nothing")
}

func TestSubtractMany(t *testing.T) {
	got := SubtractMany(
		[]Range{New(0, 4), New(3, 10), New(20, 30)},
		[]Range{New(2, 3), New(2.5, 5), New(25, 40)},
	)
	assert.Equal(t, []Range{{Min: 0, Max: 2}, {Min: 5, Max: 10}, {Min: 20, Max: 25}}, got)
}

func TestFree(t *testing.T) {
	edge := Range{Min: 0, Max: 10, Value: 3}
	got := Free(edge, []Range{New(-5, 1), New(4, 5), New(12, 14)})
	assert.Equal(t, []Range{{Min: 1, Max: 4, Value: 3}, {Min: 5, Max: 10, Value: 3}}, got)
}

func TestLerp(t *testing.T) {
	a := Range{Min: 0, Max: 2, Value: 1}
	b := Range{Min: 6, Max: 8, Value: 3}
	assert.InDelta(t, 2, Lerp(a, b, 4), 1e-12)
	assert.InDelta(t, 3, Lerp(a, b, 10), 1e-12)
}
