package bridge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBridgeOverlappedFragment(t *testing.T) {
	bd := testBundle(span(0, 100), span(200, 300), span(400, 500), span(600, 700))
	bd.Regions[1].Ave = 4
	bd.Regions[2].Ave = 7
	b := newTestBridger(bd)

	tests := []struct {
		name  string
		v1    []int
		v2    []int
		want  []int
		score float64
	}{
		{"shared tail", []int{0, 1, 2}, []int{1, 2, 3}, []int{0, 1, 2, 3}, 7},
		{"single shared vertex", []int{0, 1}, []int{1, 2, 3}, []int{0, 1, 2, 3}, 4},
		{"mate inside", []int{0, 1, 2, 3}, []int{1, 2}, nil, 0},
		{"disjoint", []int{0, 1}, []int{2, 3}, nil, 0},
		{"mismatch", []int{0, 2}, []int{1, 2, 3}, nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fr := testFragment(tt.v1, tt.v2, 20, 20)
			b.bridgeOverlappedFragment(&fr)
			if tt.want == nil {
				assert.Empty(t, fr.Paths)
				return
			}
			require.Len(t, fr.Paths, 1)
			assert.Equal(t, tt.want, fr.Paths[0].V)
			assert.Equal(t, tt.score, fr.Paths[0].Score)
			assert.Equal(t, ReadInRange, fr.Paths[0].Type)
			assert.Equal(t, int32(360), fr.Paths[0].Length)
		})
	}
}

func TestFilterPaths(t *testing.T) {
	b := newTestBridger(testBundle(span(0, 100)))

	frags := []Fragment{
		{Paths: []Path{
			{V: []int{0}, Length: 600, Type: ReadOutOfRange},
			{V: []int{1}, Length: 300, Type: ReadInRange},
			{V: []int{2}, Length: 200, Type: RefExact},
		}},
		{Paths: []Path{
			{V: []int{0}, Length: 20, Type: RefExact},
			{V: []int{1}, Length: 900, Type: RefPartial},
		}, Bridged: true},
		{},
		// ties keep the first
		{Paths: []Path{
			{V: []int{0}, Length: 200, Type: ReadInRange},
			{V: []int{1}, Length: 300, Type: RefExact},
		}},
	}
	b.filterPaths(frags)

	require.Len(t, frags[0].Paths, 1)
	assert.Equal(t, []int{1}, frags[0].Paths[0].V)
	assert.False(t, frags[0].Bridged)

	assert.Empty(t, frags[1].Paths)
	assert.False(t, frags[1].Bridged)

	assert.Empty(t, frags[2].Paths)

	require.Len(t, frags[3].Paths, 1)
	assert.Equal(t, []int{0}, frags[3].Paths[0].V)
}
