package bridge

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetermineOverlap(t *testing.T) {
	tests := []struct {
		name   string
		vx, vy []int
		t      int
		px, py int
	}{
		{"suffix", []int{1, 2, 3}, []int{2, 3, 4}, overlapSuffix, 1, 1},
		{"single vertex suffix", []int{1, 2, 3}, []int{3, 4, 5}, overlapSuffix, 2, 0},
		{"contains", []int{1, 2, 3, 4}, []int{2, 3}, overlapContains, 1, 2},
		{"prefix", []int{2, 3, 4}, []int{1, 2, 3}, overlapPrefix, 1, 1},
		{"within", []int{2, 3}, []int{1, 2, 3, 4}, overlapWithin, 1, 2},
		{"disjoint", []int{1, 2}, []int{5, 6}, overlapNone, 0, 0},
		{"gap in overlap", []int{1, 2, 4}, []int{2, 3, 4, 5}, overlapNone, 0, 0},
		{"empty", nil, []int{1}, overlapNone, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			typ, px, py := determineOverlap(tt.vx, tt.vy)
			assert.Equal(t, tt.t, typ)
			assert.Equal(t, tt.px, px)
			assert.Equal(t, tt.py, py)
		})
	}
}

func TestOverlapIndexPruning(t *testing.T) {
	nodes := func(si, sj, sk float64) []PathNode {
		return []PathNode{
			{V: []int{1, 2, 3}, Score: si},
			{V: []int{2, 3, 4}, Score: sj},
			{V: []int{3, 4, 5}, Score: sk},
		}
	}

	ox := buildOverlapIndex(nodes(1, 5, 1))
	assert.Equal(t, 2, ox.edges)
	assert.NotContains(t, ox.psetx[0], 2)
	assert.Equal(t, 1, ox.psetx[0][1])
	assert.Equal(t, 1, ox.psety[1][0])

	// ties are pruned too
	ox = buildOverlapIndex(nodes(3, 3, 3))
	assert.Equal(t, 2, ox.edges)

	// a stronger end keeps the shortcut
	ox = buildOverlapIndex(nodes(6, 5, 1))
	assert.Equal(t, 3, ox.edges)
	assert.Contains(t, ox.psetx[0], 2)
}

func TestEvaluateBridgingPath(t *testing.T) {
	ox := buildOverlapIndex([]PathNode{
		{V: []int{0, 1}, Score: 4},
		{V: []int{1, 2}, Score: 2},
	})
	assert.Equal(t, 2, ox.evaluateBridgingPath([]int{0, 1, 2}))

	ox = buildOverlapIndex([]PathNode{
		{V: []int{0, 1, 2}, Score: 6},
	})
	assert.Equal(t, 6, ox.evaluateBridgingPath([]int{0, 1, 2}))
	assert.Equal(t, 0, ox.evaluateBridgingPath([]int{5, 6}))
}
