package bridge

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// votingBundle offers two bridges from 0 to 3: a strong long one through
// region 2 and a weak short one through region 1
func votingBundle() *Bundle {
	bd := testBundle(span(0, 100), span(200, 300), span(400, 800), span(900, 1000))
	addReads(bd, []int{0, 2}, 5)
	addReads(bd, []int{2, 3}, 5)
	addReads(bd, []int{0, 1}, 2)
	addReads(bd, []int{1, 3}, 2)
	return bd
}

func votingCluster(n int) []FCluster {
	fc := FCluster{V1: []int{0}, V2: []int{3}}
	for i := 0; i < n; i++ {
		fc.Members = append(fc.Members, i)
	}
	return []FCluster{fc}
}

func TestHardBridgingMajorityWins(t *testing.T) {
	b := newTestBridger(votingBundle())

	var frags []Fragment
	// both bridges in range, the stronger one is preferred
	for i := 0; i < 7; i++ {
		frags = append(frags, testFragment([]int{0}, []int{3}, 50, 50))
	}
	// only the short bridge is in range
	for i := 0; i < 3; i++ {
		frags = append(frags, testFragment([]int{0}, []int{3}, 0, 0))
	}

	g := b.buildJunctionGraph(frags, nil)
	b.bridgeHardFragmentsNormal(g, frags, votingCluster(len(frags)))

	for i := range frags {
		require.Len(t, frags[i].Paths, 1, "fragment %d", i)
		p := frags[i].Paths[0]
		assert.Equal(t, []int{0, 2, 3}, p.V, "fragment %d", i)
		assert.Equal(t, 3.0, p.Score)
		if i < 7 {
			assert.Equal(t, ReadInRange, p.Type, "fragment %d", i)
			assert.Equal(t, int32(500), p.Length)
		} else {
			assert.Equal(t, ReadOutOfRange, p.Type, "fragment %d", i)
			assert.Equal(t, int32(600), p.Length)
		}
	}

	// the minority loses its out-of-range bridge
	b.filterPaths(frags)
	for i := range frags {
		if i < 7 {
			assert.Len(t, frags[i].Paths, 1)
			assert.False(t, frags[i].Bridged)
		} else {
			assert.Empty(t, frags[i].Paths)
			assert.False(t, frags[i].Bridged)
		}
	}
}

func TestHardBridgingUnanimous(t *testing.T) {
	b := newTestBridger(votingBundle())

	var frags []Fragment
	for i := 0; i < 10; i++ {
		frags = append(frags, testFragment([]int{0}, []int{3}, 50, 50))
	}

	g := b.buildJunctionGraph(frags, nil)
	b.bridgeHardFragmentsNormal(g, frags, votingCluster(len(frags)))

	for i := range frags {
		require.Len(t, frags[i].Paths, 1)
		assert.Equal(t, []int{0, 2, 3}, frags[i].Paths[0].V)
		assert.Equal(t, ReadInRange, frags[i].Paths[0].Type)
	}
}

func TestHardBridgingSkipsUnreachable(t *testing.T) {
	bd := testBundle(span(0, 100), span(200, 300), span(400, 500))
	addReads(bd, []int{0, 1}, 3)
	b := newTestBridger(bd)

	frags := []Fragment{testFragment([]int{0}, []int{2}, 10, 10)}
	g := b.buildJunctionGraph(frags, nil)
	b.bridgeHardFragmentsNormal(g, frags, []FCluster{{Members: []int{0}, V1: []int{0}, V2: []int{2}}})
	assert.Empty(t, frags[0].Paths)
}

func TestHardBridgingCircular(t *testing.T) {
	b := newTestBridger(votingBundle())

	frags := []Fragment{testFragment([]int{0}, []int{3}, 50, 50)}
	g := b.buildJunctionGraph(nil, nil)
	b.bridgeHardFragmentsCirc(g, frags, votingCluster(1))

	require.Len(t, frags[0].Paths, 2)
	assert.Equal(t, []int{0, 2, 3}, frags[0].Paths[0].V)
	assert.Equal(t, 5.0, frags[0].Paths[0].Score)
	assert.Equal(t, []int{0, 1, 3}, frags[0].Paths[1].V)
	assert.Equal(t, 2.0, frags[0].Paths[1].Score)

	// a large cluster rejects weakly supported bridges
	b.cfg.MaxFsetScore = 0.5
	frags = []Fragment{testFragment([]int{0}, []int{3}, 50, 50)}
	b.bridgeHardFragmentsCirc(g, frags, votingCluster(1))
	assert.Len(t, frags[0].Paths, 2)

	var many []Fragment
	for i := 0; i < 8; i++ {
		many = append(many, testFragment([]int{0}, []int{3}, 50, 50))
	}
	b.bridgeHardFragmentsCirc(g, many, votingCluster(len(many)))
	for i := range many {
		require.Len(t, many[i].Paths, 1)
		assert.Equal(t, []int{0, 2, 3}, many[i].Paths[0].V)
	}
}

func TestJoinBridge(t *testing.T) {
	tests := []struct {
		name       string
		v1, pb, v2 []int
		want       []int
	}{
		{"inner vertices", []int{0, 1}, []int{1, 2, 3}, []int{3, 4}, []int{0, 1, 2, 3, 4}},
		{"adjacent", []int{0, 1}, []int{1, 2}, []int{2, 3}, []int{0, 1, 2, 3}},
		{"shared vertex", []int{0, 1}, []int{1}, []int{1, 2}, []int{0, 1, 2}},
		{"shared vertex single hits", []int{5}, []int{5}, []int{5}, []int{5}},
		{"shared vertex long hits", []int{2, 4, 6}, []int{6}, []int{6, 7, 9}, []int{2, 4, 6, 7, 9}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := joinBridge(tt.v1, tt.pb, tt.v2)
			assert.Equal(t, tt.want, got)
			assert.True(t, sort.IntsAreSorted(got))
			for i := 1; i < len(got); i++ {
				assert.NotEqual(t, got[i-1], got[i], "vertex %d repeated", got[i])
			}
		})
	}
}
