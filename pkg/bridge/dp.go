package bridge

import (
	"fmt"
	"sort"
)

// dpTable holds, per vertex, the best entries found from the seed vertex
type dpTable [][]Entry

// dynamicProgramming fills the table from k1 to k2 over the junction graph
func (b *Bridger) dynamicProgramming(g *junctionGraph, k1, k2 int) dpTable {
	regions := b.bundle.Regions
	n := len(regions)
	if k1 < 0 || k1 >= n || k2 < 0 || k2 >= n {
		panic(fmt.Sprintf("bridge: dp anchors (%d, %d) out of range [0,%d)", k1, k2, n))
	}

	table := make(dpTable, n)
	table[k1] = []Entry{{
		Stack:  NewStack(b.cfg.DPStackSize),
		Length: regions[k1].Len(),
		Trace1: -1,
		Trace2: -1,
	}}

	for k := k1 + 1; k <= k2; k++ {
		var v []Entry
		l := regions[k].Len()
		for _, j := range g.incoming(k) {
			if j < k1 {
				continue
			}
			if len(table[j]) == 0 {
				continue
			}
			w := g.jsety[k][j]
			for i := range table[j] {
				v = append(v, Entry{
					Stack:  table[j][i].Stack.Push(w),
					Length: table[j][i].Length + l,
					Trace1: j,
					Trace2: i,
				})
			}
		}

		sort.SliceStable(v, func(x, y int) bool {
			return compareEntry(&v[x], &v[y]) < 0
		})
		if len(v) > b.cfg.DPSolutionSize {
			v = v[:b.cfg.DPSolutionSize]
		}
		table[k] = v
	}
	return table
}

// traceBack returns one ascending vertex path per entry of vertex k
func (t dpTable) traceBack(k int) [][]int {
	var paths [][]int
	for i := range t[k] {
		var v []int
		p, q := k, i
		for {
			v = append(v, p)
			e := t[p][q]
			p, q = e.Trace1, e.Trace2
			if p < 0 {
				break
			}
		}
		for l, r := 0, len(v)-1; l < r; l, r = l+1, r-1 {
			v[l], v[r] = v[r], v[l]
		}
		paths = append(paths, v)
	}
	return paths
}
