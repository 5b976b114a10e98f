package bridge

import (
	"fmt"
	"math"
)

// candidates are the DP-derived bridges of one cluster
type candidates struct {
	paths  [][]int
	scores []int
	stacks []Stack
}

// scoreFunc scores a candidate path given the DP entry it was traced from
type scoreFunc func(e *Entry, px []int) int

// forEachHardCluster runs the DP once per anchor vertex and hands every
// reachable cluster its candidate bridges
func (b *Bridger) forEachHardCluster(g *junctionGraph, clusters []FCluster, score scoreFunc, fn func(fc *FCluster, c *candidates)) {
	sortClusters(clusters)

	n := len(b.bundle.Regions)
	affected := make([][]int, n)
	maxNeeded := make([]int, n)
	for i := range maxNeeded {
		maxNeeded[i] = -1
	}
	for ci := range clusters {
		fc := &clusters[ci]
		x1 := last(fc.V1)
		x2 := fc.V2[0]
		if x1 < 0 || x1 >= n || x2 < 0 || x2 >= n {
			panic(fmt.Sprintf("bridge: cluster anchors (%d, %d) out of range [0,%d)", x1, x2, n))
		}
		affected[x1] = append(affected[x1], ci)
		if maxNeeded[x1] < x2 {
			maxNeeded[x1] = x2
		}
	}

	for k := 0; k < n; k++ {
		if len(affected[k]) == 0 || maxNeeded[k] < k {
			continue
		}

		table := b.dynamicProgramming(g, k, maxNeeded[k])

		for _, ci := range affected[k] {
			fc := &clusters[ci]
			j := fc.V2[0]
			if j < k || len(table[j]) == 0 {
				continue
			}

			pb := table.traceBack(j)
			c := &candidates{}
			for e := range pb {
				// a one-vertex bridge means v1 and v2 share that vertex; it
				// is kept once so px stays strictly ascending
				px := joinBridge(fc.V1, pb[e], fc.V2)
				c.paths = append(c.paths, px)
				c.scores = append(c.scores, score(&table[j][e], px))
				c.stacks = append(c.stacks, table[j][e].Stack)
			}
			fn(fc, c)
		}
	}
}

// joinBridge concatenates v1, the inner vertices of the traced bridge, and v2
func joinBridge(v1, pb, v2 []int) []int {
	px := make([]int, 0, len(v1)+len(pb)+len(v2))
	px = append(px, v1...)
	if len(pb) >= 2 {
		px = append(px, pb[1:len(pb)-1]...)
		px = append(px, v2...)
	} else {
		// v1 ends where v2 starts
		px = append(px, v2[1:]...)
	}
	return px
}

// readPathType types a read-derived path by its implied length
func (b *Bridger) readPathType(length int32) PathType {
	if b.bounds.Contains(length) {
		return ReadInRange
	}
	return ReadOutOfRange
}

// bridgeHardFragmentsNormal lets every cluster member vote for its best
// in-range candidate and applies the winner to the whole cluster
func (b *Bridger) bridgeHardFragmentsNormal(g *junctionGraph, frags []Fragment, clusters []FCluster) {
	score := func(_ *Entry, px []int) int {
		if g.overlap != nil {
			return g.overlap.evaluateBridgingPath(px)
		}
		return int(b.cfg.MinBridgingScore) + 2
	}

	b.forEachHardCluster(g, clusters, score, func(fc *FCluster, c *candidates) {
		votes := make([]int, len(c.paths))
		for _, m := range fc.Members {
			fr := &frags[m]
			best := -1
			for e := range c.paths {
				l := b.bundle.AlignedLength(fr.K1L, fr.K2R, c.paths[e])
				if !b.bounds.Contains(l) {
					continue
				}
				if best < 0 || c.scores[e] > c.scores[best] {
					best = e
				} else if c.scores[e] == c.scores[best] && CompareStack(c.stacks[e], c.stacks[best]) > 0 {
					best = e
				}
			}
			if best >= 0 {
				votes[best]++
			}
		}

		be := 0
		for e := 1; e < len(votes); e++ {
			if votes[e] > votes[be] {
				be = e
			}
		}

		// applied even when nobody voted
		for _, m := range fc.Members {
			fr := &frags[m]
			l := b.bundle.AlignedLength(fr.K1L, fr.K2R, c.paths[be])
			fr.Paths = append(fr.Paths, Path{
				V:      append([]int(nil), c.paths[be]...),
				Score:  float64(c.scores[be]),
				Type:   b.readPathType(l),
				Length: l,
			})
		}
	})
}

// bridgeHardFragmentsCirc gives every cluster member all candidates that are
// well supported relative to the cluster size
func (b *Bridger) bridgeHardFragmentsCirc(g *junctionGraph, frags []Fragment, clusters []FCluster) {
	score := func(e *Entry, px []int) int {
		if g.overlap != nil {
			return g.overlap.evaluateBridgingPath(px)
		}
		return e.Stack.Weakest()
	}

	b.forEachHardCluster(g, clusters, score, func(fc *FCluster, c *candidates) {
		fsetScore := math.Log(1 + float64(len(fc.Members)))
		for _, m := range fc.Members {
			fr := &frags[m]
			for e := range c.paths {
				s := float64(c.scores[e])
				if fsetScore-math.Log(1+s) > b.cfg.MaxFsetScore {
					continue
				}
				l := b.bundle.AlignedLength(fr.K1L, fr.K2R, c.paths[e])
				fr.Paths = append(fr.Paths, Path{
					V:      append([]int(nil), c.paths[e]...),
					Score:  s,
					Type:   b.readPathType(l),
					Length: l,
				})
			}
		}
	})
}
