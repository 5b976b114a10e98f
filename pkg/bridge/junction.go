package bridge

import (
	"fmt"
	"sort"
)

// junctionGraph is the weighted adjacency between regions of one round
type junctionGraph struct {
	nodes []PathNode
	jsetx []map[int]int // x -> {y: weight}
	jsety []map[int]int // y -> {x: weight}

	// nil unless overlap scoring is enabled for a hard bridging round
	overlap *overlapIndex
}

// incoming returns the predecessors of k in descending vertex order
func (g *junctionGraph) incoming(k int) []int {
	preds := make([]int, 0, len(g.jsety[k]))
	for j := range g.jsety[k] {
		preds = append(preds, j)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(preds)))
	return preds
}

// buildJunctionGraph derives the junction graph from the current fragments
// and the raw hits of the bundle. ov is attached as is; clipping passes nil.
func (b *Bridger) buildJunctionGraph(frags []Fragment, ov *overlapIndex) *junctionGraph {
	nodes := b.buildPathNodes(2, frags)
	nodes = b.addConsecutivePathNodes(nodes)

	n := len(b.bundle.Regions)
	g := &junctionGraph{
		nodes:   nodes,
		jsetx:   make([]map[int]int, n),
		jsety:   make([]map[int]int, n),
		overlap: ov,
	}
	for i := 0; i < n; i++ {
		g.jsetx[i] = make(map[int]int)
		g.jsety[i] = make(map[int]int)
	}

	for _, p := range nodes {
		if len(p.V) > 2 {
			panic(fmt.Sprintf("bridge: junction path node %v longer than an edge", p.V))
		}
		if len(p.V) <= 1 {
			continue
		}
		x, y := p.V[0], p.V[1]
		w := int(p.Score)
		if _, ok := g.jsetx[x][y]; ok {
			panic(fmt.Sprintf("bridge: duplicate junction edge %d -> %d", x, y))
		}
		g.jsetx[x][y] = w
		g.jsety[y][x] = w
	}

	return g
}

// overlapIndexFor indexes the bounded path nodes of frags for scoring hard
// bridges, or returns nil when overlap scoring is disabled
func (b *Bridger) overlapIndexFor(frags []Fragment) *overlapIndex {
	if !b.cfg.UseOverlapScoring {
		return nil
	}
	bounded := b.buildBoundedPathNodes(frags)
	ov := buildOverlapIndex(bounded)
	b.logger.Debug("built overlap index",
		"nodes", len(bounded), "window", b.windowLen, "edges", ov.edges)
	return ov
}

// addConsecutivePathNodes adds a weight-1 edge between genomically adjacent
// regions not already linked by any path node
func (b *Bridger) addConsecutivePathNodes(nodes []PathNode) []PathNode {
	type pair struct{ x, y int }
	seen := make(map[pair]bool)
	for _, p := range nodes {
		for k := 0; k+1 < len(p.V); k++ {
			seen[pair{p.V[k], p.V[k+1]}] = true
		}
	}

	regions := b.bundle.Regions
	for i := 0; i+1 < len(regions); i++ {
		if seen[pair{i, i + 1}] {
			continue
		}
		if regions[i].RPos != regions[i+1].LPos {
			continue
		}
		v := []int{i, i + 1}
		nodes = append(nodes, PathNode{
			V:     v,
			Score: 1,
			Acc:   b.bundle.AccumulateLength(v),
		})
	}
	return nodes
}

// buildPathNodes counts every window of length w over confidently bridged
// fragment paths and over the hits not covered by them
func (b *Bridger) buildPathNodes(w int, frags []Fragment) []PathNode {
	b.windowLen = w

	counts := make(map[string]int)
	runs := make(map[string][]int)
	add := func(v []int) {
		if len(v) == 0 {
			return
		}
		n := len(v)
		if n > w {
			n = w
		}
		for i := 0; i+n <= len(v); i++ {
			s := v[i : i+n]
			k := vertexKey(s)
			if _, ok := runs[k]; !ok {
				runs[k] = append([]int(nil), s...)
			}
			counts[k]++
		}
	}

	covered := make(map[int]bool)
	for i := range frags {
		fr := &frags[i]
		if len(fr.Paths) != 1 || fr.Paths[0].Type != RefExact {
			continue
		}
		if len(fr.Paths[0].V) <= 1 {
			continue
		}
		add(fr.Paths[0].V)
		covered[fr.H1.ID] = true
		covered[fr.H2.ID] = true
	}

	for i := range b.bundle.Hits {
		h := &b.bundle.Hits[i]
		if covered[h.ID] {
			continue
		}
		add(h.VList)
	}

	nodes := make([]PathNode, 0, len(runs))
	for k, v := range runs {
		nodes = append(nodes, PathNode{
			V:     v,
			Score: float64(counts[k]),
			Acc:   b.bundle.AccumulateLength(v),
		})
	}
	sort.Slice(nodes, func(i, j int) bool {
		return compareInts(nodes[i].V, nodes[j].V) < 0
	})
	return nodes
}

// buildBoundedPathNodes picks the window length so that the number of path
// nodes stays under the configured ceiling
func (b *Bridger) buildBoundedPathNodes(frags []Fragment) []PathNode {
	low := b.cfg.PathNodeLow
	high := b.cfg.PathNodeHigh
	limit := b.cfg.MaxNumPathNodes

	nodes := b.buildPathNodes(high, frags)
	if len(nodes) <= limit {
		return nodes
	}

	nodes = b.buildPathNodes(low, frags)
	if len(nodes) >= limit {
		return nodes
	}

	for {
		m := (low + high) / 2
		nodes = b.buildPathNodes(m, frags)
		if high-low <= 1 {
			return nodes
		}
		if len(nodes) > limit {
			high = m
		} else {
			low = m
		}
	}
}
