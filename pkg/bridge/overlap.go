package bridge

import (
	"sort"
)

// Overlap kinds between two ascending vertex runs x and y
const (
	overlapNone     = -1
	overlapSuffix   = 1 // a suffix of x is a prefix of y
	overlapContains = 2 // y lies inside x
	overlapPrefix   = 3 // a suffix of y is a prefix of x
	overlapWithin   = 4 // x lies inside y
)

// overlapIndex links path nodes whose runs chain into each other
type overlapIndex struct {
	nodes []PathNode
	psetx []map[int]int // i -> {j: position in j}
	psety []map[int]int // j -> {i: position in i}
	edges int
}

// buildOverlapIndex classifies every pair of nodes and prunes dominated edges
func buildOverlapIndex(nodes []PathNode) *overlapIndex {
	n := len(nodes)
	ox := &overlapIndex{
		nodes: nodes,
		psetx: make([]map[int]int, n),
		psety: make([]map[int]int, n),
	}
	for i := 0; i < n; i++ {
		ox.psetx[i] = make(map[int]int)
		ox.psety[i] = make(map[int]int)
	}

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			t, px, py := determineOverlap(nodes[i].V, nodes[j].V)
			if t != overlapSuffix {
				continue
			}
			ox.psetx[i][j] = py
			ox.psety[j][i] = px
		}
	}

	// i = (1,2,3), j = (2,3,4), k = (3,4,5):
	// drop i -> k when neither end outscores the middle
	removed := make([]map[int]bool, n)
	for i := 0; i < n; i++ {
		for _, j := range sortedKeys(ox.psetx[i]) {
			if removed[i][j] {
				continue
			}
			if nodes[i].Score > nodes[j].Score {
				continue
			}
			for _, k := range sortedKeys(ox.psetx[j]) {
				if removed[j][k] {
					continue
				}
				if _, ok := ox.psetx[i][k]; !ok || removed[i][k] {
					continue
				}
				if nodes[k].Score > nodes[j].Score {
					continue
				}
				if removed[i] == nil {
					removed[i] = make(map[int]bool)
				}
				removed[i][k] = true
			}
		}
	}

	for i := 0; i < n; i++ {
		for k := range removed[i] {
			delete(ox.psetx[i], k)
			delete(ox.psety[k], i)
		}
		ox.edges += len(ox.psetx[i])
	}
	return ox
}

// evaluateBridgingPath scores a full candidate path by the path nodes
// covering it, propagated along the overlap index
func (ox *overlapIndex) evaluateBridgingPath(pb []int) int {
	maxScore := 0
	table := make([]int, len(ox.nodes))
	for k, node := range ox.nodes {
		v := node.V
		if last(v) < pb[0] {
			continue
		}
		if v[0] > last(pb) {
			break
		}

		s := int(node.Score)
		t, _, _ := determineOverlap(v, pb)
		switch t {
		case overlapSuffix:
			table[k] = s
			if last(v) >= last(pb) && s > maxScore {
				maxScore = s
			}
		case overlapContains:
			if s > maxScore {
				maxScore = s
			}
		case overlapPrefix, overlapWithin:
			best := 0
			for j := range ox.psety[k] {
				if table[j] > best {
					best = table[j]
				}
			}
			if best < s {
				table[k] = best
			} else {
				table[k] = s
			}
			if t == overlapPrefix && table[k] > maxScore {
				maxScore = table[k]
			}
		}
	}
	return maxScore
}

// determineOverlap classifies how two ascending runs overlap; px and py are
// the positions where the overlap starts in x and ends in y
func determineOverlap(vx, vy []int) (t, px, py int) {
	if len(vx) == 0 || len(vy) == 0 {
		return overlapNone, 0, 0
	}

	t, px, py = determineOverlap1(vx, vy)
	if t == overlapSuffix || t == overlapContains {
		return t, px, py
	}

	t, qx, qy := determineOverlap1(vy, vx)
	switch t {
	case overlapSuffix:
		return overlapPrefix, qy, qx
	case overlapContains:
		return overlapWithin, qx, qy
	}
	return overlapNone, 0, 0
}

func determineOverlap1(vx, vy []int) (int, int, int) {
	kx := sort.SearchInts(vx, vy[0])
	if kx == len(vx) {
		return overlapNone, 0, 0
	}

	if ky := sort.SearchInts(vy, last(vx)); ky != len(vy) {
		if identicalRange(vx, vy, kx, len(vx)-1, 0, ky) {
			return overlapSuffix, kx, ky
		}
		return overlapNone, 0, 0
	}

	if ky := sort.SearchInts(vx, last(vy)); ky != len(vx) {
		if identicalRange(vx, vy, kx, ky, 0, len(vy)-1) {
			return overlapContains, kx, ky
		}
		return overlapNone, 0, 0
	}

	return overlapNone, 0, 0
}

// identicalRange reports whether vx[x1..x2] equals vy[y1..y2] element by element
func identicalRange(vx, vy []int, x1, x2, y1, y2 int) bool {
	if x1 > x2 || y1 > y2 {
		return false
	}
	if x2-x1 != y2-y1 {
		return false
	}
	for i := 0; i <= x2-x1; i++ {
		if vx[x1+i] != vy[y1+i] {
			return false
		}
	}
	return true
}

func sortedKeys(m map[int]int) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
