package bridge

import (
	"sort"
)

// clusterOpenFragments groups open fragments with identical mate vertex runs
// and similar flanks so the DP and voting run once per group
func (b *Bridger) clusterOpenFragments(frags []Fragment) []FCluster {
	var open []int
	for i := range frags {
		if frags[i].isOpen() {
			open = append(open, i)
		}
	}
	if len(open) == 0 {
		return nil
	}

	sort.SliceStable(open, func(a, c int) bool {
		return compareFragmentFlank(&frags[open[a]], &frags[open[c]]) < 0
	})

	var clusters []FCluster
	var fc FCluster
	var vv1, vv2 []int

	maxFlank := b.cfg.MaxClusteringFlank
	flank1 := -maxFlank
	flank2 := -maxFlank
	for _, i := range open {
		fr := &frags[i]
		f1 := fr.K1L + fr.K2L
		f2 := fr.K1R + fr.K2R
		diff := abs32(f1-flank1) + abs32(f2-flank2)
		flank1 = f1
		flank2 = f2

		if vv1 != nil && equalInts(fr.H1.VList, vv1) && equalInts(fr.H2.VList, vv2) && diff <= maxFlank {
			fc.Members = append(fc.Members, i)
			continue
		}

		if len(fc.Members) >= 1 {
			clusters = append(clusters, fc)
		}
		vv1 = fr.H1.VList
		vv2 = fr.H2.VList
		fc = FCluster{
			Members: []int{i},
			V1:      append([]int(nil), vv1...),
			V2:      append([]int(nil), vv2...),
		}
	}
	if len(fc.Members) >= 1 {
		clusters = append(clusters, fc)
	}
	return clusters
}

// compareFragmentFlank orders fragments by run sizes, runs, flank sum and position
func compareFragmentFlank(f1, f2 *Fragment) int {
	if c := compareInt(len(f1.H1.VList), len(f2.H1.VList)); c != 0 {
		return c
	}
	if c := compareInt(len(f1.H2.VList), len(f2.H2.VList)); c != 0 {
		return c
	}
	if c := compareInts(f1.H1.VList, f2.H1.VList); c != 0 {
		return c
	}
	if c := compareInts(f1.H2.VList, f2.H2.VList); c != 0 {
		return c
	}
	if c := compareInt(int(f1.K1L+f1.K2L), int(f2.K1L+f2.K2L)); c != 0 {
		return c
	}
	return compareInt(int(f1.LPos), int(f2.LPos))
}

// sortClusters orders clusters by their flanking runs
func sortClusters(clusters []FCluster) {
	sort.SliceStable(clusters, func(i, j int) bool {
		if c := compareInts(clusters[i].V1, clusters[j].V1); c != 0 {
			return c < 0
		}
		return compareInts(clusters[i].V2, clusters[j].V2) < 0
	})
}

func compareInt(x, y int) int {
	switch {
	case x < y:
		return -1
	case x > y:
		return 1
	}
	return 0
}

func abs32(x int32) int32 {
	if x < 0 {
		return -x
	}
	return x
}
