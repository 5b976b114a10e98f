package bridge

import "sort"

// mergeRegions returns the union of the given intervals with touching
// intervals joined, ascending
func mergeRegions(rs []Region) []Region {
	if len(rs) == 0 {
		return nil
	}
	sorted := make([]Region, len(rs))
	copy(sorted, rs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].LPos < sorted[j].LPos
	})

	merged := []Region{{LPos: sorted[0].LPos, RPos: sorted[0].RPos}}
	for _, r := range sorted[1:] {
		cur := &merged[len(merged)-1]
		if r.LPos <= cur.RPos {
			if r.RPos > cur.RPos {
				cur.RPos = r.RPos
			}
			continue
		}
		merged = append(merged, Region{LPos: r.LPos, RPos: r.RPos})
	}
	return merged
}

// junctionsOf lists the introns between merged blocks, inclusive coordinates
func junctionsOf(merged []Region) []Junction {
	var js []Junction
	for i := 1; i < len(merged); i++ {
		if merged[i].LPos == merged[i-1].RPos {
			continue
		}
		js = append(js, Junction{Start: merged[i-1].RPos + 1, End: merged[i].LPos - 1})
	}
	return js
}

// regionsOf maps a vertex list to its regions
func (b *Bundle) regionsOf(v []int) []Region {
	rs := make([]Region, len(v))
	for i, x := range v {
		rs[i] = b.Regions[x]
	}
	return rs
}

// decoratePath fills the region views of a path
func (b *Bundle) decoratePath(p *Path) {
	p.PathRegions = b.regionsOf(p.V)
	p.MergedRegions = mergeRegions(p.PathRegions)
	p.Junctions = junctionsOf(p.MergedRegions)
	p.ExonCount = len(p.Junctions) + 1
}
