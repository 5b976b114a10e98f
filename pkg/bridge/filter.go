package bridge

// filterPaths keeps, per fragment, the in-range path closest to the median
// length. Fragments without one lose all paths.
func (b *Bridger) filterPaths(frags []Fragment) {
	for k := range frags {
		fr := &frags[k]
		if len(fr.Paths) == 0 {
			continue
		}

		minp := -1
		var mind int64
		for i := range fr.Paths {
			l := fr.Paths[i].Length
			if !b.bounds.Contains(l) {
				continue
			}
			d := int64(l) - int64(b.bounds.Median)
			if d < 0 {
				d = -d
			}
			if minp >= 0 && d >= mind {
				continue
			}
			mind = d
			minp = i
		}

		if minp < 0 {
			fr.Paths = nil
			fr.Bridged = false
			continue
		}

		fr.Paths = []Path{fr.Paths[minp]}
		fr.Bridged = fr.Paths[0].Type == RefExact
	}
}
