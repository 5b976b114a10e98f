package bridge

// bridgeOverlappedFragments bridges fragments whose mates share vertices
func (b *Bridger) bridgeOverlappedFragments(frags []Fragment) {
	for i := range frags {
		b.bridgeOverlappedFragment(&frags[i])
	}
}

// bridgeOverlappedFragment joins the mates when the tail of H1 reappears,
// vertex for vertex, at the head of H2
func (b *Bridger) bridgeOverlappedFragment(fr *Fragment) {
	v1 := fr.H1.VList
	v2 := fr.H2.VList

	x1 := last(v1)
	x2 := v2[0]
	if x1 < x2 {
		return
	}

	it := -1
	for i, x := range v2 {
		if x == x1 {
			it = i
			break
		}
	}
	if it < 0 {
		return
	}

	var maxAve float64
	for j1, j2 := len(v1)-1, it; j1 >= 0 && j2 >= 0; j1, j2 = j1-1, j2-1 {
		if v1[j1] != v2[j2] {
			return
		}
		if w := b.bundle.Regions[v1[j1]].Ave; w > maxAve {
			maxAve = w
		}
	}

	v := make([]int, 0, len(v1)+len(v2)-it-1)
	v = append(v, v1...)
	v = append(v, v2[it+1:]...)

	l := b.bundle.AlignedLength(fr.K1L, fr.K2R, v)
	fr.Paths = append(fr.Paths, Path{
		V:      v,
		Score:  maxAve,
		Type:   b.readPathType(l),
		Length: l,
	})
}
