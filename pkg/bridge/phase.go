package bridge

// phaseCluster collects the reference slices that contain V1 followed by V2
// in the same transcript
func (b *Bridger) phaseCluster(fc *FCluster) {
	fc.Phase = nil
	ref := &b.bundle.Ref

	starts := make(map[int]int)
	for _, pp := range ref.Index[fc.V1[0]] {
		if !matchesAt(ref.Phases[pp.Transcript], pp.Position, fc.V1) {
			continue
		}
		if _, ok := starts[pp.Transcript]; !ok {
			starts[pp.Transcript] = pp.Position
		}
	}

	for _, pp := range ref.Index[fc.V2[0]] {
		start, ok := starts[pp.Transcript]
		if !ok {
			continue
		}
		if pp.Position < start+len(fc.V1) {
			continue
		}
		phase := ref.Phases[pp.Transcript]
		if !matchesAt(phase, pp.Position, fc.V2) {
			continue
		}
		fc.addPhase(append([]int(nil), phase[start:pp.Position+len(fc.V2)]...))
	}
}

// matchesAt reports whether v occurs in phase starting at position k
func matchesAt(phase []int, k int, v []int) bool {
	if k < 0 || k+len(v) > len(phase) {
		return false
	}
	for i := range v {
		if phase[k+i] != v[i] {
			return false
		}
	}
	return true
}

// bridgePhasedCluster gives every member one path per phase
func (b *Bridger) bridgePhasedCluster(frags []Fragment, fc *FCluster) {
	for _, m := range fc.Members {
		fr := &frags[m]
		for _, v := range fc.Phase {
			l := b.bundle.AlignedLength(fr.K1L, fr.K2R, v)
			t := RefPartial
			if b.bounds.Contains(l) {
				t = RefExact
			}
			fr.Paths = append(fr.Paths, Path{
				V:      append([]int(nil), v...),
				Score:  1,
				Type:   t,
				Length: l,
			})
		}
	}
}

// bridgePhasedFragments bridges open clusters through reference transcripts
func (b *Bridger) bridgePhasedFragments(frags []Fragment, clusters []FCluster) {
	for i := range clusters {
		fc := &clusters[i]
		if len(fc.V1) == 0 || len(fc.V2) == 0 {
			continue
		}
		b.phaseCluster(fc)
		if len(fc.Phase) == 0 {
			continue
		}
		b.bridgePhasedCluster(frags, fc)
	}
}
