package bundle

import (
	"fmt"
	"sort"

	"github.com/Shao-Group/TERRACE/pkg/bridge"
)

// Build turns a group of alignments into a bridge.Bundle: regions partition
// the covered positions at splice and clip sites, hits map alignments to
// regions, and mates, UMI partners and back-spliced segments become fragments
func Build(g *Group, opts Options) (*bridge.Bundle, error) {
	bd := &bridge.Bundle{
		Chrom:  g.Chrom,
		Strand: '.',
		LPos:   g.LPos,
		RPos:   g.RPos,
	}

	bd.Regions = buildRegions(g, opts.GappedCoverage)

	segs := g.segments
	bd.Hits = make([]bridge.Hit, len(segs))
	for i, s := range segs {
		v := mapBlocks(bd.Regions, s.blocks)
		if v == nil {
			return nil, fmt.Errorf("alignment %s at %s:%d maps to no region", s.name, s.ref, s.pos)
		}
		bd.Hits[i] = bridge.Hit{
			ID:    i,
			Name:  s.name,
			Pos:   s.pos,
			RPos:  s.end,
			VList: v,
			UMI:   s.umi,
		}
	}

	bd.Strand = inferStrand(segs)
	bd.Fragments = pairFragments(bd, segs)
	bd.CircFragments, bd.Circles = circularFragments(bd, segs)

	if err := bd.Validate(); err != nil {
		return nil, fmt.Errorf("invalid bundle %s:%d-%d: %w", bd.Chrom, bd.LPos, bd.RPos, err)
	}
	return bd, nil
}

// buildRegions cuts the covered positions of the group into regions
func buildRegions(g *Group, gappedCoverage float64) []bridge.Region {
	lo, hi := g.LPos, g.RPos
	diff := make([]int32, hi-lo+1)
	cuts := make(map[int32]bool)

	addCut := func(p int32) {
		if p > lo && p < hi {
			cuts[p] = true
		}
	}
	addBoundaries := func(s *segment) {
		for _, p := range s.splices {
			addCut(p)
		}
		if s.leftClip {
			addCut(s.pos)
		}
		if s.rightClip {
			addCut(s.end)
		}
	}

	for _, s := range g.segments {
		for _, b := range s.blocks {
			diff[b.l-lo]++
			diff[b.r-lo]--
		}
		addBoundaries(s)
		if s.sa != nil && s.sa.ref == g.Chrom {
			addBoundaries(s.sa)
		}
	}

	var regions []bridge.Region
	start := int32(-1)
	var sum int64
	var minCov int32
	closeRegion := func(x int32) {
		r := bridge.Region{LPos: start, RPos: x}
		r.Ave = float64(sum) / float64(x-start)
		r.Gapped = float64(minCov) < gappedCoverage
		regions = append(regions, r)
		start = -1
	}

	var c int32
	for x := lo; x <= hi; x++ {
		c += diff[x-lo]
		covered := x < hi && c > 0
		if start >= 0 && (!covered || cuts[x]) {
			closeRegion(x)
		}
		if !covered {
			continue
		}
		if start < 0 {
			start = x
			sum = 0
			minCov = c
		}
		sum += int64(c)
		if c < minCov {
			minCov = c
		}
	}
	return regions
}

// mapBlocks returns the ascending ids of regions overlapping the blocks, or
// nil when some block lies outside every region
func mapBlocks(regions []bridge.Region, blocks []block) []int {
	var v []int
	for _, b := range blocks {
		i := sort.Search(len(regions), func(i int) bool {
			return regions[i].RPos > b.l
		})
		found := false
		for ; i < len(regions) && regions[i].LPos < b.r; i++ {
			found = true
			if len(v) > 0 && v[len(v)-1] >= i {
				continue
			}
			v = append(v, i)
		}
		if !found {
			return nil
		}
	}
	return v
}

// inferStrand takes the majority XS strand of the spliced alignments
func inferStrand(segs []*segment) byte {
	plus, minus := 0, 0
	for _, s := range segs {
		switch s.strand {
		case '+':
			plus++
		case '-':
			minus++
		}
	}
	switch {
	case plus > minus:
		return '+'
	case minus > plus:
		return '-'
	}
	return '.'
}

// newFragment links two hits, the leftmost first
func newFragment(bd *bridge.Bundle, h1, h2 *bridge.Hit, t bridge.FragmentType) bridge.Fragment {
	if h2.Pos < h1.Pos || (h2.Pos == h1.Pos && h2.RPos < h1.RPos) {
		h1, h2 = h2, h1
	}
	return link(bd, h1, h2, t)
}

// link builds the fragment h1 -> h2 and measures its flanks
func link(bd *bridge.Bundle, h1, h2 *bridge.Hit, t bridge.FragmentType) bridge.Fragment {
	fr := bridge.Fragment{
		H1:   h1,
		H2:   h2,
		Type: t,
		LPos: min(h1.Pos, h2.Pos),
		RPos: max(h1.RPos, h2.RPos),
	}
	fr.K1L = h1.Pos - bd.Regions[h1.VList[0]].LPos
	fr.K1R = bd.Regions[h1.VList[len(h1.VList)-1]].RPos - h1.RPos
	fr.K2L = h2.Pos - bd.Regions[h2.VList[0]].LPos
	fr.K2R = bd.Regions[h2.VList[len(h2.VList)-1]].RPos - h2.RPos
	return fr
}

// pairFragments links mates by read name, then links unpaired alignments
// sharing a UMI in position order
func pairFragments(bd *bridge.Bundle, segs []*segment) []bridge.Fragment {
	byName := make(map[string][]int)
	var names []string
	for i, s := range segs {
		if !s.primary() {
			continue
		}
		if _, ok := byName[s.name]; !ok {
			names = append(names, s.name)
		}
		byName[s.name] = append(byName[s.name], i)
	}

	var frags []bridge.Fragment
	paired := make(map[int]bool)
	for _, name := range names {
		idx := byName[name]
		if len(idx) != 2 {
			continue
		}
		h1, h2 := &bd.Hits[idx[0]], &bd.Hits[idx[1]]
		t := bridge.PairedEnd
		if h1.UMI != "" && h1.UMI == h2.UMI {
			t = bridge.Both
		}
		frags = append(frags, newFragment(bd, h1, h2, t))
		paired[idx[0]] = true
		paired[idx[1]] = true
	}

	byUMI := make(map[string][]int)
	var umis []string
	for i, s := range segs {
		if paired[i] || !s.primary() || s.umi == "" {
			continue
		}
		if _, ok := byUMI[s.umi]; !ok {
			umis = append(umis, s.umi)
		}
		byUMI[s.umi] = append(byUMI[s.umi], i)
	}
	for _, umi := range umis {
		idx := byUMI[umi]
		for k := 0; k+1 < len(idx); k++ {
			frags = append(frags, newFragment(bd, &bd.Hits[idx[k]], &bd.Hits[idx[k+1]], bridge.UMILinked))
		}
	}
	return frags
}

// circularFragments finds back-spliced chimeric alignments and links the
// segment at the circle start with the segment at the circle end
func circularFragments(bd *bridge.Bundle, segs []*segment) ([]bridge.Fragment, []bridge.Circle) {
	var frags []bridge.Fragment
	var circles []bridge.Circle
	seen := make(map[string]bool)

	for i, s := range segs {
		if !s.primary() || s.sa == nil {
			continue
		}
		up, down, ok := backSplice(s, s.sa)
		if !ok {
			continue
		}
		key := fmt.Sprintf("%s|%d|%d", s.name, up.pos, down.end)
		if seen[key] {
			continue
		}
		seen[key] = true

		c := bridge.Circle{P1: up.pos, P2: down.end, Fragment: -1, ReadName: s.name}
		c.SuppleLen = min(s.alignedLen(), s.sa.alignedLen())

		other := s.sa
		v := mapBlocks(bd.Regions, other.blocks)
		if v != nil && other.pos >= bd.LPos && other.end <= bd.RPos {
			h := &bridge.Hit{
				ID:    -1 - len(frags),
				Name:  other.name,
				Pos:   other.pos,
				RPos:  other.end,
				VList: v,
				UMI:   s.umi,
			}
			primary := &bd.Hits[i]
			h1, h2 := h, primary
			if up == s {
				h1, h2 = primary, h
			}
			// the circle start stays first even when the segments overlap
			fr := link(bd, h1, h2, bridge.PairedEnd)
			c.Fragment = len(frags)
			frags = append(frags, fr)
		}
		circles = append(circles, c)
	}
	return frags, circles
}
