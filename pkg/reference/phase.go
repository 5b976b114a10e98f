package reference

import (
	"sort"

	"github.com/Shao-Group/TERRACE/pkg/bridge"
)

// Index answers overlap queries over transcripts, per chromosome
type Index struct {
	byChrom map[string]*chromTranscripts
}

type chromTranscripts struct {
	ts     []Transcript // sorted by start
	maxLen int32
}

// NewIndex sorts the transcripts of each chromosome by start
func NewIndex(ts []Transcript) *Index {
	idx := &Index{byChrom: make(map[string]*chromTranscripts)}
	for _, t := range ts {
		if len(t.Exons) == 0 {
			continue
		}
		c := idx.byChrom[t.Chrom]
		if c == nil {
			c = &chromTranscripts{}
			idx.byChrom[t.Chrom] = c
		}
		c.ts = append(c.ts, t)
		if l := t.End() - t.Start(); l > c.maxLen {
			c.maxLen = l
		}
	}
	for _, c := range idx.byChrom {
		sort.SliceStable(c.ts, func(i, j int) bool { return c.ts[i].Start() < c.ts[j].Start() })
	}
	return idx
}

// Overlapping returns the transcripts on chrom intersecting [l, r), by start
func (idx *Index) Overlapping(chrom string, l, r int32) []Transcript {
	if idx == nil {
		return nil
	}
	c := idx.byChrom[chrom]
	if c == nil {
		return nil
	}
	n := sort.Search(len(c.ts), func(i int) bool { return c.ts[i].Start() >= r })
	first := sort.Search(n, func(i int) bool { return c.ts[i].Start()+c.maxLen > l })

	var out []Transcript
	for _, t := range c.ts[first:n] {
		if t.End() > l {
			out = append(out, t)
		}
	}
	return out
}

// PhaseIndex projects the transcripts overlapping the bundle onto its
// regions; each phase is the ascending list of regions its exons touch
func (idx *Index) PhaseIndex(bd *bridge.Bundle) bridge.PhaseIndex {
	return BuildPhaseIndex(idx.Overlapping(bd.Chrom, bd.LPos, bd.RPos), bd)
}

// BuildPhaseIndex maps each strand-compatible transcript on the bundle
// chromosome to the vertices its exons overlap
func BuildPhaseIndex(ts []Transcript, bd *bridge.Bundle) bridge.PhaseIndex {
	var names []string
	var phases [][]int
	for i := range ts {
		t := &ts[i]
		if t.Chrom != bd.Chrom || !strandCompatible(t.Strand, bd.Strand) {
			continue
		}
		v := projectExons(bd.Regions, t.Exons)
		if len(v) == 0 {
			continue
		}
		names = append(names, t.ID)
		phases = append(phases, v)
	}
	return bridge.NewPhaseIndex(names, phases)
}

func strandCompatible(a, b byte) bool {
	return a == b || a == '.' || b == '.'
}

// projectExons returns ascending ids of regions overlapping any exon
func projectExons(regions []bridge.Region, exons []Exon) []int {
	var v []int
	for _, e := range exons {
		i := sort.Search(len(regions), func(i int) bool { return regions[i].RPos > e.Start })
		for ; i < len(regions) && regions[i].LPos < e.End; i++ {
			if len(v) > 0 && v[len(v)-1] >= i {
				continue
			}
			v = append(v, i)
		}
	}
	return v
}

// HasChrom reports whether any transcript lies on chrom
func (idx *Index) HasChrom(chrom string) bool {
	if idx == nil {
		return false
	}
	_, ok := idx.byChrom[chrom]
	return ok
}

// Len returns the number of indexed transcripts
func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	n := 0
	for _, c := range idx.byChrom {
		n += len(c.ts)
	}
	return n
}
