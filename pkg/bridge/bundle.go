package bridge

import "fmt"

// PhasePos is one occurrence of a vertex inside a reference phase
type PhasePos struct {
	Transcript int
	Position   int
}

// PhaseIndex holds the reference transcripts of a bundle as vertex sequences
type PhaseIndex struct {
	Index  map[int][]PhasePos // vertex -> occurrences
	Phases [][]int            // transcript -> ascending vertex ids
	Names  []string
}

// NewPhaseIndex indexes every vertex occurrence of the given phases
func NewPhaseIndex(names []string, phases [][]int) PhaseIndex {
	idx := PhaseIndex{
		Index:  make(map[int][]PhasePos),
		Phases: phases,
		Names:  names,
	}
	for ti, v := range phases {
		for ki, x := range v {
			idx.Index[x] = append(idx.Index[x], PhasePos{Transcript: ti, Position: ki})
		}
	}
	return idx
}

// Bundle is an independent genomic window with everything the bridger reads
type Bundle struct {
	Chrom  string
	Strand byte
	LPos   int32
	RPos   int32

	Regions       []Region
	Hits          []Hit
	Fragments     []Fragment
	CircFragments []Fragment
	Circles       []Circle

	Ref PhaseIndex
}

// AlignedLength is the genomic span implied by bridging a fragment through v
func (b *Bundle) AlignedLength(k1l, k2r int32, v []int) int32 {
	var l int32
	for _, x := range v {
		l += b.Regions[x].Len()
	}
	return l - k1l - k2r
}

// AccumulateLength returns the running sum of region lengths along v
func (b *Bundle) AccumulateLength(v []int) []int32 {
	acc := make([]int32, len(v))
	var l int32
	for i, x := range v {
		l += b.Regions[x].Len()
		acc[i] = l
	}
	return acc
}

// Validate checks the ordering contracts the bridger relies on
func (b *Bundle) Validate() error {
	for i := 1; i < len(b.Regions); i++ {
		if b.Regions[i].LPos < b.Regions[i-1].RPos {
			return fmt.Errorf("region %d [%d,%d) overlaps region %d [%d,%d)", i,
				b.Regions[i].LPos, b.Regions[i].RPos, i-1, b.Regions[i-1].LPos, b.Regions[i-1].RPos)
		}
	}
	for i := range b.Hits {
		if err := checkVertexList(b.Hits[i].VList, len(b.Regions)); err != nil {
			return fmt.Errorf("hit %d: %w", b.Hits[i].ID, err)
		}
	}
	return nil
}

func checkVertexList(v []int, n int) error {
	if len(v) == 0 {
		return fmt.Errorf("empty vertex list")
	}
	for i, x := range v {
		if x < 0 || x >= n {
			return fmt.Errorf("vertex %d out of range [0,%d)", x, n)
		}
		if i > 0 && v[i-1] >= x {
			return fmt.Errorf("vertex list not ascending at %d", i)
		}
	}
	return nil
}
