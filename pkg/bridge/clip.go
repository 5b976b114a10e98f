package bridge

import (
	"errors"
	"fmt"
)

var (
	// ErrClipNotFound is returned when no region starts at p1 or ends at p2
	ErrClipNotFound = errors.New("clip boundary not found in bundle regions")
	// ErrInvalidClip is returned when the region ending at p2 precedes the one starting at p1
	ErrInvalidClip = errors.New("clip boundaries out of order")
	// ErrNoClipPath is returned when the junction graph has no path between the boundaries
	ErrNoClipPath = errors.New("no path between clip boundaries")
)

// BridgeClip assembles a circular transcript spanning the back-splice
// boundaries p1 (start) and p2 (end) through the junction graph of the
// linear fragments
func (b *Bridger) BridgeClip(p1, p2 int32) (*CircularTranscript, error) {
	x1, x2 := -1, -1
	for i, r := range b.bundle.Regions {
		if x1 < 0 && r.LPos == p1 {
			x1 = i
		}
		if x2 < 0 && r.RPos == p2 {
			x2 = i
		}
		if x1 >= 0 && x2 >= 0 {
			break
		}
	}
	if x1 < 0 || x2 < 0 {
		return nil, fmt.Errorf("%w: (%d, %d)", ErrClipNotFound, p1, p2)
	}
	if x1 > x2 {
		return nil, fmt.Errorf("%w: region %d after region %d", ErrInvalidClip, x1, x2)
	}

	circ := &CircularTranscript{
		Chrom:  b.bundle.Chrom,
		Strand: b.bundle.Strand,
		Start:  b.bundle.Regions[x1].LPos,
		End:    b.bundle.Regions[x2].RPos,
	}

	if x1 == x2 {
		circ.CircPath = []int{x1}
		circ.PathRegions = []Region{b.bundle.Regions[x1]}
		circ.MergedRegions = mergeRegions(circ.PathRegions)
		return circ, nil
	}

	g := b.buildJunctionGraph(b.bundle.Fragments, nil)
	table := b.dynamicProgramming(g, x1, x2)
	pb := table.traceBack(x2)
	if len(pb) == 0 {
		return nil, fmt.Errorf("%w: regions %d to %d", ErrNoClipPath, x1, x2)
	}

	circ.CircPath = pb[0]
	circ.PathRegions = b.bundle.regionsOf(pb[0])
	circ.MergedRegions = mergeRegions(circ.PathRegions)
	return circ, nil
}
