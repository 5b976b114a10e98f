package bundle

import "github.com/biogo/hts/sam"

// StrandEvidence counts how the first read of each fragment lies relative to
// the XS transcript strand of its spliced alignment
type StrandEvidence struct {
	Sense     int // first read on the transcript strand
	Antisense int // first read opposite the transcript strand
}

// Add accumulates another count
func (e *StrandEvidence) Add(o StrandEvidence) {
	e.Sense += o.Sense
	e.Antisense += o.Antisense
}

// StrandEvidence tallies the primary alignments of the group that carry an
// XS strand. Second mates are flipped so they count as their first read.
func (g *Group) StrandEvidence() StrandEvidence {
	var e StrandEvidence
	for _, s := range g.segments {
		if s.strand != '+' && s.strand != '-' || !s.primary() {
			continue
		}
		aligned := byte('+')
		if s.reverse() {
			aligned = '-'
		}
		sense := aligned == s.strand
		if s.flags&sam.Paired != 0 && s.flags&sam.Read2 != 0 {
			sense = !sense
		}
		if sense {
			e.Sense++
		} else {
			e.Antisense++
		}
	}
	return e
}
