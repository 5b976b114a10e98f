package bundle

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/biogo/hts/sam"
)

// block is an aligned reference interval [l, r)
type block struct {
	l, r int32
}

// segment is one alignment reduced to what bundling needs
type segment struct {
	name  string
	ref   string
	flags sam.Flags
	pos   int32
	end   int32

	blocks    []block
	splices   []int32 // intron boundaries, both sides
	leftClip  bool
	rightClip bool

	umi    string
	strand byte // XS strand, 0 when absent

	// chimeric partner from the SA tag
	sa *segment
}

var (
	saTag = sam.NewTag("SA")
	xsTag = sam.NewTag("XS")
)

// newSegment decodes the alignment blocks of a record
func newSegment(rec *sam.Record, umiTag sam.Tag, useUMI bool) (*segment, error) {
	s := &segment{
		name:  rec.Name,
		ref:   rec.Ref.Name(),
		flags: rec.Flags,
		pos:   int32(rec.Pos),
	}
	if err := s.decodeCigar(rec.Cigar); err != nil {
		return nil, fmt.Errorf("record %s: %w", rec.Name, err)
	}

	if useUMI {
		if v, ok := auxString(rec.AuxFields.Get(umiTag)); ok {
			s.umi = v
		}
	}
	if aux := rec.AuxFields.Get(xsTag); aux != nil {
		switch v := aux.Value().(type) {
		case byte:
			s.strand = v
		case string:
			if len(v) == 1 {
				s.strand = v[0]
			}
		}
	}
	if v, ok := auxString(rec.AuxFields.Get(saTag)); ok {
		sa, err := parseSA(rec.Name, rec.Flags, v)
		if err != nil {
			return nil, fmt.Errorf("record %s: %w", rec.Name, err)
		}
		s.sa = sa
	}
	return s, nil
}

// decodeCigar walks the CIGAR from pos: M, =, X and D extend the current
// block, N closes it, clips at either end are recorded
func (s *segment) decodeCigar(cigar sam.Cigar) error {
	p := s.pos
	open := false
	var cur block
	for i, op := range cigar {
		n := int32(op.Len())
		switch op.Type() {
		case sam.CigarMatch, sam.CigarEqual, sam.CigarMismatch, sam.CigarDeletion:
			if !open {
				cur = block{l: p}
				open = true
			}
			p += n
			cur.r = p
		case sam.CigarSkipped:
			if open {
				s.blocks = append(s.blocks, cur)
				s.splices = append(s.splices, cur.r)
				open = false
			}
			p += n
			s.splices = append(s.splices, p)
		case sam.CigarSoftClipped, sam.CigarHardClipped:
			if i == 0 || (i == 1 && cigar[0].Type() == sam.CigarHardClipped) {
				s.leftClip = true
			} else {
				s.rightClip = true
			}
		case sam.CigarInsertion, sam.CigarPadded:
		default:
			return fmt.Errorf("unsupported CIGAR operation %v", op)
		}
	}
	if open {
		s.blocks = append(s.blocks, cur)
	}
	if len(s.blocks) == 0 {
		return fmt.Errorf("no aligned blocks in CIGAR %v", cigar)
	}
	s.end = s.blocks[len(s.blocks)-1].r
	return nil
}

// parseSA decodes the first entry of an SA tag: rname,pos,strand,CIGAR,mapQ,NM
func parseSA(name string, flags sam.Flags, v string) (*segment, error) {
	entry := strings.SplitN(v, ";", 2)[0]
	fields := strings.Split(entry, ",")
	if len(fields) < 4 {
		return nil, fmt.Errorf("malformed SA tag %q", v)
	}
	pos, err := strconv.Atoi(fields[1])
	if err != nil || pos < 1 {
		return nil, fmt.Errorf("malformed SA position %q", fields[1])
	}
	cigar, err := sam.ParseCigar([]byte(fields[3]))
	if err != nil {
		return nil, fmt.Errorf("malformed SA CIGAR %q: %w", fields[3], err)
	}

	sa := &segment{
		name:  name,
		ref:   fields[0],
		flags: flags | sam.Supplementary,
		pos:   int32(pos - 1),
	}
	switch fields[2] {
	case "+":
		sa.flags &^= sam.Reverse
	case "-":
		sa.flags |= sam.Reverse
	default:
		return nil, fmt.Errorf("malformed SA strand %q", fields[2])
	}
	if err := sa.decodeCigar(cigar); err != nil {
		return nil, err
	}
	return sa, nil
}

func auxString(aux sam.Aux) (string, bool) {
	if aux == nil {
		return "", false
	}
	v, ok := aux.Value().(string)
	return v, ok
}

func (s *segment) reverse() bool {
	return s.flags&sam.Reverse != 0
}

func (s *segment) primary() bool {
	return s.flags&(sam.Supplementary|sam.Secondary) == 0
}

// alignedLen sums the reference span of the aligned blocks
func (s *segment) alignedLen() int32 {
	var n int32
	for _, b := range s.blocks {
		n += b.r - b.l
	}
	return n
}

// backSplice orders a chimeric pair into the segment at the circle start and
// the segment at the circle end; ok is false when the pair is not a back-splice
func backSplice(a, b *segment) (up, down *segment, ok bool) {
	if a.ref != b.ref || a.reverse() != b.reverse() {
		return nil, nil, false
	}
	for _, p := range [][2]*segment{{a, b}, {b, a}} {
		up, down = p[0], p[1]
		if !up.leftClip || !down.rightClip {
			continue
		}
		if up.pos <= down.pos && up.pos < down.end && up.end <= down.end {
			return up, down, true
		}
	}
	return nil, nil, false
}
