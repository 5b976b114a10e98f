package bundle

import (
	"errors"
	"fmt"
	"io"

	"github.com/biogo/hts/sam"
)

// ErrUnsorted is returned when records are not coordinate-sorted
var ErrUnsorted = errors.New("alignments are not coordinate-sorted")

// Stats counts records seen by a Scanner
type Stats struct {
	TotalReads     int `json:"total_reads"`
	MappedReads    int `json:"mapped_reads"`
	UnmappedReads  int `json:"unmapped_reads"`
	SecondaryReads int `json:"secondary_reads"`
	QCFailReads    int `json:"qcfail_reads"`
	DuplicateReads int `json:"duplicate_reads"`
	LowMapQReads   int `json:"low_mapq_reads"`
	KeptReads      int `json:"kept_reads"`
}

// Group is a run of overlapping or nearby alignments on one reference
type Group struct {
	Chrom    string
	LPos     int32
	RPos     int32
	segments []*segment
}

// Len returns the number of alignments in the group
func (g *Group) Len() int {
	return len(g.segments)
}

// Scanner groups filtered, coordinate-sorted records into bundles
type Scanner struct {
	r      RecordReader
	opts   Options
	locus  *Locus
	umiTag sam.Tag

	cur  *Group
	done bool

	stats Stats
}

// NewScanner creates a scanner over r
func NewScanner(r RecordReader, opts Options) (*Scanner, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid ingestion options: %w", err)
	}
	s := &Scanner{r: r, opts: opts}
	if opts.Region != "" {
		l, err := ParseLocus(opts.Region)
		if err != nil {
			return nil, err
		}
		s.locus = &l
	}
	if opts.UMITag != "" {
		s.umiTag = sam.NewTag(opts.UMITag)
	}
	return s, nil
}

// Stats returns the record counts so far
func (s *Scanner) Stats() Stats {
	return s.stats
}

// Next returns the next group, or io.EOF when the input is exhausted
func (s *Scanner) Next() (*Group, error) {
	for {
		if s.done {
			if s.cur != nil {
				g := s.cur
				s.cur = nil
				return g, nil
			}
			return nil, io.EOF
		}

		seg, err := s.readSegment()
		if err == io.EOF {
			s.done = true
			continue
		}
		if err != nil {
			return nil, err
		}

		if s.cur == nil {
			s.cur = newGroup(seg)
			continue
		}

		if seg.ref == s.cur.Chrom && seg.pos < s.cur.LPos {
			return nil, fmt.Errorf("%w: %s at %s:%d after %d", ErrUnsorted, seg.name, seg.ref, seg.pos, s.cur.LPos)
		}
		if seg.ref != s.cur.Chrom || seg.pos > s.cur.RPos+s.opts.MinBundleGap {
			g := s.cur
			s.cur = newGroup(seg)
			return g, nil
		}
		s.cur.add(seg)
	}
}

func newGroup(seg *segment) *Group {
	g := &Group{Chrom: seg.ref, LPos: seg.pos, RPos: seg.end}
	g.add(seg)
	return g
}

func (g *Group) add(seg *segment) {
	g.segments = append(g.segments, seg)
	if seg.end > g.RPos {
		g.RPos = seg.end
	}
}

// readSegment returns the next record that passes the filters
func (s *Scanner) readSegment() (*segment, error) {
	for {
		rec, err := s.r.Read()
		if err != nil {
			if err == io.EOF {
				return nil, io.EOF
			}
			return nil, fmt.Errorf("failed to read alignment record: %w", err)
		}
		s.stats.TotalReads++

		if !s.keep(rec) {
			continue
		}

		seg, err := newSegment(rec, s.umiTag, s.opts.UMITag != "")
		if err != nil {
			return nil, err
		}
		s.stats.KeptReads++
		return seg, nil
	}
}

func (s *Scanner) keep(rec *sam.Record) bool {
	if rec.Flags&sam.Unmapped != 0 || rec.Ref == nil || rec.Pos < 0 {
		s.stats.UnmappedReads++
		return false
	}
	s.stats.MappedReads++

	switch {
	case rec.Flags&sam.Secondary != 0:
		s.stats.SecondaryReads++
		return false
	case rec.Flags&sam.QCFail != 0:
		s.stats.QCFailReads++
		return false
	case rec.Flags&sam.Duplicate != 0:
		s.stats.DuplicateReads++
		return false
	case int(rec.MapQ) < s.opts.MinMapQ:
		s.stats.LowMapQReads++
		return false
	}

	if s.locus != nil && !s.locus.Overlaps(rec.Ref.Name(), rec.Pos, rec.End()) {
		return false
	}
	return true
}
