package bridge

import (
	"fmt"
	"strconv"
	"strings"
)

// Region is a contiguous genomic interval [LPos, RPos) of a bundle.
// Its index in Bundle.Regions is the vertex id used everywhere else.
type Region struct {
	LPos   int32   `json:"lpos"`
	RPos   int32   `json:"rpos"`
	Ave    float64 `json:"ave"`
	Gapped bool    `json:"gapped,omitempty"`
}

// Len returns the region length in bp
func (r Region) Len() int32 {
	return r.RPos - r.LPos
}

// Hit is one aligned mate (or chimeric segment) of a read
type Hit struct {
	ID    int
	Name  string
	Pos   int32 // leftmost aligned position
	RPos  int32 // rightmost aligned position (exclusive)
	VList []int // ascending vertex ids spanned by the alignment
	UMI   string
}

// FragmentType tells how the two hits of a fragment are linked
type FragmentType int

const (
	PairedEnd FragmentType = iota
	UMILinked
	Both
)

func (t FragmentType) String() string {
	switch t {
	case PairedEnd:
		return "paired-end"
	case UMILinked:
		return "umi-linked"
	case Both:
		return "both"
	default:
		return fmt.Sprintf("FragmentType(%d)", int(t))
	}
}

// PathType classifies where a bridging path came from
type PathType int

const (
	// RefExact is a reference phase whose implied length is in range
	RefExact PathType = 1
	// RefPartial is a reference phase whose implied length is out of range
	RefPartial PathType = 2
	// ReadInRange is a read-derived path whose implied length is in range
	ReadInRange PathType = 3
	// ReadOutOfRange is a read-derived path whose implied length is out of range
	ReadOutOfRange PathType = 4
)

// FromReference reports whether the path was derived from the phase index
func (t PathType) FromReference() bool {
	return t == RefExact || t == RefPartial
}

// FromReads reports whether the path was derived from the junction graph
func (t PathType) FromReads() bool {
	return t == ReadInRange || t == ReadOutOfRange
}

// Junction is an intron between two merged exon blocks, inclusive on both ends
type Junction struct {
	Start int32 `json:"start"`
	End   int32 `json:"end"`
}

// Path is one candidate bridge of a fragment
type Path struct {
	V      []int    `json:"v"`
	Score  float64  `json:"score"`
	Type   PathType `json:"type"`
	Length int32    `json:"length"`

	// filled by the circular selection only
	PathRegions   []Region   `json:"-"`
	MergedRegions []Region   `json:"-"`
	Junctions     []Junction `json:"-"`
	ExonCount     int        `json:"-"`
}

// key identifies a path by vertex list, score, length and type
func (p Path) key() string {
	return fmt.Sprintf("%s|%g|%d|%d", vertexKey(p.V), p.Score, p.Length, p.Type)
}

// Fragment is a pair of linked hits to be bridged into one path
type Fragment struct {
	H1, H2 *Hit
	Type   FragmentType

	// flanks: offsets of the mates from the boundaries of their first/last regions
	K1L, K1R int32
	K2L, K2R int32

	LPos, RPos int32

	Paths              []Path
	Bridged            bool
	CandidatePathCount int
}

// clone copies the fragment with its own path list
func (f Fragment) clone() Fragment {
	c := f
	c.Paths = make([]Path, len(f.Paths))
	copy(c.Paths, f.Paths)
	return c
}

// isOpen reports whether the fragment still needs a bridging path
func (f *Fragment) isOpen() bool {
	if len(f.Paths) >= 1 {
		return false
	}
	return last(f.H1.VList) < last(f.H2.VList)
}

// PathNode is a short deduplicated vertex run with its observation count
type PathNode struct {
	V     []int
	Score float64
	Acc   []int32
}

// FCluster groups open fragments sharing identical flanking vertex runs
type FCluster struct {
	Members []int // indices into the fragment slice of the round
	V1      []int
	V2      []int
	Phase   [][]int
}

// addPhase records a reference phase once
func (fc *FCluster) addPhase(v []int) {
	for _, p := range fc.Phase {
		if equalInts(p, v) {
			return
		}
	}
	fc.Phase = append(fc.Phase, v)
}

// Entry is one cell of the DP table
type Entry struct {
	Stack  Stack
	Length int32
	Trace1 int // predecessor vertex, -1 at the seed
	Trace2 int // predecessor entry index, -1 at the seed
}

// CircularTranscript is a back-spliced structure assembled from a bundle
type CircularTranscript struct {
	Chrom              string   `json:"chrom"`
	Strand             byte     `json:"strand"`
	Start              int32    `json:"start"`
	End                int32    `json:"end"`
	CircPath           []int    `json:"circ_path"`
	PathRegions        []Region `json:"path_regions"`
	MergedRegions      []Region `json:"merged_regions"`
	Coverage           int      `json:"coverage"`
	PathScore          float64  `json:"path_score"`
	PathCounts         [5]int   `json:"path_counts"` // indexed by PathType, 0 = clipped
	CandidatePathCount int      `json:"candidate_path_count"`
	Source             string   `json:"source"`
	ReadNames          []string `json:"read_names,omitempty"`

	// bundle context and read evidence, exported as scoring features
	BundleSize   int   `json:"bundle_size"`
	RefTrstsSize int   `json:"ref_trsts_size"`
	FakeCount    int   `json:"fake_count"` // supporting reads without a linked mate segment
	SuppleLen    int32 `json:"supple_len"`
}

// ID returns chrom:start|end, the back-splice junction
func (c *CircularTranscript) ID() string {
	return fmt.Sprintf("%s:%d|%d", c.Chrom, c.Start, c.End)
}

// IntronChain keys the inner boundaries of the merged exons as
// "rpos-lpos|" per intron. Single-exon circRNAs have an empty chain.
func (c *CircularTranscript) IntronChain() string {
	b := make([]byte, 0, 16*len(c.MergedRegions))
	for i := 1; i < len(c.MergedRegions); i++ {
		b = strconv.AppendInt(b, int64(c.MergedRegions[i-1].RPos), 10)
		b = append(b, '-')
		b = strconv.AppendInt(b, int64(c.MergedRegions[i].LPos), 10)
		b = append(b, '|')
	}
	return string(b)
}

// Key identifies an isoform: the back-splice junction plus the intron chain.
// Isoforms sharing both ends but spliced differently get different keys.
func (c *CircularTranscript) Key() string {
	return c.ID() + "|" + c.IntronChain()
}

// ExonStats summarizes the merged exon lengths
type ExonStats struct {
	Count int
	Total int32
	Max   int32
	Min   int32
	Avg   float64
}

// ExonStats returns count, total, max, min and mean merged exon length
func (c *CircularTranscript) ExonStats() ExonStats {
	var st ExonStats
	for i, r := range c.MergedRegions {
		l := r.Len()
		st.Total += l
		if i == 0 || l > st.Max {
			st.Max = l
		}
		if i == 0 || l < st.Min {
			st.Min = l
		}
	}
	st.Count = len(c.MergedRegions)
	if st.Count > 0 {
		st.Avg = float64(st.Total) / float64(st.Count)
	}
	return st
}

// Circle is a back-splice boundary pair observed by ingestion
type Circle struct {
	P1, P2    int32
	Fragment  int // index into Bundle.CircFragments, -1 when the read has no fragment
	ReadName  string
	SuppleLen int32 // aligned length of the shorter chimeric segment
}

func last(v []int) int {
	return v[len(v)-1]
}

func equalInts(x, y []int) bool {
	if len(x) != len(y) {
		return false
	}
	for i := range x {
		if x[i] != y[i] {
			return false
		}
	}
	return true
}

// compareInts orders vertex lists lexicographically, shorter first on a common prefix
func compareInts(x, y []int) int {
	for i := 0; i < len(x) && i < len(y); i++ {
		if x[i] < y[i] {
			return -1
		}
		if x[i] > y[i] {
			return 1
		}
	}
	switch {
	case len(x) < len(y):
		return -1
	case len(x) > len(y):
		return 1
	}
	return 0
}

func vertexKey(v []int) string {
	var sb strings.Builder
	for _, x := range v {
		sb.WriteString(strconv.Itoa(x))
		sb.WriteByte('|')
	}
	return sb.String()
}
