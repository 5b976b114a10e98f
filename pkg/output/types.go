package output

import (
	"time"

	"github.com/Shao-Group/TERRACE/pkg/bridge"
	"github.com/Shao-Group/TERRACE/pkg/bundle"
)

// Format and version written to _metadata.json
const (
	FormatName    = "terrace"
	FormatVersion = "1.0.0"
)

// Well-known files of a result set
const (
	MetadataFile = "_metadata.json"
	IndexFile    = "_index/bundles.json"
	CircJSONFile = "circRNAs.json"
	CircBEDFile  = "circRNAs.bed"
	CircGTFFile  = "circRNAs.gtf"
	FeatureFile  = "features.csv"
	BundlesDir   = "bundles"
)

// Metadata describes a result set
type Metadata struct {
	Format      string            `json:"format"`
	Version     string            `json:"version"`
	Created     time.Time         `json:"created"`
	CreatedBy   string            `json:"created_by"`
	Source      Source            `json:"source"`
	Statistics  Statistics        `json:"statistics"`
	Chunks      []ChunkInfo       `json:"chunks"`
	Compression CompressionConfig `json:"compression"`
}

// Source names the inputs of the run
type Source struct {
	File       string `json:"file"`
	Format     string `json:"format"`
	Annotation string `json:"annotation,omitempty"`
	Library    string `json:"library,omitempty"` // strandness estimated by the preview
}

// Statistics aggregates a whole run
type Statistics struct {
	Reads    bundle.Stats  `json:"reads"`
	Bundles  int           `json:"bundles"`
	Skipped  int           `json:"skipped_bundles"`
	Failed   int           `json:"failed_bundles"`
	Normal   bridge.Report `json:"normal"`
	Circular bridge.Report `json:"circular"`

	CircRNAs      int `json:"circrnas"`
	ClippedCirc   int `json:"clipped_circrnas"`
	ClipFailed    int `json:"clip_failed"`
	FilteredCirc  int `json:"filtered_circrnas"`
	CollapsedCirc int `json:"collapsed_circrnas"`
}

// ChunkInfo describes one stored bundle
type ChunkInfo struct {
	Path        string    `json:"path"`
	Reference   string    `json:"reference"`
	Start       int       `json:"start"`
	End         int       `json:"end"`
	Fragments   int       `json:"fragments"`
	Bridged     int       `json:"bridged"`
	SizeBytes   int64     `json:"size_bytes"`
	Compression string    `json:"compression"`
	Checksum    string    `json:"checksum"`
	Created     time.Time `json:"created"`
}

// CompressionConfig describes how chunks are compressed
type CompressionConfig struct {
	Algorithm string `json:"algorithm"`
	Level     int    `json:"level,omitempty"`
}

// ReferenceIndex lists the chunks of one chromosome in position order
type ReferenceIndex struct {
	Name   string      `json:"name"`
	Chunks []ChunkInfo `json:"chunks"`
}

// SpatialIndex maps chromosomes to their chunks
type SpatialIndex struct {
	References map[string]ReferenceIndex `json:"references"`
}

// BundleRecord is the stored form of one bridged bundle
type BundleRecord struct {
	Chrom         string           `json:"chrom"`
	Strand        string           `json:"strand"`
	Start         int32            `json:"start"`
	End           int32            `json:"end"`
	Regions       []bridge.Region  `json:"regions"`
	Fragments     []FragmentRecord `json:"fragments"`
	CircFragments []FragmentRecord `json:"circ_fragments,omitempty"`
	Normal        bridge.Report    `json:"normal"`
	Circular      bridge.Report    `json:"circular"`
}

// FragmentRecord is the stored form of one fragment and its paths
type FragmentRecord struct {
	Name               string        `json:"name"`
	Type               string        `json:"type"`
	Start              int32         `json:"start"`
	End                int32         `json:"end"`
	V1                 []int         `json:"v1"`
	V2                 []int         `json:"v2"`
	Bridged            bool          `json:"bridged"`
	CandidatePathCount int           `json:"candidate_path_count,omitempty"`
	Paths              []bridge.Path `json:"paths,omitempty"`
}

// NewBundleRecord captures a bridged bundle with its reports
func NewBundleRecord(bd *bridge.Bundle, normal, circular bridge.Report) BundleRecord {
	return BundleRecord{
		Chrom:         bd.Chrom,
		Strand:        strandString(bd.Strand),
		Start:         bd.LPos,
		End:           bd.RPos,
		Regions:       bd.Regions,
		Fragments:     fragmentRecords(bd.Fragments),
		CircFragments: fragmentRecords(bd.CircFragments),
		Normal:        normal,
		Circular:      circular,
	}
}

func fragmentRecords(frags []bridge.Fragment) []FragmentRecord {
	if len(frags) == 0 {
		return nil
	}
	out := make([]FragmentRecord, len(frags))
	for i := range frags {
		fr := &frags[i]
		name := fr.H1.Name
		if name == "" {
			name = fr.H2.Name
		}
		out[i] = FragmentRecord{
			Name:               name,
			Type:               fr.Type.String(),
			Start:              fr.LPos,
			End:                fr.RPos,
			V1:                 fr.H1.VList,
			V2:                 fr.H2.VList,
			Bridged:            fr.Bridged,
			CandidatePathCount: fr.CandidatePathCount,
			Paths:              fr.Paths,
		}
	}
	return out
}

// CircRNARecord is the stored form of a collapsed circular transcript
type CircRNARecord struct {
	ID                 string          `json:"id"`
	Chrom              string          `json:"chrom"`
	Strand             string          `json:"strand"`
	Start              int32           `json:"start"`
	End                int32           `json:"end"`
	Exons              []bridge.Region `json:"exons"`
	Vertices           []int           `json:"vertices"`
	Coverage           int             `json:"coverage"`
	PathScore          float64         `json:"path_score"`
	PathCounts         [5]int          `json:"path_counts"`
	CandidatePathCount int             `json:"candidate_path_count"`
	Source             string          `json:"source"`
	ReadNames          []string        `json:"read_names,omitempty"`

	// isoform key: ID plus the intron chain
	Isoform string `json:"isoform"`

	// scoring features
	BundleSize   int     `json:"bundle_size"`
	RefTrstsSize int     `json:"ref_trsts_size"`
	FakeCount    int     `json:"fake_count"`
	SuppleLen    int32   `json:"supple_len"`
	ExonCount    int     `json:"exon_count"`
	TotalExonLen int32   `json:"total_exon_len"`
	MaxExonLen   int32   `json:"max_exon_len"`
	MinExonLen   int32   `json:"min_exon_len"`
	AvgExonLen   float64 `json:"avg_exon_len"`
}

// NewCircRNARecord converts a circular transcript for storage
func NewCircRNARecord(c *bridge.CircularTranscript) CircRNARecord {
	rec := CircRNARecord{
		ID:                 c.ID(),
		Chrom:              c.Chrom,
		Strand:             strandString(c.Strand),
		Start:              c.Start,
		End:                c.End,
		Exons:              c.MergedRegions,
		Vertices:           c.CircPath,
		Coverage:           c.Coverage,
		PathScore:          c.PathScore,
		PathCounts:         c.PathCounts,
		CandidatePathCount: c.CandidatePathCount,
		Source:             c.Source,
		ReadNames:          c.ReadNames,
		Isoform:            c.Key(),
		BundleSize:         c.BundleSize,
		RefTrstsSize:       c.RefTrstsSize,
		FakeCount:          c.FakeCount,
		SuppleLen:          c.SuppleLen,
	}
	st := c.ExonStats()
	rec.ExonCount = st.Count
	rec.TotalExonLen = st.Total
	rec.MaxExonLen = st.Max
	rec.MinExonLen = st.Min
	rec.AvgExonLen = st.Avg
	return rec
}

func strandString(s byte) string {
	switch s {
	case '+', '-':
		return string(s)
	}
	return "."
}
