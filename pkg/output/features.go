package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// FeatureHeader names the columns of the feature table
var FeatureHeader = []string{
	"circRNA_id", "bundle_size", "ref_trsts_size", "coverage", "fake_count",
	"supple_len", "candidate_path_count", "path_score",
	"path_count_1", "path_count_2", "path_count_3", "path_count_4",
	"exon_count", "total_exon_len", "max_exon_len", "min_exon_len", "avg_exon_len",
}

// WriteFeatures writes one CSV row of classifier features per circRNA.
// path_count_k counts supporting reads bridged by path type k.
func WriteFeatures(w io.Writer, recs []CircRNARecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(FeatureHeader); err != nil {
		return fmt.Errorf("failed to write feature header: %w", err)
	}
	itoa := func(n int) string { return strconv.Itoa(n) }
	for i := range recs {
		c := &recs[i]
		id := c.Isoform
		if id == "" {
			id = c.ID
		}
		row := []string{
			id,
			itoa(c.BundleSize),
			itoa(c.RefTrstsSize),
			itoa(c.Coverage),
			itoa(c.FakeCount),
			itoa(int(c.SuppleLen)),
			itoa(c.CandidatePathCount),
			strconv.FormatFloat(c.PathScore, 'g', -1, 64),
			itoa(c.PathCounts[1]),
			itoa(c.PathCounts[2]),
			itoa(c.PathCounts[3]),
			itoa(c.PathCounts[4]),
			itoa(c.ExonCount),
			itoa(int(c.TotalExonLen)),
			itoa(int(c.MaxExonLen)),
			itoa(int(c.MinExonLen)),
			strconv.FormatFloat(c.AvgExonLen, 'f', 2, 64),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write features of %s: %w", id, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
