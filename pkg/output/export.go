package output

import (
	"fmt"
	"io"

	"github.com/biogo/hts/bam"
	"github.com/biogo/hts/sam"

	"github.com/Shao-Group/TERRACE/pkg/bundle"
)

// ExportOptions selects the circRNAs whose supporting reads are exported
type ExportOptions struct {
	Locus       *bundle.Locus // nil selects every circRNA
	MinCoverage int
}

// SupportingReads collects the read names of the selected circRNAs
func SupportingReads(circs []CircRNARecord, opts ExportOptions) map[string]bool {
	names := make(map[string]bool)
	for _, c := range circs {
		if c.Coverage < opts.MinCoverage {
			continue
		}
		if opts.Locus != nil && !opts.Locus.Overlaps(c.Chrom, int(c.Start), int(c.End)) {
			continue
		}
		for _, n := range c.ReadNames {
			names[n] = true
		}
	}
	return names
}

// ExportBAM copies every record of r named in names to w as BAM, keeping
// the input order. It returns the number of records written.
func ExportBAM(r bundle.RecordReader, h *sam.Header, w io.Writer, names map[string]bool) (int, error) {
	bw, err := bam.NewWriter(w, h, 1)
	if err != nil {
		return 0, fmt.Errorf("failed to create BAM writer: %w", err)
	}

	written := 0
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			bw.Close()
			return written, fmt.Errorf("failed to read alignment record: %w", err)
		}
		if !names[rec.Name] {
			continue
		}
		if err := bw.Write(rec); err != nil {
			bw.Close()
			return written, fmt.Errorf("failed to write read %s: %w", rec.Name, err)
		}
		written++
	}

	if err := bw.Close(); err != nil {
		return written, fmt.Errorf("failed to close BAM writer: %w", err)
	}
	return written, nil
}
