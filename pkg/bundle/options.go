package bundle

import (
	"fmt"
	"io"
)

// Options controls how alignments are filtered and grouped into bundles
type Options struct {
	MinMapQ        int     `mapstructure:"min-mapq"`
	MinBundleGap   int32   `mapstructure:"min-bundle-gap"`
	GappedCoverage float64 `mapstructure:"gapped-coverage"`
	UMITag         string  `mapstructure:"umi-tag"`
	Region         string  `mapstructure:"region"`
}

// DefaultOptions returns the default ingestion options
func DefaultOptions() Options {
	return Options{
		MinMapQ:        1,
		MinBundleGap:   50,
		GappedCoverage: 1.0,
		UMITag:         "UB",
	}
}

// Validate checks option values
func (o Options) Validate() error {
	if o.MinMapQ < 0 || o.MinMapQ > 255 {
		return fmt.Errorf("min-mapq must be in [0, 255], got %d", o.MinMapQ)
	}
	if o.MinBundleGap < 0 {
		return fmt.Errorf("min-bundle-gap must be >= 0, got %d", o.MinBundleGap)
	}
	if o.GappedCoverage < 0 {
		return fmt.Errorf("gapped-coverage must be >= 0, got %.2f", o.GappedCoverage)
	}
	if o.UMITag != "" && len(o.UMITag) != 2 {
		return fmt.Errorf("umi-tag must be a two-character SAM tag, got %q", o.UMITag)
	}
	if o.Region != "" {
		if _, err := ParseLocus(o.Region); err != nil {
			return err
		}
	}
	return nil
}

// ShowConfig prints the effective ingestion options
func (o Options) ShowConfig(w io.Writer) {
	fmt.Fprintf(w, "Ingestion:\n")
	fmt.Fprintf(w, "  Min MAPQ: %d\n", o.MinMapQ)
	fmt.Fprintf(w, "  Min bundle gap: %d bp\n", o.MinBundleGap)
	fmt.Fprintf(w, "  Gapped coverage: %.2f\n", o.GappedCoverage)
	if o.UMITag != "" {
		fmt.Fprintf(w, "  UMI tag: %s\n", o.UMITag)
	}
	if o.Region != "" {
		fmt.Fprintf(w, "  Region: %s\n", o.Region)
	}
	fmt.Fprintf(w, "\n")
}
