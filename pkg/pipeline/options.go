package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/Shao-Group/TERRACE/pkg/bridge"
	"github.com/Shao-Group/TERRACE/pkg/bundle"
	"github.com/Shao-Group/TERRACE/pkg/output"
)

// Options configures a whole run. The embedded groups share one flat key space.
type Options struct {
	Ingest bundle.Options       `mapstructure:",squash"`
	Bridge bridge.Config        `mapstructure:",squash"`
	Output output.WriterOptions `mapstructure:",squash"`
	Filter CircFilter           `mapstructure:",squash"`

	MinHitsInBundle int `mapstructure:"min-hits-in-bundle"`
	Workers         int `mapstructure:"workers"` // 0 = auto
	Threads         int `mapstructure:"threads"` // BAM decompression goroutines

	ProgressInterval time.Duration `mapstructure:"progress-interval"` // 0 disables progress lines

	// insert-size estimation from the head of the input
	Preview             bool `mapstructure:"preview"`
	PreviewBundles      int  `mapstructure:"preview-bundles"`
	PreviewMinFragments int  `mapstructure:"preview-min-fragments"`
}

// CircFilter drops implausible circRNAs and merges near-duplicates
type CircFilter struct {
	MaxSingleExonLength int32 `mapstructure:"max-single-exon-length"`
	MaxMultiExonLength  int32 `mapstructure:"max-multi-exon-length"`
	MaxCircVertices     int   `mapstructure:"max-circ-vertices"`
	// circRNAs sharing an intron chain whose ends both differ by less than
	// this are merged into the better covered one; 0 disables merging
	MergeEndDiff int32 `mapstructure:"merge-end-diff"`
}

// DefaultOptions returns the default run configuration
func DefaultOptions() Options {
	return Options{
		Ingest: bundle.DefaultOptions(),
		Bridge: bridge.DefaultConfig(),
		Output: output.DefaultWriterOptions(),
		Filter: CircFilter{
			MaxSingleExonLength: 2000,
			MaxMultiExonLength:  2000,
			MaxCircVertices:     30,
		},
		MinHitsInBundle:  1,
		Threads:          1,
		ProgressInterval: 10 * time.Second,

		Preview:             true,
		PreviewBundles:      2000,
		PreviewMinFragments: 100,
	}
}

// Validate checks every option group
func (o Options) Validate() error {
	if err := o.Ingest.Validate(); err != nil {
		return err
	}
	if err := o.Bridge.Validate(); err != nil {
		return err
	}
	if err := o.Output.Validate(); err != nil {
		return err
	}
	if o.Filter.MaxSingleExonLength < 1 || o.Filter.MaxMultiExonLength < 1 {
		return fmt.Errorf("max exon lengths must be >= 1, got (%d, %d)", o.Filter.MaxSingleExonLength, o.Filter.MaxMultiExonLength)
	}
	if o.Filter.MaxCircVertices < 1 {
		return fmt.Errorf("max-circ-vertices must be >= 1, got %d", o.Filter.MaxCircVertices)
	}
	if o.Filter.MergeEndDiff < 0 {
		return fmt.Errorf("merge-end-diff must be >= 0, got %d", o.Filter.MergeEndDiff)
	}
	if o.MinHitsInBundle < 0 {
		return fmt.Errorf("min-hits-in-bundle must be >= 0, got %d", o.MinHitsInBundle)
	}
	if o.Workers < 0 {
		return fmt.Errorf("workers must be >= 0, got %d", o.Workers)
	}
	if o.Threads < 1 {
		return fmt.Errorf("threads must be >= 1, got %d", o.Threads)
	}
	if o.ProgressInterval < 0 {
		return fmt.Errorf("progress-interval must be >= 0, got %s", o.ProgressInterval)
	}
	if o.PreviewBundles < 1 {
		return fmt.Errorf("preview-bundles must be >= 1, got %d", o.PreviewBundles)
	}
	if o.PreviewMinFragments < 1 {
		return fmt.Errorf("preview-min-fragments must be >= 1, got %d", o.PreviewMinFragments)
	}
	return nil
}

// ShowConfig prints the effective configuration
func (o Options) ShowConfig(w io.Writer) {
	DetectSystem().Print(w)
	o.Ingest.ShowConfig(w)
	o.Bridge.ShowConfig(w)

	fmt.Fprintf(w, "circRNA filters:\n")
	fmt.Fprintf(w, "  Max single-exon length: %d bp\n", o.Filter.MaxSingleExonLength)
	fmt.Fprintf(w, "  Max multi-exon length: %d bp\n", o.Filter.MaxMultiExonLength)
	fmt.Fprintf(w, "  Max vertices: %d\n", o.Filter.MaxCircVertices)
	if o.Filter.MergeEndDiff > 0 {
		fmt.Fprintf(w, "  Merge ends within: %d bp\n", o.Filter.MergeEndDiff)
	}
	fmt.Fprintf(w, "\n")

	fmt.Fprintf(w, "Execution:\n")
	if o.Workers == 0 {
		fmt.Fprintf(w, "  Workers: auto (%d)\n", DetectSystem().OptimalWorkers())
	} else {
		fmt.Fprintf(w, "  Workers: %d\n", o.Workers)
	}
	fmt.Fprintf(w, "  BAM threads: %d\n", o.Threads)
	if o.ProgressInterval > 0 {
		fmt.Fprintf(w, "  Progress every: %s\n", o.ProgressInterval)
	}
	if o.Preview {
		fmt.Fprintf(w, "  Preview: first %d bundles, at least %d fragments\n", o.PreviewBundles, o.PreviewMinFragments)
	} else {
		fmt.Fprintf(w, "  Preview: disabled\n")
	}
	fmt.Fprintf(w, "  Compression: %s\n", o.Output.Compression)
	fmt.Fprintf(w, "  GTF: %t, feature table: %t\n", o.Output.GTF, o.Output.Features)
	fmt.Fprintf(w, "\n")
}
