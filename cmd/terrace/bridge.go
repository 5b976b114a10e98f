package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Shao-Group/TERRACE/internal/config"
	"github.com/Shao-Group/TERRACE/internal/ctxlog"
	"github.com/Shao-Group/TERRACE/pkg/bundle"
	"github.com/Shao-Group/TERRACE/pkg/output"
	"github.com/Shao-Group/TERRACE/pkg/pipeline"
	"github.com/Shao-Group/TERRACE/pkg/reference"
)

var (
	configFile string
	refPath    string
	showConfig bool

	bridgeViper = viper.New()
)

var bridgeCmd = &cobra.Command{
	Use:   "bridge <input.bam> <output>",
	Short: "Bridge fragments and assemble circRNAs",
	Long: `Bridge the fragments of a coordinate-sorted BAM or SAM file and
assemble circular RNAs.

The output is a directory (or s3://bucket/prefix) holding:
  _metadata.json        run statistics and chunk list
  _index/bundles.json   per-chromosome bundle index
  bundles/<chrom>/...   one compressed chunk per bundle
  circRNAs.json         assembled circRNAs
  circRNAs.bed          the same circRNAs as BED12
  circRNAs.gtf          the same circRNAs as GTF (--gtf)
  features.csv          per-circRNA classifier features (--features)

Insert sizes:
  Unless an insert-size option is set, the first --preview-bundles
  bundles are bridged once to estimate the insert-size distribution and
  the library strandness. The preview needs a file input; on stdin the
  configured insert sizes are used.

Configuration:
  Every flag can also be set in a YAML, JSON or TOML file passed with
  --config, or through a TERRACE_<FLAG> environment variable
  (e.g. TERRACE_MIN_MAPQ=10). Flags win over the environment, which wins
  over the file.

Examples:
  # Assemble circRNAs
  terrace bridge sample.bam sample.terrace

  # Stream alignments from another tool (SAM or BAM on stdin)
  samtools view -h sample.bam chr1 | terrace bridge - chr1.terrace

  # Use reference transcripts to phase fragments
  terrace bridge sample.bam sample.terrace --ref genes.gtf.gz

  # Write directly to S3
  terrace bridge sample.bam s3://bucket/sample.terrace --aws-region us-west-2

  # Show effective configuration
  terrace bridge --show-config --config terrace.yaml`,
	Args: cobra.MaximumNArgs(2),
	RunE: runBridge,
}

func init() {
	fs := bridgeCmd.Flags()
	config.RegisterFlags(fs, pipeline.DefaultOptions())
	fs.StringVar(&configFile, "config", "",
		"Settings file (YAML, JSON or TOML) with flag names as keys")
	fs.StringVar(&refPath, "ref", "",
		"Reference annotation in GTF format, optionally gzipped")
	fs.BoolVar(&showConfig, "show-config", false,
		"Show effective configuration and exit")

	if err := config.Bind(bridgeViper, fs); err != nil {
		panic(err)
	}
}

func runBridge(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	logger := ctxlog.FromContext(ctx)

	opts, err := config.Load(bridgeViper, configFile)
	if err != nil {
		return err
	}
	if showConfig {
		opts.ShowConfig(os.Stdout)
		return nil
	}
	if len(args) != 2 {
		return fmt.Errorf("bridge requires two arguments (input.bam output)")
	}
	inputPath, outputPath := args[0], args[1]

	var ref *reference.Index
	if refPath != "" {
		ts, err := reference.LoadGTFFile(refPath)
		if err != nil {
			return fmt.Errorf("failed to load reference: %w", err)
		}
		ref = reference.NewIndex(ts)
		fmt.Printf("Loaded %d reference transcripts from %s\n", len(ts), refPath)
	}

	src, err := bundle.Open(inputPath, opts.Threads)
	if err != nil {
		return err
	}
	defer src.Close()

	w, err := output.NewWriter(ctx, outputPath, opts.Output)
	if err != nil {
		return fmt.Errorf("failed to create output: %w", err)
	}

	p, err := pipeline.New(opts, ref, w)
	if err != nil {
		return err
	}

	var library string
	if opts.Preview && inputPath != bundle.StdinPath && !config.InsertSizesSet(bridgeViper) {
		library, err = runPreview(cmd, p, inputPath, opts.Threads)
		if err != nil {
			return err
		}
	}

	fmt.Printf("Bridging %s -> %s\n", inputPath, outputPath)
	fmt.Printf("Workers: %d\n", p.Workers())
	logger.Debug("starting run", "input", inputPath, "output", outputPath, "workers", p.Workers())

	start := time.Now()
	s, err := p.Run(ctx, src)
	if err != nil {
		return fmt.Errorf("bridging failed: %w", err)
	}

	md, err := p.Store(ctx, s, output.Source{
		File:       bundle.SourceName(inputPath),
		Format:     src.Format,
		Annotation: refPath,
		Library:    library,
	})
	if err != nil {
		return fmt.Errorf("failed to store results: %w", err)
	}

	printSummary(md.Statistics, len(md.Chunks), time.Since(start))
	return nil
}

// runPreview samples the head of the input on its own reader and adopts the
// estimated insert sizes when enough fragments were bridged
func runPreview(cmd *cobra.Command, p *pipeline.Pipeline, inputPath string, threads int) (string, error) {
	src, err := bundle.Open(inputPath, threads)
	if err != nil {
		return "", err
	}
	defer src.Close()

	pv, err := p.Preview(cmd.Context(), src)
	if err != nil {
		return "", fmt.Errorf("preview failed: %w", err)
	}
	applied, err := p.ApplyPreview(pv)
	if err != nil {
		return "", err
	}

	fmt.Printf("Preview: %d bundles, %d fragments, library %s\n", pv.Bundles, pv.Fragments, pv.Strandness)
	if applied {
		fmt.Printf("  Insert size: low %d, median %d, high %d (mean %.1f, sd %.1f)\n",
			pv.Low, pv.Median, pv.High, pv.Mean, pv.Std)
	} else {
		cfg := p.BridgeConfig()
		fmt.Printf("  Too few fragments; keeping insert size low %d, median %d, high %d\n",
			cfg.InsertSizeLow, cfg.InsertSizeMedian, cfg.InsertSizeHigh)
	}
	return pv.Strandness, nil
}

func printSummary(st output.Statistics, chunks int, elapsed time.Duration) {
	fmt.Println()
	fmt.Println("Done.")
	fmt.Printf("  Reads: %d total, %d kept\n", st.Reads.TotalReads, st.Reads.KeptReads)
	fmt.Printf("  Bundles: %d processed, %d skipped, %d failed (%d chunks)\n",
		st.Bundles, st.Skipped, st.Failed, chunks)
	printReport("Linear fragments", &st.Normal)
	printReport("Circular fragments", &st.Circular)
	fmt.Printf("  circRNAs: %d (%d clipped, %d clip failures, %d filtered, %d collapsed)\n",
		st.CircRNAs, st.ClippedCirc, st.ClipFailed, st.FilteredCirc, st.CollapsedCirc)
	fmt.Printf("  Elapsed: %s\n", pipeline.FormatDuration(elapsed))
}
