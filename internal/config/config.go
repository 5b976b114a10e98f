// Package config builds run options from defaults, an optional settings
// file, TERRACE_* environment variables and command-line flags, in
// increasing priority. Keys are the flag names.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/Shao-Group/TERRACE/pkg/pipeline"
)

// EnvPrefix prefixes environment overrides, e.g. TERRACE_MIN_MAPQ
const EnvPrefix = "TERRACE"

// RegisterFlags adds one flag per option key to fs, defaulting to d
func RegisterFlags(fs *pflag.FlagSet, d pipeline.Options) {
	// ingestion
	fs.Int("min-mapq", d.Ingest.MinMapQ, "minimum mapping quality of kept alignments")
	fs.Int32("min-bundle-gap", d.Ingest.MinBundleGap, "gap (bp) that starts a new bundle")
	fs.Float64("gapped-coverage", d.Ingest.GappedCoverage, "regions dipping below this coverage are gapped")
	fs.String("umi-tag", d.Ingest.UMITag, "SAM tag holding the UMI (empty disables UMI linking)")
	fs.String("region", d.Ingest.Region, "only process alignments overlapping chr[:start-end]")
	fs.Int("min-hits-in-bundle", d.MinHitsInBundle, "skip bundles with fewer alignments")

	// bridging
	fs.Int32("insert-size-low", d.Bridge.InsertSizeLow, "low end of the insert-size distribution")
	fs.Int32("insert-size-median", d.Bridge.InsertSizeMedian, "median insert size")
	fs.Int32("insert-size-high", d.Bridge.InsertSizeHigh, "high end of the insert-size distribution")
	fs.Int("max-num-path-nodes", d.Bridge.MaxNumPathNodes, "path-node budget of a bundle")
	fs.Int("path-node-low", d.Bridge.PathNodeLow, "smallest path-node window")
	fs.Int("path-node-high", d.Bridge.PathNodeHigh, "largest path-node window")
	fs.Int("dp-solution-size", d.Bridge.DPSolutionSize, "candidate paths kept per fragment")
	fs.Int("dp-stack-size", d.Bridge.DPStackSize, "bottleneck stack width of the dynamic program")
	fs.Float64("min-bridging-score", d.Bridge.MinBridgingScore, "score for a path to count as strong")
	fs.Float64("min-path-score", d.Bridge.MinPathScore, "minimum score of a bridging path")
	fs.Float64("max-fset-score", d.Bridge.MaxFsetScore, "skip fragment clusters scoring above this")
	fs.Bool("use-overlap-scoring", d.Bridge.UseOverlapScoring, "score junction paths by overlapping read windows")
	fs.Int32("max-clustering-flank", d.Bridge.MaxClusteringFlank, "flank tolerance (bp) when clustering fragments")

	// circRNA filters
	fs.Int32("max-single-exon-length", d.Filter.MaxSingleExonLength, "longest exon of a single-exon circRNA")
	fs.Int32("max-multi-exon-length", d.Filter.MaxMultiExonLength, "longest exon of a multi-exon circRNA")
	fs.Int("max-circ-vertices", d.Filter.MaxCircVertices, "most regions in a circRNA path")
	fs.Int32("merge-end-diff", d.Filter.MergeEndDiff, "merge circRNAs of one intron chain with ends closer than this (0 = off)")

	// execution and storage
	fs.Int("workers", d.Workers, "parallel bundle workers (0 = auto-detect)")
	fs.Int("threads", d.Threads, "BAM decompression goroutines")
	fs.Duration("progress-interval", d.ProgressInterval, "interval between progress lines on stderr (0 = off)")
	fs.Bool("preview", d.Preview, "estimate insert sizes and strandness from the head of the input unless insert sizes are set")
	fs.Int("preview-bundles", d.PreviewBundles, "bundles sampled by the preview")
	fs.Int("preview-min-fragments", d.PreviewMinFragments, "fragments the preview needs before its insert sizes are used")
	fs.String("compression", d.Output.Compression, "chunk compression: none, zstd")
	fs.Int("compression-level", d.Output.Level, "zstd level: 1 fastest, 2 default, 3 better, 4 best (0 = default)")
	fs.String("aws-region", d.Output.AWSRegion, "AWS region for s3:// outputs")
	fs.Bool("gtf", d.Output.GTF, "also write circRNAs as GTF")
	fs.Bool("features", d.Output.Features, "also write the per-circRNA feature table (CSV)")
}

// InsertSizeKeys are the options a preview estimate would override
var InsertSizeKeys = []string{"insert-size-low", "insert-size-median", "insert-size-high"}

// InsertSizesSet reports whether any insert size came from a flag, the
// environment or the settings file
func InsertSizesSet(v *viper.Viper) bool {
	for _, k := range InsertSizeKeys {
		if v.IsSet(k) {
			return true
		}
	}
	return false
}

// Bind makes every flag of fs visible to v and enables environment overrides
func Bind(v *viper.Viper, fs *pflag.FlagSet) error {
	if err := v.BindPFlags(fs); err != nil {
		return fmt.Errorf("failed to bind flags: %w", err)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return nil
}

// Load reads the settings file at path, if any, and decodes v into
// validated options
func Load(v *viper.Viper, path string) (pipeline.Options, error) {
	opts := pipeline.DefaultOptions()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return opts, fmt.Errorf("failed to read config file: %w", err)
		}
	}
	if err := v.Unmarshal(&opts); err != nil {
		return opts, fmt.Errorf("failed to decode configuration: %w", err)
	}
	if err := opts.Validate(); err != nil {
		return opts, fmt.Errorf("invalid configuration: %w", err)
	}
	return opts, nil
}
