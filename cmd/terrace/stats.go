package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Shao-Group/TERRACE/pkg/bridge"
	"github.com/Shao-Group/TERRACE/pkg/output"
)

var statsRegion string

var statsCmd = &cobra.Command{
	Use:   "stats <output>",
	Short: "Show statistics of a result set",
	Long: `Display the statistics of a bridging run.

Statistics are read from the metadata file without loading any bundle.

Example:
  terrace stats sample.terrace
  terrace stats s3://bucket/sample.terrace --aws-region us-west-2`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := output.OpenResult(cmd.Context(), args[0], statsRegion)
		if err != nil {
			return fmt.Errorf("failed to open result: %w", err)
		}
		defer r.Close()

		md := r.Metadata()
		st := r.Statistics()

		fmt.Println("===========================================")
		fmt.Println("TERRACE Result Statistics")
		fmt.Println("===========================================")
		fmt.Println()
		fmt.Printf("Format: %s v%s\n", md.Format, md.Version)
		fmt.Printf("Created: %s\n", md.Created.Format("2006-01-02 15:04:05"))
		fmt.Printf("Created by: %s\n", md.CreatedBy)
		if md.Source.File != "" {
			fmt.Printf("Source: %s (%s)\n", md.Source.File, md.Source.Format)
		}
		if md.Source.Annotation != "" {
			fmt.Printf("Annotation: %s\n", md.Source.Annotation)
		}
		fmt.Println()

		fmt.Println("Reads:")
		fmt.Printf("  Total reads: %d\n", st.Reads.TotalReads)
		fmt.Printf("  Mapped reads: %d (%.2f%%)\n", st.Reads.MappedReads, percent(st.Reads.MappedReads, st.Reads.TotalReads))
		fmt.Printf("  Kept reads: %d (%.2f%%)\n", st.Reads.KeptReads, percent(st.Reads.KeptReads, st.Reads.TotalReads))
		fmt.Printf("  Filtered: %d secondary, %d QC-fail, %d duplicate, %d low MAPQ\n",
			st.Reads.SecondaryReads, st.Reads.QCFailReads, st.Reads.DuplicateReads, st.Reads.LowMapQReads)
		fmt.Println()

		fmt.Println("Bridging:")
		fmt.Printf("  Bundles: %d processed, %d skipped, %d failed\n", st.Bundles, st.Skipped, st.Failed)
		printReport("Linear fragments", &st.Normal)
		printReport("Circular fragments", &st.Circular)
		fmt.Println()

		fmt.Println("circRNAs:")
		fmt.Printf("  Assembled: %d\n", st.CircRNAs)
		fmt.Printf("  From clipping: %d (%d failed)\n", st.ClippedCirc, st.ClipFailed)
		fmt.Printf("  Filtered: %d\n", st.FilteredCirc)
		fmt.Printf("  Collapsed duplicates: %d\n", st.CollapsedCirc)
		fmt.Println()

		fmt.Println("Structure:")
		fmt.Printf("  Total chunks: %d\n", len(md.Chunks))
		fmt.Printf("  Compression: %s\n", md.Compression.Algorithm)
		return nil
	},
}

func init() {
	statsCmd.Flags().StringVar(&statsRegion, "aws-region", "",
		"AWS region for s3:// results")
}

func printReport(label string, r *bridge.Report) {
	fmt.Printf("  %s: %d total, %d bridged (%.2f%%)\n", label, r.Total, r.Bridged(), r.Ratio(len(r.Fixed)-1))
	for t := bridge.PairedEnd; t <= bridge.Both; t++ {
		if r.TotalByType[t] == 0 {
			continue
		}
		fmt.Printf("    %s: %d total, %d bridged\n", t, r.TotalByType[t], r.BridgedByType[t])
	}
}

func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total) * 100
}
