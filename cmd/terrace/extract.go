package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/Shao-Group/TERRACE/pkg/bundle"
	"github.com/Shao-Group/TERRACE/pkg/output"
)

var (
	extractRegion      string
	extractMinCoverage int
	extractThreads     int
	extractAWSRegion   string
)

var extractCmd = &cobra.Command{
	Use:   "extract <input.bam> <output> <reads.bam>",
	Short: "Export the alignments supporting assembled circRNAs",
	Long: `Copy the alignments of every read supporting an assembled circRNA
from the original input into a new BAM file, in input order.

Use "-" as reads.bam to stream the BAM to stdout.

Examples:
  terrace extract sample.bam sample.terrace circ_reads.bam
  terrace extract sample.bam sample.terrace - --region chr1 | samtools view`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		inputPath, resultPath, outPath := args[0], args[1], args[2]
		toStdout := outPath == "-"

		opts := output.ExportOptions{MinCoverage: extractMinCoverage}
		if extractRegion != "" {
			l, err := bundle.ParseLocus(extractRegion)
			if err != nil {
				return fmt.Errorf("invalid region: %w", err)
			}
			opts.Locus = &l
		}

		r, err := output.OpenResult(ctx, resultPath, extractAWSRegion)
		if err != nil {
			return fmt.Errorf("failed to open result: %w", err)
		}
		defer r.Close()
		circs, err := r.CircRNAs(ctx)
		if err != nil {
			return fmt.Errorf("failed to load circRNAs: %w", err)
		}
		names := output.SupportingReads(circs, opts)

		src, err := bundle.Open(inputPath, extractThreads)
		if err != nil {
			return err
		}
		defer src.Close()

		var w io.Writer = os.Stdout
		if !toStdout {
			f, err := os.Create(outPath)
			if err != nil {
				return fmt.Errorf("failed to create output file: %w", err)
			}
			defer f.Close()
			w = f
		}

		n, err := output.ExportBAM(src, src.Header, w, names)
		if err != nil {
			return err
		}
		if !toStdout {
			fmt.Printf("Exported %d alignments of %d reads to %s\n", n, len(names), outPath)
		}
		return nil
	},
}

func init() {
	extractCmd.Flags().StringVar(&extractRegion, "region", "",
		"Only export reads of circRNAs overlapping chr[:start-end]")
	extractCmd.Flags().IntVar(&extractMinCoverage, "min-coverage", 0,
		"Only export reads of circRNAs with at least this coverage")
	extractCmd.Flags().IntVar(&extractThreads, "threads", 1,
		"BAM decompression goroutines")
	extractCmd.Flags().StringVar(&extractAWSRegion, "aws-region", "",
		"AWS region for s3:// results")
}
