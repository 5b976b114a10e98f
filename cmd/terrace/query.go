package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Shao-Group/TERRACE/pkg/bundle"
	"github.com/Shao-Group/TERRACE/pkg/output"
)

var (
	countOnly   bool
	showBundles int
	showCirc    bool
	queryRegion string
)

var queryCmd = &cobra.Command{
	Use:   "query <output> <region>",
	Short: "Query bundles and circRNAs of a result set",
	Long: `Query the bridged bundles of a genomic region.

The region format is chr:start-end (0-based, half-open) or a bare
chromosome name. Only the chunks overlapping the region are loaded.

Examples:
  terrace query sample.terrace chr1:1000000-2000000
  terrace query sample.terrace chr1:1000000-2000000 --count
  terrace query sample.terrace chr1 --circ`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		locus, err := bundle.ParseLocus(args[1])
		if err != nil {
			return fmt.Errorf("invalid region: %w", err)
		}

		r, err := output.OpenResult(ctx, args[0], queryRegion)
		if err != nil {
			return fmt.Errorf("failed to open result: %w", err)
		}
		defer r.Close()

		fmt.Printf("Query: %s\n", locus)

		recs, err := r.QueryRegion(ctx, locus)
		if err != nil {
			return fmt.Errorf("query failed: %w", err)
		}
		fmt.Printf("Found %d bundles in region\n", len(recs))

		if !countOnly {
			n := showBundles
			if n == 0 || n > len(recs) {
				n = len(recs)
			}
			if n > 0 {
				fmt.Println()
				fmt.Printf("%-12s %12s %12s %6s %8s %10s %8s %8s\n",
					"Chrom", "Start", "End", "Strand", "Regions", "Fragments", "Bridged", "Circ")
				fmt.Println("--------------------------------------------------------------------------------")
				for _, rec := range recs[:n] {
					fmt.Printf("%-12s %12d %12d %6s %8d %10d %8d %8d\n",
						rec.Chrom, rec.Start, rec.End, rec.Strand,
						len(rec.Regions), rec.Normal.Total, rec.Normal.Bridged(), rec.Circular.Total)
				}
			}
		}

		if !showCirc {
			return nil
		}

		circs, err := r.CircRNAs(ctx)
		if err != nil {
			return fmt.Errorf("failed to load circRNAs: %w", err)
		}
		var hits []output.CircRNARecord
		for _, c := range circs {
			if locus.Overlaps(c.Chrom, int(c.Start), int(c.End)) {
				hits = append(hits, c)
			}
		}
		fmt.Println()
		fmt.Printf("Found %d circRNAs in region\n", len(hits))
		if countOnly || len(hits) == 0 {
			return nil
		}
		fmt.Printf("%-28s %6s %6s %9s %10s %s\n", "ID", "Strand", "Exons", "Coverage", "Score", "Source")
		fmt.Println("--------------------------------------------------------------------------------")
		for _, c := range hits {
			fmt.Printf("%-28s %6s %6d %9d %10.2f %s\n",
				c.ID, c.Strand, len(c.Exons), c.Coverage, c.PathScore, c.Source)
		}
		return nil
	},
}

func init() {
	queryCmd.Flags().BoolVar(&countOnly, "count", false,
		"Only show counts, don't list bundles")
	queryCmd.Flags().IntVar(&showBundles, "show", 10,
		"Number of bundles to display (0 for all)")
	queryCmd.Flags().BoolVar(&showCirc, "circ", false,
		"Also list circRNAs overlapping the region")
	queryCmd.Flags().StringVar(&queryRegion, "aws-region", "",
		"AWS region for s3:// results")
}
