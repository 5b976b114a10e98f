package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Shao-Group/TERRACE/internal/ctxlog"
)

const version = "1.0.0"

var (
	logLevel  string
	logFormat string
)

var rootCmd = &cobra.Command{
	Use:   "terrace",
	Short: "TERRACE - circular RNA assembly by fragment bridging",
	Long: `TERRACE assembles full-length circular RNAs from paired-end and
UMI-linked RNA-seq alignments.

Fragments are bridged through the splice graph of each bundle, and every
back-splice becomes a circRNA either from its bridged fragment or by
clipping a path through the junction graph. Results are written to a local
directory or an s3:// prefix and can be inspected with the stats and query
commands.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger := ctxlog.New(logLevel, logFormat, os.Stderr)
		slog.SetDefault(logger)
		cmd.SetContext(ctxlog.WithLogger(cmd.Context(), logger))
	},
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info",
		"Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text",
		"Log format: text, json")

	rootCmd.AddCommand(bridgeCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("terrace version %s\n", version)
		fmt.Println("Circular RNA assembly by fragment bridging")
	},
}
