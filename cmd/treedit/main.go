package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/ludo-technologies/treedit/internal/logging"
	"github.com/ludo-technologies/treedit/internal/version"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "treedit",
	Short: "Exact tree edit distance between labeled ordered trees",
	Long: `treedit computes the edit distance between two labeled, ordered trees
and reports the node mapping and edit script that achieve it.

Features:
  • Exhaustive enumeration of every valid mapping (backtracking)
  • Branch-and-bound search with an admissible lower bound
  • Leaf-cost forest distance dynamic programming
  • Trees from JSON, YAML, TOML, bracket notation or Python source
  • Pairwise distance matrices and an HTTP API`,
	Version:           version.Short(),
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setupLogger,
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")

	rootCmd.AddCommand(NewDistanceCmd())
	rootCmd.AddCommand(NewMappingsCmd())
	rootCmd.AddCommand(NewBatchCmd())
	rootCmd.AddCommand(NewServeCmd())
	rootCmd.AddCommand(NewInitCmd())
	rootCmd.AddCommand(NewVersionCmd())
}

// setupLogger stores a logger in the command context at the level chosen by --verbose
func setupLogger(cmd *cobra.Command, args []string) error {
	verbose, _ := cmd.Flags().GetBool("verbose")
	logger := logging.New(cmd.ErrOrStderr(), logging.Level(verbose))

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(logging.WithLogger(ctx, logger))
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		printError(os.Stderr, err)
		os.Exit(1)
	}
}
