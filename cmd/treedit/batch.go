package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ludo-technologies/treedit/app"
	"github.com/ludo-technologies/treedit/domain"
	"github.com/ludo-technologies/treedit/service"
)

// BatchCommand handles the pairwise batch comparison command
type BatchCommand struct {
	flags *solverFlags

	// Input parameters
	recursive       bool
	includePatterns []string
	excludePatterns []string

	concurrency int
	noProgress  bool
}

// NewBatchCommand creates a new batch command
func NewBatchCommand() *BatchCommand {
	return &BatchCommand{
		flags:     newSolverFlags(),
		recursive: true,
	}
}

// CreateCobraCommand creates the cobra command for batch comparison
func (b *BatchCommand) CreateCobraCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch PATHS...",
		Short: "Compute the pairwise distance matrix of many trees",
		Long: `Compare every pair of tree files found in the given paths and report the
distance matrix.

Directories are searched for files matching the include patterns. Python
sources are only collected when an include pattern names them.
A file that fails to load or a pair that fails to solve is listed under
errors and shown as ERR in the matrix.

Examples:
  # Matrix of every tree document under testdata/
  treedit batch testdata/

  # Compare Python modules with the fast DP distance as CSV
  treedit batch src/ --include "**/*.py" --algorithm dp --format csv`,
		Args: cobra.MinimumNArgs(1),
		RunE: b.runBatch,
	}

	b.flags.register(cmd.Flags())

	cmd.Flags().BoolVarP(&b.recursive, service.FlagRecursive, "r", b.recursive,
		"Recursively search directories")
	cmd.Flags().StringSliceVar(&b.includePatterns, service.FlagInclude, nil,
		"File patterns to include (default: from config)")
	cmd.Flags().StringSliceVar(&b.excludePatterns, service.FlagExclude, nil,
		"File patterns to exclude (default: from config)")
	cmd.Flags().IntVarP(&b.concurrency, service.FlagConcurrency, "j", 0,
		"Pairs compared at once (0 = one per CPU)")
	cmd.Flags().BoolVar(&b.noProgress, "no-progress", false, "Disable the progress bar")

	return cmd
}

// runBatch executes the batch command
func (b *BatchCommand) runBatch(cmd *cobra.Command, args []string) error {
	request, err := b.createRequest(cmd, args)
	if err != nil {
		return err
	}

	useCase, err := b.createUseCase(cmd)
	if err != nil {
		return fmt.Errorf("failed to create batch use case: %w", err)
	}

	if _, err := useCase.Execute(cmd.Context(), *request); err != nil {
		return fmt.Errorf("batch comparison failed: %w", err)
	}
	return nil
}

// createRequest merges the configuration file with explicitly set flags
func (b *BatchCommand) createRequest(cmd *cobra.Command, paths []string) (*domain.BatchRequest, error) {
	loader := service.NewConfigurationLoaderWithFlags(newFlagTracker(cmd))
	base, err := loader.LoadBatchRequest(b.flags.configFile, paths[0])
	if err != nil {
		return nil, err
	}

	format, err := b.flags.resolveFormat(base.OutputFormat)
	if err != nil {
		return nil, err
	}

	distance := b.flags.distanceRequest(cmd, format)
	override := &domain.BatchRequest{
		Paths:           paths,
		Recursive:       b.recursive,
		IncludePatterns: b.includePatterns,
		ExcludePatterns: b.excludePatterns,
		Distance:        distance,
		Concurrency:     b.concurrency,
		OutputFormat:    format,
		OutputWriter:    distance.OutputWriter,
		OutputPath:      distance.OutputPath,
		ConfigPath:      b.flags.configFile,
	}

	return loader.MergeBatchRequest(base, override), nil
}

// createUseCase creates a batch use case with all dependencies
func (b *BatchCommand) createUseCase(cmd *cobra.Command) (*app.BatchUseCase, error) {
	var progress domain.ProgressManager = service.NoOpProgressManager{}
	if !b.noProgress {
		progress = service.NewProgressManager("Comparing trees")
	}

	return app.NewBatchUseCaseBuilder().
		WithService(service.NewBatchService(nil, progress)).
		WithFileReader(service.NewFileReader()).
		WithFormatter(service.NewOutputFormatter()).
		WithOutputWriter(service.NewFileOutputWriter(cmd.ErrOrStderr())).
		Build()
}

// NewBatchCmd creates and returns the batch cobra command
func NewBatchCmd() *cobra.Command {
	return NewBatchCommand().CreateCobraCommand()
}
