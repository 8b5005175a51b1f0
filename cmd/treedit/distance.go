package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ludo-technologies/treedit/app"
	"github.com/ludo-technologies/treedit/domain"
	"github.com/ludo-technologies/treedit/service"
)

// DistanceCommand handles the distance and mappings CLI commands
type DistanceCommand struct {
	flags *solverFlags

	// mappings switches the command to full enumeration
	mappings bool
}

// NewDistanceCommand creates a new distance command
func NewDistanceCommand() *DistanceCommand {
	return &DistanceCommand{flags: newSolverFlags()}
}

// CreateCobraCommand creates the cobra command for computing a distance
func (d *DistanceCommand) CreateCobraCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "distance TREE1 TREE2",
		Short: "Compute the edit distance between two trees",
		Long: `Compute the minimum-cost edit distance between two labeled ordered trees.

A tree argument ending in .json, .yaml, .yml, .toml, .tree or .py is read
from disk. Anything else is parsed as an inline tree in bracket notation
("A(B(D),C)") or as an inline JSON document.

Algorithms:
  bnb           Branch-and-bound search (default, exact)
  backtracking  Exhaustive enumeration, reports the cheapest mapping
  dp            Leaf-cost forest distance (a distinct, cheaper measure)
  dp-size       Forest distance where subtree removal costs its size

Examples:
  # Compare two inline trees
  treedit distance "A(B(D),C)" "A(X(D),Y)"

  # Compare two files with four workers and a JSON report
  treedit distance before.json after.json --workers 4 --format json

  # Render the mapping as SVG
  treedit distance a.py b.py -o mapping.svg`,
		Args: cobra.ExactArgs(2),
		RunE: d.runDistance,
	}

	d.flags.register(cmd.Flags())

	return cmd
}

// runDistance executes the distance command
func (d *DistanceCommand) runDistance(cmd *cobra.Command, args []string) error {
	request, err := d.createRequest(cmd, args)
	if err != nil {
		return err
	}

	useCase, err := d.createUseCase(cmd, request)
	if err != nil {
		return fmt.Errorf("failed to create distance use case: %w", err)
	}

	if d.mappings {
		_, err = useCase.ExecuteMappings(cmd.Context(), *request)
		if err != nil {
			return fmt.Errorf("mapping enumeration failed: %w", err)
		}
		return nil
	}

	_, err = useCase.Execute(cmd.Context(), *request)
	if err != nil {
		return fmt.Errorf("distance computation failed: %w", err)
	}
	return nil
}

// createRequest merges the configuration file with explicitly set flags
func (d *DistanceCommand) createRequest(cmd *cobra.Command, args []string) (*domain.DistanceRequest, error) {
	source1 := treeSourceFromArg(args[0])
	source2 := treeSourceFromArg(args[1])

	loader := service.NewConfigurationLoaderWithFlags(newFlagTracker(cmd))
	base, err := loader.LoadDistanceRequest(d.flags.configFile, configStartDir(source1.Path))
	if err != nil {
		return nil, err
	}

	format, err := d.flags.resolveFormat(base.OutputFormat)
	if err != nil {
		return nil, err
	}

	override := d.flags.distanceRequest(cmd, format)
	override.Source1 = source1
	override.Source2 = source2

	return loader.MergeDistanceRequest(base, &override), nil
}

// createUseCase creates a distance use case with all dependencies
func (d *DistanceCommand) createUseCase(cmd *cobra.Command, request *domain.DistanceRequest) (*app.DistanceUseCase, error) {
	formatter := service.NewOutputFormatter().
		WithColor(request.OutputPath == "" && service.IsInteractiveEnvironment())

	return app.NewDistanceUseCaseBuilder().
		WithService(service.NewDistanceService(nil)).
		WithFormatter(formatter).
		WithOutputWriter(service.NewFileOutputWriter(cmd.ErrOrStderr())).
		Build()
}

// NewDistanceCmd creates and returns the distance cobra command
func NewDistanceCmd() *cobra.Command {
	return NewDistanceCommand().CreateCobraCommand()
}

// NewMappingsCmd creates and returns the mappings cobra command
func NewMappingsCmd() *cobra.Command {
	d := NewDistanceCommand()
	d.mappings = true

	cmd := &cobra.Command{
		Use:   "mappings TREE1 TREE2",
		Short: "Enumerate every valid mapping between two trees",
		Long: `Enumerate every valid node mapping between two trees together with its
cost and operation counts, cheapest first in discovery order.

The number of mappings grows exponentially with tree size. Use
--max-solutions to cap the listing and --timeout to bound the search.

Examples:
  # List every mapping between two small trees
  treedit mappings "A(B,C)" "A(C)"

  # Keep the first 20 mappings as CSV
  treedit mappings left.json right.json --max-solutions 20 --format csv`,
		Args: cobra.ExactArgs(2),
		RunE: d.runDistance,
	}

	// Enumeration always backtracks
	d.flags.register(cmd.Flags())
	_ = cmd.Flags().MarkHidden(service.FlagAlgorithm)
	_ = cmd.Flags().MarkHidden(service.FlagWorkers)
	_ = cmd.Flags().MarkHidden(service.FlagMaxSteps)

	return cmd
}
