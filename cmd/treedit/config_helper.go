package main

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/ludo-technologies/treedit/domain"
	"github.com/ludo-technologies/treedit/internal/config"
	"github.com/ludo-technologies/treedit/internal/constants"
	"github.com/ludo-technologies/treedit/service"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// solverFlags holds the flags shared by every command that runs a solver
type solverFlags struct {
	algorithm    string
	workers      int
	maxSteps     int64
	maxSolutions int
	timeout      time.Duration
	deleteCost   int
	insertCost   int
	relabelCost  int
	labelText    bool

	format     string
	outputPath string
	configFile string
}

// newSolverFlags returns flag values initialised to the built-in defaults
func newSolverFlags() *solverFlags {
	defaults := domain.DefaultDistanceRequest()
	return &solverFlags{
		algorithm:    defaults.Algorithm,
		workers:      defaults.Workers,
		maxSteps:     defaults.MaxSteps,
		maxSolutions: defaults.MaxSolutions,
		timeout:      defaults.Timeout,
		deleteCost:   defaults.Costs.Delete,
		insertCost:   defaults.Costs.Insert,
		relabelCost:  defaults.Costs.Relabel,
	}
}

// register adds the solver and output flags to fs
func (f *solverFlags) register(fs *pflag.FlagSet) {
	fs.StringVarP(&f.algorithm, service.FlagAlgorithm, "a", f.algorithm,
		"Solver: bnb, backtracking, dp, dp-size")
	fs.IntVarP(&f.workers, service.FlagWorkers, "w", f.workers,
		"Parallel branch-and-bound workers (0 = one per CPU)")
	fs.Int64Var(&f.maxSteps, service.FlagMaxSteps, f.maxSteps,
		"Stop branch-and-bound after this many commitments (0 = unbounded)")
	fs.IntVar(&f.maxSolutions, service.FlagMaxSolutions, f.maxSolutions,
		"Maximum number of mappings to enumerate (0 = all)")
	fs.DurationVar(&f.timeout, service.FlagTimeout, f.timeout,
		"Maximum time for one comparison (e.g. 30s, 2m; 0 = none)")
	fs.IntVar(&f.deleteCost, service.FlagDeleteCost, f.deleteCost, "Cost of deleting a node")
	fs.IntVar(&f.insertCost, service.FlagInsertCost, f.insertCost, "Cost of inserting a node")
	fs.IntVar(&f.relabelCost, service.FlagRelabelCost, f.relabelCost, "Cost of relabeling a node")
	fs.BoolVar(&f.labelText, service.FlagLabelText, false,
		"Include identifier and literal text in Python node labels")

	fs.StringVarP(&f.format, service.FlagFormat, "f", "",
		"Output format: text, json, yaml, csv, dot, svg (default: from --output or config)")
	fs.StringVarP(&f.outputPath, "output", "o", "", "Write the report to a file instead of stdout")
	fs.StringVarP(&f.configFile, "config", "c", "", "Path to configuration file")

	// Tuning flags are usually set in .treedit.toml
	_ = fs.MarkHidden(service.FlagLabelText)
}

// distanceRequest builds the command-line side of a distance request
func (f *solverFlags) distanceRequest(cmd *cobra.Command, format domain.OutputFormat) domain.DistanceRequest {
	req := domain.DistanceRequest{
		Algorithm:    f.algorithm,
		Workers:      f.workers,
		MaxSteps:     f.maxSteps,
		MaxSolutions: f.maxSolutions,
		Timeout:      f.timeout,
		Costs: domain.CostWeights{
			Delete:  f.deleteCost,
			Insert:  f.insertCost,
			Relabel: f.relabelCost,
		},
		LabelText:    f.labelText,
		OutputFormat: format,
		OutputPath:   f.outputPath,
		ConfigPath:   f.configFile,
	}
	if f.outputPath == "" {
		req.OutputWriter = cmd.OutOrStdout()
	}
	return req
}

// resolveFormat picks the output format from --format, the output file
// extension and finally the configured default
func (f *solverFlags) resolveFormat(fallback domain.OutputFormat) (domain.OutputFormat, error) {
	return service.NewOutputFormatResolver().Determine(f.format, f.outputPath, fallback)
}

// newFlagTracker records which flags were explicitly set on cmd
func newFlagTracker(cmd *cobra.Command) *config.FlagTracker {
	tracker := config.NewFlagTrackerFromFlagSet(cmd.Flags())
	// --output implies its format when --format is absent
	if cmd.Flags().Changed("output") {
		tracker.Set(service.FlagFormat)
	}
	return tracker
}

// treeSourceFromArg interprets a command-line tree argument. Arguments
// with a tree file extension are paths; anything else is an inline tree in
// bracket notation or JSON.
func treeSourceFromArg(arg string) domain.TreeSource {
	ext := strings.ToLower(filepath.Ext(arg))
	for _, supported := range constants.SupportedTreeExtensions {
		if ext == supported {
			return domain.TreeSource{Path: arg}
		}
	}
	return domain.TreeSource{Inline: arg}
}

// configStartDir returns the directory the config search starts from
func configStartDir(path string) string {
	if path == "" {
		return "."
	}
	return filepath.Dir(path)
}
