package service

import (
	"github.com/ludo-technologies/treedit/domain"
	"github.com/ludo-technologies/treedit/internal/config"
)

// Flag names shared by the CLI and the merge logic
const (
	FlagAlgorithm    = "algorithm"
	FlagWorkers      = "workers"
	FlagMaxSteps     = "max-steps"
	FlagMaxSolutions = "max-solutions"
	FlagTimeout      = "timeout"
	FlagDeleteCost   = "delete-cost"
	FlagInsertCost   = "insert-cost"
	FlagRelabelCost  = "relabel-cost"
	FlagLabelText    = "label-text"
	FlagFormat       = "format"
	FlagShowMapping  = "show-mapping"
	FlagRecursive    = "recursive"
	FlagInclude      = "include"
	FlagExclude      = "exclude"
	FlagConcurrency  = "concurrency"
)

// ConfigurationLoaderWithFlags wraps configuration loading with explicit flag tracking
type ConfigurationLoaderWithFlags struct {
	loader      *ConfigurationLoaderImpl
	flagTracker *config.FlagTracker
}

// NewConfigurationLoaderWithFlags creates a new configuration loader that tracks explicit flags
func NewConfigurationLoaderWithFlags(flagTracker *config.FlagTracker) *ConfigurationLoaderWithFlags {
	if flagTracker == nil {
		flagTracker = config.NewFlagTracker()
	}
	return &ConfigurationLoaderWithFlags{
		loader:      NewConfigurationLoader(),
		flagTracker: flagTracker,
	}
}

// LoadDistanceRequest loads configuration defaults for a distance request
func (c *ConfigurationLoaderWithFlags) LoadDistanceRequest(path, startDir string) (*domain.DistanceRequest, error) {
	return c.loader.LoadDistanceRequest(path, startDir)
}

// LoadBatchRequest loads configuration defaults for a batch request
func (c *ConfigurationLoaderWithFlags) LoadBatchRequest(path, startDir string) (*domain.BatchRequest, error) {
	return c.loader.LoadBatchRequest(path, startDir)
}

// MergeDistanceRequest merges CLI flags over configuration values. Inputs
// and output destinations always come from the command line; settings only
// when their flag was set explicitly.
func (c *ConfigurationLoaderWithFlags) MergeDistanceRequest(base, override *domain.DistanceRequest) *domain.DistanceRequest {
	if base == nil {
		return override
	}
	if override == nil {
		return base
	}

	merged := *base

	merged.Source1 = override.Source1
	merged.Source2 = override.Source2

	if override.OutputWriter != nil {
		merged.OutputWriter = override.OutputWriter
	}
	if override.OutputPath != "" {
		merged.OutputPath = override.OutputPath
	}
	if override.ConfigPath != "" {
		merged.ConfigPath = override.ConfigPath
	}

	c.mergeSettings(&merged, override)
	config.Override(c.flagTracker, &merged.OutputFormat, override.OutputFormat, FlagFormat)
	config.Override(c.flagTracker, &merged.ShowMapping, override.ShowMapping, FlagShowMapping)

	return &merged
}

// MergeBatchRequest merges CLI flags over configuration values for a batch
func (c *ConfigurationLoaderWithFlags) MergeBatchRequest(base, override *domain.BatchRequest) *domain.BatchRequest {
	if base == nil {
		return override
	}
	if override == nil {
		return base
	}

	merged := *base

	if len(override.Paths) > 0 {
		merged.Paths = override.Paths
	}
	if override.OutputWriter != nil {
		merged.OutputWriter = override.OutputWriter
	}
	if override.OutputPath != "" {
		merged.OutputPath = override.OutputPath
	}
	if override.ConfigPath != "" {
		merged.ConfigPath = override.ConfigPath
	}

	c.mergeSettings(&merged.Distance, &override.Distance)
	config.Override(c.flagTracker, &merged.OutputFormat, override.OutputFormat, FlagFormat)
	config.Override(c.flagTracker, &merged.Recursive, override.Recursive, FlagRecursive)
	config.Override(c.flagTracker, &merged.IncludePatterns, override.IncludePatterns, FlagInclude)
	config.Override(c.flagTracker, &merged.ExcludePatterns, override.ExcludePatterns, FlagExclude)
	config.Override(c.flagTracker, &merged.Concurrency, override.Concurrency, FlagConcurrency)

	return &merged
}

// CreateConfigTemplate writes a configuration template
func (c *ConfigurationLoaderWithFlags) CreateConfigTemplate(path string, force bool) error {
	return c.loader.CreateConfigTemplate(path, force)
}

func (c *ConfigurationLoaderWithFlags) mergeSettings(dst, src *domain.DistanceRequest) {
	config.Override(c.flagTracker, &dst.Algorithm, src.Algorithm, FlagAlgorithm)
	config.Override(c.flagTracker, &dst.Workers, src.Workers, FlagWorkers)
	config.Override(c.flagTracker, &dst.MaxSteps, src.MaxSteps, FlagMaxSteps)
	config.Override(c.flagTracker, &dst.MaxSolutions, src.MaxSolutions, FlagMaxSolutions)
	config.Override(c.flagTracker, &dst.Timeout, src.Timeout, FlagTimeout)
	config.Override(c.flagTracker, &dst.Costs.Delete, src.Costs.Delete, FlagDeleteCost)
	config.Override(c.flagTracker, &dst.Costs.Insert, src.Costs.Insert, FlagInsertCost)
	config.Override(c.flagTracker, &dst.Costs.Relabel, src.Costs.Relabel, FlagRelabelCost)
	config.Override(c.flagTracker, &dst.LabelText, src.LabelText, FlagLabelText)
}
