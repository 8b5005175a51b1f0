package service

import (
	"os"

	"github.com/ludo-technologies/treedit/domain"
	"github.com/ludo-technologies/treedit/internal/config"
)

// ConfigurationLoaderImpl turns configuration files into request defaults
type ConfigurationLoaderImpl struct{}

// NewConfigurationLoader creates a new configuration loader service
func NewConfigurationLoader() *ConfigurationLoaderImpl {
	return &ConfigurationLoaderImpl{}
}

// LoadConfig loads the configuration for a command. An empty path searches
// from startDir for .treedit.toml, then for YAML/JSON config files.
func (c *ConfigurationLoaderImpl) LoadConfig(path, startDir string) (*config.Config, error) {
	cfg, err := config.Load(path, startDir)
	if err != nil {
		return nil, domain.NewConfigError("failed to load configuration file", err)
	}
	return cfg, nil
}

// LoadDistanceRequest loads the configuration and converts it into distance
// request defaults. Missing config files fall back to built-in defaults.
func (c *ConfigurationLoaderImpl) LoadDistanceRequest(path, startDir string) (*domain.DistanceRequest, error) {
	cfg, err := c.LoadConfig(path, startDir)
	if err != nil {
		return nil, err
	}
	req := c.convertToDistanceRequest(cfg)
	req.ConfigPath = path
	return req, nil
}

// LoadBatchRequest loads the configuration and converts it into batch
// request defaults
func (c *ConfigurationLoaderImpl) LoadBatchRequest(path, startDir string) (*domain.BatchRequest, error) {
	cfg, err := c.LoadConfig(path, startDir)
	if err != nil {
		return nil, err
	}
	req := c.convertToBatchRequest(cfg)
	req.ConfigPath = path
	return req, nil
}

// DistanceDefaults converts an already loaded configuration into distance
// request defaults
func (c *ConfigurationLoaderImpl) DistanceDefaults(cfg *config.Config) *domain.DistanceRequest {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return c.convertToDistanceRequest(cfg)
}

// CreateConfigTemplate writes a commented .treedit.toml template
func (c *ConfigurationLoaderImpl) CreateConfigTemplate(path string, force bool) error {
	if err := config.WriteTemplate(path, force); err != nil {
		return domain.NewConfigError("failed to write configuration template", err)
	}
	return nil
}

// convertToDistanceRequest converts internal config to a domain request
func (c *ConfigurationLoaderImpl) convertToDistanceRequest(cfg *config.Config) *domain.DistanceRequest {
	format, err := domain.ParseOutputFormat(cfg.Output.Format)
	if err != nil {
		format = domain.OutputFormatText
	}

	return &domain.DistanceRequest{
		Algorithm:    cfg.Solver.Algorithm,
		Workers:      cfg.Solver.Workers,
		MaxSteps:     cfg.Solver.MaxSteps,
		MaxSolutions: cfg.Solver.MaxSolutions,
		Timeout:      cfg.Solver.Timeout(),
		Costs: domain.CostWeights{
			Delete:  cfg.Costs.Delete,
			Insert:  cfg.Costs.Insert,
			Relabel: cfg.Costs.Relabel,
		},
		LabelText:    cfg.Input.LabelText,
		OutputFormat: format,
		OutputWriter: os.Stdout,
		ShowMapping:  cfg.Output.ShowMapping,
	}
}

// convertToBatchRequest converts internal config to a batch request
func (c *ConfigurationLoaderImpl) convertToBatchRequest(cfg *config.Config) *domain.BatchRequest {
	distance := c.convertToDistanceRequest(cfg)

	format := distance.OutputFormat
	if format == domain.OutputFormatDOT || format == domain.OutputFormatSVG {
		format = domain.OutputFormatText
	}

	return &domain.BatchRequest{
		Recursive:       cfg.Input.Recursive,
		IncludePatterns: cfg.Input.IncludePatterns,
		ExcludePatterns: cfg.Input.ExcludePatterns,
		Distance:        *distance,
		OutputFormat:    format,
		OutputWriter:    os.Stdout,
	}
}
