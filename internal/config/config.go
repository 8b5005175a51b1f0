package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ludo-technologies/treedit/internal/constants"
	"github.com/ludo-technologies/treedit/internal/ted"
	"github.com/spf13/viper"
)

// Config represents the main configuration structure
type Config struct {
	// Solver selects and bounds the distance algorithm
	Solver SolverConfig `mapstructure:"solver" yaml:"solver"`

	// Costs holds per-operation weights
	Costs CostConfig `mapstructure:"costs" yaml:"costs"`

	// Output holds output formatting configuration
	Output OutputConfig `mapstructure:"output" yaml:"output"`

	// Input controls how tree files are discovered and parsed
	Input InputConfig `mapstructure:"input" yaml:"input"`

	// Server holds the HTTP API settings
	Server ServerConfig `mapstructure:"server" yaml:"server"`
}

// SolverConfig holds solver settings
type SolverConfig struct {
	Algorithm      string `mapstructure:"algorithm" yaml:"algorithm"`
	Workers        int    `mapstructure:"workers" yaml:"workers"`
	MaxSteps       int64  `mapstructure:"max_steps" yaml:"max_steps"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
	MaxSolutions   int    `mapstructure:"max_solutions" yaml:"max_solutions"`
}

// CostConfig holds edit operation weights
type CostConfig struct {
	Delete  int `mapstructure:"delete" yaml:"delete"`
	Insert  int `mapstructure:"insert" yaml:"insert"`
	Relabel int `mapstructure:"relabel" yaml:"relabel"`
}

// OutputConfig holds output settings
type OutputConfig struct {
	Format      string `mapstructure:"format" yaml:"format"`
	ShowMapping bool   `mapstructure:"show_mapping" yaml:"show_mapping"`
}

// InputConfig holds input discovery settings
type InputConfig struct {
	IncludePatterns []string `mapstructure:"include_patterns" yaml:"include_patterns"`
	ExcludePatterns []string `mapstructure:"exclude_patterns" yaml:"exclude_patterns"`
	Recursive       bool     `mapstructure:"recursive" yaml:"recursive"`
	// LabelText appends identifier and literal text to Python node labels
	LabelText bool `mapstructure:"label_text" yaml:"label_text"`
}

// ServerConfig holds HTTP API settings
type ServerConfig struct {
	Addr string `mapstructure:"addr" yaml:"addr"`
}

// ValidOutputFormats lists the formats accepted in output.format
var ValidOutputFormats = []string{"text", "json", "yaml", "csv", "dot", "svg"}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Solver: SolverConfig{
			Algorithm:      constants.DefaultAlgorithm,
			Workers:        1,
			MaxSteps:       constants.DefaultMaxSteps,
			TimeoutSeconds: int(constants.DefaultTimeout / time.Second),
			MaxSolutions:   constants.DefaultMaxSolutions,
		},
		Costs: CostConfig{
			Delete:  1,
			Insert:  1,
			Relabel: 1,
		},
		Output: OutputConfig{
			Format:      "text",
			ShowMapping: true,
		},
		Input: InputConfig{
			IncludePatterns: []string{"**/*.json", "**/*.yaml", "**/*.yml", "**/*.toml", "**/*.tree"},
			ExcludePatterns: []string{"**/node_modules/**", "**/.git/**"},
			Recursive:       true,
		},
		Server: ServerConfig{
			Addr: constants.DefaultServerAddr,
		},
	}
}

// LoadConfig loads configuration from a YAML or JSON file through viper.
// An empty path searches the working and home directories.
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()

	if configPath == "" {
		configPath = findDefaultConfig()
	}
	if configPath == "" {
		return config, nil
	}

	v := viper.New()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// Load resolves the configuration for a command: an explicit path wins,
// then .treedit.toml found from startDir upwards, then viper-discovered
// YAML/JSON files, then defaults.
func Load(configPath, startDir string) (*Config, error) {
	if configPath != "" {
		if strings.EqualFold(filepath.Ext(configPath), ".toml") {
			return NewTomlConfigLoader().LoadFile(configPath)
		}
		return LoadConfig(configPath)
	}

	if startDir == "" {
		startDir = "."
	}
	if path, err := FindTomlConfig(startDir); err == nil {
		return NewTomlConfigLoader().LoadFile(path)
	}
	return LoadConfig("")
}

func findDefaultConfig() string {
	candidates := []string{
		"treedit.yaml",
		"treedit.yml",
		".treedit.yaml",
		".treedit.yml",
		"treedit.json",
		".treedit.json",
	}

	// Check current directory first
	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	// Check home directory
	if home, err := os.UserHomeDir(); err == nil {
		for _, candidate := range candidates {
			path := filepath.Join(home, candidate)
			if _, err := os.Stat(path); err == nil {
				return path
			}
		}
	}

	return ""
}

// Validate validates the configuration values
func (c *Config) Validate() error {
	if _, err := ted.ParseAlgorithm(c.Solver.Algorithm); err != nil {
		return fmt.Errorf("solver.algorithm: %w", err)
	}

	if c.Solver.Workers < 0 {
		return fmt.Errorf("solver.workers must be >= 0, got %d", c.Solver.Workers)
	}

	if c.Solver.MaxSteps < 0 {
		return fmt.Errorf("solver.max_steps must be >= 0, got %d", c.Solver.MaxSteps)
	}

	if c.Solver.TimeoutSeconds < 0 {
		return fmt.Errorf("solver.timeout_seconds must be >= 0, got %d", c.Solver.TimeoutSeconds)
	}

	if c.Solver.MaxSolutions < 0 {
		return fmt.Errorf("solver.max_solutions must be >= 0, got %d", c.Solver.MaxSolutions)
	}

	if c.Costs.Delete < 0 || c.Costs.Insert < 0 || c.Costs.Relabel < 0 {
		return fmt.Errorf("costs must be >= 0, got delete=%d insert=%d relabel=%d",
			c.Costs.Delete, c.Costs.Insert, c.Costs.Relabel)
	}

	valid := false
	for _, f := range ValidOutputFormats {
		if c.Output.Format == f {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("invalid output.format '%s', must be one of: %s",
			c.Output.Format, strings.Join(ValidOutputFormats, ", "))
	}

	if len(c.Input.IncludePatterns) == 0 {
		return fmt.Errorf("input.include_patterns cannot be empty")
	}

	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr cannot be empty")
	}

	return nil
}

// Timeout returns the solver timeout, zero meaning none
func (c *SolverConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// CostModel builds the cost model for these weights. Unit weights give the
// plain unit cost model.
func (c *CostConfig) CostModel() (ted.CostModel, error) {
	if c.Delete == 1 && c.Insert == 1 && c.Relabel == 1 {
		return ted.NewUnitCostModel(), nil
	}
	return ted.NewWeightedCostModel(c.Delete, c.Insert, c.Relabel)
}

// SaveConfig writes the configuration as YAML
func SaveConfig(config *Config, path string) error {
	v := viper.New()
	v.SetConfigType("yaml")

	v.Set("solver", config.Solver)
	v.Set("costs", config.Costs)
	v.Set("output", config.Output)
	v.Set("input", config.Input)
	v.Set("server", config.Server)

	return v.WriteConfigAs(path)
}
