package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ludo-technologies/treedit/internal/constants"
	"github.com/pelletier/go-toml/v2"
)

// TomlConfig represents the structure of .treedit.toml. Every field is a
// pointer so unset keys keep their defaults.
type TomlConfig struct {
	Solver TomlSolverConfig `toml:"solver"`
	Costs  TomlCostConfig   `toml:"costs"`
	Output TomlOutputConfig `toml:"output"`
	Input  TomlInputConfig  `toml:"input"`
	Server TomlServerConfig `toml:"server"`
}

type TomlSolverConfig struct {
	Algorithm      *string `toml:"algorithm"`
	Workers        *int    `toml:"workers"`
	MaxSteps       *int64  `toml:"max_steps"`
	TimeoutSeconds *int    `toml:"timeout_seconds"`
	MaxSolutions   *int    `toml:"max_solutions"`
}

type TomlCostConfig struct {
	Delete  *int `toml:"delete"`
	Insert  *int `toml:"insert"`
	Relabel *int `toml:"relabel"`
}

type TomlOutputConfig struct {
	Format      *string `toml:"format"`
	ShowMapping *bool   `toml:"show_mapping"`
}

type TomlInputConfig struct {
	IncludePatterns []string `toml:"include_patterns"`
	ExcludePatterns []string `toml:"exclude_patterns"`
	Recursive       *bool    `toml:"recursive"`
	LabelText       *bool    `toml:"label_text"`
}

type TomlServerConfig struct {
	Addr *string `toml:"addr"`
}

// TomlConfigLoader handles .treedit.toml loading
type TomlConfigLoader struct{}

// NewTomlConfigLoader creates a new TOML configuration loader
func NewTomlConfigLoader() *TomlConfigLoader {
	return &TomlConfigLoader{}
}

// LoadConfig loads .treedit.toml found from startDir upwards, or defaults
func (l *TomlConfigLoader) LoadConfig(startDir string) (*Config, error) {
	path, err := FindTomlConfig(startDir)
	if err != nil {
		return DefaultConfig(), nil
	}
	return l.LoadFile(path)
}

// LoadFile reads one TOML file and merges it over the defaults
func (l *TomlConfigLoader) LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var file TomlConfig
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	config := DefaultConfig()
	l.merge(config, &file)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration in %s: %w", path, err)
	}
	return config, nil
}

// merge applies every key that is present in the file
func (l *TomlConfigLoader) merge(dst *Config, src *TomlConfig) {
	setIf(&dst.Solver.Algorithm, src.Solver.Algorithm)
	setIf(&dst.Solver.Workers, src.Solver.Workers)
	setIf(&dst.Solver.MaxSteps, src.Solver.MaxSteps)
	setIf(&dst.Solver.TimeoutSeconds, src.Solver.TimeoutSeconds)
	setIf(&dst.Solver.MaxSolutions, src.Solver.MaxSolutions)

	setIf(&dst.Costs.Delete, src.Costs.Delete)
	setIf(&dst.Costs.Insert, src.Costs.Insert)
	setIf(&dst.Costs.Relabel, src.Costs.Relabel)

	setIf(&dst.Output.Format, src.Output.Format)
	setIf(&dst.Output.ShowMapping, src.Output.ShowMapping)

	if len(src.Input.IncludePatterns) > 0 {
		dst.Input.IncludePatterns = src.Input.IncludePatterns
	}
	if src.Input.ExcludePatterns != nil {
		dst.Input.ExcludePatterns = src.Input.ExcludePatterns
	}
	setIf(&dst.Input.Recursive, src.Input.Recursive)
	setIf(&dst.Input.LabelText, src.Input.LabelText)

	setIf(&dst.Server.Addr, src.Server.Addr)
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

// FindTomlConfig walks up the directory tree to find .treedit.toml
func FindTomlConfig(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}
	for {
		configPath := filepath.Join(dir, constants.ConfigFileName)
		if _, err := os.Stat(configPath); err == nil {
			return configPath, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", os.ErrNotExist
}

// DefaultTomlTemplate is written by `treedit init`
const DefaultTomlTemplate = `# treedit configuration
# Unset keys fall back to the built-in defaults.

[solver]
# bnb (branch and bound), backtracking, dp (leaf-cost forest DP), dp-size
algorithm = "bnb"
# > 1 explores the root candidates of branch and bound in parallel
workers = 1
# upper bound on branch-and-bound commitments, 0 = unbounded
max_steps = 0
timeout_seconds = 60
# cap on mappings listed by backtracking, 0 = all
max_solutions = 1000

[costs]
delete = 1
insert = 1
relabel = 1

[output]
# text, json, yaml, csv, dot, svg
format = "text"
show_mapping = true

[input]
include_patterns = ["**/*.json", "**/*.yaml", "**/*.yml", "**/*.toml", "**/*.tree"]
exclude_patterns = ["**/node_modules/**", "**/.git/**"]
recursive = true
# include identifier and literal text in Python node labels
label_text = false

[server]
addr = ":8080"
`

// WriteTemplate writes DefaultTomlTemplate to path unless it already exists
func WriteTemplate(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", filepath.Dir(path), err)
	}
	return os.WriteFile(path, []byte(DefaultTomlTemplate), 0o644)
}
