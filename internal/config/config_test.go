package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ludo-technologies/treedit/internal/ted"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, "bnb", config.Solver.Algorithm)
	assert.Equal(t, 1, config.Solver.Workers)
	assert.Equal(t, 60*time.Second, config.Solver.Timeout())
	assert.Equal(t, CostConfig{Delete: 1, Insert: 1, Relabel: 1}, config.Costs)
	assert.Equal(t, "text", config.Output.Format)
	assert.True(t, config.Input.Recursive)
	assert.NoError(t, config.Validate())
}

func TestConfigValidation(t *testing.T) {
	testCases := []struct {
		name   string
		modify func(*Config)
	}{
		{"unknown algorithm", func(c *Config) { c.Solver.Algorithm = "apted" }},
		{"negative workers", func(c *Config) { c.Solver.Workers = -1 }},
		{"negative max steps", func(c *Config) { c.Solver.MaxSteps = -5 }},
		{"negative timeout", func(c *Config) { c.Solver.TimeoutSeconds = -1 }},
		{"negative max solutions", func(c *Config) { c.Solver.MaxSolutions = -1 }},
		{"negative cost", func(c *Config) { c.Costs.Relabel = -2 }},
		{"bad format", func(c *Config) { c.Output.Format = "html" }},
		{"no include patterns", func(c *Config) { c.Input.IncludePatterns = nil }},
		{"empty addr", func(c *Config) { c.Server.Addr = "" }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			config := DefaultConfig()
			tc.modify(config)
			assert.Error(t, config.Validate())
		})
	}
}

func TestCostConfig_CostModel(t *testing.T) {
	unit := CostConfig{Delete: 1, Insert: 1, Relabel: 1}
	cm, err := unit.CostModel()
	require.NoError(t, err)
	assert.IsType(t, ted.UnitCostModel{}, cm)

	weighted := CostConfig{Delete: 2, Insert: 1, Relabel: 3}
	cm, err = weighted.CostModel()
	require.NoError(t, err)
	assert.Equal(t, 2, cm.Delete("x"))
	assert.Equal(t, 3, cm.Relabel("a", "b"))
}

func TestLoadConfig_YAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "treedit.yaml")
	content := `solver:
  algorithm: dp
  workers: 4
costs:
  relabel: 3
output:
  format: json
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	config, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "dp", config.Solver.Algorithm)
	assert.Equal(t, 4, config.Solver.Workers)
	assert.Equal(t, 3, config.Costs.Relabel)
	assert.Equal(t, 1, config.Costs.Delete, "unset keys keep defaults")
	assert.Equal(t, "json", config.Output.Format)
}

func TestLoadConfig_Invalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "treedit.yaml")
	require.NoError(t, os.WriteFile(path, []byte("output:\n  format: pdf\n"), 0o644))

	_, err := LoadConfig(path)
	assert.Error(t, err)

	_, err = LoadConfig(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.yaml")

	config := DefaultConfig()
	config.Solver.Algorithm = "backtracking"
	config.Costs.Insert = 5
	require.NoError(t, SaveConfig(config, path))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "backtracking", loaded.Solver.Algorithm)
	assert.Equal(t, 5, loaded.Costs.Insert)
}

func TestTomlConfigLoader_WalksParents(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	content := `[solver]
algorithm = "dp-size"
workers = 0

[output]
show_mapping = false
`
	require.NoError(t, os.WriteFile(filepath.Join(root, ".treedit.toml"), []byte(content), 0o644))

	config, err := NewTomlConfigLoader().LoadConfig(nested)
	require.NoError(t, err)
	assert.Equal(t, "dp-size", config.Solver.Algorithm)
	assert.Equal(t, 0, config.Solver.Workers, "explicit zero overrides the default")
	assert.False(t, config.Output.ShowMapping)
	assert.Equal(t, "text", config.Output.Format)
	assert.Equal(t, 1000, config.Solver.MaxSolutions)
}

func TestTomlConfigLoader_NoFile(t *testing.T) {
	config, err := NewTomlConfigLoader().LoadConfig(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), config)
}

func TestTomlConfigLoader_Invalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".treedit.toml")

	require.NoError(t, os.WriteFile(path, []byte("[costs]\ndelete = -1\n"), 0o644))
	_, err := NewTomlConfigLoader().LoadFile(path)
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(path, []byte("[solver\n"), 0o644))
	_, err = NewTomlConfigLoader().LoadFile(path)
	assert.Error(t, err)
}

func TestLoad_Precedence(t *testing.T) {
	dir := t.TempDir()
	tomlPath := filepath.Join(dir, ".treedit.toml")
	require.NoError(t, os.WriteFile(tomlPath, []byte("[solver]\nalgorithm = \"dp\"\n"), 0o644))

	config, err := Load("", dir)
	require.NoError(t, err)
	assert.Equal(t, "dp", config.Solver.Algorithm)

	yamlPath := filepath.Join(dir, "explicit.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte("solver:\n  algorithm: backtracking\n"), 0o644))

	config, err = Load(yamlPath, dir)
	require.NoError(t, err)
	assert.Equal(t, "backtracking", config.Solver.Algorithm)

	config, err = Load(tomlPath, "")
	require.NoError(t, err)
	assert.Equal(t, "dp", config.Solver.Algorithm)
}

func TestDefaultTomlTemplate_Parses(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".treedit.toml")
	require.NoError(t, WriteTemplate(path, false))
	assert.Error(t, WriteTemplate(path, false))
	require.NoError(t, WriteTemplate(path, true))

	config, err := NewTomlConfigLoader().LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), config)
}

func TestFlagTracker(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	algorithm := fs.String("algorithm", "bnb", "")
	workers := fs.Int("workers", 1, "")
	require.NoError(t, fs.Parse([]string{"--algorithm", "dp"}))

	ft := NewFlagTrackerFromFlagSet(fs)
	assert.True(t, ft.WasSet("algorithm"))
	assert.False(t, ft.WasSet("workers"))
	assert.Equal(t, 1, ft.Count())

	config := DefaultConfig()
	config.Solver.Workers = 8
	Override(ft, &config.Solver.Algorithm, *algorithm, "algorithm")
	Override(ft, &config.Solver.Workers, *workers, "workers")
	assert.Equal(t, "dp", config.Solver.Algorithm)
	assert.Equal(t, 8, config.Solver.Workers, "unset flag keeps the config value")

	ft.Set("workers")
	assert.True(t, ft.WasSet("workers"))
}
