package constants

import "time"

// Solver defaults shared by the CLI, the HTTP API and the MCP server
const (
	// DefaultAlgorithm is the solver used when none is configured
	DefaultAlgorithm = "bnb"

	// DefaultMaxSteps bounds branch-and-bound commitments. Zero disables the bound.
	DefaultMaxSteps int64 = 0

	// DefaultTimeout bounds a single distance computation
	DefaultTimeout = 60 * time.Second

	// DefaultMaxSolutions caps enumeration output
	DefaultMaxSolutions = 1000

	// DefaultServerAddr is where `treedit serve` listens
	DefaultServerAddr = ":8080"

	// ConfigFileName is the project config discovered in parent directories
	ConfigFileName = ".treedit.toml"
)

// SupportedTreeExtensions lists the file types the loader understands
var SupportedTreeExtensions = []string{".json", ".yaml", ".yml", ".toml", ".py", ".tree"}
