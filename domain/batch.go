package domain

import (
	"context"
	"io"
)

// BatchRequest represents a request to compare every pair of tree files
type BatchRequest struct {
	// Input files or directories
	Paths           []string
	Recursive       bool
	IncludePatterns []string
	ExcludePatterns []string

	// Distance settings shared by every pair. Source1, Source2 and the
	// output fields of Distance are ignored.
	Distance DistanceRequest

	// Concurrency is the number of pairs solved at once (0 = one per CPU)
	Concurrency int

	// Output configuration
	OutputFormat OutputFormat
	OutputWriter io.Writer
	OutputPath   string

	// Configuration
	ConfigPath string
}

// Validate validates a batch request
func (req *BatchRequest) Validate() error {
	if len(req.Paths) == 0 {
		return NewValidationError("paths cannot be empty")
	}

	if req.Concurrency < 0 {
		return NewValidationError("concurrency must be >= 0")
	}

	switch req.OutputFormat {
	case OutputFormatText, OutputFormatJSON, OutputFormatYAML, OutputFormatCSV, "":
	default:
		return NewUnsupportedFormatError(string(req.OutputFormat))
	}

	return nil
}

// BatchPair is the result for one unordered pair of files
type BatchPair struct {
	I         int       `json:"i" yaml:"i"`
	J         int       `json:"j" yaml:"j"`
	Cost      int       `json:"cost" yaml:"cost"`
	Breakdown Breakdown `json:"breakdown" yaml:"breakdown"`
	Exact     bool      `json:"exact" yaml:"exact"`
	Error     string    `json:"error,omitempty" yaml:"error,omitempty"`
}

// BatchResponse holds the pairwise distance matrix. Matrix[i][j] is -1
// when the pair failed.
type BatchResponse struct {
	RunID     string      `json:"run_id" yaml:"run_id"`
	Algorithm string      `json:"algorithm" yaml:"algorithm"`
	Files     []string    `json:"files" yaml:"files"`
	Matrix    [][]int     `json:"matrix" yaml:"matrix"`
	Pairs     []BatchPair `json:"pairs" yaml:"pairs"`

	Errors      []string `json:"errors,omitempty" yaml:"errors,omitempty"`
	GeneratedAt string   `json:"generated_at" yaml:"generated_at"`
	Version     string   `json:"version" yaml:"version"`
}

// BatchService compares every pair of a set of tree files
type BatchService interface {
	Compare(ctx context.Context, files []string, req BatchRequest) (*BatchResponse, error)
}

// BatchOutputFormatter formats batch results
type BatchOutputFormatter interface {
	FormatBatch(response *BatchResponse, format OutputFormat, writer io.Writer) error
}

// FileReader defines the interface for collecting tree files
type FileReader interface {
	// CollectTreeFiles finds all supported tree files in the given paths
	CollectTreeFiles(paths []string, recursive bool, includePatterns, excludePatterns []string) ([]string, error)

	// IsValidTreeFile checks if a file has a supported extension
	IsValidTreeFile(path string) bool

	// FileExists checks if a file exists and returns an error if not
	FileExists(path string) (bool, error)
}
