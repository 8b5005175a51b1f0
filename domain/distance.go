package domain

import (
	"context"
	"io"
	"time"

	"github.com/ludo-technologies/treedit/internal/constants"
)

// OutputFormat represents the supported output formats
type OutputFormat string

const (
	OutputFormatText OutputFormat = "text"
	OutputFormatJSON OutputFormat = "json"
	OutputFormatYAML OutputFormat = "yaml"
	OutputFormatCSV  OutputFormat = "csv"
	OutputFormatDOT  OutputFormat = "dot"
	OutputFormatSVG  OutputFormat = "svg"
)

// ParseOutputFormat validates a format name
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(s); f {
	case OutputFormatText, OutputFormatJSON, OutputFormatYAML, OutputFormatCSV, OutputFormatDOT, OutputFormatSVG:
		return f, nil
	case "":
		return OutputFormatText, nil
	default:
		return "", NewUnsupportedFormatError(s)
	}
}

// TreeSource names one input tree: a file path or an inline tree in bracket
// notation or JSON
type TreeSource struct {
	Path   string
	Inline string
}

// Name returns a short label for messages and reports
func (s TreeSource) Name() string {
	if s.Path != "" {
		return s.Path
	}
	if len(s.Inline) > 40 {
		return s.Inline[:37] + "..."
	}
	return s.Inline
}

// IsZero reports whether no tree was given
func (s TreeSource) IsZero() bool {
	return s.Path == "" && s.Inline == ""
}

// CostWeights holds per-operation costs
type CostWeights struct {
	Delete  int `json:"delete" yaml:"delete"`
	Insert  int `json:"insert" yaml:"insert"`
	Relabel int `json:"relabel" yaml:"relabel"`
}

// DistanceRequest represents a request to compare two trees
type DistanceRequest struct {
	// Input trees
	Source1 TreeSource
	Source2 TreeSource

	// Solver selection and bounds
	Algorithm    string
	Workers      int
	MaxSteps     int64
	MaxSolutions int
	Timeout      time.Duration
	Costs        CostWeights

	// LabelText includes identifier and literal text in Python node labels
	LabelText bool

	// Output configuration
	OutputFormat OutputFormat
	OutputWriter io.Writer
	OutputPath   string
	ShowMapping  bool

	// Configuration
	ConfigPath string
}

// Validate validates a distance request
func (req *DistanceRequest) Validate() error {
	if req.Source1.IsZero() || req.Source2.IsZero() {
		return NewValidationError("two trees are required")
	}

	if req.Workers < 0 {
		return NewValidationError("workers must be >= 0")
	}

	if req.MaxSteps < 0 {
		return NewValidationError("max_steps must be >= 0")
	}

	if req.MaxSolutions < 0 {
		return NewValidationError("max_solutions must be >= 0")
	}

	if req.Timeout < 0 {
		return NewValidationError("timeout must be >= 0")
	}

	if req.Costs.Delete < 0 || req.Costs.Insert < 0 || req.Costs.Relabel < 0 {
		return NewValidationError("costs must be >= 0")
	}

	if _, err := ParseOutputFormat(string(req.OutputFormat)); err != nil {
		return err
	}

	return nil
}

// HasValidOutputWriter checks if the request has a valid output writer
func (req *DistanceRequest) HasValidOutputWriter() bool {
	return req.OutputWriter != nil
}

// DefaultDistanceRequest returns a request with default solver settings
func DefaultDistanceRequest() *DistanceRequest {
	return &DistanceRequest{
		Algorithm:    constants.DefaultAlgorithm,
		Workers:      1,
		MaxSteps:     constants.DefaultMaxSteps,
		MaxSolutions: constants.DefaultMaxSolutions,
		Timeout:      constants.DefaultTimeout,
		Costs:        CostWeights{Delete: 1, Insert: 1, Relabel: 1},
		OutputFormat: OutputFormatText,
		ShowMapping:  true,
	}
}

// TreeSummary describes one input tree. Labels and Parents are indexed by
// node handle; the root's parent is -1.
type TreeSummary struct {
	Name     string   `json:"name" yaml:"name"`
	Nodes    int      `json:"nodes" yaml:"nodes"`
	Height   int      `json:"height" yaml:"height"`
	Notation string   `json:"notation" yaml:"notation"`
	Labels   []string `json:"labels" yaml:"labels"`
	Parents  []int    `json:"parents" yaml:"parents"`
}

// NodePair is one matched node pair
type NodePair struct {
	From      int    `json:"from" yaml:"from"`
	To        int    `json:"to" yaml:"to"`
	FromLabel string `json:"from_label" yaml:"from_label"`
	ToLabel   string `json:"to_label" yaml:"to_label"`
	Relabeled bool   `json:"relabeled" yaml:"relabeled"`
}

// Breakdown counts the edit operations of a result
type Breakdown struct {
	Deletions   int `json:"deletions" yaml:"deletions"`
	Insertions  int `json:"insertions" yaml:"insertions"`
	Relabelings int `json:"relabelings" yaml:"relabelings"`
	Cost        int `json:"cost" yaml:"cost"`
}

// SearchStats describes solver work
type SearchStats struct {
	Explored   int64 `json:"explored" yaml:"explored"`
	Pruned     int64 `json:"pruned" yaml:"pruned"`
	Solutions  int64 `json:"solutions" yaml:"solutions"`
	DurationMs int64 `json:"duration_ms" yaml:"duration_ms"`
}

// DistanceResponse represents the result of comparing two trees
type DistanceResponse struct {
	RunID     string      `json:"run_id" yaml:"run_id"`
	Algorithm string      `json:"algorithm" yaml:"algorithm"`
	Tree1     TreeSummary `json:"tree1" yaml:"tree1"`
	Tree2     TreeSummary `json:"tree2" yaml:"tree2"`

	Cost      int        `json:"cost" yaml:"cost"`
	Breakdown Breakdown  `json:"breakdown" yaml:"breakdown"`
	Pairs     []NodePair `json:"pairs" yaml:"pairs"`
	Deleted   []int      `json:"deleted" yaml:"deleted"`
	Inserted  []int      `json:"inserted" yaml:"inserted"`

	// Exact is false when the search stopped early and Cost is only the
	// best found so far
	Exact bool        `json:"exact" yaml:"exact"`
	Stats SearchStats `json:"stats" yaml:"stats"`

	Warnings    []string `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	GeneratedAt string   `json:"generated_at" yaml:"generated_at"`
	Version     string   `json:"version" yaml:"version"`
}

// MappingResult is one enumerated mapping
type MappingResult struct {
	Index     int        `json:"index" yaml:"index"`
	Cost      int        `json:"cost" yaml:"cost"`
	Breakdown Breakdown  `json:"breakdown" yaml:"breakdown"`
	Pairs     []NodePair `json:"pairs" yaml:"pairs"`
	Deleted   []int      `json:"deleted" yaml:"deleted"`
	Inserted  []int      `json:"inserted" yaml:"inserted"`
	Optimal   bool       `json:"optimal" yaml:"optimal"`
}

// MappingsResponse represents every valid mapping between two trees
type MappingsResponse struct {
	RunID    string          `json:"run_id" yaml:"run_id"`
	Tree1    TreeSummary     `json:"tree1" yaml:"tree1"`
	Tree2    TreeSummary     `json:"tree2" yaml:"tree2"`
	Mappings []MappingResult `json:"mappings" yaml:"mappings"`
	MinCost  int             `json:"min_cost" yaml:"min_cost"`
	// Truncated is set when enumeration stopped at MaxSolutions or a deadline
	Truncated bool        `json:"truncated" yaml:"truncated"`
	Stats     SearchStats `json:"stats" yaml:"stats"`

	Warnings    []string `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	GeneratedAt string   `json:"generated_at" yaml:"generated_at"`
	Version     string   `json:"version" yaml:"version"`
}

// DistanceService defines the core logic for comparing two trees
type DistanceService interface {
	// Distance computes the edit distance with the requested algorithm
	Distance(ctx context.Context, req DistanceRequest) (*DistanceResponse, error)

	// Mappings enumerates every valid mapping
	Mappings(ctx context.Context, req DistanceRequest) (*MappingsResponse, error)
}

// DistanceOutputFormatter defines the interface for formatting distance results
type DistanceOutputFormatter interface {
	// FormatDistance writes a distance response in the given format
	FormatDistance(response *DistanceResponse, format OutputFormat, writer io.Writer) error

	// FormatMappings writes an enumeration in the given format
	FormatMappings(response *MappingsResponse, format OutputFormat, writer io.Writer) error
}
