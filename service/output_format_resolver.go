package service

import (
	"path/filepath"
	"strings"

	"github.com/ludo-technologies/treedit/domain"
)

// OutputFormatResolver resolves the output format from the --format flag and
// the output file extension.
type OutputFormatResolver struct{}

func NewOutputFormatResolver() *OutputFormatResolver { return &OutputFormatResolver{} }

// Determine returns the selected format. An explicit format wins; otherwise
// the extension of outputPath decides, then fallback.
func (r *OutputFormatResolver) Determine(format, outputPath string, fallback domain.OutputFormat) (domain.OutputFormat, error) {
	if format != "" {
		return domain.ParseOutputFormat(strings.ToLower(format))
	}

	switch strings.ToLower(filepath.Ext(outputPath)) {
	case ".json":
		return domain.OutputFormatJSON, nil
	case ".yaml", ".yml":
		return domain.OutputFormatYAML, nil
	case ".csv":
		return domain.OutputFormatCSV, nil
	case ".dot", ".gv":
		return domain.OutputFormatDOT, nil
	case ".svg":
		return domain.OutputFormatSVG, nil
	case ".txt":
		return domain.OutputFormatText, nil
	}

	if fallback == "" {
		return domain.OutputFormatText, nil
	}
	return fallback, nil
}
