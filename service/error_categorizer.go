package service

import (
	"context"
	"errors"
	"strings"

	"github.com/ludo-technologies/treedit/domain"
	"github.com/ludo-technologies/treedit/internal/ted"
)

// ErrorCategorizerImpl implements the ErrorCategorizer interface
type ErrorCategorizerImpl struct {
	patterns []categoryPatterns
}

type categoryPatterns struct {
	category domain.ErrorCategory
	patterns []string
}

// NewErrorCategorizer creates a new error categorizer
func NewErrorCategorizer() domain.ErrorCategorizer {
	return &ErrorCategorizerImpl{
		patterns: initializeErrorPatterns(),
	}
}

// initializeErrorPatterns lists message patterns in match order
func initializeErrorPatterns() []categoryPatterns {
	return []categoryPatterns{
		{domain.ErrorCategoryTimeout, []string{
			"timeout",
			"deadline",
			"context canceled",
			"budget exhausted",
		}},
		{domain.ErrorCategoryStructure, []string{
			"malformed tree",
			"has no root",
			"already has a root",
			"unknown parent",
			"form a cycle",
		}},
		{domain.ErrorCategoryConfig, []string{
			"config",
			"configuration",
			"toml",
		}},
		{domain.ErrorCategoryInput, []string{
			"invalid input",
			"no files found",
			"no tree files",
			"file not found",
			"cannot access",
			"permission denied",
			"unsupported tree file",
		}},
		{domain.ErrorCategoryOutput, []string{
			"write",
			"output",
			"cannot create",
			"render",
		}},
		{domain.ErrorCategoryProcessing, []string{
			"parse",
			"syntax",
			"decode",
			"solver",
		}},
	}
}

// codeCategories maps domain error codes to categories
var codeCategories = map[string]domain.ErrorCategory{
	domain.ErrCodeInvalidInput:      domain.ErrorCategoryInput,
	domain.ErrCodeFileNotFound:      domain.ErrorCategoryInput,
	domain.ErrCodeParseError:        domain.ErrorCategoryProcessing,
	domain.ErrCodeAnalysisError:     domain.ErrorCategoryProcessing,
	domain.ErrCodeConfigError:       domain.ErrorCategoryConfig,
	domain.ErrCodeOutputError:       domain.ErrorCategoryOutput,
	domain.ErrCodeUnsupportedFormat: domain.ErrorCategoryOutput,
	domain.ErrCodeStructure:         domain.ErrorCategoryStructure,
	domain.ErrCodeTimeout:           domain.ErrorCategoryTimeout,
}

// Categorize determines the category of an error. Typed errors win over
// message patterns.
func (ec *ErrorCategorizerImpl) Categorize(err error) *domain.CategorizedError {
	if err == nil {
		return nil
	}

	category, ok := ec.typedCategory(err)
	if !ok {
		category = ec.patternCategory(strings.ToLower(err.Error()))
	}

	message := ec.getCategoryMessage(category)
	if category == domain.ErrorCategoryUnknown {
		message = err.Error()
	}
	return &domain.CategorizedError{
		Category: category,
		Message:  message,
		Original: err,
	}
}

func (ec *ErrorCategorizerImpl) typedCategory(err error) (domain.ErrorCategory, bool) {
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, ted.ErrBudgetExhausted):
		return domain.ErrorCategoryTimeout, true
	case ted.IsStructureError(err):
		return domain.ErrorCategoryStructure, true
	}
	if category, ok := codeCategories[domain.ErrorCode(err)]; ok {
		return category, true
	}
	return "", false
}

func (ec *ErrorCategorizerImpl) patternCategory(errMsg string) domain.ErrorCategory {
	for _, cp := range ec.patterns {
		if containsAnyPattern(errMsg, cp.patterns) {
			return cp.category
		}
	}
	return domain.ErrorCategoryUnknown
}

// GetRecoverySuggestions returns recovery suggestions for an error category
func (ec *ErrorCategorizerImpl) GetRecoverySuggestions(category domain.ErrorCategory) []string {
	suggestions := map[domain.ErrorCategory][]string{
		domain.ErrorCategoryInput: {
			"Check that the tree files exist and have a supported extension",
			"Supported: .json, .yaml, .yml, .toml, .tree and .py",
			"Inline trees use bracket notation, e.g. 'A(B,C)'",
		},
		domain.ErrorCategoryStructure: {
			"Every tree needs exactly one root (parent -1 or no parent)",
			"Parents must refer to existing nodes and must not form cycles",
		},
		domain.ErrorCategoryConfig: {
			"Verify configuration file format and values",
			"Try: treedit init to generate a valid config file",
			"Check for syntax errors in .treedit.toml",
		},
		domain.ErrorCategoryTimeout: {
			"Increase --timeout or --max-steps",
			"Try --algorithm dp for a polynomial-time distance",
			"Use more --workers to search root branches in parallel",
		},
		domain.ErrorCategoryOutput: {
			"Check write permissions and output format validity",
			"Ensure output directory exists and is writable",
		},
		domain.ErrorCategoryProcessing: {
			"Python sources must parse without syntax errors",
			"Run with --verbose for detailed solver information",
		},
		domain.ErrorCategoryUnknown: {
			"Run with --verbose for detailed error information",
			"Report the issue if it persists",
		},
	}

	if sug, ok := suggestions[category]; ok {
		return sug
	}
	return []string{"Check the error message for more details"}
}

// getCategoryMessage returns a user-friendly message for an error category
func (ec *ErrorCategorizerImpl) getCategoryMessage(category domain.ErrorCategory) string {
	messages := map[domain.ErrorCategory]string{
		domain.ErrorCategoryInput:      "Failed to read input trees",
		domain.ErrorCategoryStructure:  "Input tree is malformed",
		domain.ErrorCategoryConfig:     "Configuration file or settings error",
		domain.ErrorCategoryTimeout:    "Distance computation stopped early",
		domain.ErrorCategoryOutput:     "Failed to generate or write output",
		domain.ErrorCategoryProcessing: "Error while computing the distance",
	}

	if msg, ok := messages[category]; ok {
		return msg
	}
	return "An error occurred"
}

// containsAnyPattern checks if a string contains any of the given patterns
func containsAnyPattern(str string, patterns []string) bool {
	for _, pattern := range patterns {
		if strings.Contains(str, pattern) {
			return true
		}
	}
	return false
}
