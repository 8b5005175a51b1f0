package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/ludo-technologies/treedit/domain"
	"github.com/ludo-technologies/treedit/internal/ted"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewErrorCategorizer(t *testing.T) {
	categorizer := NewErrorCategorizer()
	assert.NotNil(t, categorizer)
	assert.IsType(t, &ErrorCategorizerImpl{}, categorizer)
}

func TestCategorize_Nil(t *testing.T) {
	assert.Nil(t, NewErrorCategorizer().Categorize(nil))
}

func TestCategorize_TypedErrors(t *testing.T) {
	categorizer := NewErrorCategorizer()

	_, structErr := ted.FromParentArray([]string{"A", "B"}, []int{-1, -1})
	require.Error(t, structErr)

	tests := []struct {
		name string
		err  error
		want domain.ErrorCategory
	}{
		{"deadline", fmt.Errorf("solve: %w", context.DeadlineExceeded), domain.ErrorCategoryTimeout},
		{"budget", ted.ErrBudgetExhausted, domain.ErrorCategoryTimeout},
		{"structure", structErr, domain.ErrorCategoryStructure},
		{"file not found", domain.NewFileNotFoundError("a.json", nil), domain.ErrorCategoryInput},
		{"config", domain.NewConfigError("bad", nil), domain.ErrorCategoryConfig},
		{"parse", domain.NewParseError("a.py", nil), domain.ErrorCategoryProcessing},
		{"format", domain.NewUnsupportedFormatError("pdf"), domain.ErrorCategoryOutput},
		{"domain timeout", domain.NewTimeoutError("slow", nil), domain.ErrorCategoryTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := categorizer.Categorize(tt.err)
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got.Category)
			assert.Equal(t, tt.err, got.Original)
			assert.True(t, errors.Is(got, tt.err))
		})
	}
}

func TestCategorize_Patterns(t *testing.T) {
	categorizer := NewErrorCategorizer()

	tests := []struct {
		msg  string
		want domain.ErrorCategory
	}{
		{"operation timeout after 5s", domain.ErrorCategoryTimeout},
		{"tree already has a root", domain.ErrorCategoryStructure},
		{"failed to read configuration", domain.ErrorCategoryConfig},
		{"no tree files found", domain.ErrorCategoryInput},
		{"cannot create report.svg", domain.ErrorCategoryOutput},
		{"syntax errors found in source code", domain.ErrorCategoryProcessing},
	}

	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			got := categorizer.Categorize(errors.New(tt.msg))
			assert.Equal(t, tt.want, got.Category)
		})
	}
}

func TestCategorize_Unknown(t *testing.T) {
	got := NewErrorCategorizer().Categorize(errors.New("something odd"))
	assert.Equal(t, domain.ErrorCategoryUnknown, got.Category)
	assert.Equal(t, "something odd", got.Message)
}

func TestGetRecoverySuggestions(t *testing.T) {
	categorizer := NewErrorCategorizer()

	for _, category := range []domain.ErrorCategory{
		domain.ErrorCategoryInput,
		domain.ErrorCategoryStructure,
		domain.ErrorCategoryConfig,
		domain.ErrorCategoryTimeout,
		domain.ErrorCategoryOutput,
		domain.ErrorCategoryProcessing,
		domain.ErrorCategoryUnknown,
	} {
		assert.NotEmpty(t, categorizer.GetRecoverySuggestions(category), category)
	}

	assert.Equal(t, []string{"Check the error message for more details"},
		categorizer.GetRecoverySuggestions(domain.ErrorCategory("other")))
}
