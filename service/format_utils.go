package service

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/ludo-technologies/treedit/domain"
	"gopkg.in/yaml.v3"
)

// EncodeJSON returns an indented JSON string for the given value.
func EncodeJSON(v interface{}) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", domain.NewOutputError("failed to marshal JSON", err)
	}
	return string(data), nil
}

// WriteJSON writes indented JSON for the given value to the writer.
func WriteJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return domain.NewOutputError("failed to encode JSON", err)
	}
	return nil
}

// WriteYAML writes YAML for the given value to the writer.
func WriteYAML(w io.Writer, v interface{}) error {
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return domain.NewOutputError("failed to encode YAML", err)
	}
	return nil
}

// Standard formatting constants
const (
	HeaderWidth    = 40
	LabelWidth     = 14
	SectionPadding = 2
	ItemPadding    = 4
)

// ANSI color codes for consistent color usage
const (
	ColorReset  = "\x1b[0m"
	ColorRed    = "\x1b[31m"
	ColorYellow = "\x1b[33m"
	ColorGreen  = "\x1b[32m"
	ColorCyan   = "\x1b[36m"
	ColorBold   = "\x1b[1m"
)

// EditKind classifies one line of an edit script
type EditKind string

const (
	EditMatch   EditKind = "match"
	EditRelabel EditKind = "relabel"
	EditDelete  EditKind = "delete"
	EditInsert  EditKind = "insert"
)

// FormatUtils provides shared formatting utilities
type FormatUtils struct {
	// Color enables ANSI colors in edit scripts
	Color bool
}

// NewFormatUtils creates a new format utilities instance
func NewFormatUtils() *FormatUtils {
	return &FormatUtils{}
}

// FormatMainHeader creates a standardized main header
func (f *FormatUtils) FormatMainHeader(title string) string {
	var builder strings.Builder
	builder.WriteString(title + "\n")
	builder.WriteString(strings.Repeat("=", HeaderWidth) + "\n\n")
	return builder.String()
}

// FormatSectionHeader creates a standardized section header
func (f *FormatUtils) FormatSectionHeader(title string) string {
	var builder strings.Builder
	builder.WriteString(strings.ToUpper(title) + "\n")
	builder.WriteString(strings.Repeat("-", len(title)) + "\n")
	return builder.String()
}

// FormatSectionSeparator creates a section separator
func (f *FormatUtils) FormatSectionSeparator() string {
	return "\n"
}

// FormatLabel creates a consistently formatted label with right alignment
func (f *FormatUtils) FormatLabel(label string, value interface{}) string {
	padding := LabelWidth - len(label)
	if padding < 0 {
		padding = 0
	}
	return fmt.Sprintf("%s%s: %v\n", strings.Repeat(" ", padding), label, value)
}

// FormatLabelWithIndent creates a formatted label with specific indentation
func (f *FormatUtils) FormatLabelWithIndent(indent int, label string, value interface{}) string {
	return fmt.Sprintf("%s%s: %v\n", strings.Repeat(" ", indent), label, value)
}

// FormatDuration formats duration in milliseconds consistently
func (f *FormatUtils) FormatDuration(durationMs int64) string {
	return fmt.Sprintf("%dms", durationMs)
}

// GetEditColor returns the color for an edit kind
func (f *FormatUtils) GetEditColor(kind EditKind) string {
	switch kind {
	case EditDelete:
		return ColorRed
	case EditInsert:
		return ColorGreen
	case EditRelabel:
		return ColorYellow
	default:
		return ColorReset
	}
}

// FormatEdit formats one edit script line, e.g. "~ 1 B -> 1 X"
func (f *FormatUtils) FormatEdit(kind EditKind, text string) string {
	marker := map[EditKind]string{
		EditMatch:   "=",
		EditRelabel: "~",
		EditDelete:  "-",
		EditInsert:  "+",
	}[kind]

	line := fmt.Sprintf("%s %s", marker, text)
	if f.Color && kind != EditMatch {
		line = f.GetEditColor(kind) + line + ColorReset
	}
	return strings.Repeat(" ", SectionPadding) + line + "\n"
}

// FormatTableHeader creates a table header with consistent formatting
func (f *FormatUtils) FormatTableHeader(columns ...string) string {
	header := strings.Join(columns, "  ")
	separator := strings.Repeat("-", len(header))
	return header + "\n" + separator + "\n"
}

// FormatBreakdown creates the standard edit operations section
func (f *FormatUtils) FormatBreakdown(b domain.Breakdown) string {
	var builder strings.Builder
	builder.WriteString(f.FormatSectionHeader("Operations"))
	builder.WriteString(f.FormatLabelWithIndent(SectionPadding, "Deletions", b.Deletions))
	builder.WriteString(f.FormatLabelWithIndent(SectionPadding, "Insertions", b.Insertions))
	builder.WriteString(f.FormatLabelWithIndent(SectionPadding, "Relabelings", b.Relabelings))
	builder.WriteString(f.FormatSectionSeparator())
	return builder.String()
}

// FormatWarningsSection creates a standardized warnings section
func (f *FormatUtils) FormatWarningsSection(warnings []string) string {
	if len(warnings) == 0 {
		return ""
	}

	var builder strings.Builder
	builder.WriteString(f.FormatSectionHeader("WARNINGS"))

	for _, warning := range warnings {
		builder.WriteString(f.FormatLabelWithIndent(SectionPadding, "!", warning))
	}

	builder.WriteString(f.FormatSectionSeparator())
	return builder.String()
}
