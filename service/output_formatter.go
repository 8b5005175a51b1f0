package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/ludo-technologies/treedit/domain"
)

// OutputFormatterImpl implements the distance and batch output formatters
type OutputFormatterImpl struct {
	utils *FormatUtils
}

// NewOutputFormatter creates a new output formatter service
func NewOutputFormatter() *OutputFormatterImpl {
	return &OutputFormatterImpl{utils: NewFormatUtils()}
}

// WithColor enables ANSI colors in text edit scripts
func (f *OutputFormatterImpl) WithColor(color bool) *OutputFormatterImpl {
	f.utils.Color = color
	return f
}

// FormatDistance writes a distance response in the given format
func (f *OutputFormatterImpl) FormatDistance(response *domain.DistanceResponse, format domain.OutputFormat, writer io.Writer) error {
	switch format {
	case domain.OutputFormatText, "":
		return f.write(writer, f.distanceText(response))
	case domain.OutputFormatJSON:
		return WriteJSON(writer, response)
	case domain.OutputFormatYAML:
		return WriteYAML(writer, response)
	case domain.OutputFormatCSV:
		return f.distanceCSV(response, writer)
	case domain.OutputFormatDOT:
		return f.write(writer, MappingToDOT(response.Tree1, response.Tree2, response.Pairs, response.Deleted, response.Inserted))
	case domain.OutputFormatSVG:
		dot := MappingToDOT(response.Tree1, response.Tree2, response.Pairs, response.Deleted, response.Inserted)
		svg, err := RenderSVG(context.Background(), dot)
		if err != nil {
			return domain.NewOutputError("failed to render SVG", err)
		}
		return f.write(writer, string(svg))
	default:
		return domain.NewUnsupportedFormatError(string(format))
	}
}

// FormatMappings writes an enumeration in the given format. DOT and SVG
// draw the first optimal mapping.
func (f *OutputFormatterImpl) FormatMappings(response *domain.MappingsResponse, format domain.OutputFormat, writer io.Writer) error {
	switch format {
	case domain.OutputFormatText, "":
		return f.write(writer, f.mappingsText(response))
	case domain.OutputFormatJSON:
		return WriteJSON(writer, response)
	case domain.OutputFormatYAML:
		return WriteYAML(writer, response)
	case domain.OutputFormatCSV:
		return f.mappingsCSV(response, writer)
	case domain.OutputFormatDOT, domain.OutputFormatSVG:
		best := firstOptimal(response.Mappings)
		if best == nil {
			return domain.NewOutputError("no mapping to draw", nil)
		}
		dot := MappingToDOT(response.Tree1, response.Tree2, best.Pairs, best.Deleted, best.Inserted)
		if format == domain.OutputFormatDOT {
			return f.write(writer, dot)
		}
		svg, err := RenderSVG(context.Background(), dot)
		if err != nil {
			return domain.NewOutputError("failed to render SVG", err)
		}
		return f.write(writer, string(svg))
	default:
		return domain.NewUnsupportedFormatError(string(format))
	}
}

// FormatBatch writes a batch response in the given format
func (f *OutputFormatterImpl) FormatBatch(response *domain.BatchResponse, format domain.OutputFormat, writer io.Writer) error {
	switch format {
	case domain.OutputFormatText, "":
		return f.write(writer, f.batchText(response))
	case domain.OutputFormatJSON:
		return WriteJSON(writer, response)
	case domain.OutputFormatYAML:
		return WriteYAML(writer, response)
	case domain.OutputFormatCSV:
		return f.batchCSV(response, writer)
	default:
		return domain.NewUnsupportedFormatError(string(format))
	}
}

func (f *OutputFormatterImpl) write(writer io.Writer, output string) error {
	if _, err := io.WriteString(writer, output); err != nil {
		return domain.NewOutputError("failed to write output", err)
	}
	return nil
}

// distanceText formats the response as human-readable text
func (f *OutputFormatterImpl) distanceText(response *domain.DistanceResponse) string {
	var builder strings.Builder
	utils := f.utils

	builder.WriteString(utils.FormatMainHeader("Tree Edit Distance Report"))

	builder.WriteString(utils.FormatSectionHeader("Summary"))
	builder.WriteString(utils.FormatLabel("Algorithm", response.Algorithm))
	builder.WriteString(utils.FormatLabel("Distance", response.Cost))
	builder.WriteString(utils.FormatLabel("Exact", yesNo(response.Exact)))
	builder.WriteString(utils.FormatLabel("Tree 1", treeLine(response.Tree1)))
	builder.WriteString(utils.FormatLabel("Tree 2", treeLine(response.Tree2)))
	builder.WriteString(utils.FormatSectionSeparator())

	builder.WriteString(utils.FormatBreakdown(response.Breakdown))

	builder.WriteString(utils.FormatSectionHeader("Edit Script"))
	builder.WriteString(f.editScript(response.Tree1, response.Tree2, response.Pairs, response.Deleted, response.Inserted))
	builder.WriteString(utils.FormatSectionSeparator())

	builder.WriteString(f.searchSection(response.Stats))
	builder.WriteString(utils.FormatWarningsSection(response.Warnings))
	builder.WriteString(f.metadataSection(response.RunID, response.GeneratedAt))

	return builder.String()
}

// editScript lists matches and relabels in T1 order, then deletions and
// insertions
func (f *OutputFormatterImpl) editScript(tree1, tree2 domain.TreeSummary, pairs []domain.NodePair, deleted, inserted []int) string {
	var builder strings.Builder
	for _, p := range pairs {
		kind := EditMatch
		if p.Relabeled {
			kind = EditRelabel
		}
		builder.WriteString(f.utils.FormatEdit(kind, fmt.Sprintf("%d %s -> %d %s", p.From, p.FromLabel, p.To, p.ToLabel)))
	}
	for _, v := range deleted {
		builder.WriteString(f.utils.FormatEdit(EditDelete, fmt.Sprintf("%d %s", v, labelAt(tree1, v))))
	}
	for _, w := range inserted {
		builder.WriteString(f.utils.FormatEdit(EditInsert, fmt.Sprintf("%d %s", w, labelAt(tree2, w))))
	}
	return builder.String()
}

func (f *OutputFormatterImpl) mappingsText(response *domain.MappingsResponse) string {
	var builder strings.Builder
	utils := f.utils

	builder.WriteString(utils.FormatMainHeader("Tree Mapping Enumeration"))

	builder.WriteString(utils.FormatSectionHeader("Summary"))
	builder.WriteString(utils.FormatLabel("Mappings", len(response.Mappings)))
	builder.WriteString(utils.FormatLabel("Min Cost", response.MinCost))
	builder.WriteString(utils.FormatLabel("Truncated", yesNo(response.Truncated)))
	builder.WriteString(utils.FormatLabel("Tree 1", treeLine(response.Tree1)))
	builder.WriteString(utils.FormatLabel("Tree 2", treeLine(response.Tree2)))
	builder.WriteString(utils.FormatSectionSeparator())

	if len(response.Mappings) > 0 {
		builder.WriteString(utils.FormatSectionHeader("Mappings"))
		builder.WriteString(utils.FormatTableHeader("#    ", "Cost", "Del", "Ins", "Rel", "Pairs"))
		for _, m := range response.Mappings {
			marker := " "
			if m.Optimal {
				marker = "*"
			}
			builder.WriteString(fmt.Sprintf("%-4d%s  %4d  %3d  %3d  %3d  %s\n",
				m.Index, marker, m.Cost,
				m.Breakdown.Deletions, m.Breakdown.Insertions, m.Breakdown.Relabelings,
				compactPairs(m.Pairs)))
		}
		builder.WriteString(utils.FormatSectionSeparator())
	}

	builder.WriteString(f.searchSection(response.Stats))
	builder.WriteString(utils.FormatWarningsSection(response.Warnings))
	builder.WriteString(f.metadataSection(response.RunID, response.GeneratedAt))

	return builder.String()
}

func (f *OutputFormatterImpl) batchText(response *domain.BatchResponse) string {
	var builder strings.Builder
	utils := f.utils

	builder.WriteString(utils.FormatMainHeader("Pairwise Tree Edit Distances"))

	builder.WriteString(utils.FormatSectionHeader("Files"))
	for i, file := range response.Files {
		builder.WriteString(utils.FormatLabelWithIndent(SectionPadding, fmt.Sprintf("[%d]", i), file))
	}
	builder.WriteString(utils.FormatSectionSeparator())

	builder.WriteString(utils.FormatSectionHeader("Distance Matrix"))
	columns := []string{"    "}
	for i := range response.Files {
		columns = append(columns, fmt.Sprintf("%4s", fmt.Sprintf("[%d]", i)))
	}
	builder.WriteString(utils.FormatTableHeader(columns...))
	for i, row := range response.Matrix {
		cells := []string{fmt.Sprintf("%4s", fmt.Sprintf("[%d]", i))}
		for _, cost := range row {
			cell := strconv.Itoa(cost)
			if cost < 0 {
				cell = "ERR"
			}
			cells = append(cells, fmt.Sprintf("%4s", cell))
		}
		builder.WriteString(strings.Join(cells, "  ") + "\n")
	}
	builder.WriteString(utils.FormatSectionSeparator())

	if len(response.Errors) > 0 {
		builder.WriteString(utils.FormatSectionHeader("Errors"))
		for _, e := range response.Errors {
			builder.WriteString(utils.FormatLabelWithIndent(SectionPadding, "x", e))
		}
		builder.WriteString(utils.FormatSectionSeparator())
	}

	builder.WriteString(f.metadataSection(response.RunID, response.GeneratedAt))
	return builder.String()
}

func (f *OutputFormatterImpl) searchSection(stats domain.SearchStats) string {
	var builder strings.Builder
	builder.WriteString(f.utils.FormatSectionHeader("Search"))
	builder.WriteString(f.utils.FormatLabelWithIndent(SectionPadding, "Explored", stats.Explored))
	builder.WriteString(f.utils.FormatLabelWithIndent(SectionPadding, "Pruned", stats.Pruned))
	if stats.Solutions > 0 {
		builder.WriteString(f.utils.FormatLabelWithIndent(SectionPadding, "Solutions", stats.Solutions))
	}
	builder.WriteString(f.utils.FormatLabelWithIndent(SectionPadding, "Duration", f.utils.FormatDuration(stats.DurationMs)))
	builder.WriteString(f.utils.FormatSectionSeparator())
	return builder.String()
}

func (f *OutputFormatterImpl) metadataSection(runID, generatedAt string) string {
	var builder strings.Builder
	builder.WriteString(f.utils.FormatSectionHeader("Metadata"))
	if runID != "" {
		builder.WriteString(f.utils.FormatLabelWithIndent(SectionPadding, "Run ID", runID))
	}
	if parsedTime, err := time.Parse(time.RFC3339, generatedAt); err == nil {
		builder.WriteString(f.utils.FormatLabelWithIndent(SectionPadding, "Generated at", parsedTime.Format("2006-01-02T15:04:05-07:00")))
	}
	return builder.String()
}

// distanceCSV writes the edit script, one operation per row
func (f *OutputFormatterImpl) distanceCSV(response *domain.DistanceResponse, writer io.Writer) error {
	w := csv.NewWriter(writer)

	rows := [][]string{{"op", "from", "from_label", "to", "to_label"}}
	for _, p := range response.Pairs {
		op := string(EditMatch)
		if p.Relabeled {
			op = string(EditRelabel)
		}
		rows = append(rows, []string{op, strconv.Itoa(p.From), p.FromLabel, strconv.Itoa(p.To), p.ToLabel})
	}
	for _, v := range response.Deleted {
		rows = append(rows, []string{string(EditDelete), strconv.Itoa(v), labelAt(response.Tree1, v), "", ""})
	}
	for _, v := range response.Inserted {
		rows = append(rows, []string{string(EditInsert), "", "", strconv.Itoa(v), labelAt(response.Tree2, v)})
	}

	return flushCSV(w, rows)
}

func (f *OutputFormatterImpl) mappingsCSV(response *domain.MappingsResponse, writer io.Writer) error {
	w := csv.NewWriter(writer)

	rows := [][]string{{"index", "cost", "deletions", "insertions", "relabelings", "optimal", "pairs"}}
	for _, m := range response.Mappings {
		rows = append(rows, []string{
			strconv.Itoa(m.Index),
			strconv.Itoa(m.Cost),
			strconv.Itoa(m.Breakdown.Deletions),
			strconv.Itoa(m.Breakdown.Insertions),
			strconv.Itoa(m.Breakdown.Relabelings),
			strconv.FormatBool(m.Optimal),
			compactPairs(m.Pairs),
		})
	}

	return flushCSV(w, rows)
}

func (f *OutputFormatterImpl) batchCSV(response *domain.BatchResponse, writer io.Writer) error {
	w := csv.NewWriter(writer)

	rows := [][]string{{"file_a", "file_b", "cost", "exact", "error"}}
	for _, p := range response.Pairs {
		cost := strconv.Itoa(p.Cost)
		if p.Error != "" {
			cost = ""
		}
		rows = append(rows, []string{
			response.Files[p.I],
			response.Files[p.J],
			cost,
			strconv.FormatBool(p.Exact),
			p.Error,
		})
	}

	return flushCSV(w, rows)
}

func flushCSV(w *csv.Writer, rows [][]string) error {
	if err := w.WriteAll(rows); err != nil {
		return domain.NewOutputError("failed to write CSV", err)
	}
	return nil
}

func firstOptimal(mappings []domain.MappingResult) *domain.MappingResult {
	for i := range mappings {
		if mappings[i].Optimal {
			return &mappings[i]
		}
	}
	return nil
}

func compactPairs(pairs []domain.NodePair) string {
	parts := make([]string, len(pairs))
	for i, p := range pairs {
		parts[i] = fmt.Sprintf("%d:%d", p.From, p.To)
	}
	return strings.Join(parts, " ")
}

func treeLine(t domain.TreeSummary) string {
	notation := t.Notation
	if notation == "" {
		notation = "(empty)"
	}
	return fmt.Sprintf("%s, %d nodes, %s", t.Name, t.Nodes, notation)
}

func labelAt(t domain.TreeSummary, v int) string {
	if v >= 0 && v < len(t.Labels) {
		return t.Labels[v]
	}
	return ""
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
