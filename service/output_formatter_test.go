package service

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/ludo-technologies/treedit/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func createTestDistanceResponse() *domain.DistanceResponse {
	return &domain.DistanceResponse{
		RunID:     "run-1",
		Algorithm: "bnb",
		Tree1: domain.TreeSummary{
			Name: "t1", Nodes: 3, Height: 1, Notation: "A(B,C)",
			Labels: []string{"A", "B", "C"}, Parents: []int{-1, 0, 0},
		},
		Tree2: domain.TreeSummary{
			Name: "t2", Nodes: 3, Height: 1, Notation: "A(X,D)",
			Labels: []string{"A", "X", "D"}, Parents: []int{-1, 0, 0},
		},
		Cost:      3,
		Breakdown: domain.Breakdown{Deletions: 1, Insertions: 1, Relabelings: 1, Cost: 3},
		Pairs: []domain.NodePair{
			{From: 0, To: 0, FromLabel: "A", ToLabel: "A"},
			{From: 1, To: 1, FromLabel: "B", ToLabel: "X", Relabeled: true},
		},
		Deleted:     []int{2},
		Inserted:    []int{2},
		Exact:       true,
		Stats:       domain.SearchStats{Explored: 12, Pruned: 3, DurationMs: 1},
		Warnings:    []string{"example warning"},
		GeneratedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC).Format(time.RFC3339),
		Version:     "test",
	}
}

func createTestMappingsResponse() *domain.MappingsResponse {
	d := createTestDistanceResponse()
	return &domain.MappingsResponse{
		RunID: "run-2",
		Tree1: d.Tree1,
		Tree2: d.Tree2,
		Mappings: []domain.MappingResult{
			{Index: 1, Cost: 4, Breakdown: domain.Breakdown{Deletions: 2, Insertions: 2, Cost: 4},
				Pairs: d.Pairs[:1], Deleted: []int{1, 2}, Inserted: []int{1, 2}},
			{Index: 2, Cost: 3, Breakdown: d.Breakdown, Pairs: d.Pairs, Deleted: d.Deleted, Inserted: d.Inserted, Optimal: true},
		},
		MinCost:     3,
		GeneratedAt: d.GeneratedAt,
	}
}

func createTestBatchResponse() *domain.BatchResponse {
	return &domain.BatchResponse{
		RunID:     "run-3",
		Algorithm: "dp",
		Files:     []string{"a.tree", "b.tree", "c.tree"},
		Matrix:    [][]int{{0, 2, -1}, {2, 0, -1}, {-1, -1, -1}},
		Pairs: []domain.BatchPair{
			{I: 0, J: 1, Cost: 2, Exact: true},
			{I: 0, J: 2, Error: "input tree failed to load"},
			{I: 1, J: 2, Error: "input tree failed to load"},
		},
		Errors: []string{"c.tree: parse failure"},
	}
}

func TestOutputFormatter_FormatDistance_Text(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewOutputFormatter().FormatDistance(createTestDistanceResponse(), domain.OutputFormatText, &buf))

	out := buf.String()
	assert.Contains(t, out, "Tree Edit Distance Report")
	assert.Contains(t, out, "Distance: 3")
	assert.Contains(t, out, "= 0 A -> 0 A")
	assert.Contains(t, out, "~ 1 B -> 1 X")
	assert.Contains(t, out, "- 2 C")
	assert.Contains(t, out, "+ 2 D")
	assert.Contains(t, out, "example warning")
	assert.Contains(t, out, "Run ID: run-1")
	assert.NotContains(t, out, ColorReset)
}

func TestOutputFormatter_FormatDistance_Color(t *testing.T) {
	var buf bytes.Buffer
	f := NewOutputFormatter().WithColor(true)
	require.NoError(t, f.FormatDistance(createTestDistanceResponse(), domain.OutputFormatText, &buf))
	assert.Contains(t, buf.String(), ColorRed+"- 2 C"+ColorReset)
}

func TestOutputFormatter_FormatDistance_Structured(t *testing.T) {
	resp := createTestDistanceResponse()
	f := NewOutputFormatter()

	var jsonBuf bytes.Buffer
	require.NoError(t, f.FormatDistance(resp, domain.OutputFormatJSON, &jsonBuf))
	var fromJSON domain.DistanceResponse
	require.NoError(t, json.Unmarshal(jsonBuf.Bytes(), &fromJSON))
	assert.Equal(t, *resp, fromJSON)

	var yamlBuf bytes.Buffer
	require.NoError(t, f.FormatDistance(resp, domain.OutputFormatYAML, &yamlBuf))
	var fromYAML map[string]interface{}
	require.NoError(t, yaml.Unmarshal(yamlBuf.Bytes(), &fromYAML))
	assert.Equal(t, 3, fromYAML["cost"])
	assert.Equal(t, "bnb", fromYAML["algorithm"])
}

func TestOutputFormatter_FormatDistance_CSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewOutputFormatter().FormatDistance(createTestDistanceResponse(), domain.OutputFormatCSV, &buf))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"op", "from", "from_label", "to", "to_label"},
		{"match", "0", "A", "0", "A"},
		{"relabel", "1", "B", "1", "X"},
		{"delete", "2", "C", "", ""},
		{"insert", "", "", "2", "D"},
	}, records)
}

func TestOutputFormatter_FormatDistance_DOT(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewOutputFormatter().FormatDistance(createTestDistanceResponse(), domain.OutputFormatDOT, &buf))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "digraph mapping {"))
	assert.Contains(t, out, "subgraph cluster_t1")
	assert.Contains(t, out, "subgraph cluster_t2")
	assert.Contains(t, out, `"t1_0" -> "t1_1";`)
	assert.Contains(t, out, `"t1_1" -> "t2_1" [style=dashed, color="`+relabelColor+`"`)
	assert.Contains(t, out, `"t1_2" [label="2: C", fillcolor="`+deletedFill+`"];`)
	assert.Contains(t, out, `"t2_2" [label="2: D", fillcolor="`+insertedFill+`"];`)
}

func TestOutputFormatter_FormatMappings(t *testing.T) {
	f := NewOutputFormatter()
	resp := createTestMappingsResponse()

	var text bytes.Buffer
	require.NoError(t, f.FormatMappings(resp, domain.OutputFormatText, &text))
	assert.Contains(t, text.String(), "Tree Mapping Enumeration")
	assert.Contains(t, text.String(), "Min Cost: 3")
	assert.Contains(t, text.String(), "0:0 1:1")

	var csvBuf bytes.Buffer
	require.NoError(t, f.FormatMappings(resp, domain.OutputFormatCSV, &csvBuf))
	records, err := csv.NewReader(&csvBuf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"2", "3", "1", "1", "1", "true", "0:0 1:1"}, records[2])

	var dot bytes.Buffer
	require.NoError(t, f.FormatMappings(resp, domain.OutputFormatDOT, &dot))
	assert.Contains(t, dot.String(), `"t1_1" -> "t2_1"`)

	resp.Mappings = nil
	assert.Error(t, f.FormatMappings(resp, domain.OutputFormatDOT, &dot))
}

func TestOutputFormatter_FormatBatch(t *testing.T) {
	f := NewOutputFormatter()
	resp := createTestBatchResponse()

	var text bytes.Buffer
	require.NoError(t, f.FormatBatch(resp, domain.OutputFormatText, &text))
	assert.Contains(t, text.String(), "[2]: c.tree")
	assert.Contains(t, text.String(), "ERR")
	assert.Contains(t, text.String(), "c.tree: parse failure")

	var csvBuf bytes.Buffer
	require.NoError(t, f.FormatBatch(resp, domain.OutputFormatCSV, &csvBuf))
	records, err := csv.NewReader(&csvBuf).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, []string{"a.tree", "b.tree", "2", "true", ""}, records[1])
	assert.Equal(t, []string{"a.tree", "c.tree", "", "false", "input tree failed to load"}, records[2])

	var jsonBuf bytes.Buffer
	require.NoError(t, f.FormatBatch(resp, domain.OutputFormatJSON, &jsonBuf))
	var decoded domain.BatchResponse
	require.NoError(t, json.Unmarshal(jsonBuf.Bytes(), &decoded))
	assert.Equal(t, resp.Matrix, decoded.Matrix)
}

func TestOutputFormatter_UnsupportedFormats(t *testing.T) {
	f := NewOutputFormatter()
	var buf bytes.Buffer

	err := f.FormatDistance(createTestDistanceResponse(), "html", &buf)
	assert.Equal(t, domain.ErrCodeUnsupportedFormat, domain.ErrorCode(err))

	err = f.FormatBatch(createTestBatchResponse(), domain.OutputFormatDOT, &buf)
	assert.Equal(t, domain.ErrCodeUnsupportedFormat, domain.ErrorCode(err))
}

func TestOutputFormatResolver_Determine(t *testing.T) {
	r := NewOutputFormatResolver()

	tests := []struct {
		format   string
		path     string
		fallback domain.OutputFormat
		want     domain.OutputFormat
		wantErr  bool
	}{
		{format: "json", want: domain.OutputFormatJSON},
		{format: "YAML", want: domain.OutputFormatYAML},
		{format: "json", path: "out.svg", want: domain.OutputFormatJSON},
		{path: "out.svg", want: domain.OutputFormatSVG},
		{path: "out.gv", want: domain.OutputFormatDOT},
		{path: "out.csv", want: domain.OutputFormatCSV},
		{path: "out.bin", fallback: domain.OutputFormatJSON, want: domain.OutputFormatJSON},
		{want: domain.OutputFormatText},
		{format: "html", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.format+"|"+tt.path, func(t *testing.T) {
			got, err := r.Determine(tt.format, tt.path, tt.fallback)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
