package treeio

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ludo-technologies/treedit/internal/parser"
	"github.com/ludo-technologies/treedit/internal/ted"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const want = "A(B(D),C)"

func TestDecode_Shapes(t *testing.T) {
	tests := []struct {
		name   string
		format Format
		input  string
	}{
		{
			name:   "json nested",
			format: FormatJSON,
			input:  `{"label":"A","children":[{"label":"B","children":[{"label":"D"}]},{"label":"C"}]}`,
		},
		{
			name:   "json tree key",
			format: FormatJSON,
			input:  `{"tree":{"label":"A","children":[{"label":"B","children":[{"label":"D"}]},{"label":"C"}]}}`,
		},
		{
			name:   "json flat nodes",
			format: FormatJSON,
			input:  `{"nodes":[{"label":"A"},{"label":"B","parent":0},{"label":"C","parent":0},{"label":"D","parent":1}]}`,
		},
		{
			name:   "json parent array",
			format: FormatJSON,
			input:  `{"labels":["A","B","C","D"],"parents":[-1,0,0,1]}`,
		},
		{
			name:   "json notation",
			format: FormatJSON,
			input:  `{"notation":"A(B(D),C)"}`,
		},
		{
			name:   "yaml nested",
			format: FormatYAML,
			input: `label: A
children:
  - label: B
    children:
      - label: D
  - label: C
`,
		},
		{
			name:   "toml parent array",
			format: FormatTOML,
			input: `labels = ["A", "B", "C", "D"]
parents = [-1, 0, 0, 1]
`,
		},
		{
			name:   "notation",
			format: FormatNotation,
			input:  "A(B(D),C)\n",
		},
	}

	l := NewLoader(parser.TreeOptions{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree, err := l.Decode(context.Background(), strings.NewReader(tt.input), tt.format)
			require.NoError(t, err)
			assert.True(t, tree.Computed())
			assert.Equal(t, want, tree.String())
		})
	}
}

func TestDecode_Empty(t *testing.T) {
	l := NewLoader(parser.TreeOptions{})

	for _, format := range []Format{FormatJSON, FormatYAML, FormatTOML} {
		input := "{}"
		if format != FormatJSON {
			input = ""
		}
		tree, err := l.Decode(context.Background(), strings.NewReader(input), format)
		require.NoError(t, err, format)
		assert.Equal(t, 0, tree.Len(), format)
	}
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name   string
		format Format
		input  string
	}{
		{"bad json", FormatJSON, `{"label":`},
		{"unknown json field", FormatJSON, `{"lable":"A"}`},
		{"two roots", FormatJSON, `{"labels":["A","B"],"parents":[-1,-1]}`},
		{"unknown parent", FormatJSON, `{"nodes":[{"label":"A"},{"label":"B","parent":7}]}`},
		{"empty nested label", FormatJSON, `{"label":"A","children":[{"label":""}]}`},
		{"bad notation", FormatNotation, "A(B"},
		{"python syntax error", FormatPython, "def f(:\n"},
	}

	l := NewLoader(parser.TreeOptions{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := l.Decode(context.Background(), strings.NewReader(tt.input), tt.format)
			assert.Error(t, err)
		})
	}
}

func TestDecode_Python(t *testing.T) {
	l := NewLoader(parser.TreeOptions{IncludeText: true})
	tree, err := l.Decode(context.Background(), strings.NewReader("x = 1\n"), FormatPython)
	require.NoError(t, err)
	assert.Equal(t, "module(expression_statement(assignment(identifier:x,integer:1)))", tree.String())
}

func TestFormatFromPath(t *testing.T) {
	tests := map[string]Format{
		"a.json":   FormatJSON,
		"a.YAML":   FormatYAML,
		"a.yml":    FormatYAML,
		"a.toml":   FormatTOML,
		"dir/a.py": FormatPython,
		"a.tree":   FormatNotation,
	}
	for path, format := range tests {
		got, err := FormatFromPath(path)
		require.NoError(t, err, path)
		assert.Equal(t, format, got, path)
	}

	_, err := FormatFromPath("a.xml")
	assert.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "t.yaml")
	require.NoError(t, os.WriteFile(path, []byte("notation: A(B,C)\n"), 0o644))

	tree, err := NewLoader(parser.TreeOptions{}).LoadFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "A(B,C)", tree.String())

	_, err = NewLoader(parser.TreeOptions{}).LoadFile(context.Background(), filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}

func TestParseInline(t *testing.T) {
	l := NewLoader(parser.TreeOptions{})

	tree, err := l.ParseInline(" A(B,C) ")
	require.NoError(t, err)
	assert.Equal(t, "A(B,C)", tree.String())

	tree, err = l.ParseInline(`{"labels":["A","B"],"parents":[-1,0]}`)
	require.NoError(t, err)
	assert.Equal(t, "A(B)", tree.String())
}

func TestEncode_RoundTrip(t *testing.T) {
	l := NewLoader(parser.TreeOptions{})
	tree := ted.MustParse(want)

	for _, format := range []Format{FormatJSON, FormatYAML, FormatTOML, FormatNotation} {
		t.Run(string(format), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Encode(&buf, tree, format))

			back, err := l.Decode(context.Background(), &buf, format)
			require.NoError(t, err)
			assert.Equal(t, want, back.String())
		})
	}

	assert.Error(t, Encode(&bytes.Buffer{}, tree, FormatPython))
}

func TestFromTree_Empty(t *testing.T) {
	assert.Nil(t, FromTree(ted.NewTree()))
}
