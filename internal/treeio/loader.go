package treeio

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ludo-technologies/treedit/internal/parser"
	"github.com/ludo-technologies/treedit/internal/ted"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Format identifies a tree document encoding
type Format string

const (
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
	FormatTOML     Format = "toml"
	FormatPython   Format = "python"
	FormatNotation Format = "notation"
)

// FormatFromPath picks the format from a file extension
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	case ".py":
		return FormatPython, nil
	case ".tree", ".txt":
		return FormatNotation, nil
	default:
		return "", fmt.Errorf("unsupported tree file extension %q", filepath.Ext(path))
	}
}

// Loader decodes tree documents into frozen trees
type Loader struct {
	opts parser.TreeOptions
}

// NewLoader creates a loader. opts only affects Python sources.
func NewLoader(opts parser.TreeOptions) *Loader {
	return &Loader{opts: opts}
}

// LoadFile reads and decodes one tree file
func (l *Loader) LoadFile(ctx context.Context, path string) (*ted.Tree, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	tree, err := l.Decode(ctx, f, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return tree, nil
}

// Decode reads a tree in the given format
func (l *Loader) Decode(ctx context.Context, r io.Reader, format Format) (*ted.Tree, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read tree: %w", err)
	}

	if format == FormatPython {
		// tree-sitter parsers are not safe for concurrent use
		return parser.New().ParseTree(ctx, data, l.opts)
	}
	if format == FormatNotation {
		return ted.Parse(string(data))
	}

	doc, err := decodeDocument(data, format)
	if err != nil {
		return nil, err
	}
	return doc.ToTree()
}

// ParseInline reads a tree given directly on a command line or in a request:
// JSON when it starts with '{', bracket notation otherwise
func (l *Loader) ParseInline(s string) (*ted.Tree, error) {
	trimmed := strings.TrimSpace(s)
	if strings.HasPrefix(trimmed, "{") {
		doc, err := decodeDocument([]byte(trimmed), FormatJSON)
		if err != nil {
			return nil, err
		}
		return doc.ToTree()
	}
	return ted.Parse(trimmed)
}

func decodeDocument(data []byte, format Format) (*Document, error) {
	var doc Document
	var err error

	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(&doc)
	case FormatYAML:
		err = yaml.Unmarshal(data, &doc)
	case FormatTOML:
		err = toml.Unmarshal(data, &doc)
	default:
		return nil, fmt.Errorf("unsupported document format %q", format)
	}

	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to decode %s tree: %w", format, err)
	}
	return &doc, nil
}

// Encode writes a tree as a nested document
func Encode(w io.Writer, tree *ted.Tree, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(FromTree(tree))
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(FromTree(tree))
	case FormatTOML:
		doc := Document{}
		if root := FromTree(tree); root != nil {
			doc.Tree = root
		}
		return toml.NewEncoder(w).Encode(doc)
	case FormatNotation:
		_, err := fmt.Fprintln(w, tree.String())
		return err
	default:
		return fmt.Errorf("cannot encode trees as %q", format)
	}
}
