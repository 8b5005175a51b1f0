package service

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/ludo-technologies/treedit/domain"
	"github.com/ludo-technologies/treedit/internal/parser"
	"github.com/ludo-technologies/treedit/internal/ted"
	"github.com/ludo-technologies/treedit/internal/treeio"
)

// TreeLoader resolves tree sources into frozen trees and reports failures
// as domain errors
type TreeLoader struct {
	maxNodes int
}

// NewTreeLoader creates a tree loader. maxNodes bounds Python syntax trees
// (0 = no limit).
func NewTreeLoader(maxNodes int) *TreeLoader {
	return &TreeLoader{maxNodes: maxNodes}
}

// Load reads the tree named by src. labelText includes identifier and
// literal text in the labels of Python sources.
func (l *TreeLoader) Load(ctx context.Context, src domain.TreeSource, labelText bool) (*ted.Tree, error) {
	loader := treeio.NewLoader(parser.TreeOptions{IncludeText: labelText, MaxNodes: l.maxNodes})

	if src.Path == "" {
		if src.Inline == "" {
			return nil, domain.NewValidationError("empty tree source")
		}
		tree, err := loader.ParseInline(src.Inline)
		if err != nil {
			return nil, l.wrap(src, err)
		}
		return tree, nil
	}

	if _, err := treeio.FormatFromPath(src.Path); err != nil {
		return nil, domain.NewInvalidInputError(fmt.Sprintf("cannot load %s", src.Path), err)
	}
	if _, err := os.Stat(src.Path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, domain.NewFileNotFoundError(src.Path, err)
		}
		return nil, domain.NewInvalidInputError(fmt.Sprintf("cannot access path: %s", src.Path), err)
	}

	tree, err := loader.LoadFile(ctx, src.Path)
	if err != nil {
		return nil, l.wrap(src, err)
	}
	return tree, nil
}

// LoadDocument builds a tree from an already decoded document
func (l *TreeLoader) LoadDocument(name string, doc *treeio.Document) (*ted.Tree, error) {
	if doc == nil {
		return nil, domain.NewValidationError(fmt.Sprintf("%s: missing tree", name))
	}
	tree, err := doc.ToTree()
	if err != nil {
		return nil, l.wrap(domain.TreeSource{Inline: name}, err)
	}
	return tree, nil
}

func (l *TreeLoader) wrap(src domain.TreeSource, err error) error {
	if ted.IsStructureError(err) {
		return domain.NewStructureError(src.Name(), err)
	}
	return domain.NewParseError(src.Name(), err)
}
