package parser

import (
	"context"
	"fmt"
	"io"

	"github.com/ludo-technologies/treedit/internal/ted"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

// Parser turns Python source into ordered labeled trees using tree-sitter
type Parser struct {
	parser *sitter.Parser
}

// New creates a new Parser instance with Python grammar
func New() *Parser {
	parser := sitter.NewParser()
	parser.SetLanguage(python.GetLanguage())
	return &Parser{
		parser: parser,
	}
}

// ParseResult represents the result of parsing Python code
type ParseResult struct {
	Tree       *sitter.Tree
	RootNode   *sitter.Node
	SourceCode []byte
}

// Parse parses Python source code and returns the concrete syntax tree
func (p *Parser) Parse(ctx context.Context, source []byte) (*ParseResult, error) {
	tree, err := p.parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("failed to parse source: %w", err)
	}

	rootNode := tree.RootNode()
	if rootNode.HasError() {
		return nil, fmt.Errorf("syntax errors found in source code")
	}

	return &ParseResult{
		Tree:       tree,
		RootNode:   rootNode,
		SourceCode: source,
	}, nil
}

// ParseFile parses a Python file from a reader
func (p *Parser) ParseFile(ctx context.Context, reader io.Reader) (*ParseResult, error) {
	source, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read source: %w", err)
	}

	return p.Parse(ctx, source)
}

// WalkTree traverses the named nodes in preorder and calls the visitor for each
func (p *Parser) WalkTree(node *sitter.Node, visitor func(*sitter.Node) error) error {
	if err := visitor(node); err != nil {
		return err
	}

	childCount := int(node.NamedChildCount())
	for i := 0; i < childCount; i++ {
		if err := p.WalkTree(node.NamedChild(i), visitor); err != nil {
			return err
		}
	}

	return nil
}

// TreeOptions controls how a syntax tree becomes a labeled tree
type TreeOptions struct {
	// IncludeText appends the source text to identifier and literal labels,
	// so renaming a variable counts as a relabel
	IncludeText bool

	// MaxNodes rejects sources whose tree would exceed this size (0 = no limit)
	MaxNodes int
}

// textLabeled lists the node types whose text is part of the label when
// TreeOptions.IncludeText is set
var textLabeled = map[string]bool{
	"identifier": true,
	"integer":    true,
	"float":      true,
	"true":       true,
	"false":      true,
	"none":       true,
}

// BuildTree converts the named nodes of a parse result into a frozen tree.
// Each node is labeled by its grammar type.
func (p *Parser) BuildTree(result *ParseResult, opts TreeOptions) (*ted.Tree, error) {
	tree := ted.NewTree()
	if result == nil || result.RootNode == nil {
		return tree, nil
	}

	type frame struct {
		node   *sitter.Node
		parent ted.NodeID
	}
	stack := []frame{{node: result.RootNode, parent: ted.NoNode}}

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if opts.MaxNodes > 0 && tree.Len() >= opts.MaxNodes {
			return nil, fmt.Errorf("syntax tree exceeds %d nodes", opts.MaxNodes)
		}

		label := f.node.Type()
		if opts.IncludeText && textLabeled[label] {
			label += ":" + f.node.Content(result.SourceCode)
		}

		id, err := tree.AddNode(label, f.parent)
		if err != nil {
			return nil, err
		}

		// push right to left so children are added in source order
		for i := int(f.node.NamedChildCount()) - 1; i >= 0; i-- {
			stack = append(stack, frame{node: f.node.NamedChild(i), parent: id})
		}
	}

	if err := tree.ComputeMetadata(); err != nil {
		return nil, err
	}
	return tree, nil
}

// ParseTree parses source and converts it in one step
func (p *Parser) ParseTree(ctx context.Context, source []byte, opts TreeOptions) (*ted.Tree, error) {
	result, err := p.Parse(ctx, source)
	if err != nil {
		return nil, err
	}
	return p.BuildTree(result, opts)
}
