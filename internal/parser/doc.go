// Package parser turns Python source code into ordered labeled trees.
//
// It wraps the tree-sitter Go bindings and keeps only the named nodes of
// the concrete syntax tree, so punctuation and keywords do not inflate the
// edit distance between two programs.
//
// Basic usage:
//
//	p := parser.New()
//	tree, err := p.ParseTree(ctx, []byte("def hello(): pass"), parser.TreeOptions{})
//	if err != nil {
//	    // Handle parsing error
//	}
//	// tree is ready to hand to any solver in internal/ted
package parser
