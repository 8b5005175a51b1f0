// Package treeio reads and writes trees as documents (JSON, YAML, TOML,
// bracket notation) and Python source files.
package treeio

import (
	"fmt"

	"github.com/ludo-technologies/treedit/internal/ted"
)

// NodeDoc is one node of a nested tree document
type NodeDoc struct {
	Label    string    `json:"label" yaml:"label" toml:"label"`
	Children []NodeDoc `json:"children,omitempty" yaml:"children,omitempty" toml:"children,omitempty"`
}

// FlatNode is one entry of a construction-ordered node list. A nil Parent
// marks the root.
type FlatNode struct {
	Label  string `json:"label" yaml:"label" toml:"label"`
	Parent *int   `json:"parent,omitempty" yaml:"parent,omitempty" toml:"parent,omitempty"`
}

// Document accepts every supported tree shape. Exactly one shape should be
// filled; the first one found in this order wins: notation, nodes,
// labels/parents, tree, inline label/children.
type Document struct {
	Notation string     `json:"notation,omitempty" yaml:"notation,omitempty" toml:"notation,omitempty"`
	Nodes    []FlatNode `json:"nodes,omitempty" yaml:"nodes,omitempty" toml:"nodes,omitempty"`
	Labels   []string   `json:"labels,omitempty" yaml:"labels,omitempty" toml:"labels,omitempty"`
	Parents  []int      `json:"parents,omitempty" yaml:"parents,omitempty" toml:"parents,omitempty"`
	Tree     *NodeDoc   `json:"tree,omitempty" yaml:"tree,omitempty" toml:"tree,omitempty"`
	Label    string     `json:"label,omitempty" yaml:"label,omitempty" toml:"label,omitempty"`
	Children []NodeDoc  `json:"children,omitempty" yaml:"children,omitempty" toml:"children,omitempty"`
}

// ToTree builds a frozen tree from the document. An empty document is the
// empty tree.
func (d *Document) ToTree() (*ted.Tree, error) {
	switch {
	case d.Notation != "":
		return ted.Parse(d.Notation)

	case len(d.Nodes) > 0:
		specs := make([]ted.NodeSpec, len(d.Nodes))
		for i, n := range d.Nodes {
			specs[i] = ted.NodeSpec{Label: n.Label, Parent: ted.NoNode}
			if n.Parent != nil {
				specs[i].Parent = ted.NodeID(*n.Parent)
			}
		}
		return ted.BuildTree(specs)

	case len(d.Labels) > 0 || len(d.Parents) > 0:
		return ted.FromParentArray(d.Labels, d.Parents)

	case d.Tree != nil:
		return nestedTree(d.Tree)

	case d.Label != "" || len(d.Children) > 0:
		return nestedTree(&NodeDoc{Label: d.Label, Children: d.Children})

	default:
		return ted.NewTree(), nil
	}
}

func nestedTree(root *NodeDoc) (*ted.Tree, error) {
	tree := ted.NewTree()
	if err := addNested(tree, root, ted.NoNode); err != nil {
		return nil, err
	}
	if err := tree.ComputeMetadata(); err != nil {
		return nil, err
	}
	return tree, nil
}

func addNested(tree *ted.Tree, n *NodeDoc, parent ted.NodeID) error {
	if n.Label == "" {
		return fmt.Errorf("tree node %d has an empty label", tree.Len())
	}
	id, err := tree.AddNode(n.Label, parent)
	if err != nil {
		return err
	}
	for i := range n.Children {
		if err := addNested(tree, &n.Children[i], id); err != nil {
			return err
		}
	}
	return nil
}

// FromTree returns the nested form of a tree, or nil for the empty tree
func FromTree(tree *ted.Tree) *NodeDoc {
	if tree.Len() == 0 {
		return nil
	}
	return nodeDoc(tree, tree.Root())
}

func nodeDoc(tree *ted.Tree, v ted.NodeID) *NodeDoc {
	doc := &NodeDoc{Label: tree.Label(v)}
	for _, c := range tree.Children(v) {
		doc.Children = append(doc.Children, *nodeDoc(tree, c))
	}
	return doc
}
