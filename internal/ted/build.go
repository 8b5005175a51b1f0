package ted

import (
	"fmt"
	"strings"
)

// NodeSpec describes one node in construction order. Parent is the index of
// an earlier spec, or NoNode for the root.
type NodeSpec struct {
	Label  string
	Parent NodeID
}

// BuildTree builds and freezes a tree from construction-ordered specs.
// An empty spec list yields the empty tree.
func BuildTree(specs []NodeSpec) (*Tree, error) {
	t := NewTree()
	if len(specs) == 0 {
		return t, nil
	}
	for i, s := range specs {
		if s.Parent != NoNode && int(s.Parent) >= i {
			return nil, structureErr("build tree", NodeID(i), ErrUnknownParent)
		}
		if _, err := t.AddNode(s.Label, s.Parent); err != nil {
			return nil, err
		}
	}
	if err := t.ComputeMetadata(); err != nil {
		return nil, err
	}
	return t, nil
}

// FromParentArray builds and freezes a tree from a parent array in arbitrary
// order: parents[i] is the index of node i's parent, or -1 for the root.
// Node i gets handle NodeID(i); children keep increasing index order.
func FromParentArray(labels []string, parents []int) (*Tree, error) {
	if len(labels) != len(parents) {
		return nil, fmt.Errorf("from parent array: %d labels but %d parents", len(labels), len(parents))
	}

	t := NewTree()
	if len(labels) == 0 {
		return t, nil
	}

	t.nodes = make([]node, len(labels))
	for i, label := range labels {
		t.nodes[i] = node{label: label, parent: NoNode}
	}

	for i, p := range parents {
		id := NodeID(i)
		switch {
		case p == -1:
			if t.root != NoNode {
				return nil, structureErr("from parent array", id, ErrDuplicateRoot)
			}
			t.root = id
		case p < 0 || p >= len(labels):
			return nil, structureErr("from parent array", id, ErrUnknownParent)
		case p == i:
			return nil, structureErr("from parent array", id, ErrCycle)
		default:
			t.nodes[i].parent = NodeID(p)
			t.nodes[p].children = append(t.nodes[p].children, id)
		}
	}

	if err := t.ComputeMetadata(); err != nil {
		return nil, err
	}
	return t, nil
}

// MustParse is like Parse but panics on error. Intended for tests and
// fixed fixtures.
func MustParse(s string) *Tree {
	t, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return t
}

// Parse reads a tree in bracket notation, e.g. "A(B(D),C)", and freezes it.
// Labels are trimmed runs of any characters except '(', ')' and ','.
// A blank string is the empty tree.
func Parse(s string) (*Tree, error) {
	t := NewTree()
	p := &notationParser{src: s}
	p.skipSpace()
	if p.eof() {
		return t, nil
	}
	if err := p.parseNode(t, NoNode); err != nil {
		return nil, err
	}
	p.skipSpace()
	if !p.eof() {
		return nil, p.errorf("unexpected %q", p.src[p.pos])
	}
	if err := t.ComputeMetadata(); err != nil {
		return nil, err
	}
	return t, nil
}

type notationParser struct {
	src string
	pos int
}

func (p *notationParser) parseNode(t *Tree, parent NodeID) error {
	label := p.readLabel()
	if label == "" {
		return p.errorf("expected label")
	}
	id, err := t.AddNode(label, parent)
	if err != nil {
		return err
	}

	p.skipSpace()
	if p.eof() || p.src[p.pos] != '(' {
		return nil
	}
	p.pos++

	for {
		p.skipSpace()
		if err := p.parseNode(t, id); err != nil {
			return err
		}
		p.skipSpace()
		if p.eof() {
			return p.errorf("unterminated child list")
		}
		switch p.src[p.pos] {
		case ',':
			p.pos++
		case ')':
			p.pos++
			return nil
		default:
			return p.errorf("unexpected %q", p.src[p.pos])
		}
	}
}

func (p *notationParser) readLabel() string {
	start := p.pos
	for !p.eof() && !strings.ContainsRune("(),", rune(p.src[p.pos])) {
		p.pos++
	}
	return strings.TrimSpace(p.src[start:p.pos])
}

func (p *notationParser) skipSpace() {
	for !p.eof() && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t' || p.src[p.pos] == '\n' || p.src[p.pos] == '\r') {
		p.pos++
	}
}

func (p *notationParser) eof() bool {
	return p.pos >= len(p.src)
}

func (p *notationParser) errorf(format string, args ...interface{}) error {
	return fmt.Errorf("parse tree at offset %d: %s", p.pos, fmt.Sprintf(format, args...))
}

// String renders the tree in the bracket notation accepted by Parse
func (t *Tree) String() string {
	if t.Len() == 0 {
		return ""
	}
	var b strings.Builder
	t.writeNode(&b, t.root)
	return b.String()
}

func (t *Tree) writeNode(b *strings.Builder, v NodeID) {
	b.WriteString(t.nodes[v].label)
	children := t.nodes[v].children
	if len(children) == 0 {
		return
	}
	b.WriteByte('(')
	for i, c := range children {
		if i > 0 {
			b.WriteByte(',')
		}
		t.writeNode(b, c)
	}
	b.WriteByte(')')
}
