package ted

// NodeID is a stable handle to a node inside a Tree
type NodeID int

// NoNode marks an absent node (the parent of the root)
const NoNode NodeID = -1

type node struct {
	label    string
	parent   NodeID
	children []NodeID

	// filled by ComputeMetadata
	depth    int
	preorder int
	size     int
	leaves   int
}

// Tree is an ordered labeled tree. Nodes live in an arena and refer to each
// other by NodeID, so a Tree has no pointer cycles and copies cheaply.
//
// A tree is built with AddNode/AddRoot/AddChild and then frozen by
// ComputeMetadata. Solvers only accept frozen trees, or the empty tree.
type Tree struct {
	nodes    []node
	root     NodeID
	order    []NodeID
	height   int
	computed bool
}

// NewTree creates an empty tree
func NewTree() *Tree {
	return &Tree{root: NoNode}
}

// AddNode appends a node with the given label. Pass NoNode as parent to add
// the root; a tree accepts exactly one root.
func (t *Tree) AddNode(label string, parent NodeID) (NodeID, error) {
	if t.computed {
		return NoNode, structureErr("add node", NoNode, ErrFrozen)
	}

	id := NodeID(len(t.nodes))
	if parent == NoNode {
		if t.root != NoNode {
			return NoNode, structureErr("add node", id, ErrDuplicateRoot)
		}
		t.root = id
	} else if !t.valid(parent) {
		return NoNode, structureErr("add node", parent, ErrUnknownParent)
	}

	t.nodes = append(t.nodes, node{label: label, parent: parent})
	if parent != NoNode {
		t.nodes[parent].children = append(t.nodes[parent].children, id)
	}
	return id, nil
}

// AddRoot adds the root node
func (t *Tree) AddRoot(label string) (NodeID, error) {
	return t.AddNode(label, NoNode)
}

// AddChild appends a new rightmost child to parent
func (t *Tree) AddChild(parent NodeID, label string) (NodeID, error) {
	if parent == NoNode {
		return NoNode, structureErr("add child", parent, ErrUnknownParent)
	}
	return t.AddNode(label, parent)
}

// ComputeMetadata assigns depth, preorder index, subtree size and leaf count
// to every node in one depth-first, left-to-right pass and freezes the tree.
// Calling it again is a no-op.
func (t *Tree) ComputeMetadata() error {
	if t.computed {
		return nil
	}
	if t.root == NoNode {
		return structureErr("compute metadata", NoNode, ErrMissingRoot)
	}

	order := make([]NodeID, 0, len(t.nodes))
	stack := []NodeID{t.root}
	t.nodes[t.root].depth = 0
	height := 0

	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		n := &t.nodes[id]
		n.preorder = len(order)
		order = append(order, id)
		if n.depth > height {
			height = n.depth
		}

		// push right to left so the leftmost child is visited first
		for i := len(n.children) - 1; i >= 0; i-- {
			c := n.children[i]
			t.nodes[c].depth = n.depth + 1
			stack = append(stack, c)
		}
	}

	// nodes the walk never reached sit on a parent cycle
	if len(order) != len(t.nodes) {
		return structureErr("compute metadata", NoNode, ErrCycle)
	}

	// reverse preorder visits children before parents
	for i := len(order) - 1; i >= 0; i-- {
		n := &t.nodes[order[i]]
		n.size = 1
		n.leaves = 0
		if len(n.children) == 0 {
			n.leaves = 1
		}
		for _, c := range n.children {
			n.size += t.nodes[c].size
			n.leaves += t.nodes[c].leaves
		}
	}

	t.order = order
	t.height = height
	t.computed = true
	return nil
}

// Computed reports whether ComputeMetadata has run
func (t *Tree) Computed() bool {
	return t.computed
}

// Len returns the number of nodes
func (t *Tree) Len() int {
	if t == nil {
		return 0
	}
	return len(t.nodes)
}

// Root returns the root handle, or NoNode for an empty tree
func (t *Tree) Root() NodeID {
	return t.root
}

// Label returns the label of v
func (t *Tree) Label(v NodeID) string {
	return t.nodes[v].label
}

// Children returns the ordered children of v. The slice must not be modified.
func (t *Tree) Children(v NodeID) []NodeID {
	return t.nodes[v].children
}

// Parent returns the parent of v and false for the root
func (t *Tree) Parent(v NodeID) (NodeID, bool) {
	p := t.nodes[v].parent
	return p, p != NoNode
}

// Depth returns the distance from the root
func (t *Tree) Depth(v NodeID) int {
	return t.nodes[v].depth
}

// Preorder returns the preorder index of v
func (t *Tree) Preorder(v NodeID) int {
	return t.nodes[v].preorder
}

// Size returns the number of nodes in the subtree rooted at v
func (t *Tree) Size(v NodeID) int {
	return t.nodes[v].size
}

// Leaves returns the number of leaves in the subtree rooted at v
func (t *Tree) Leaves(v NodeID) int {
	return t.nodes[v].leaves
}

// IsLeaf returns true if v has no children
func (t *Tree) IsLeaf(v NodeID) bool {
	return len(t.nodes[v].children) == 0
}

// Height returns the largest node depth
func (t *Tree) Height() int {
	return t.height
}

// PreorderNodes returns all handles in preorder. Each call returns a fresh
// slice, so iteration can be restarted freely.
func (t *Tree) PreorderNodes() []NodeID {
	out := make([]NodeID, len(t.order))
	copy(out, t.order)
	return out
}

// NodeAt returns the node with the given preorder index
func (t *Tree) NodeAt(preorder int) NodeID {
	return t.order[preorder]
}

// Ancestor returns the k-th ancestor of v (k=0 is v itself), or NoNode
func (t *Tree) Ancestor(v NodeID, k int) NodeID {
	for ; k > 0 && v != NoNode; k-- {
		v = t.nodes[v].parent
	}
	return v
}

// RightSiblings returns the siblings that follow v under the same parent
func (t *Tree) RightSiblings(v NodeID) []NodeID {
	p := t.nodes[v].parent
	if p == NoNode {
		return nil
	}
	siblings := t.nodes[p].children
	for i, s := range siblings {
		if s == v {
			return siblings[i+1:]
		}
	}
	return nil
}

// Contains reports whether v is a handle of this tree
func (t *Tree) Contains(v NodeID) bool {
	return t.valid(v)
}

func (t *Tree) valid(v NodeID) bool {
	return v >= 0 && int(v) < len(t.nodes)
}

// ready reports whether the tree may be handed to a solver
func (t *Tree) ready() error {
	if t == nil || len(t.nodes) == 0 || t.computed {
		return nil
	}
	return structureErr("solve", NoNode, ErrMetadataNotComputed)
}
