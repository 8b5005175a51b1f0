package ted

import "fmt"

// Mapping assigns a Target to every T1 node, indexed by NodeID
type Mapping []Target

// NewMapping returns a mapping for n nodes with every node deleted
func NewMapping(n int) Mapping {
	return make(Mapping, n)
}

// Clone returns an independent copy
func (m Mapping) Clone() Mapping {
	out := make(Mapping, len(m))
	copy(out, m)
	return out
}

// Pair is one mapped node pair
type Pair struct {
	From NodeID `json:"from" yaml:"from"`
	To   NodeID `json:"to" yaml:"to"`
}

// Pairs returns the mapped pairs ordered by T1 handle
func (m Mapping) Pairs() []Pair {
	var pairs []Pair
	for v, t := range m {
		if w, ok := t.Node(); ok {
			pairs = append(pairs, Pair{From: NodeID(v), To: w})
		}
	}
	return pairs
}

// Validate checks that m is a valid mapping from t1 to t2: images are
// distinct, depths match, mapped descendants of a mapped node map below its
// image at the same distance, and right siblings keep their order under the
// same T2 parent.
func (m Mapping) Validate(t1, t2 *Tree) error {
	if len(m) != t1.Len() {
		return fmt.Errorf("%w: %d targets for %d nodes", ErrInvalidMapping, len(m), t1.Len())
	}

	owner := make(map[NodeID]NodeID, len(m))
	for i, target := range m {
		v := NodeID(i)
		w, ok := target.Node()
		if !ok {
			continue
		}
		if !t2.valid(w) {
			return fmt.Errorf("%w: node %d maps to unknown node %d", ErrInvalidMapping, v, w)
		}
		if prev, dup := owner[w]; dup {
			return fmt.Errorf("%w: nodes %d and %d both map to %d", ErrInvalidMapping, prev, v, w)
		}
		owner[w] = v
		if t1.Depth(v) != t2.Depth(w) {
			return fmt.Errorf("%w: node %d at depth %d maps to node %d at depth %d",
				ErrInvalidMapping, v, t1.Depth(v), w, t2.Depth(w))
		}
	}

	for i, target := range m {
		v := NodeID(i)
		w, ok := target.Node()
		if !ok {
			continue
		}

		// walk up to the nearest mapped ancestor
		for k, a := 1, t1.Ancestor(v, 1); a != NoNode; k, a = k+1, t1.Ancestor(a, 1) {
			aw, mapped := m[a].Node()
			if !mapped {
				continue
			}
			if t2.Ancestor(w, k) != aw {
				return fmt.Errorf("%w: node %d maps to %d, outside the image %d of its ancestor %d",
					ErrInvalidMapping, v, w, aw, a)
			}
			break
		}

		if _, hasParent := t1.Parent(v); !hasParent {
			continue
		}
		wParent, _ := t2.Parent(w)
		for _, x := range t1.RightSiblings(v) {
			y, mapped := m[x].Node()
			if !mapped {
				continue
			}
			yParent, _ := t2.Parent(y)
			if t2.Preorder(y) <= t2.Preorder(w) || yParent != wParent {
				return fmt.Errorf("%w: sibling order broken between nodes %d and %d",
					ErrInvalidMapping, v, x)
			}
		}
	}
	return nil
}
