package ted

// CandidateSet holds, for every T1 node, the ordered targets it may still
// take. Sets are persistent: Refine returns a new set and leaves the receiver
// untouched. Lists that a refinement does not change are shared between the
// two versions, so a search branch costs one outer slice plus the lists it
// actually narrows.
type CandidateSet struct {
	t1, t2 *Tree
	lists  [][]Target
}

// InitialCandidates builds C[v] = [Deleted] + every T2 node at depth(v),
// in T2 preorder.
func InitialCandidates(t1, t2 *Tree) *CandidateSet {
	byDepth := make(map[int][]Target)
	for _, w := range t2.order {
		d := t2.Depth(w)
		byDepth[d] = append(byDepth[d], MappedTo(w))
	}

	lists := make([][]Target, t1.Len())
	for _, v := range t1.order {
		same := byDepth[t1.Depth(v)]
		l := make([]Target, 0, len(same)+1)
		l = append(l, Deleted)
		l = append(l, same...)
		lists[v] = l
	}
	return &CandidateSet{t1: t1, t2: t2, lists: lists}
}

// Get returns the candidates of v. The slice is shared and must not be
// modified.
func (c *CandidateSet) Get(v NodeID) []Target {
	return c.lists[v]
}

// Len returns the number of candidates left for v
func (c *CandidateSet) Len(v NodeID) int {
	return len(c.lists[v])
}

// Refine commits v to chosen and narrows the candidates of later nodes:
//
//  1. chosen leaves the set of every node after v in T1 preorder;
//  2. a descendant of v at distance k keeps only Deleted and T2 nodes whose
//     k-th ancestor is chosen;
//  3. a right sibling of v keeps only Deleted and T2 nodes that follow
//     chosen in preorder under the same parent.
//
// Choosing Deleted imposes no constraint. A list may become empty, which
// leaves the branch without completions.
func (c *CandidateSet) Refine(v NodeID, chosen Target) *CandidateSet {
	w, ok := chosen.Node()
	if !ok {
		return c
	}

	next := &CandidateSet{t1: c.t1, t2: c.t2, lists: make([][]Target, len(c.lists))}
	copy(next.lists, c.lists)

	t1, t2 := c.t1, c.t2
	start := t1.Preorder(v)

	// bijection: only nodes at the same depth can hold w
	depth := t1.Depth(v)
	for i := start + 1; i < len(t1.order); i++ {
		u := t1.order[i]
		if t1.Depth(u) != depth {
			continue
		}
		next.lists[u] = filter(next.lists[u], func(y NodeID) bool { return y != w })
	}

	// ancestor preservation over the contiguous preorder block of v's subtree
	end := start + t1.Size(v)
	for i := start + 1; i < end; i++ {
		x := t1.order[i]
		k := t1.Depth(x) - depth
		next.lists[x] = filter(next.lists[x], func(y NodeID) bool {
			return t2.Ancestor(y, k) == w
		})
	}

	// sibling order
	if _, hasParent := t1.Parent(v); hasParent {
		wParent, _ := t2.Parent(w)
		wPre := t2.Preorder(w)
		for _, x := range t1.RightSiblings(v) {
			next.lists[x] = filter(next.lists[x], func(y NodeID) bool {
				p, _ := t2.Parent(y)
				return t2.Preorder(y) > wPre && p == wParent
			})
		}
	}

	return next
}

// filter keeps Deleted and every mapped target accepted by keep. It returns
// the input slice itself when nothing is removed.
func filter(list []Target, keep func(NodeID) bool) []Target {
	drop := -1
	for i, t := range list {
		if y, ok := t.Node(); ok && !keep(y) {
			drop = i
			break
		}
	}
	if drop < 0 {
		return list
	}

	out := make([]Target, drop, len(list)-1)
	copy(out, list[:drop])
	for _, t := range list[drop+1:] {
		if y, ok := t.Node(); ok && !keep(y) {
			continue
		}
		out = append(out, t)
	}
	return out
}
