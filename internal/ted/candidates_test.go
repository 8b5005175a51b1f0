package ted

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// exampleTrees returns A(B(D),C) and A(X(D),Y).
// T1 ids: A=0 B=1 D=2 C=3. T2 ids: A=0 X=1 D=2 Y=3.
func exampleTrees() (*Tree, *Tree) {
	return MustParse("A(B(D),C)"), MustParse("A(X(D),Y)")
}

func targets(ids ...int) []Target {
	out := []Target{Deleted}
	for _, id := range ids {
		out = append(out, MappedTo(NodeID(id)))
	}
	return out
}

func TestInitialCandidates(t *testing.T) {
	t1, t2 := exampleTrees()
	cs := InitialCandidates(t1, t2)

	assert.Equal(t, targets(0), cs.Get(0))
	assert.Equal(t, targets(1, 3), cs.Get(1))
	assert.Equal(t, targets(2), cs.Get(2))
	assert.Equal(t, targets(1, 3), cs.Get(3))
}

func TestInitialCandidates_NoSameDepthNode(t *testing.T) {
	cs := InitialCandidates(MustParse("A(B(C))"), MustParse("A"))
	assert.Equal(t, targets(), cs.Get(1))
	assert.Equal(t, targets(), cs.Get(2))
}

func TestRefine(t *testing.T) {
	t1, t2 := exampleTrees()
	root := InitialCandidates(t1, t2).Refine(0, MappedTo(0))

	t.Run("root mapping keeps same-parent candidates", func(t *testing.T) {
		assert.Equal(t, targets(1, 3), root.Get(1))
		assert.Equal(t, targets(2), root.Get(2))
		assert.Equal(t, targets(1, 3), root.Get(3))
	})

	t.Run("B to X", func(t *testing.T) {
		cs := root.Refine(1, MappedTo(1))
		assert.Equal(t, targets(2), cs.Get(2), "D stays under X")
		assert.Equal(t, targets(3), cs.Get(3), "C loses X and must follow it")
	})

	t.Run("B to Y", func(t *testing.T) {
		cs := root.Refine(1, MappedTo(3))
		assert.Equal(t, targets(), cs.Get(2), "Y has no children")
		assert.Equal(t, targets(), cs.Get(3), "nothing follows Y")
	})

	t.Run("deleted imposes nothing", func(t *testing.T) {
		cs := root.Refine(1, Deleted)
		assert.Same(t, root, cs)
	})
}

func TestRefine_Transitive(t *testing.T) {
	// T1: R(P(Q(Z))) ; T2: R(P1(Q1(Z1)),P2(Q2(Z2)))
	t1 := MustParse("R(P(Q(Z)))")
	t2 := MustParse("R(P1(Q1(Z1)),P2(Q2(Z2)))")
	// T2 ids: R=0 P1=1 Q1=2 Z1=3 P2=4 Q2=5 Z2=6

	cs := InitialCandidates(t1, t2).Refine(0, MappedTo(0)).Refine(1, MappedTo(1))
	assert.Equal(t, targets(2), cs.Get(2))
	assert.Equal(t, targets(3), cs.Get(3), "grandchild is bound to the image subtree")

	// deleting the middle node keeps the grandchild bound to P1
	cs = cs.Refine(2, Deleted)
	assert.Equal(t, targets(3), cs.Get(3))
}

func TestRefine_Persistent(t *testing.T) {
	t1, t2 := exampleTrees()
	base := InitialCandidates(t1, t2).Refine(0, MappedTo(0))
	before := append([]Target(nil), base.Get(3)...)

	next := base.Refine(1, MappedTo(1))

	assert.Equal(t, before, base.Get(3), "parent set must not change")
	assert.NotEqual(t, base.Get(3), next.Get(3))

	// lists untouched by the refinement are shared
	assert.True(t, &base.Get(0)[0] == &next.Get(0)[0])
}

func TestRefine_Bijection(t *testing.T) {
	// two leaves competing for the same targets
	t1 := MustParse("A(B,C)")
	t2 := MustParse("A(B,C)")
	cs := InitialCandidates(t1, t2).Refine(1, MappedTo(2))

	for _, target := range cs.Get(2) {
		w, ok := target.Node()
		if ok {
			assert.NotEqual(t, NodeID(2), w)
		}
	}
}
