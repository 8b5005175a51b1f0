package ted

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var treePairs = []struct {
	name   string
	t1, t2 string
}{
	{"example", "A(B(D),C)", "A(X(D),Y)"},
	{"identical", "A(B(C,D),E(F))", "A(B(C,D),E(F))"},
	{"extra child", "A(B,C)", "A(B,X,C)"},
	{"missing child", "A(B,X,C)", "A(B,C)"},
	{"deeper source", "A(B(C(D)))", "A(B)"},
	{"different roots", "R(A,B)", "S(B,A)"},
	{"wide", "A(B,C,D)", "A(D,C,B)"},
}

func TestBranchAndBound_Cases(t *testing.T) {
	tests := []struct {
		name string
		t1   *Tree
		t2   *Tree
		want Breakdown
	}{
		{"example", MustParse("A(B(D),C)"), MustParse("A(X(D),Y)"), Breakdown{Relabelings: 2, Cost: 2}},
		{"single vs empty", MustParse("A"), NewTree(), Breakdown{Deletions: 1, Cost: 1}},
		{"empty vs single", NewTree(), MustParse("A"), Breakdown{Insertions: 1, Cost: 1}},
		{"both empty", NewTree(), NewTree(), Breakdown{}},
		{"same label", MustParse("A"), MustParse("A"), Breakdown{}},
		{"different label", MustParse("A"), MustParse("B"), Breakdown{Relabelings: 1, Cost: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := BranchAndBound(t.Context(), tt.t1, tt.t2, BranchAndBoundOptions{})
			require.NoError(t, err)
			assert.True(t, res.Found)
			assert.Equal(t, tt.want.Cost, res.Cost)
			assert.Equal(t, tt.want, res.Breakdown)
		})
	}
}

func TestBranchAndBound_ExampleMapping(t *testing.T) {
	t1, t2 := exampleTrees()
	res, err := BranchAndBound(t.Context(), t1, t2, BranchAndBoundOptions{})
	require.NoError(t, err)
	assert.Equal(t, Mapping{MappedTo(0), MappedTo(1), MappedTo(2), MappedTo(3)}, res.Mapping)
}

func TestBranchAndBound_IdentityIsZero(t *testing.T) {
	for _, s := range []string{"A", "A(B)", "A(B(C,D),E(F))", "x(y(z),y(z),y)"} {
		t.Run(s, func(t *testing.T) {
			res, err := BranchAndBound(t.Context(), MustParse(s), MustParse(s), BranchAndBoundOptions{})
			require.NoError(t, err)
			assert.Equal(t, 0, res.Cost)
			assert.Equal(t, Breakdown{}, res.Breakdown)
		})
	}
}

func TestBranchAndBound_MatchesEnumeration(t *testing.T) {
	for _, tp := range treePairs {
		t.Run(tp.name, func(t *testing.T) {
			t1, t2 := MustParse(tp.t1), MustParse(tp.t2)

			solutions, btStats, err := Enumerate(t.Context(), t1, t2, EnumerateOptions{})
			require.NoError(t, err)

			res, err := BranchAndBound(t.Context(), t1, t2, BranchAndBoundOptions{})
			require.NoError(t, err)

			assert.Equal(t, minCost(solutions), res.Cost)
			assert.NoError(t, res.Mapping.Validate(t1, t2))
			assert.LessOrEqual(t, res.Stats.Explored, btStats.Explored)
		})
	}
}

func TestBranchAndBound_ExploresLessThanEnumeration(t *testing.T) {
	t1, t2 := exampleTrees()
	_, btStats, err := Enumerate(t.Context(), t1, t2, EnumerateOptions{})
	require.NoError(t, err)

	res, err := BranchAndBound(t.Context(), t1, t2, BranchAndBoundOptions{})
	require.NoError(t, err)

	assert.Less(t, res.Stats.Explored, btStats.Explored)
	assert.Positive(t, res.Stats.Pruned)
}

func TestBranchAndBound_ParallelMatchesSequential(t *testing.T) {
	for _, tp := range treePairs {
		t.Run(tp.name, func(t *testing.T) {
			t1, t2 := MustParse(tp.t1), MustParse(tp.t2)

			seq, err := BranchAndBound(t.Context(), t1, t2, BranchAndBoundOptions{})
			require.NoError(t, err)
			par, err := BranchAndBound(t.Context(), t1, t2, BranchAndBoundOptions{Workers: 4})
			require.NoError(t, err)

			assert.Equal(t, seq.Cost, par.Cost)
			assert.Equal(t, seq.Mapping, par.Mapping)
			assert.Equal(t, seq.Breakdown, par.Breakdown)
		})
	}
}

func TestBranchAndBound_StepBudget(t *testing.T) {
	t1, t2 := exampleTrees()
	res, err := BranchAndBound(t.Context(), t1, t2, BranchAndBoundOptions{MaxSteps: 2})
	assert.ErrorIs(t, err, ErrBudgetExhausted)
	require.NotNil(t, res)
	assert.False(t, res.Found)

	// a budget large enough to finish behaves like no budget
	res, err = BranchAndBound(t.Context(), t1, t2, BranchAndBoundOptions{MaxSteps: 1 << 20})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Cost)
}

func TestBranchAndBound_StepBudgetParallel(t *testing.T) {
	t1, t2 := exampleTrees()
	res, err := BranchAndBound(t.Context(), t1, t2, BranchAndBoundOptions{MaxSteps: 2, Workers: 2})
	assert.ErrorIs(t, err, ErrBudgetExhausted)
	require.NotNil(t, res)
}

func TestBranchAndBound_Cancelled(t *testing.T) {
	// wide enough to pass the first context check
	t1 := MustParse("A(B,C,D,E,F,G,H,I,J)")
	t2 := MustParse("A(B,C,D,E,F,G,H,I,J,K)")

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	res, err := BranchAndBound(ctx, t1, t2, BranchAndBoundOptions{})
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, res)
}

func TestBranchAndBound_WeightedCosts(t *testing.T) {
	cm, err := NewWeightedCostModel(1, 1, 5)
	require.NoError(t, err)

	res, err := BranchAndBound(t.Context(), MustParse("A"), MustParse("B"), BranchAndBoundOptions{Cost: cm})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Cost, "delete plus insert beats an expensive relabel")
	assert.Equal(t, Breakdown{Deletions: 1, Insertions: 1, Cost: 2}, res.Breakdown)
}

func TestBranchAndBound_PartialCostBoundsOptimum(t *testing.T) {
	for _, tc := range treePairs {
		t.Run(tc.name, func(t *testing.T) {
			t1, t2 := MustParse(tc.t1), MustParse(tc.t2)
			res, err := BranchAndBound(t.Context(), t1, t2, BranchAndBoundOptions{})
			require.NoError(t, err)

			prev := 0
			for n := 0; n <= t1.Len(); n++ {
				bound := PartialCost(t1, t2, res.Mapping, n, nil)
				assert.GreaterOrEqual(t, bound, prev, "bound shrank at prefix %d", n)
				assert.LessOrEqual(t, bound, res.Cost, "bound exceeds optimum at prefix %d", n)
				prev = bound
			}
			assert.Equal(t, res.Cost, prev+res.Breakdown.Insertions)
		})
	}
}
