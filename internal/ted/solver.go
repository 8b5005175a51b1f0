package ted

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Algorithm names a solver
type Algorithm string

const (
	AlgorithmBacktracking   Algorithm = "backtracking"
	AlgorithmBranchAndBound Algorithm = "bnb"
	AlgorithmForestLeaf     Algorithm = "dp"
	AlgorithmForestSize     Algorithm = "dp-size"
)

// Algorithms lists every supported algorithm
func Algorithms() []Algorithm {
	return []Algorithm{AlgorithmBranchAndBound, AlgorithmBacktracking, AlgorithmForestLeaf, AlgorithmForestSize}
}

// ParseAlgorithm resolves an algorithm name, accepting a few aliases
func ParseAlgorithm(s string) (Algorithm, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "bnb", "branch-and-bound", "branch_and_bound":
		return AlgorithmBranchAndBound, nil
	case "backtracking", "bt", "enumerate":
		return AlgorithmBacktracking, nil
	case "dp", "dp-leaf", "forest", "leaf":
		return AlgorithmForestLeaf, nil
	case "dp-size", "dp-node", "size":
		return AlgorithmForestSize, nil
	default:
		return "", fmt.Errorf("unknown algorithm %q (valid: bnb, backtracking, dp, dp-size)", s)
	}
}

// IsSearch reports whether the algorithm produces an explicit node mapping
func (a Algorithm) IsSearch() bool {
	return a == AlgorithmBacktracking || a == AlgorithmBranchAndBound
}

// SolveOptions configures Solve
type SolveOptions struct {
	Algorithm    Algorithm
	Cost         CostModel
	Workers      int
	MaxSteps     int64
	MaxSolutions int
	Progress     func(done, total int)
}

// Outcome is the uniform result of Solve
type Outcome struct {
	Algorithm Algorithm
	Cost      int
	Breakdown Breakdown
	// Mapping is the optimal mapping for search algorithms. For backtracking
	// it is the first cheapest mapping enumerated.
	Mapping Mapping
	// Pairs lists matched pairs for every algorithm
	Pairs []Pair
	// Solutions holds every enumerated mapping (backtracking only)
	Solutions []Solution
	Stats     Stats
	// Found is false when a search stopped before any complete mapping
	Found bool
}

// Solve runs exactly one solver on two frozen trees
func Solve(ctx context.Context, t1, t2 *Tree, opts SolveOptions) (*Outcome, error) {
	if opts.Algorithm == "" {
		opts.Algorithm = AlgorithmBranchAndBound
	}
	out := &Outcome{Algorithm: opts.Algorithm}

	switch opts.Algorithm {
	case AlgorithmBranchAndBound:
		res, err := BranchAndBound(ctx, t1, t2, BranchAndBoundOptions{
			Cost:     opts.Cost,
			Workers:  opts.Workers,
			MaxSteps: opts.MaxSteps,
			Progress: opts.Progress,
		})
		if res == nil {
			return nil, err
		}
		out.Cost = res.Cost
		out.Breakdown = res.Breakdown
		out.Mapping = res.Mapping
		out.Pairs = res.Mapping.Pairs()
		out.Stats = res.Stats
		out.Found = res.Found
		return out, err

	case AlgorithmBacktracking:
		sols, stats, err := Enumerate(ctx, t1, t2, EnumerateOptions{
			Cost:         opts.Cost,
			MaxSolutions: opts.MaxSolutions,
			Progress:     opts.Progress,
		})
		if IsStructureError(err) {
			return nil, err
		}
		out.Solutions = sols
		out.Stats = stats
		for i, s := range sols {
			if i == 0 || s.Cost < out.Cost {
				out.Cost = s.Cost
				out.Breakdown = s.Breakdown
				out.Mapping = s.Mapping
			}
		}
		out.Pairs = out.Mapping.Pairs()
		out.Found = len(sols) > 0
		return out, err

	case AlgorithmForestLeaf, AlgorithmForestSize:
		policy := LeafCost
		if opts.Algorithm == AlgorithmForestSize {
			policy = SizeCost
		}
		start := time.Now()
		res, err := ForestDistance(t1, t2, ForestOptions{Cost: opts.Cost, Subtree: policy})
		if err != nil {
			return nil, err
		}
		out.Cost = res.Cost
		out.Breakdown = res.Breakdown
		out.Pairs = res.Pairs
		out.Stats.Duration = time.Since(start)
		out.Found = true
		return out, nil

	default:
		return nil, fmt.Errorf("unknown algorithm %q", opts.Algorithm)
	}
}
