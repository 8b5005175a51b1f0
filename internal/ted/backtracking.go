package ted

import (
	"context"
	"time"
)

// EnumerateOptions configures Enumerate
type EnumerateOptions struct {
	// Cost prices each mapping. Defaults to UnitCostModel.
	Cost CostModel

	// MaxSolutions stops the search after that many mappings (0 = all).
	MaxSolutions int

	// Visit, when set, receives every mapping instead of collecting them.
	// Returning false stops the search.
	Visit func(Solution) bool

	// Progress is called after each candidate of the first T1 node is done.
	Progress func(done, total int)
}

// Enumerate returns every valid complete mapping from t1 to t2 with its cost.
// Nodes are committed in T1 preorder and candidates are tried in their list
// order, so the output order is deterministic.
//
// The number of mappings grows exponentially with tree size. Bound it with
// MaxSolutions or use BranchAndBound when only the optimum is needed.
func Enumerate(ctx context.Context, t1, t2 *Tree, opts EnumerateOptions) ([]Solution, Stats, error) {
	t1, t2, err := prepare(t1, t2)
	if err != nil {
		return nil, Stats{}, err
	}
	if opts.Cost == nil {
		opts.Cost = UnitCostModel{}
	}
	if err := ctx.Err(); err != nil {
		return nil, Stats{}, err
	}

	start := time.Now()
	e := &enumerator{
		ctx:     ctx,
		t1:      t1,
		t2:      t2,
		order:   t1.PreorderNodes(),
		opts:    opts,
		mapping: NewMapping(t1.Len()),
	}
	e.search(0, InitialCandidates(t1, t2))
	e.stats.Duration = time.Since(start)

	return e.solutions, e.stats, e.err
}

type enumerator struct {
	ctx       context.Context
	t1, t2    *Tree
	order     []NodeID
	opts      EnumerateOptions
	mapping   Mapping
	solutions []Solution
	stats     Stats
	stopped   bool
	err       error
}

func (e *enumerator) search(i int, cs *CandidateSet) {
	if i == len(e.order) {
		e.emit()
		return
	}

	v := e.order[i]
	candidates := cs.Get(v)
	if len(candidates) == 0 {
		e.stats.Pruned++
		return
	}

	for n, target := range candidates {
		e.stats.Explored++
		if err := checkContext(e.ctx, e.stats.Explored); err != nil {
			e.stop(err)
		}
		if e.stopped {
			return
		}

		e.mapping[v] = target
		e.search(i+1, cs.Refine(v, target))
		if e.stopped {
			return
		}

		if i == 0 && e.opts.Progress != nil {
			e.opts.Progress(n+1, len(candidates))
		}
	}
	e.mapping[v] = Deleted
}

func (e *enumerator) emit() {
	m := e.mapping.Clone()
	b := Evaluate(e.t1, e.t2, m, e.opts.Cost)
	sol := Solution{Mapping: m, Cost: b.Cost, Breakdown: b}
	e.stats.Solutions++

	if e.opts.Visit != nil {
		if !e.opts.Visit(sol) {
			e.stop(nil)
		}
	} else {
		e.solutions = append(e.solutions, sol)
	}

	if e.opts.MaxSolutions > 0 && e.stats.Solutions >= int64(e.opts.MaxSolutions) {
		e.stop(nil)
	}
}

func (e *enumerator) stop(err error) {
	e.stopped = true
	if e.err == nil {
		e.err = err
	}
}
