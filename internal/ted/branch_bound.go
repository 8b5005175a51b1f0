package ted

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

// BranchAndBoundOptions configures BranchAndBound
type BranchAndBoundOptions struct {
	// Cost prices each mapping. Defaults to UnitCostModel.
	Cost CostModel

	// Workers > 1 explores the candidates of the first T1 node in parallel.
	// The result is identical to the sequential search; Stats may differ.
	Workers int

	// MaxSteps bounds the number of commitments (0 = unbounded).
	MaxSteps int64

	// Progress is called after each candidate of the first T1 node is done.
	// With Workers > 1 it is called from several goroutines.
	Progress func(done, total int)
}

// Result is the outcome of BranchAndBound
type Result struct {
	Mapping   Mapping
	Cost      int
	Breakdown Breakdown
	Stats     Stats
	// Found is false only when the search stopped before any complete mapping
	Found bool
}

// incumbent is the best complete mapping seen so far
type incumbent struct {
	found     bool
	cost      int
	mapping   Mapping
	breakdown Breakdown
}

// offer keeps the candidate only if it is strictly cheaper, so the first
// minimum found in search order wins ties.
func (b *incumbent) offer(m Mapping, bd Breakdown) bool {
	if b.found && bd.Cost >= b.cost {
		return false
	}
	b.found = true
	b.cost = bd.Cost
	b.mapping = m.Clone()
	b.breakdown = bd
	return true
}

// BranchAndBound returns a minimum-cost valid mapping from t1 to t2.
//
// The search walks the same tree as Enumerate. Before trying the candidates
// of a node it compares the cost already committed (deletions and relabels,
// never insertions) with the incumbent and cuts the branch when it cannot be
// beaten. Costs are non-negative, so the bound never overestimates.
//
// If the step budget or ctx runs out, the incumbent is returned together
// with ErrBudgetExhausted or the context error.
func BranchAndBound(ctx context.Context, t1, t2 *Tree, opts BranchAndBoundOptions) (*Result, error) {
	t1, t2, err := prepare(t1, t2)
	if err != nil {
		return nil, err
	}
	if opts.Cost == nil {
		opts.Cost = UnitCostModel{}
	}
	if err := ctx.Err(); err != nil {
		return &Result{}, err
	}

	start := time.Now()
	var res *Result
	if opts.Workers > 1 && t1.Len() > 0 {
		res, err = parallelBranchAndBound(ctx, t1, t2, opts)
	} else {
		e := newBBEngine(ctx, t1, t2, opts, new(atomic.Int64))
		e.progress = opts.Progress
		e.search(0, InitialCandidates(t1, t2), 0)
		res, err = e.result(), e.err
	}
	res.Stats.Duration = time.Since(start)
	return res, err
}

// bbEngine holds one depth-first search and its incumbent
type bbEngine struct {
	ctx      context.Context
	t1, t2   *Tree
	order    []NodeID
	cost     CostModel
	maxSteps int64
	steps    *atomic.Int64 // shared between parallel branches
	progress func(done, total int)

	mapping Mapping
	best    incumbent
	stats   Stats
	err     error
}

func newBBEngine(ctx context.Context, t1, t2 *Tree, opts BranchAndBoundOptions, steps *atomic.Int64) *bbEngine {
	return &bbEngine{
		ctx:      ctx,
		t1:       t1,
		t2:       t2,
		order:    t1.PreorderNodes(),
		cost:     opts.Cost,
		maxSteps: opts.MaxSteps,
		steps:    steps,
		mapping:  NewMapping(t1.Len()),
	}
}

// step accounts for one commitment and reports whether the search may go on
func (e *bbEngine) step() bool {
	if e.err != nil {
		return false
	}
	e.stats.Explored++
	if n := e.steps.Add(1); e.maxSteps > 0 && n > e.maxSteps {
		e.err = ErrBudgetExhausted
		return false
	}
	if err := checkContext(e.ctx, e.stats.Explored); err != nil {
		e.err = err
		return false
	}
	return true
}

func (e *bbEngine) search(i int, cs *CandidateSet, committed int) {
	if e.best.found && committed >= e.best.cost {
		e.stats.Pruned++
		return
	}

	if i == len(e.order) {
		bd := Evaluate(e.t1, e.t2, e.mapping, e.cost)
		e.stats.Solutions++
		e.best.offer(e.mapping, bd)
		return
	}

	v := e.order[i]
	candidates := cs.Get(v)
	if len(candidates) == 0 {
		e.stats.Pruned++
		return
	}

	for n, target := range candidates {
		if !e.step() {
			return
		}
		e.mapping[v] = target
		e.search(i+1, cs.Refine(v, target), committed+commitCost(e.t1, e.t2, v, target, e.cost))
		if e.err != nil {
			return
		}
		if i == 0 && e.progress != nil {
			e.progress(n+1, len(candidates))
		}
	}
	e.mapping[v] = Deleted
}

// searchBranch runs the subtree below the first node committed to target
func (e *bbEngine) searchBranch(cs *CandidateSet, target Target) {
	v := e.order[0]
	if !e.step() {
		return
	}
	e.mapping[v] = target
	e.search(1, cs.Refine(v, target), commitCost(e.t1, e.t2, v, target, e.cost))
}

func (e *bbEngine) result() *Result {
	return &Result{
		Mapping:   e.best.mapping,
		Cost:      e.best.cost,
		Breakdown: e.best.breakdown,
		Stats:     e.stats,
		Found:     e.best.found,
	}
}

// parallelBranchAndBound gives each candidate of the first node its own
// engine and incumbent. Branches are merged by (cost, branch index), which
// is exactly the mapping the sequential search keeps.
func parallelBranchAndBound(ctx context.Context, t1, t2 *Tree, opts BranchAndBoundOptions) (*Result, error) {
	initial := InitialCandidates(t1, t2)
	roots := initial.Get(t1.NodeAt(0))
	steps := new(atomic.Int64)
	engines := make([]*bbEngine, len(roots))

	var done atomic.Int64
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)

	for i, target := range roots {
		e := newBBEngine(gCtx, t1, t2, opts, steps)
		engines[i] = e
		g.Go(func() error {
			e.searchBranch(initial, target)
			if e.err != nil {
				return e.err
			}
			if opts.Progress != nil {
				opts.Progress(int(done.Add(1)), len(roots))
			}
			return nil
		})
	}
	err := g.Wait()

	merged := &Result{}
	for _, e := range engines {
		merged.Stats.add(e.stats)
		if !e.best.found {
			continue
		}
		if !merged.Found || e.best.cost < merged.Cost {
			merged.Found = true
			merged.Cost = e.best.cost
			merged.Mapping = e.best.mapping
			merged.Breakdown = e.best.breakdown
		}
	}

	// a sibling cancelled by the group reports context.Canceled; surface the
	// error that caused it instead
	if err != nil && errors.Is(err, context.Canceled) && ctx.Err() == nil {
		for _, e := range engines {
			if e.err != nil && !errors.Is(e.err, context.Canceled) {
				err = e.err
				break
			}
		}
	}
	return merged, err
}
