package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ludo-technologies/treedit/domain"
	"github.com/ludo-technologies/treedit/internal/logging"
	"github.com/ludo-technologies/treedit/internal/ted"
	"github.com/ludo-technologies/treedit/internal/version"
)

// DistanceServiceImpl implements the DistanceService interface
type DistanceServiceImpl struct {
	loader *TreeLoader
}

// NewDistanceService creates a new distance service implementation
func NewDistanceService(loader *TreeLoader) *DistanceServiceImpl {
	if loader == nil {
		loader = NewTreeLoader(0)
	}
	return &DistanceServiceImpl{loader: loader}
}

// Distance loads both trees and computes their edit distance
func (s *DistanceServiceImpl) Distance(ctx context.Context, req domain.DistanceRequest) (*domain.DistanceResponse, error) {
	t1, t2, err := s.loadPair(ctx, req)
	if err != nil {
		recordError(domain.ErrorCode(err))
		return nil, err
	}
	return s.Compare(ctx, t1, t2, req)
}

// Compare computes the edit distance between two loaded trees
func (s *DistanceServiceImpl) Compare(ctx context.Context, t1, t2 *ted.Tree, req domain.DistanceRequest) (*domain.DistanceResponse, error) {
	algorithm, err := ted.ParseAlgorithm(req.Algorithm)
	if err != nil {
		recordError(domain.ErrCodeInvalidInput)
		return nil, domain.NewInvalidInputError("invalid algorithm", err)
	}

	out, warnings, err := s.solve(ctx, t1, t2, req, algorithm)
	if err != nil {
		recordError(domain.ErrorCode(err))
		return nil, err
	}

	deleted, inserted := unmatched(t1, t2, out.Pairs)

	return &domain.DistanceResponse{
		RunID:       uuid.New().String(),
		Algorithm:   string(out.Algorithm),
		Tree1:       summarize(req.Source1.Name(), t1),
		Tree2:       summarize(req.Source2.Name(), t2),
		Cost:        out.Cost,
		Breakdown:   toBreakdown(out.Breakdown),
		Pairs:       nodePairs(t1, t2, out.Pairs),
		Deleted:     deleted,
		Inserted:    inserted,
		Exact:       len(warnings) == 0,
		Stats:       toStats(out.Stats),
		Warnings:    warnings,
		GeneratedAt: time.Now().Format(time.RFC3339),
		Version:     version.Version,
	}, nil
}

// Mappings enumerates every valid mapping between the two trees
func (s *DistanceServiceImpl) Mappings(ctx context.Context, req domain.DistanceRequest) (*domain.MappingsResponse, error) {
	t1, t2, err := s.loadPair(ctx, req)
	if err != nil {
		recordError(domain.ErrorCode(err))
		return nil, err
	}

	out, warnings, err := s.solve(ctx, t1, t2, req, ted.AlgorithmBacktracking)
	if err != nil {
		recordError(domain.ErrorCode(err))
		return nil, err
	}

	mappings := make([]domain.MappingResult, len(out.Solutions))
	for i, sol := range out.Solutions {
		pairs := sol.Mapping.Pairs()
		deleted, inserted := unmatched(t1, t2, pairs)
		mappings[i] = domain.MappingResult{
			Index:     i + 1,
			Cost:      sol.Cost,
			Breakdown: toBreakdown(sol.Breakdown),
			Pairs:     nodePairs(t1, t2, pairs),
			Deleted:   deleted,
			Inserted:  inserted,
			Optimal:   sol.Cost == out.Cost,
		}
	}

	truncated := len(warnings) > 0
	if req.MaxSolutions > 0 && len(out.Solutions) >= req.MaxSolutions {
		truncated = true
		warnings = append(warnings, fmt.Sprintf("enumeration stopped after %d mappings; min_cost covers only those", req.MaxSolutions))
	}

	return &domain.MappingsResponse{
		RunID:       uuid.New().String(),
		Tree1:       summarize(req.Source1.Name(), t1),
		Tree2:       summarize(req.Source2.Name(), t2),
		Mappings:    mappings,
		MinCost:     out.Cost,
		Truncated:   truncated,
		Stats:       toStats(out.Stats),
		Warnings:    warnings,
		GeneratedAt: time.Now().Format(time.RFC3339),
		Version:     version.Version,
	}, nil
}

// loadPair validates the request and loads both trees
func (s *DistanceServiceImpl) loadPair(ctx context.Context, req domain.DistanceRequest) (*ted.Tree, *ted.Tree, error) {
	if err := req.Validate(); err != nil {
		return nil, nil, err
	}

	t1, err := s.loader.Load(ctx, req.Source1, req.LabelText)
	if err != nil {
		return nil, nil, err
	}
	t2, err := s.loader.Load(ctx, req.Source2, req.LabelText)
	if err != nil {
		return nil, nil, err
	}
	return t1, t2, nil
}

// solve runs one solver under the request's deadline. A search that stopped
// early but found a complete mapping is returned with a warning.
func (s *DistanceServiceImpl) solve(ctx context.Context, t1, t2 *ted.Tree, req domain.DistanceRequest, algorithm ted.Algorithm) (*ted.Outcome, []string, error) {
	costs, err := CostModel(req.Costs)
	if err != nil {
		return nil, nil, domain.NewInvalidInputError("invalid costs", err)
	}

	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	logger := logging.FromContext(ctx)
	logger.Debug("solving", "algorithm", algorithm, "t1_nodes", t1.Len(), "t2_nodes", t2.Len())
	recordTreeSizes(t1.Len(), t2.Len())

	timer := logging.Start(logger)
	start := time.Now()
	out, err := ted.Solve(ctx, t1, t2, ted.SolveOptions{
		Algorithm:    algorithm,
		Cost:         costs,
		Workers:      req.Workers,
		MaxSteps:     req.MaxSteps,
		MaxSolutions: req.MaxSolutions,
	})
	elapsed := time.Since(start)

	switch {
	case out == nil:
		recordSolve(string(algorithm), statusError, elapsed, 0, 0)
		if ted.IsStructureError(err) {
			return nil, nil, domain.NewStructureError("input", err)
		}
		return nil, nil, domain.NewAnalysisError("tree edit distance failed", err)

	case err != nil && !out.Found:
		recordSolve(string(algorithm), statusError, elapsed, out.Stats.Explored, out.Stats.Pruned)
		return nil, nil, domain.NewTimeoutError(stopReason(err), err)

	case err != nil:
		recordSolve(string(algorithm), statusPartial, elapsed, out.Stats.Explored, out.Stats.Pruned)
		logger.Warn("search stopped early", "algorithm", algorithm, "err", err)
		timer.Done("solve finished", "algorithm", algorithm, "cost", out.Cost, "exact", false)
		return out, []string{fmt.Sprintf("%s; cost %d is the best found so far", stopReason(err), out.Cost)}, nil
	}

	recordSolve(string(algorithm), statusOK, elapsed, out.Stats.Explored, out.Stats.Pruned)
	timer.Done("solve finished", "algorithm", algorithm, "cost", out.Cost, "explored", out.Stats.Explored)
	return out, nil, nil
}

func stopReason(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "search timed out"
	case errors.Is(err, context.Canceled):
		return "search cancelled"
	case errors.Is(err, ted.ErrBudgetExhausted):
		return "search step budget exhausted"
	default:
		return "search stopped early"
	}
}

// CostModel builds a cost model from per-operation weights. All-zero and
// all-one weights select unit costs.
func CostModel(w domain.CostWeights) (ted.CostModel, error) {
	if w == (domain.CostWeights{}) || w == (domain.CostWeights{Delete: 1, Insert: 1, Relabel: 1}) {
		return ted.UnitCostModel{}, nil
	}
	return ted.NewWeightedCostModel(w.Delete, w.Insert, w.Relabel)
}

// summarize describes a tree in parent-array form
func summarize(name string, t *ted.Tree) domain.TreeSummary {
	n := t.Len()
	summary := domain.TreeSummary{
		Name:     name,
		Nodes:    n,
		Height:   t.Height(),
		Notation: t.String(),
		Labels:   make([]string, n),
		Parents:  make([]int, n),
	}
	for v := 0; v < n; v++ {
		id := ted.NodeID(v)
		summary.Labels[v] = t.Label(id)
		summary.Parents[v] = -1
		if p, ok := t.Parent(id); ok {
			summary.Parents[v] = int(p)
		}
	}
	return summary
}

func nodePairs(t1, t2 *ted.Tree, pairs []ted.Pair) []domain.NodePair {
	result := make([]domain.NodePair, len(pairs))
	for i, p := range pairs {
		from, to := t1.Label(p.From), t2.Label(p.To)
		result[i] = domain.NodePair{
			From:      int(p.From),
			To:        int(p.To),
			FromLabel: from,
			ToLabel:   to,
			Relabeled: from != to,
		}
	}
	return result
}

// unmatched returns the T1 nodes left unmapped (deleted) and the T2 nodes
// no T1 node maps to (inserted)
func unmatched(t1, t2 *ted.Tree, pairs []ted.Pair) (deleted, inserted []int) {
	from := make([]bool, t1.Len())
	to := make([]bool, t2.Len())
	for _, p := range pairs {
		from[p.From] = true
		to[p.To] = true
	}

	deleted = []int{}
	for v, hit := range from {
		if !hit {
			deleted = append(deleted, v)
		}
	}
	inserted = []int{}
	for w, hit := range to {
		if !hit {
			inserted = append(inserted, w)
		}
	}
	return deleted, inserted
}

func toBreakdown(b ted.Breakdown) domain.Breakdown {
	return domain.Breakdown{
		Deletions:   b.Deletions,
		Insertions:  b.Insertions,
		Relabelings: b.Relabelings,
		Cost:        b.Cost,
	}
}

func toStats(s ted.Stats) domain.SearchStats {
	return domain.SearchStats{
		Explored:   s.Explored,
		Pruned:     s.Pruned,
		Solutions:  s.Solutions,
		DurationMs: s.Duration.Milliseconds(),
	}
}
