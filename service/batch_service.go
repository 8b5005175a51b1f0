package service

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/ludo-technologies/treedit/domain"
	"github.com/ludo-technologies/treedit/internal/logging"
	"github.com/ludo-technologies/treedit/internal/ted"
	"github.com/ludo-technologies/treedit/internal/version"
)

// BatchServiceImpl implements the BatchService interface
type BatchServiceImpl struct {
	loader   *TreeLoader
	distance *DistanceServiceImpl
	progress domain.ProgressManager
}

// NewBatchService creates a batch service. progress may be nil.
func NewBatchService(loader *TreeLoader, progress domain.ProgressManager) *BatchServiceImpl {
	if loader == nil {
		loader = NewTreeLoader(0)
	}
	if progress == nil {
		progress = NoOpProgressManager{}
	}
	return &BatchServiceImpl{
		loader:   loader,
		distance: NewDistanceService(loader),
		progress: progress,
	}
}

// Compare computes the distance between every unordered pair of files.
// Files that fail to load and pairs that fail to solve are reported in
// Errors and leave -1 in the matrix.
func (s *BatchServiceImpl) Compare(ctx context.Context, files []string, req domain.BatchRequest) (*domain.BatchResponse, error) {
	if len(files) < 2 {
		return nil, domain.NewValidationError(fmt.Sprintf("at least two tree files are required, found %d", len(files)))
	}

	algorithm, err := ted.ParseAlgorithm(req.Distance.Algorithm)
	if err != nil {
		return nil, domain.NewInvalidInputError("invalid algorithm", err)
	}
	if _, err := CostModel(req.Distance.Costs); err != nil {
		return nil, domain.NewInvalidInputError("invalid costs", err)
	}

	concurrency := req.Concurrency
	if concurrency <= 0 {
		concurrency = runtime.GOMAXPROCS(0)
	}

	logger := logging.FromContext(ctx)
	timer := logging.Start(logger)

	cache := PopulateTreeCache(ctx, s.loader, files, req.Distance.LabelText, concurrency)

	n := len(files)
	matrix := make([][]int, n)
	var errs []string
	for i, path := range files {
		matrix[i] = make([]int, n)
		if entry, _ := cache.Get(path); entry.Err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", path, entry.Err))
			matrix[i][i] = -1
		}
	}

	var pairs []domain.BatchPair
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			pairs = append(pairs, domain.BatchPair{I: i, J: j})
		}
	}

	var (
		mu   sync.Mutex
		done atomic.Int64
	)
	ran := make([]bool, len(pairs))
	s.progress.Initialize(len(pairs))
	s.progress.Start()

	dreq := req.Distance
	dreq.Algorithm = string(algorithm)

	tasks := make([]domain.ExecutableTask, len(pairs))
	for k := range pairs {
		p := &pairs[k]
		a, _ := cache.Get(files[p.I])
		b, _ := cache.Get(files[p.J])

		name := fmt.Sprintf("%s vs %s", files[p.I], files[p.J])
		tasks[k] = NewSimpleTask(name, true, func(ctx context.Context) (interface{}, error) {
			mu.Lock()
			ran[k] = true
			mu.Unlock()
			defer func() {
				s.progress.Update(int(done.Add(1)), len(pairs))
			}()

			if a.Err != nil || b.Err != nil {
				mu.Lock()
				p.Error = "input tree failed to load"
				mu.Unlock()
				return nil, nil
			}

			pr := dreq
			pr.Source1 = domain.TreeSource{Path: files[p.I]}
			pr.Source2 = domain.TreeSource{Path: files[p.J]}
			resp, err := s.distance.Compare(ctx, a.Tree, b.Tree, pr)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				p.Error = err.Error()
				return nil, err
			}
			p.Cost = resp.Cost
			p.Breakdown = resp.Breakdown
			p.Exact = resp.Exact
			return resp, nil
		})
	}

	executor := NewParallelExecutor()
	executor.SetMaxConcurrency(concurrency)
	executor.SetTimeout(0)
	execErr := executor.Execute(ctx, tasks)
	s.progress.Complete(execErr == nil)
	if execErr != nil {
		logger.Debug("batch finished with failures", "err", execErr)
	}

	// Pairs skipped after cancellation never ran and have no distance
	for k := range pairs {
		if !ran[k] {
			pairs[k].Exact = false
			pairs[k].Error = notComparedReason(ctx)
		}
	}

	for _, p := range pairs {
		cost := p.Cost
		if p.Error != "" {
			cost = -1
			errs = append(errs, fmt.Sprintf("%s vs %s: %s", files[p.I], files[p.J], p.Error))
		}
		matrix[p.I][p.J] = cost
		matrix[p.J][p.I] = cost
	}

	timer.Done("batch finished", "files", n, "pairs", len(pairs))

	return &domain.BatchResponse{
		RunID:       uuid.New().String(),
		Algorithm:   string(algorithm),
		Files:       files,
		Matrix:      matrix,
		Pairs:       pairs,
		Errors:      errs,
		GeneratedAt: time.Now().Format(time.RFC3339),
		Version:     version.Version,
	}, nil
}

func notComparedReason(ctx context.Context) string {
	if err := ctx.Err(); err != nil {
		return fmt.Sprintf("not compared: %v", err)
	}
	return "not compared"
}
