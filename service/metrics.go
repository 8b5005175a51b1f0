package service

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// solveDuration measures solver wall time.
	// Labels: algorithm, status (ok, partial, error)
	solveDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "treedit",
		Subsystem: "solver",
		Name:      "duration_seconds",
		Help:      "Tree edit distance computation time in seconds",
		Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30},
	}, []string{"algorithm", "status"})

	// solveExplored counts search commitments.
	// Labels: algorithm
	solveExplored = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "treedit",
		Subsystem: "solver",
		Name:      "explored_total",
		Help:      "Total (node, target) commitments tried by search solvers",
	}, []string{"algorithm"})

	// solvePruned counts branches cut by the bound or by empty candidates.
	// Labels: algorithm
	solvePruned = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "treedit",
		Subsystem: "solver",
		Name:      "pruned_total",
		Help:      "Total search branches pruned",
	}, []string{"algorithm"})

	// treeNodes tracks the size of compared trees.
	treeNodes = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "treedit",
		Subsystem: "input",
		Name:      "tree_nodes",
		Help:      "Number of nodes per compared tree",
		Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
	})

	// requestErrors counts failed requests by domain error code.
	// Labels: code
	requestErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "treedit",
		Name:      "errors_total",
		Help:      "Total failed distance requests by error code",
	}, []string{"code"})
)

// solveStatus labels a finished computation
type solveStatus string

const (
	statusOK      solveStatus = "ok"
	statusPartial solveStatus = "partial"
	statusError   solveStatus = "error"
)

func recordSolve(algorithm string, status solveStatus, elapsed time.Duration, explored, pruned int64) {
	solveDuration.WithLabelValues(algorithm, string(status)).Observe(elapsed.Seconds())
	if explored > 0 {
		solveExplored.WithLabelValues(algorithm).Add(float64(explored))
	}
	if pruned > 0 {
		solvePruned.WithLabelValues(algorithm).Add(float64(pruned))
	}
}

func recordTreeSizes(sizes ...int) {
	for _, n := range sizes {
		treeNodes.Observe(float64(n))
	}
}

func recordError(code string) {
	if code == "" {
		code = "UNKNOWN"
	}
	requestErrors.WithLabelValues(code).Inc()
}
