package ted

import (
	"context"
	"time"
)

// deadlineEvery is how many commitments pass between context checks
const deadlineEvery = 4096

// Solution is one complete mapping with its cost
type Solution struct {
	Mapping   Mapping   `json:"mapping" yaml:"mapping"`
	Cost      int       `json:"cost" yaml:"cost"`
	Breakdown Breakdown `json:"breakdown" yaml:"breakdown"`
}

// Stats describes the work a search did
type Stats struct {
	// Explored counts (node, target) commitments tried
	Explored int64 `json:"explored" yaml:"explored"`
	// Pruned counts subtrees cut by the bound or by an empty candidate list
	Pruned    int64         `json:"pruned" yaml:"pruned"`
	Solutions int64         `json:"solutions" yaml:"solutions"`
	Duration  time.Duration `json:"duration_ns" yaml:"duration_ns"`
}

func (s *Stats) add(o Stats) {
	s.Explored += o.Explored
	s.Pruned += o.Pruned
	s.Solutions += o.Solutions
}

// prepare normalizes nil trees and rejects trees without metadata
func prepare(t1, t2 *Tree) (*Tree, *Tree, error) {
	if t1 == nil {
		t1 = NewTree()
	}
	if t2 == nil {
		t2 = NewTree()
	}
	if err := t1.ready(); err != nil {
		return nil, nil, err
	}
	if err := t2.ready(); err != nil {
		return nil, nil, err
	}
	return t1, t2, nil
}

// checkContext returns the context error every deadlineEvery commitments
func checkContext(ctx context.Context, explored int64) error {
	if explored%deadlineEvery != 0 {
		return nil
	}
	return ctx.Err()
}
