package ted

import "fmt"

// SubtreeCost selects how ForestDistance prices inserting or deleting a
// whole subtree.
type SubtreeCost int

const (
	// LeafCost charges one unit per leaf of the subtree
	LeafCost SubtreeCost = iota
	// SizeCost charges one unit per node of the subtree
	SizeCost
)

// String returns the policy name
func (s SubtreeCost) String() string {
	switch s {
	case LeafCost:
		return "leaf"
	case SizeCost:
		return "size"
	default:
		return fmt.Sprintf("SubtreeCost(%d)", int(s))
	}
}

// ForestOptions configures ForestDistance
type ForestOptions struct {
	// Cost scales subtree and relabel charges. Defaults to UnitCostModel.
	Cost CostModel
	// Subtree is the subtree pricing policy. Defaults to LeafCost.
	Subtree SubtreeCost
}

// DPResult is the outcome of ForestDistance
type DPResult struct {
	Cost int
	// Breakdown counts charged units: deleted and inserted units (leaves or
	// nodes, per policy) and relabeled matched pairs.
	Breakdown Breakdown
	// Pairs lists the matched node pairs in T1 preorder
	Pairs   []Pair
	Subtree SubtreeCost
}

type arm uint8

const (
	armMatch arm = iota
	armDelete
	armInsert
)

type dpCell struct {
	done bool
	cost int
	arms []arm // (m+1)*(k+1) forest alignment choices
}

type forestDP struct {
	t1, t2 *Tree
	cm     CostModel
	n2     int

	// per node: priced and unit charge for dropping its whole subtree
	delCost, insCost   []int
	delUnits, insUnits []int

	cells []dpCell
}

// ForestDistance computes a top-down forest alignment distance.
//
//	dist(v, w) = relabel(v, w) + F[m][k]
//	F[i][j]    = min(F[i-1][j] + sub(c_i), F[i][j-1] + sub(c'_j), F[i-1][j-1] + dist(c_i, c'_j))
//
// Roots are always aligned with each other and a removed subtree is charged
// as a block by the Subtree policy. Under LeafCost this is a distinct,
// leaf-weighted distance; it matches BranchAndBound only when the optimum
// never removes an internal subtree.
func ForestDistance(t1, t2 *Tree, opts ForestOptions) (*DPResult, error) {
	t1, t2, err := prepare(t1, t2)
	if err != nil {
		return nil, err
	}
	if opts.Cost == nil {
		opts.Cost = UnitCostModel{}
	}
	if opts.Subtree != LeafCost && opts.Subtree != SizeCost {
		return nil, fmt.Errorf("unknown subtree cost policy %d", int(opts.Subtree))
	}

	f := &forestDP{t1: t1, t2: t2, cm: opts.Cost, n2: t2.Len()}
	f.delCost, f.delUnits = subtreeCharges(t1, opts.Subtree, opts.Cost.Delete)
	f.insCost, f.insUnits = subtreeCharges(t2, opts.Subtree, opts.Cost.Insert)

	res := &DPResult{Subtree: opts.Subtree}
	switch {
	case t1.Len() == 0 && t2.Len() == 0:
	case t1.Len() == 0:
		res.Cost = f.insCost[t2.Root()]
		res.Breakdown.Insertions = f.insUnits[t2.Root()]
	case t2.Len() == 0:
		res.Cost = f.delCost[t1.Root()]
		res.Breakdown.Deletions = f.delUnits[t1.Root()]
	default:
		f.cells = make([]dpCell, t1.Len()*t2.Len())
		res.Cost = f.dist(t1.Root(), t2.Root())
		f.trace(t1.Root(), t2.Root(), res)
	}
	res.Breakdown.Cost = res.Cost
	return res, nil
}

// subtreeCharges prices every subtree under the policy in one bottom-up pass
func subtreeCharges(t *Tree, policy SubtreeCost, price func(string) int) (cost, units []int) {
	cost = make([]int, t.Len())
	units = make([]int, t.Len())
	for i := len(t.order) - 1; i >= 0; i-- {
		v := t.order[i]
		if policy == SizeCost || t.IsLeaf(v) {
			cost[v] = price(t.Label(v))
			units[v] = 1
		}
		for _, c := range t.Children(v) {
			cost[v] += cost[c]
			units[v] += units[c]
		}
	}
	return cost, units
}

func (f *forestDP) dist(v, w NodeID) int {
	c := &f.cells[int(v)*f.n2+int(w)]
	if c.done {
		return c.cost
	}

	ch1, ch2 := f.t1.Children(v), f.t2.Children(w)
	m, k := len(ch1), len(ch2)
	stride := k + 1
	table := make([]int, (m+1)*stride)
	arms := make([]arm, (m+1)*stride)

	for i := 1; i <= m; i++ {
		table[i*stride] = table[(i-1)*stride] + f.delCost[ch1[i-1]]
		arms[i*stride] = armDelete
	}
	for j := 1; j <= k; j++ {
		table[j] = table[j-1] + f.insCost[ch2[j-1]]
		arms[j] = armInsert
	}

	for i := 1; i <= m; i++ {
		for j := 1; j <= k; j++ {
			best := table[(i-1)*stride+j-1] + f.dist(ch1[i-1], ch2[j-1])
			choice := armMatch
			if del := table[(i-1)*stride+j] + f.delCost[ch1[i-1]]; del < best {
				best, choice = del, armDelete
			}
			if ins := table[i*stride+j-1] + f.insCost[ch2[j-1]]; ins < best {
				best, choice = ins, armInsert
			}
			table[i*stride+j] = best
			arms[i*stride+j] = choice
		}
	}

	c.cost = f.cm.Relabel(f.t1.Label(v), f.t2.Label(w)) + table[m*stride+k]
	c.arms = arms
	c.done = true
	return c.cost
}

// trace replays the recorded arms from (v, w) and accumulates the breakdown
func (f *forestDP) trace(v, w NodeID, res *DPResult) {
	res.Pairs = append(res.Pairs, Pair{From: v, To: w})
	if f.t1.Label(v) != f.t2.Label(w) {
		res.Breakdown.Relabelings++
	}

	ch1, ch2 := f.t1.Children(v), f.t2.Children(w)
	stride := len(ch2) + 1
	arms := f.cells[int(v)*f.n2+int(w)].arms

	// walk back from the bottom-right cell, then restore preorder
	var matched []Pair
	i, j := len(ch1), len(ch2)
	for i > 0 || j > 0 {
		switch arms[i*stride+j] {
		case armMatch:
			matched = append(matched, Pair{From: ch1[i-1], To: ch2[j-1]})
			i, j = i-1, j-1
		case armDelete:
			res.Breakdown.Deletions += f.delUnits[ch1[i-1]]
			i--
		case armInsert:
			res.Breakdown.Insertions += f.insUnits[ch2[j-1]]
			j--
		}
	}
	for n := len(matched) - 1; n >= 0; n-- {
		f.trace(matched[n].From, matched[n].To, res)
	}
}
