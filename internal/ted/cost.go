package ted

import "fmt"

// CostModel defines the cost of each atomic edit operation
type CostModel interface {
	// Delete returns the cost of removing a T1 node
	Delete(label string) int

	// Insert returns the cost of adding a T2 node
	Insert(label string) int

	// Relabel returns the cost of mapping a node labeled from onto one labeled to
	Relabel(from, to string) int
}

// UnitCostModel charges 1 for every deletion, insertion and label change
type UnitCostModel struct{}

// NewUnitCostModel creates the default cost model
func NewUnitCostModel() UnitCostModel {
	return UnitCostModel{}
}

// Delete always costs 1
func (UnitCostModel) Delete(string) int { return 1 }

// Insert always costs 1
func (UnitCostModel) Insert(string) int { return 1 }

// Relabel costs 1 when the labels differ
func (UnitCostModel) Relabel(from, to string) int {
	if from == to {
		return 0
	}
	return 1
}

// WeightedCostModel scales a base model per operation
type WeightedCostModel struct {
	DeleteWeight  int
	InsertWeight  int
	RelabelWeight int
	Base          CostModel
}

// NewWeightedCostModel creates a weighted model over unit costs
func NewWeightedCostModel(deleteWeight, insertWeight, relabelWeight int) (*WeightedCostModel, error) {
	if deleteWeight < 0 || insertWeight < 0 || relabelWeight < 0 {
		return nil, fmt.Errorf("cost weights must be non-negative, got delete=%d insert=%d relabel=%d",
			deleteWeight, insertWeight, relabelWeight)
	}
	return &WeightedCostModel{
		DeleteWeight:  deleteWeight,
		InsertWeight:  insertWeight,
		RelabelWeight: relabelWeight,
		Base:          UnitCostModel{},
	}, nil
}

// Delete returns the weighted deletion cost
func (c *WeightedCostModel) Delete(label string) int {
	return c.DeleteWeight * c.base().Delete(label)
}

// Insert returns the weighted insertion cost
func (c *WeightedCostModel) Insert(label string) int {
	return c.InsertWeight * c.base().Insert(label)
}

// Relabel returns the weighted relabel cost
func (c *WeightedCostModel) Relabel(from, to string) int {
	return c.RelabelWeight * c.base().Relabel(from, to)
}

func (c *WeightedCostModel) base() CostModel {
	if c.Base == nil {
		return UnitCostModel{}
	}
	return c.Base
}

// Breakdown counts the operations of an edit script and its total cost.
// Under unit costs Cost == Deletions + Insertions + Relabelings.
type Breakdown struct {
	Deletions   int `json:"deletions" yaml:"deletions"`
	Insertions  int `json:"insertions" yaml:"insertions"`
	Relabelings int `json:"relabelings" yaml:"relabelings"`
	Cost        int `json:"cost" yaml:"cost"`
}

// Operations returns the number of edit operations
func (b Breakdown) Operations() int {
	return b.Deletions + b.Insertions + b.Relabelings
}

// Evaluate computes the cost of a complete mapping. Deletions are T1 nodes
// mapped to Deleted, insertions are T2 nodes nobody maps to, relabelings are
// mapped pairs whose labels differ.
func Evaluate(t1, t2 *Tree, m Mapping, cm CostModel) Breakdown {
	if cm == nil {
		cm = UnitCostModel{}
	}

	var b Breakdown
	hit := make([]bool, t2.Len())
	for v, target := range m {
		w, ok := target.Node()
		if !ok {
			b.Deletions++
			b.Cost += cm.Delete(t1.Label(NodeID(v)))
			continue
		}
		hit[w] = true
		from, to := t1.Label(NodeID(v)), t2.Label(w)
		if from != to {
			b.Relabelings++
		}
		b.Cost += cm.Relabel(from, to)
	}

	for w, seen := range hit {
		if !seen {
			b.Insertions++
			b.Cost += cm.Insert(t2.Label(NodeID(w)))
		}
	}
	return b
}

// commitCost is the cost charged when v is committed to target during search.
// Summed over committed nodes it is the lower bound used for pruning.
func commitCost(t1, t2 *Tree, v NodeID, target Target, cm CostModel) int {
	w, ok := target.Node()
	if !ok {
		return cm.Delete(t1.Label(v))
	}
	return cm.Relabel(t1.Label(v), t2.Label(w))
}

// PartialCost returns the deletion and relabel cost of the first n T1 nodes
// in preorder. Insertions are not counted, so it never exceeds the cost of
// any completion of the mapping. BranchAndBound prunes on the same sum,
// accumulated one commitment at a time.
func PartialCost(t1, t2 *Tree, m Mapping, n int, cm CostModel) int {
	if cm == nil {
		cm = UnitCostModel{}
	}
	total := 0
	for i := 0; i < n && i < len(t1.order); i++ {
		v := t1.order[i]
		total += commitCost(t1, t2, v, m[v], cm)
	}
	return total
}
