package ted

import (
	"errors"
	"fmt"
)

// Structure error kinds. Compare with errors.Is.
var (
	ErrMissingRoot         = errors.New("tree has no root")
	ErrDuplicateRoot       = errors.New("tree already has a root")
	ErrUnknownParent       = errors.New("unknown parent node")
	ErrCycle               = errors.New("parent links form a cycle")
	ErrInvalidNode         = errors.New("invalid node handle")
	ErrFrozen              = errors.New("tree metadata already computed")
	ErrMetadataNotComputed = errors.New("tree metadata not computed")
)

// Search-time errors
var (
	// ErrBudgetExhausted is returned when a search hits its step budget.
	// The result returned alongside it holds the best mapping found so far.
	ErrBudgetExhausted = errors.New("search step budget exhausted")

	// ErrInvalidMapping wraps every failure reported by Mapping.Validate.
	ErrInvalidMapping = errors.New("invalid mapping")
)

// StructureError reports a malformed tree. It is raised while a tree is
// built or when a solver is handed a tree that is not ready.
type StructureError struct {
	Op   string
	Node NodeID
	Err  error
}

// Error implements the error interface
func (e *StructureError) Error() string {
	if e.Node == NoNode {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: node %d: %v", e.Op, e.Node, e.Err)
}

// Unwrap returns the underlying kind
func (e *StructureError) Unwrap() error {
	return e.Err
}

func structureErr(op string, node NodeID, err error) error {
	return &StructureError{Op: op, Node: node, Err: err}
}

// IsStructureError reports whether err carries a StructureError
func IsStructureError(err error) bool {
	var se *StructureError
	return errors.As(err, &se)
}
