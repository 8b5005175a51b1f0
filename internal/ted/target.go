package ted

import (
	"fmt"
	"strconv"
)

// Target is the image of a T1 node under a mapping: either Deleted or a
// node of T2. The zero value is Deleted, so it can never alias node 0.
type Target struct {
	node   NodeID
	mapped bool
}

// Deleted is the dummy target: the T1 node is removed
var Deleted = Target{}

// MappedTo returns the target for T2 node w
func MappedTo(w NodeID) Target {
	return Target{node: w, mapped: true}
}

// IsDeleted reports whether t is the dummy target
func (t Target) IsDeleted() bool {
	return !t.mapped
}

// Node returns the T2 node and true, or NoNode and false for Deleted
func (t Target) Node() (NodeID, bool) {
	if !t.mapped {
		return NoNode, false
	}
	return t.node, true
}

// String returns "-" for Deleted and the T2 handle otherwise
func (t Target) String() string {
	if !t.mapped {
		return "-"
	}
	return strconv.Itoa(int(t.node))
}

// MarshalText encodes Deleted as "-" and a mapped target as its handle
func (t Target) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText is the inverse of MarshalText
func (t *Target) UnmarshalText(b []byte) error {
	s := string(b)
	if s == "-" {
		*t = Deleted
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return fmt.Errorf("invalid target %q", s)
	}
	*t = MappedTo(NodeID(n))
	return nil
}
