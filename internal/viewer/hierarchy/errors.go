package hierarchy

import "errors"

var (
	// ErrUnknownNode indicates a node id not present in the tree.
	ErrUnknownNode = errors.New("hierarchy: unknown node")
	// ErrNotLeaf indicates a leaf operation on a storey or type node.
	ErrNotLeaf = errors.New("hierarchy: node is not an element leaf")
	// ErrInconsistentHierarchy indicates an element whose storey or
	// type reference cannot be placed. The element still lands in the
	// Unassigned/Unknown buckets, it is never dropped.
	ErrInconsistentHierarchy = errors.New("hierarchy: element reference cannot be placed")
)
