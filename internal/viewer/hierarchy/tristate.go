package hierarchy

import "fmt"

// ============================================================
// Tri-state propagation
// ============================================================

// State of a node's checkbox. Leaves are only ever Checked or
// Unchecked; Partial appears on storey and type nodes whose leaves
// disagree.
type State uint8

const (
	Unchecked State = iota
	Checked
	Partial
)

func (s State) String() string {
	switch s {
	case Checked:
		return "checked"
	case Partial:
		return "partial"
	default:
		return "unchecked"
	}
}

// Toggle sets a leaf's checked state and recomputes only its
// ancestor chain, bottom-up. Returns the ids of every node whose
// state actually changed. Cost is proportional to tree depth, not
// tree size: this is the dominant interactive operation.
func (t *Tree) Toggle(leafID string, checked bool) ([]string, error) {
	idx, ok := t.index[leafID]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownNode, leafID)
	}
	if t.nodes[idx].Kind != KindElement {
		return nil, fmt.Errorf("%w: %q", ErrNotLeaf, leafID)
	}

	target := Unchecked
	if checked {
		target = Checked
	}
	if t.nodes[idx].State == target {
		return nil, nil
	}
	t.nodes[idx].State = target

	changed := []string{leafID}
	return t.recomputeAncestors(idx, changed), nil
}

// SetSubtree sets a node and every descendant leaf fully checked or
// unchecked (bulk select-all / clear), then recomputes the node's
// ancestors. Returns the ids of every node whose state changed.
func (t *Tree) SetSubtree(nodeID string, checked bool) ([]string, error) {
	idx, ok := t.index[nodeID]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownNode, nodeID)
	}

	target := Unchecked
	if checked {
		target = Checked
	}
	var changed []string
	t.cascade(idx, target, &changed)
	return t.recomputeAncestors(idx, changed), nil
}

func (t *Tree) cascade(idx int, target State, changed *[]string) {
	if t.nodes[idx].State != target {
		t.nodes[idx].State = target
		*changed = append(*changed, t.nodes[idx].ID)
	}
	for _, child := range t.nodes[idx].Children {
		t.cascade(child, target, changed)
	}
}

// recomputeAncestors walks the parent chain from idx upward,
// deriving each node's state from its children, and stops early
// once a node's state no longer changes.
func (t *Tree) recomputeAncestors(idx int, changed []string) []string {
	for parent := t.nodes[idx].Parent; parent >= 0; parent = t.nodes[parent].Parent {
		derived := t.stateFromChildren(parent)
		if t.nodes[parent].State == derived {
			break
		}
		t.nodes[parent].State = derived
		changed = append(changed, t.nodes[parent].ID)
	}
	return changed
}

func (t *Tree) stateFromChildren(idx int) State {
	allChecked := true
	noneChecked := true
	for _, child := range t.nodes[idx].Children {
		switch t.nodes[child].State {
		case Checked:
			noneChecked = false
		case Unchecked:
			allChecked = false
		default:
			return Partial
		}
	}
	switch {
	case allChecked:
		return Checked
	case noneChecked:
		return Unchecked
	default:
		return Partial
	}
}

// ============================================================
// Expand / collapse
// ============================================================

// SetExpanded flips the UI expansion flag of one node. Expansion is
// independent of the checked state.
func (t *Tree) SetExpanded(nodeID string, expanded bool) error {
	idx, ok := t.index[nodeID]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownNode, nodeID)
	}
	t.nodes[idx].Expanded = expanded
	return nil
}

// SetExpandedAll expands or collapses every node.
func (t *Tree) SetExpandedAll(expanded bool) {
	for i := range t.nodes {
		t.nodes[i].Expanded = expanded
	}
}
