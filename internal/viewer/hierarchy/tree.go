package hierarchy

import (
	"fmt"
	"sort"

	"bim-viewer/internal/viewer/model"
)

// ============================================================
// Tree
// ============================================================

// Node kinds, top to bottom.
type Kind uint8

const (
	KindRoot Kind = iota
	KindStorey
	KindType
	KindElement
)

// Synthetic bucket labels for elements that cannot be placed.
const (
	UnassignedStorey = "Unassigned"
	UnknownType      = "Unknown"
)

// Node is one tri-state container in the Storey -> Type -> Element
// tree. Children are arena indices into the owning tree, not
// pointers, so the whole tree is a flat slice.
type Node struct {
	ID       string
	Kind     Kind
	Label    string
	Parent   int
	Children []int

	// State is derived from descendant leaves for non-leaf nodes and
	// authoritative on leaves.
	State State
	// Expanded is pure UI state, independent of State.
	Expanded bool

	// ElementID is set on leaves only.
	ElementID string
}

// Tree is the selection hierarchy over one model. All mutation goes
// through Toggle/SetSubtree so the tri-state invariant holds after
// every operation.
type Tree struct {
	nodes []Node
	index map[string]int
}

// Warning reports an element that could not be placed as referenced
// and landed in a synthetic bucket instead.
type Warning struct {
	ElementID string
	Err       error
}

// Build organizes the model's elements into a Storey -> Type ->
// Element tree. Storeys are stably ordered by elevation; storeys
// without a known elevation follow them in first-seen order. Type
// buckets and leaves keep
// first-seen order, so the tree shape is reproducible across runs.
// Elements with a storey reference that resolves to nothing are
// placed under the Unassigned bucket and reported; likewise an
// empty type tag goes to the Unknown bucket. Every leaf starts
// checked and expanded state starts collapsed.
func Build(m *model.Model) (*Tree, []Warning) {
	t := &Tree{index: make(map[string]int)}
	t.nodes = append(t.nodes, Node{ID: "root", Kind: KindRoot, Parent: -1, State: Checked})
	t.index["root"] = 0

	storeys := make([]model.Storey, len(m.Storeys))
	copy(storeys, m.Storeys)
	sort.SliceStable(storeys, func(i, j int) bool {
		if storeys[i].HasElevation != storeys[j].HasElevation {
			return storeys[i].HasElevation
		}
		return storeys[i].HasElevation && storeys[i].Elevation < storeys[j].Elevation
	})

	// Group elements per storey bucket, preserving element order.
	byStorey := make(map[string][]*model.Element)
	var warnings []Warning
	for _, e := range m.Elements {
		key := e.StoreyID
		if key != "" {
			if _, ok := m.StoreyByID(key); !ok {
				warnings = append(warnings, Warning{
					ElementID: e.ID,
					Err:       fmt.Errorf("%w: unknown storey %q", ErrInconsistentHierarchy, key),
				})
				key = ""
			}
		}
		byStorey[key] = append(byStorey[key], e)
	}

	for _, s := range storeys {
		t.addStoreyBucket(s.ID, storeyLabel(s), byStorey[s.ID], &warnings)
	}
	t.addStoreyBucket(UnassignedStorey, UnassignedStorey, byStorey[""], &warnings)

	return t, warnings
}

func storeyLabel(s model.Storey) string {
	if s.Name != "" {
		return s.Name
	}
	id := s.ID
	if len(id) > 8 {
		id = id[:8]
	}
	return "Storey_" + id
}

func (t *Tree) addStoreyBucket(id, label string, elements []*model.Element, warnings *[]Warning) {
	if len(elements) == 0 {
		return
	}
	storeyIdx := t.addNode(Node{ID: id, Kind: KindStorey, Label: label, Parent: 0, State: Checked})

	for _, e := range elements {
		typeTag := e.Type
		if typeTag == "" {
			*warnings = append(*warnings, Warning{
				ElementID: e.ID,
				Err:       fmt.Errorf("%w: missing type tag", ErrInconsistentHierarchy),
			})
			typeTag = UnknownType
		}
		typeID := id + "/" + typeTag
		typeIdx, ok := t.index[typeID]
		if !ok {
			typeIdx = t.addNode(Node{ID: typeID, Kind: KindType, Label: typeTag, Parent: storeyIdx, State: Checked})
		}
		t.addNode(Node{
			ID:        e.ID,
			Kind:      KindElement,
			Label:     e.DisplayName(),
			Parent:    typeIdx,
			State:     Checked,
			ElementID: e.ID,
		})
	}
}

func (t *Tree) addNode(n Node) int {
	idx := len(t.nodes)
	t.nodes = append(t.nodes, n)
	t.index[n.ID] = idx
	t.nodes[n.Parent].Children = append(t.nodes[n.Parent].Children, idx)
	return idx
}

// ============================================================
// Lookup
// ============================================================

// Node returns the node with the given id.
func (t *Tree) Node(id string) (Node, bool) {
	idx, ok := t.index[id]
	if !ok {
		return Node{}, false
	}
	return t.nodes[idx], true
}

// Len returns the total node count, root included.
func (t *Tree) Len() int { return len(t.nodes) }

// Walk visits every node depth-first in construction order.
func (t *Tree) Walk(fn func(Node)) {
	t.walk(0, fn)
}

func (t *Tree) walk(idx int, fn func(Node)) {
	fn(t.nodes[idx])
	for _, child := range t.nodes[idx].Children {
		t.walk(child, fn)
	}
}

// LeafStates returns element id -> checked for every leaf.
func (t *Tree) LeafStates() map[string]bool {
	out := make(map[string]bool)
	for _, n := range t.nodes {
		if n.Kind == KindElement {
			out[n.ElementID] = n.State == Checked
		}
	}
	return out
}

// ============================================================
// Snapshot
// ============================================================

// View is the nested read-only projection of a node, for the
// hierarchy table.
type View struct {
	ID       string `json:"id"`
	Kind     string `json:"kind"`
	Label    string `json:"label"`
	State    string `json:"state"`
	Expanded bool   `json:"expanded"`
	Children []View `json:"children,omitempty"`
}

// Snapshot renders the whole tree as nested views.
func (t *Tree) Snapshot() View {
	return t.snapshot(0)
}

func (t *Tree) snapshot(idx int) View {
	n := t.nodes[idx]
	v := View{
		ID:       n.ID,
		Kind:     kindName(n.Kind),
		Label:    n.Label,
		State:    n.State.String(),
		Expanded: n.Expanded,
	}
	for _, child := range n.Children {
		v.Children = append(v.Children, t.snapshot(child))
	}
	return v
}

func kindName(k Kind) string {
	switch k {
	case KindRoot:
		return "root"
	case KindStorey:
		return "storey"
	case KindType:
		return "type"
	default:
		return "element"
	}
}
