package hierarchy_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"bim-viewer/internal/viewer/hierarchy"
	"bim-viewer/internal/viewer/model"
)

func twoStoreyModel() *model.Model {
	return &model.Model{
		Storeys: []model.Storey{
			// Deliberately out of elevation order in the source.
			{ID: "s2", Name: "Level 1", Elevation: 3, HasElevation: true},
			{ID: "s1", Name: "Ground", Elevation: 0, HasElevation: true},
		},
		Elements: []*model.Element{
			{ID: "w1", Name: "Wall A", Type: "IfcWall", StoreyID: "s1"},
			{ID: "w2", Name: "Wall B", Type: "IfcWall", StoreyID: "s1"},
			{ID: "d1", Name: "Door", Type: "IfcDoor", StoreyID: "s1"},
			{ID: "sl1", Name: "Slab", Type: "IfcSlab", StoreyID: "s2"},
			{ID: "x1", Name: "Loose", Type: "IfcFurniture", StoreyID: ""},
		},
	}
}

// checkInvariant asserts, for the whole tree and not just the
// touched subtree, that every non-leaf state equals the aggregate
// of its descendant leaves.
func checkInvariant(t *testing.T, tree *hierarchy.Tree) {
	t.Helper()
	checkView(t, tree.Snapshot())
}

func checkView(t *testing.T, v hierarchy.View) (all, none bool) {
	t.Helper()
	if len(v.Children) == 0 {
		require.NotEqual(t, "partial", v.State, "leaf %s", v.ID)
		return v.State == "checked", v.State != "checked"
	}

	all, none = true, true
	for _, child := range v.Children {
		childAll, childNone := checkView(t, child)
		all = all && childAll
		none = none && childNone
	}
	switch {
	case all:
		require.Equal(t, "checked", v.State, "node %s", v.ID)
	case none:
		require.Equal(t, "unchecked", v.State, "node %s", v.ID)
	default:
		require.Equal(t, "partial", v.State, "node %s", v.ID)
	}
	return all, none
}

// TestBuild_Shape: storeys come out in elevation order, the
// unassigned bucket lands last, type buckets and leaves keep
// first-seen order.
func TestBuild_Shape(t *testing.T) {
	tree, warnings := hierarchy.Build(twoStoreyModel())
	require.Empty(t, warnings)

	view := tree.Snapshot()
	require.Len(t, view.Children, 3)
	require.Equal(t, "Ground", view.Children[0].Label)
	require.Equal(t, "Level 1", view.Children[1].Label)
	require.Equal(t, hierarchy.UnassignedStorey, view.Children[2].Label)

	ground := view.Children[0]
	require.Len(t, ground.Children, 2)
	require.Equal(t, "IfcWall", ground.Children[0].Label)
	require.Equal(t, "IfcDoor", ground.Children[1].Label)
	require.Len(t, ground.Children[0].Children, 2)
	require.Equal(t, "Wall A", ground.Children[0].Children[0].Label)

	// Deterministic: a second build yields the same shape.
	tree2, _ := hierarchy.Build(twoStoreyModel())
	require.Equal(t, view, tree2.Snapshot())
}

// TestBuild_BadReferences: unknown storey refs and missing type
// tags land in the synthetic buckets with warnings; no element is
// ever dropped.
func TestBuild_BadReferences(t *testing.T) {
	m := twoStoreyModel()
	m.Elements = append(m.Elements,
		&model.Element{ID: "b1", Type: "IfcWall", StoreyID: "nope"},
		&model.Element{ID: "b2", StoreyID: "s1"},
	)

	tree, warnings := hierarchy.Build(m)
	require.Len(t, warnings, 2)
	for _, w := range warnings {
		require.ErrorIs(t, w.Err, hierarchy.ErrInconsistentHierarchy)
	}

	leaves := tree.LeafStates()
	require.Len(t, leaves, len(m.Elements))
	require.Contains(t, leaves, "b1")
	require.Contains(t, leaves, "b2")

	b2, ok := tree.Node("b2")
	require.True(t, ok)
	parent, ok := tree.Node("s1/" + hierarchy.UnknownType)
	require.True(t, ok)
	require.Equal(t, hierarchy.KindType, parent.Kind)
	require.Equal(t, hierarchy.KindElement, b2.Kind)
}

// TestToggle_AncestorChain: a single leaf toggle changes exactly
// the leaf and its ancestor chain, sibling subtrees stay untouched.
func TestToggle_AncestorChain(t *testing.T) {
	tree, _ := hierarchy.Build(twoStoreyModel())

	changed, err := tree.Toggle("w1", false)
	require.NoError(t, err)
	require.Equal(t, []string{"w1", "s1/IfcWall", "s1", "root"}, changed)
	checkInvariant(t, tree)

	// Sibling subtree is untouched.
	sl, _ := tree.Node("sl1")
	require.Equal(t, hierarchy.Checked, sl.State)
	level1, _ := tree.Node("s2")
	require.Equal(t, hierarchy.Checked, level1.State)

	typeNode, _ := tree.Node("s1/IfcWall")
	require.Equal(t, hierarchy.Partial, typeNode.State)

	// Toggling back restores a fully checked tree.
	changed, err = tree.Toggle("w1", true)
	require.NoError(t, err)
	require.Equal(t, []string{"w1", "s1/IfcWall", "s1", "root"}, changed)
	root, _ := tree.Node("root")
	require.Equal(t, hierarchy.Checked, root.State)
	checkInvariant(t, tree)
}

// TestToggle_NoOp: re-applying the current state changes nothing.
func TestToggle_NoOp(t *testing.T) {
	tree, _ := hierarchy.Build(twoStoreyModel())
	changed, err := tree.Toggle("w1", true)
	require.NoError(t, err)
	require.Empty(t, changed)
}

// TestToggle_Errors covers unknown ids and non-leaf targets.
func TestToggle_Errors(t *testing.T) {
	tree, _ := hierarchy.Build(twoStoreyModel())

	_, err := tree.Toggle("ghost", true)
	require.ErrorIs(t, err, hierarchy.ErrUnknownNode)

	_, err = tree.Toggle("s1", true)
	require.ErrorIs(t, err, hierarchy.ErrNotLeaf)
}

// TestSetSubtree_BulkClear: clearing a storey node cascades to
// every descendant leaf and recomputes the ancestors.
func TestSetSubtree_BulkClear(t *testing.T) {
	tree, _ := hierarchy.Build(twoStoreyModel())

	changed, err := tree.SetSubtree("s1", false)
	require.NoError(t, err)
	// s1, two type buckets, three leaves, and root flips to partial.
	require.ElementsMatch(t, []string{"s1", "s1/IfcWall", "s1/IfcDoor", "w1", "w2", "d1", "root"}, changed)
	checkInvariant(t, tree)

	for _, id := range []string{"w1", "w2", "d1"} {
		n, _ := tree.Node(id)
		require.Equal(t, hierarchy.Unchecked, n.State, id)
	}
	root, _ := tree.Node("root")
	require.Equal(t, hierarchy.Partial, root.State)

	// Select-all at the storey restores it and reports checked.
	_, err = tree.SetSubtree("s1", true)
	require.NoError(t, err)
	s1, _ := tree.Node("s1")
	require.Equal(t, hierarchy.Checked, s1.State)
	checkInvariant(t, tree)
}

// TestSetSubtree_MixedThenBulk: bulk operations fix up partial
// states left by individual toggles.
func TestSetSubtree_MixedThenBulk(t *testing.T) {
	tree, _ := hierarchy.Build(twoStoreyModel())

	_, err := tree.Toggle("w1", false)
	require.NoError(t, err)
	_, err = tree.Toggle("d1", false)
	require.NoError(t, err)
	checkInvariant(t, tree)

	_, err = tree.SetSubtree("root", true)
	require.NoError(t, err)
	root, _ := tree.Node("root")
	require.Equal(t, hierarchy.Checked, root.State)
	checkInvariant(t, tree)

	states := tree.LeafStates()
	for id, checked := range states {
		require.True(t, checked, id)
	}
}

// TestExpanded_IndependentOfState: expansion flags never touch the
// checked tri-state.
func TestExpanded_IndependentOfState(t *testing.T) {
	tree, _ := hierarchy.Build(twoStoreyModel())

	_, err := tree.Toggle("w1", false)
	require.NoError(t, err)
	before := tree.Snapshot()

	tree.SetExpandedAll(true)
	require.NoError(t, tree.SetExpanded("s1", false))

	s1, _ := tree.Node("s1")
	require.False(t, s1.Expanded)
	w2, _ := tree.Node("w2")
	require.True(t, w2.Expanded)

	after := tree.Snapshot()
	var statesBefore, statesAfter []string
	flattenStates(before, &statesBefore)
	flattenStates(after, &statesAfter)
	require.Equal(t, statesBefore, statesAfter)
}

func flattenStates(v hierarchy.View, out *[]string) {
	*out = append(*out, v.ID+"="+v.State)
	for _, child := range v.Children {
		flattenStates(child, out)
	}
}
