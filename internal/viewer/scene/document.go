package scene

import (
	"errors"
	"fmt"

	"bim-viewer/internal/viewer/color"
	"bim-viewer/internal/viewer/filter"
	"bim-viewer/internal/viewer/geometry"
	"bim-viewer/internal/viewer/hierarchy"
	"bim-viewer/internal/viewer/model"
	"bim-viewer/internal/viewer/quantity"
)

// ============================================================
// Scene Document
// ============================================================

// ErrUnknownElement indicates an element id not present in the model.
var ErrUnknownElement = errors.New("scene: unknown element")

// Warning codes carried alongside normal results. Per-element
// failures never abort processing of the remaining elements.
const (
	WarnPayloadDecode         = "payload_decode"
	WarnMissingAssociation    = "missing_association"
	WarnInconsistentHierarchy = "inconsistent_hierarchy"
)

type Warning struct {
	ElementID string `json:"element_id,omitempty"`
	Code      string `json:"code"`
	Reason    string `json:"reason"`
}

// RenderItem is one entry of the rendering boundary: an axis-swapped
// mesh with its resolved color and visibility.
type RenderItem struct {
	ElementID string      `json:"element_id"`
	Mesh      *model.Mesh `json:"mesh,omitempty"`
	Color     string      `json:"color"`
	Visible   bool        `json:"visible"`
}

// Document is the single logical viewer state for one loaded model:
// the element list, the hierarchy tree, the active rule list and the
// current selection. It is single-threaded by contract; callers
// serialize access.
type Document struct {
	mdl      *model.Model
	tree     *hierarchy.Tree
	rules    []model.ColorRule
	embedded map[string]string // element id -> payload default color
	selected string            // element id, "" when nothing selected
	warnings []Warning
}

// Open builds a document from a parsed model and an ordered rule
// list. Geometry is decoded once per element here; elements with a
// malformed or absent payload stay out of the 3D scene but keep
// their place in the hierarchy. Invalid rule filter syntax is a
// configuration fault and fails Open immediately, since it would
// silently miscolor the whole view.
func Open(m *model.Model, rules []model.ColorRule) (*Document, error) {
	for _, rule := range rules {
		if _, err := filter.Parse(rule.Filter); err != nil {
			return nil, fmt.Errorf("rule %q: %w", rule.Name, err)
		}
	}

	doc := &Document{
		mdl:      m,
		rules:    rules,
		embedded: make(map[string]string, len(m.Elements)),
	}

	for _, e := range m.Elements {
		e.Visible = true
		e.Selected = false
		raw := e.GeometryPayload()
		if raw == "" {
			continue
		}
		mesh, defaultColor, err := geometry.Parse(raw)
		if err != nil {
			doc.warn(e.ID, WarnPayloadDecode, err)
			continue
		}
		e.Mesh = mesh
		if defaultColor != "" {
			doc.embedded[e.ID] = defaultColor
		}
	}

	tree, treeWarnings := hierarchy.Build(m)
	doc.tree = tree
	for _, w := range treeWarnings {
		doc.warn(w.ElementID, WarnInconsistentHierarchy, w.Err)
	}
	return doc, nil
}

func (d *Document) warn(elementID, code string, err error) {
	d.warnings = append(d.warnings, Warning{ElementID: elementID, Code: code, Reason: err.Error()})
}

// Model returns the underlying parsed model.
func (d *Document) Model() *model.Model { return d.mdl }

// Tree returns the nested hierarchy snapshot.
func (d *Document) Tree() hierarchy.View { return d.tree.Snapshot() }

// Warnings returns every per-element warning collected so far.
func (d *Document) Warnings() []Warning { return d.warnings }

// Selected returns the currently selected element id, "" for none.
func (d *Document) Selected() string { return d.selected }

// ============================================================
// Selection
// ============================================================

// Select marks one element as selected (id == "" clears the
// selection) and returns the element ids whose resolved color
// changed, for a minimal repaint.
func (d *Document) Select(id string) ([]string, error) {
	if id != "" && d.mdl.ElementByID(id) == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownElement, id)
	}
	if id == d.selected {
		return nil, nil
	}

	var changed []string
	if d.selected != "" {
		d.mdl.ElementByID(d.selected).Selected = false
		changed = append(changed, d.selected)
	}
	if id != "" {
		d.mdl.ElementByID(id).Selected = true
		changed = append(changed, id)
	}
	d.selected = id
	return changed, nil
}

// ============================================================
// Toggles
// ============================================================

// SetNodeChecked checks or clears a hierarchy node. On a leaf this
// is a single toggle recomputing just the ancestor chain; on a
// storey or type node it cascades to every descendant leaf. Returns
// the changed node ids and the visibility patch for the renderer.
func (d *Document) SetNodeChecked(nodeID string, checked bool) ([]string, []RenderItem, error) {
	node, ok := d.tree.Node(nodeID)
	if !ok {
		return nil, nil, fmt.Errorf("%w: %q", hierarchy.ErrUnknownNode, nodeID)
	}

	var (
		changed []string
		err     error
	)
	if node.Kind == hierarchy.KindElement {
		changed, err = d.tree.Toggle(nodeID, checked)
	} else {
		changed, err = d.tree.SetSubtree(nodeID, checked)
	}
	if err != nil {
		return nil, nil, err
	}

	patch := d.applyLeafVisibility(changed)
	return changed, patch, nil
}

// applyLeafVisibility projects changed leaf states onto the
// elements and builds the incremental repaint patch.
func (d *Document) applyLeafVisibility(changedNodes []string) []RenderItem {
	var patch []RenderItem
	for _, nodeID := range changedNodes {
		node, ok := d.tree.Node(nodeID)
		if !ok || node.Kind != hierarchy.KindElement {
			continue
		}
		e := d.mdl.ElementByID(node.ElementID)
		if e == nil {
			continue
		}
		e.Visible = node.State == hierarchy.Checked
		if item, ok := d.renderItem(e); ok {
			patch = append(patch, item)
		}
	}
	return patch
}

// SetExpandedAll expands or collapses the whole tree. UI state only.
func (d *Document) SetExpandedAll(expanded bool) { d.tree.SetExpandedAll(expanded) }

// SetExpanded flips one node's expansion flag.
func (d *Document) SetExpanded(nodeID string, expanded bool) error {
	return d.tree.SetExpanded(nodeID, expanded)
}

// ============================================================
// Repaint
// ============================================================

// ResolvedColor computes the element's display color through the
// precedence tiers. Pure with respect to the current state.
func (d *Document) ResolvedColor(id string) (string, error) {
	e := d.mdl.ElementByID(id)
	if e == nil {
		return "", fmt.Errorf("%w: %q", ErrUnknownElement, id)
	}
	return color.Resolve(d.mdl, e, d.rules, d.embedded[id])
}

// Repaint returns the full current render set: every mesh-bearing
// element with its resolved color and visibility.
func (d *Document) Repaint() ([]RenderItem, error) {
	var items []RenderItem
	for _, e := range d.mdl.Elements {
		if item, ok := d.renderItem(e); ok {
			items = append(items, item)
		}
	}
	return items, nil
}

// RepaintFor returns render items for just the given element ids,
// the incremental half of the rendering boundary.
func (d *Document) RepaintFor(ids []string) ([]RenderItem, error) {
	var items []RenderItem
	for _, id := range ids {
		e := d.mdl.ElementByID(id)
		if e == nil {
			return nil, fmt.Errorf("%w: %q", ErrUnknownElement, id)
		}
		if item, ok := d.renderItem(e); ok {
			items = append(items, item)
		}
	}
	return items, nil
}

// renderItem resolves one element for the renderer. Elements
// without geometry are not part of the 3D scene.
func (d *Document) renderItem(e *model.Element) (RenderItem, bool) {
	if e.Mesh == nil {
		return RenderItem{}, false
	}
	c, err := color.Resolve(d.mdl, e, d.rules, d.embedded[e.ID])
	if err != nil {
		// Rule syntax is validated in Open; this cannot fire for a
		// document that opened successfully.
		c = color.Fallback
	}
	return RenderItem{ElementID: e.ID, Mesh: e.Mesh, Color: c, Visible: e.Visible}, true
}

// ============================================================
// Attribute record
// ============================================================

// ElementRecord returns the merged property + quantity record for
// the properties panel, populating and caching it on first use.
// Unresolvable covering associations become warnings, not failures.
func (d *Document) ElementRecord(id string) (model.Record, error) {
	e := d.mdl.ElementByID(id)
	if e == nil {
		return model.Record{}, fmt.Errorf("%w: %q", ErrUnknownElement, id)
	}
	if cached := e.CachedRecord(); cached != nil {
		return *cached, nil
	}

	quantities, assocWarnings := quantity.Aggregate(d.mdl, e)
	for _, err := range assocWarnings {
		d.warn(e.ID, WarnMissingAssociation, err)
	}
	record := model.Record{
		Properties: quantity.CollectProperties(e),
		Quantities: quantities,
	}
	e.SetRecord(record)
	return record, nil
}
