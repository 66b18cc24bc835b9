package model

import "fmt"

// ============================================================
// Parsed source model
// ============================================================

// Model is the parsed building model handed over by the loader.
// It is read-only after load except for the per-element viewer
// state (selection, visibility, cached attribute record).
type Model struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	Storeys  []Storey       `json:"storeys"`
	Elements []*Element     `json:"elements"`
	Covers   []CoveringLink `json:"coverings"`
}

// Storey is a spatial floor grouping. Elevation orders storeys in
// the hierarchy; storeys without a known elevation keep file order.
type Storey struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Elevation    float64 `json:"elevation"`
	HasElevation bool    `json:"has_elevation"`
}

// Element is one physical unit (wall, slab, door, ...).
type Element struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	StoreyID string `json:"storey"`

	PropertySets []PropertySet `json:"property_sets,omitempty"`
	QuantitySets []QuantitySet `json:"quantity_sets,omitempty"`

	// Viewer state, owned by the scene document.
	Selected bool  `json:"-"`
	Visible  bool  `json:"-"`
	Mesh     *Mesh `json:"-"`

	// Lazily populated merged properties + quantities.
	record Record
}

// PropertySet is a named bag of descriptive key/value attributes.
type PropertySet struct {
	Name       string            `json:"name"`
	Properties map[string]string `json:"properties"`
}

// QuantitySet is a named bag of measured quantities.
type QuantitySet struct {
	Name       string     `json:"name"`
	Quantities []Quantity `json:"quantities"`
}

// Quantity kinds, matching the source model's five measure types.
const (
	KindLength = "length"
	KindArea   = "area"
	KindVolume = "volume"
	KindCount  = "count"
	KindWeight = "weight"
)

type Quantity struct {
	Name  string  `json:"name"`
	Kind  string  `json:"kind"`
	Value float64 `json:"value"`
}

// CoveringLink associates covering elements with a wall-like element.
type CoveringLink struct {
	WallID      string   `json:"wall"`
	CoveringIDs []string `json:"coverings"`
}

// ============================================================
// Mesh
// ============================================================

// Mesh is a triangle mesh ready for the rendering boundary.
// Arrays are flat: 3 floats per vertex, 3 indices per face.
// Owned exclusively by its element, never shared.
type Mesh struct {
	Vertices   []float32 `json:"vertices"`
	Indices    []uint32  `json:"indices"`
	FaceColors []string  `json:"face_colors,omitempty"`
	Opacity    float64   `json:"opacity"`
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int { return len(m.Vertices) / 3 }

// TriangleCount returns the number of faces.
func (m *Mesh) TriangleCount() int { return len(m.Indices) / 3 }

// ============================================================
// Color configuration
// ============================================================

// ColorRule is one ordered entry of the configuration document.
// Rules are evaluated in document order, first match wins.
type ColorRule struct {
	Name   string `json:"name" yaml:"name"`
	Filter string `json:"filter" yaml:"filter"`
	Color  string `json:"color" yaml:"color"`
}

// ============================================================
// Helpers
// ============================================================

// Record is the merged attribute record shown when an element is
// selected: property sets plus aggregated quantities.
type Record struct {
	Properties map[string]map[string]string  `json:"properties"`
	Quantities map[string]map[string]float64 `json:"quantities"`
}

// CachedRecord returns the lazily stored record, nil-safe.
func (e *Element) CachedRecord() *Record {
	if e.record.Properties == nil && e.record.Quantities == nil {
		return nil
	}
	return &e.record
}

// SetRecord stores the populated attribute record on the element.
func (e *Element) SetRecord(r Record) { e.record = r }

// DisplayName mirrors the source convention: element name, or
// "<Type>_<id prefix>" when unnamed.
func (e *Element) DisplayName() string {
	if e.Name != "" {
		return e.Name
	}
	id := e.ID
	if len(id) > 8 {
		id = id[:8]
	}
	return fmt.Sprintf("%s_%s", e.Type, id)
}

// WallLike reports whether the element's type tag takes covering
// quantities into its aggregate.
func WallLike(typeTag string) bool {
	return typeTag == "IfcWall" || typeTag == "IfcWallStandardCase"
}

// ElementByID returns the element with the given id, or nil.
func (m *Model) ElementByID(id string) *Element {
	for _, e := range m.Elements {
		if e.ID == id {
			return e
		}
	}
	return nil
}

// StoreyByID returns the storey with the given id and true, or false.
func (m *Model) StoreyByID(id string) (Storey, bool) {
	for _, s := range m.Storeys {
		if s.ID == id {
			return s, true
		}
	}
	return Storey{}, false
}

// CoveringsOf returns the covering ids associated with a wall.
func (m *Model) CoveringsOf(wallID string) []string {
	var out []string
	for _, link := range m.Covers {
		if link.WallID == wallID {
			out = append(out, link.CoveringIDs...)
		}
	}
	return out
}

// Well-known location of the embedded geometry payload.
const (
	GeometryPsetName = "Pset_CustomGeometry"
	GeometryPropName = "Custom_Mesh"
)

// GeometryPayload returns the raw embedded mesh payload, or "" when
// the element carries none (such elements stay out of the 3D scene
// but keep their place in the table and hierarchy).
func (e *Element) GeometryPayload() string {
	for _, pset := range e.PropertySets {
		if pset.Name != GeometryPsetName {
			continue
		}
		if raw, ok := pset.Properties[GeometryPropName]; ok {
			return raw
		}
	}
	return ""
}
