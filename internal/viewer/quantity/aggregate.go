package quantity

import (
	"errors"
	"fmt"
	"strings"

	"bim-viewer/internal/viewer/model"
)

// ============================================================
// Quantity Aggregator
// ============================================================

// ErrMissingAssociation indicates a wall references a covering that
// is not present in the model. Non-fatal: the covering contributes
// no quantities and the caller gets a warning.
var ErrMissingAssociation = errors.New("quantity: covering association cannot be resolved")

// qtoPrefix marks quantity sets taken into the aggregate, matching
// the source model's naming convention.
const qtoPrefix = "Qto_"

// Aggregate collects every Qto_ quantity set attached to the element
// into set-name -> quantity-name -> value. For wall-like elements the
// Qto_ sets of associated coverings are merged under per-covering
// keys, so a covering quantity never overwrites a like-named wall
// quantity and two coverings never overwrite each other. The second
// return value lists unresolvable covering associations.
//
// Re-running on an unchanged model yields an identical mapping.
func Aggregate(m *model.Model, e *model.Element) (map[string]map[string]float64, []error) {
	out := make(map[string]map[string]float64)

	for _, set := range e.QuantitySets {
		if !strings.HasPrefix(set.Name, qtoPrefix) {
			continue
		}
		addSet(out, set.Name, set)
	}

	if !model.WallLike(e.Type) {
		return out, nil
	}

	var warnings []error
	for _, coveringID := range m.CoveringsOf(e.ID) {
		covering := m.ElementByID(coveringID)
		if covering == nil {
			warnings = append(warnings, fmt.Errorf("%w: wall %s -> covering %s",
				ErrMissingAssociation, e.ID, coveringID))
			continue
		}
		for _, set := range covering.QuantitySets {
			if !strings.HasPrefix(set.Name, qtoPrefix) {
				continue
			}
			addSet(out, CoveringKey(set.Name, coveringID), set)
		}
	}
	return out, warnings
}

// CoveringKey is the aggregate key for a covering's quantity set.
func CoveringKey(setName, coveringID string) string {
	return fmt.Sprintf("%s (Covering %s)", setName, coveringID)
}

func addSet(out map[string]map[string]float64, key string, set model.QuantitySet) {
	values, ok := out[key]
	if !ok {
		values = make(map[string]float64, len(set.Quantities))
		out[key] = values
	}
	for _, q := range set.Quantities {
		values[q.Name] = q.Value
	}
}
