package quantity

import "bim-viewer/internal/viewer/model"

// ============================================================
// Property Collector
// ============================================================

// CollectProperties gathers every property-set key/value pair of an
// element for the properties panel, keyed by set name. The raw
// geometry payload is elided: it is consumed by the geometry parser
// and is noise in a property table.
func CollectProperties(e *model.Element) map[string]map[string]string {
	out := make(map[string]map[string]string, len(e.PropertySets))
	for _, pset := range e.PropertySets {
		values := make(map[string]string, len(pset.Properties))
		for k, v := range pset.Properties {
			if pset.Name == model.GeometryPsetName && k == model.GeometryPropName {
				continue
			}
			values[k] = v
		}
		if len(values) > 0 {
			out[pset.Name] = values
		}
	}
	return out
}
