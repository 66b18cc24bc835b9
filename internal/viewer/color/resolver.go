package color

import (
	"bim-viewer/internal/viewer/filter"
	"bim-viewer/internal/viewer/model"
)

// ============================================================
// Color Resolver
// ============================================================

const (
	// Highlight overrides every other tier while an element is selected.
	Highlight = "#ffff00"
	// Fallback is used when no rule matches and the payload carried
	// no default color.
	Fallback = "#cccccc"
)

// strategy returns a color and true, or "" and false for "no match".
type strategy func(m *model.Model, e *model.Element) (string, bool, error)

// Resolve computes the display color of an element, trying each
// precedence tier in order: selection highlight, first matching
// config rule, embedded default color, fixed fallback. Pure: safe
// to re-invoke on every repaint. A rule with invalid filter syntax
// aborts resolution with the filter error.
func Resolve(m *model.Model, e *model.Element, rules []model.ColorRule, embedded string) (string, error) {
	strategies := []strategy{
		selectionStrategy,
		ruleStrategy(rules),
		embeddedStrategy(embedded),
	}
	for _, s := range strategies {
		c, ok, err := s(m, e)
		if err != nil {
			return "", err
		}
		if ok {
			return c, nil
		}
	}
	return Fallback, nil
}

func selectionStrategy(_ *model.Model, e *model.Element) (string, bool, error) {
	if e.Selected {
		return Highlight, true, nil
	}
	return "", false, nil
}

// ruleStrategy evaluates rules in document order, first match wins.
// Matches from later rules are never blended in.
func ruleStrategy(rules []model.ColorRule) strategy {
	return func(m *model.Model, e *model.Element) (string, bool, error) {
		for _, rule := range rules {
			ok, err := filter.Match(rule.Filter, m, e)
			if err != nil {
				return "", false, err
			}
			if ok {
				return rule.Color, true, nil
			}
		}
		return "", false, nil
	}
}

func embeddedStrategy(embedded string) strategy {
	return func(*model.Model, *model.Element) (string, bool, error) {
		if embedded != "" {
			return embedded, true, nil
		}
		return "", false, nil
	}
}
