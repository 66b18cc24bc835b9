package filter

import (
	"errors"
	"fmt"
	"strings"

	"bim-viewer/internal/viewer/model"
)

// ============================================================
// Filter Engine
// ============================================================

// ErrSyntax indicates a filter expression that is not one of the
// recognized predicate forms. It is surfaced to the caller so a
// misconfigured rule shows up instead of silently never matching.
var ErrSyntax = errors.New("filter: invalid expression")

// Recognized attribute keys.
const (
	KeyType   = "type"
	KeyStorey = "storey"
)

// Expr is a parsed equality predicate, e.g. "type = IfcWall".
type Expr struct {
	Key   string
	Value string
}

// Parse parses a filter expression of the form "key = value" with
// key one of "type" or "storey". Spaces around "=" are optional.
func Parse(expression string) (Expr, error) {
	parts := strings.SplitN(expression, "=", 2)
	if len(parts) != 2 {
		return Expr{}, fmt.Errorf("%w: %q (expected \"key = value\")", ErrSyntax, expression)
	}
	key := strings.TrimSpace(parts[0])
	value := strings.TrimSpace(parts[1])
	if value == "" {
		return Expr{}, fmt.Errorf("%w: %q (empty value)", ErrSyntax, expression)
	}
	switch key {
	case KeyType, KeyStorey:
		return Expr{Key: key, Value: value}, nil
	default:
		return Expr{}, fmt.Errorf("%w: %q (unknown attribute %q)", ErrSyntax, expression, key)
	}
}

// Matches evaluates the predicate against an element. Storey
// predicates match both the storey id and its display name.
func (x Expr) Matches(m *model.Model, e *model.Element) bool {
	switch x.Key {
	case KeyType:
		return e.Type == x.Value
	case KeyStorey:
		if e.StoreyID == x.Value {
			return true
		}
		if s, ok := m.StoreyByID(e.StoreyID); ok {
			return s.Name == x.Value
		}
		return false
	}
	return false
}

// Match parses and evaluates in one step, for callers holding raw
// rule expressions.
func Match(expression string, m *model.Model, e *model.Element) (bool, error) {
	x, err := Parse(expression)
	if err != nil {
		return false, err
	}
	return x.Matches(m, e), nil
}
