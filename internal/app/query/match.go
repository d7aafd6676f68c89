package query

import (
	"reflect"
	"strings"
)

// Match evaluates the filter against a JSON-shaped document
// (strings, float64, bool, nil, []any and map[string]any).
func (f Filter) Match(doc map[string]any) bool {
	for _, c := range f.Constraints {
		if !c.match(doc[c.Field]) {
			return false
		}
	}
	return true
}

func (c Constraint) match(actual any) bool {
	switch c.Op {
	case OpEq:
		return equal(actual, c.Value)
	case OpContainsAll:
		want, ok := c.Value.([]any)
		if !ok {
			return false
		}
		have, ok := actual.([]any)
		if !ok {
			return false
		}
		for _, w := range want {
			if !containsValue(have, w) {
				return false
			}
		}
		return true
	case OpContains:
		s, ok := actual.(string)
		needle, nok := c.Value.(string)
		if !ok || !nok {
			return false
		}
		return strings.Contains(strings.ToLower(s), strings.ToLower(needle))
	default:
		return false
	}
}

func containsValue(have []any, v any) bool {
	for _, h := range have {
		if equal(h, v) {
			return true
		}
	}
	return false
}

func equal(a, b any) bool {
	return reflect.DeepEqual(normalizeScalar(a), normalizeScalar(b)) && normalizeScalar(a) != nil
}
