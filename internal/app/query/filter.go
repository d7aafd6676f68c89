// Package query turns optional search criteria into a store-neutral predicate.
package query

import (
	"encoding/json"
	"reflect"
	"sort"
	"strings"
)

// Op is the comparison a constraint applies
type Op string

const (
	// OpEq matches documents whose field equals the value
	OpEq Op = "eq"
	// OpContainsAll matches documents whose list field holds every value
	OpContainsAll Op = "all"
	// OpContains matches documents whose string field contains the value, case-insensitively
	OpContains Op = "contains"
)

// ContainsSuffix is appended to a searchable field name to request a substring match
const ContainsSuffix = "Contains"

// Constraint is a single field condition. Value is a JSON scalar for OpEq and OpContains
// and a non-empty []any of JSON scalars for OpContainsAll.
type Constraint struct {
	Field string
	Op    Op
	Value any
}

// Filter is the conjunction of its constraints. The zero value matches everything.
type Filter struct {
	Constraints []Constraint
}

// IsEmpty reports whether the filter places no restriction
func (f Filter) IsEmpty() bool {
	return len(f.Constraints) == 0
}

// Eq returns a filter with a single equality constraint
func Eq(field string, value any) Filter {
	return Filter{Constraints: []Constraint{{Field: field, Op: OpEq, Value: normalizeScalar(value)}}}
}

// Criteria maps field names to optional values. A value may be a scalar, a pointer to one,
// or a slice of scalars.
type Criteria map[string]any

// FieldKind tells the builder how to read a criterion
type FieldKind int

const (
	// Scalar fields produce exact-match constraints
	Scalar FieldKind = iota
	// List fields produce all-of constraints
	List
)

// FieldSpec describes one filterable field
type FieldSpec struct {
	Name       string
	Kind       FieldKind
	Searchable bool
	// Normalize, when set, rewrites string values into the form the field is stored in
	Normalize func(string) string
}

func (s FieldSpec) normalize(v any) any {
	if str, ok := v.(string); ok && s.Normalize != nil {
		return s.Normalize(str)
	}
	return v
}

// Builder builds filters for a fixed set of fields
type Builder struct {
	fields   map[string]FieldSpec
	contains map[string]string
}

// NewBuilder creates a Builder that recognizes the given fields and ignores everything else
func NewBuilder(fields ...FieldSpec) *Builder {
	b := &Builder{
		fields:   make(map[string]FieldSpec, len(fields)),
		contains: make(map[string]string),
	}
	for _, f := range fields {
		b.fields[f.Name] = f
		if f.Searchable && f.Kind == Scalar {
			b.contains[f.Name+ContainsSuffix] = f.Name
		}
	}
	return b
}

// Fields returns the recognized field specs sorted by name
func (b *Builder) Fields() []FieldSpec {
	out := make([]FieldSpec, 0, len(b.fields))
	for _, f := range b.fields {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Build converts criteria into a filter. It never fails: absent, empty and unknown
// criteria contribute nothing, and an empty list is the same as an absent one.
func (b *Builder) Build(criteria Criteria) Filter {
	var f Filter
	for key, raw := range criteria {
		if spec, ok := b.fields[key]; ok {
			if c, ok := buildConstraint(spec, raw); ok {
				f.Constraints = append(f.Constraints, c)
			}
			continue
		}
		if field, ok := b.contains[key]; ok {
			if s, ok := indirect(raw).(string); ok && strings.TrimSpace(s) != "" {
				f.Constraints = append(f.Constraints, Constraint{Field: field, Op: OpContains, Value: strings.TrimSpace(s)})
			}
		}
	}
	sort.Slice(f.Constraints, func(i, j int) bool {
		if f.Constraints[i].Field != f.Constraints[j].Field {
			return f.Constraints[i].Field < f.Constraints[j].Field
		}
		return f.Constraints[i].Op < f.Constraints[j].Op
	})
	return f
}

func buildConstraint(spec FieldSpec, raw any) (Constraint, bool) {
	values, isList := listValues(raw, spec.normalize)
	switch spec.Kind {
	case List:
		if !isList {
			v := spec.normalize(normalizeScalar(raw))
			if isEmptyScalar(v) {
				return Constraint{}, false
			}
			values = []any{v}
		}
		if len(values) == 0 {
			return Constraint{}, false
		}
		return Constraint{Field: spec.Name, Op: OpContainsAll, Value: values}, true
	default:
		v := spec.normalize(normalizeScalar(raw))
		if isList {
			// A single-element list is accepted for a scalar field; anything longer has no exact-match meaning.
			if len(values) != 1 {
				return Constraint{}, false
			}
			v = values[0]
		}
		if isEmptyScalar(v) {
			return Constraint{}, false
		}
		return Constraint{Field: spec.Name, Op: OpEq, Value: v}, true
	}
}

// listValues reports whether raw is a slice and returns its non-empty, de-duplicated members
// after passing each through normalize
func listValues(raw any, normalize func(any) any) ([]any, bool) {
	rv := reflect.ValueOf(indirect(raw))
	if !rv.IsValid() || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
		return nil, false
	}
	if rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() == reflect.Uint8 {
		return nil, false
	}
	out := make([]any, 0, rv.Len())
	seen := make(map[string]struct{}, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		v := normalize(normalizeScalar(rv.Index(i).Interface()))
		if isEmptyScalar(v) {
			continue
		}
		key := keyOf(v)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, v)
	}
	return out, true
}

func indirect(v any) any {
	rv := reflect.ValueOf(v)
	for rv.IsValid() && rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if !rv.IsValid() {
		return nil
	}
	return rv.Interface()
}

// normalizeScalar converts a value to its JSON form so every store compares like with like
func normalizeScalar(v any) any {
	v = indirect(v)
	switch t := v.(type) {
	case nil:
		return nil
	case string:
		return t
	case bool:
		return t
	case float64:
		return t
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil
	}
	switch out.(type) {
	case string, bool, float64:
		return out
	default:
		return nil
	}
}

func isEmptyScalar(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	default:
		return false
	}
}

func keyOf(v any) string {
	b, _ := json.Marshal(v)
	return string(b)
}
