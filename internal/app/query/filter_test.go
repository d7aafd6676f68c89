package query

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func studentBuilder() *Builder {
	return NewBuilder(
		FieldSpec{Name: "name", Kind: Scalar, Searchable: true},
		FieldSpec{Name: "department", Kind: Scalar},
		FieldSpec{Name: "active", Kind: Scalar},
		FieldSpec{Name: "techStack", Kind: List},
	)
}

func TestBuildEmptyCriteriaIsNeutral(t *testing.T) {
	b := studentBuilder()

	assert.True(t, b.Build(nil).IsEmpty())
	assert.True(t, b.Build(Criteria{}).IsEmpty())
	assert.True(t, b.Build(Criteria{
		"name":       "",
		"department": nil,
		"techStack":  []string{},
	}).IsEmpty())
}

func TestBuildIgnoresUnknownCriteria(t *testing.T) {
	f := studentBuilder().Build(Criteria{"password": "x", "department": "CSE"})

	require.Len(t, f.Constraints, 1)
	assert.Equal(t, Constraint{Field: "department", Op: OpEq, Value: "CSE"}, f.Constraints[0])
}

func TestBuildEmptyListEqualsAbsent(t *testing.T) {
	b := studentBuilder()

	withEmpty := b.Build(Criteria{"department": "CSE", "techStack": []string{}})
	without := b.Build(Criteria{"department": "CSE"})

	assert.Equal(t, without, withEmpty)
}

func TestBuildListIsAllOf(t *testing.T) {
	f := studentBuilder().Build(Criteria{"techStack": []string{"go", "sql", "go", ""}})

	require.Len(t, f.Constraints, 1)
	assert.Equal(t, OpContainsAll, f.Constraints[0].Op)
	assert.Equal(t, []any{"go", "sql"}, f.Constraints[0].Value)
}

func TestBuildIsOrderIndependent(t *testing.T) {
	b := studentBuilder()
	criteria := Criteria{"department": "CSE", "name": "Asha", "techStack": []any{"go"}, "active": true}

	first := b.Build(criteria)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, b.Build(criteria))
	}
	assert.Equal(t, "active", first.Constraints[0].Field)
	assert.Equal(t, "techStack", first.Constraints[3].Field)
}

func TestBuildScalarFromPointerAndSingleItemList(t *testing.T) {
	dept := "ECE"
	var missing *string
	b := studentBuilder()

	f := b.Build(Criteria{"department": &dept, "name": missing})
	require.Len(t, f.Constraints, 1)
	assert.Equal(t, "ECE", f.Constraints[0].Value)

	f = b.Build(Criteria{"department": []string{"ECE"}})
	require.Len(t, f.Constraints, 1)
	assert.Equal(t, "ECE", f.Constraints[0].Value)

	assert.True(t, b.Build(Criteria{"department": []string{"ECE", "CSE"}}).IsEmpty())
}

func TestBuildContainsForSearchableFields(t *testing.T) {
	b := studentBuilder()

	f := b.Build(Criteria{"nameContains": "  ash "})
	require.Len(t, f.Constraints, 1)
	assert.Equal(t, Constraint{Field: "name", Op: OpContains, Value: "ash"}, f.Constraints[0])

	assert.True(t, b.Build(Criteria{"departmentContains": "C"}).IsEmpty())
}

func TestBuildNormalizesNumbers(t *testing.T) {
	b := NewBuilder(FieldSpec{Name: "experience", Kind: Scalar})

	f := b.Build(Criteria{"experience": 7})
	require.Len(t, f.Constraints, 1)
	assert.Equal(t, float64(7), f.Constraints[0].Value)
}

func TestMatch(t *testing.T) {
	doc := map[string]any{
		"name":       "Asha Rao",
		"department": "CSE",
		"active":     true,
		"techStack":  []any{"go", "sql", "react"},
	}
	b := studentBuilder()

	cases := []struct {
		name     string
		criteria Criteria
		want     bool
	}{
		{"empty", Criteria{}, true},
		{"exact", Criteria{"department": "CSE"}, true},
		{"exact mismatch", Criteria{"department": "cse"}, false},
		{"bool", Criteria{"active": true}, true},
		{"all of", Criteria{"techStack": []string{"go", "react"}}, true},
		{"all of missing one", Criteria{"techStack": []string{"go", "rust"}}, false},
		{"contains", Criteria{"nameContains": "RAO"}, true},
		{"combined", Criteria{"department": "CSE", "techStack": []string{"sql"}}, true},
		{"combined mismatch", Criteria{"department": "ME", "techStack": []string{"sql"}}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, b.Build(tc.criteria).Match(doc))
		})
	}
}

func TestMatchAllOfAgainstMissingField(t *testing.T) {
	f := studentBuilder().Build(Criteria{"techStack": []string{"go"}})

	assert.False(t, f.Match(map[string]any{"name": "x"}))
	assert.False(t, f.Match(map[string]any{"techStack": nil}))
}

func TestBuildAppliesFieldNormalizer(t *testing.T) {
	b := NewBuilder(
		FieldSpec{Name: "email", Kind: Scalar, Normalize: strings.ToLower},
		FieldSpec{Name: "tags", Kind: List, Normalize: strings.TrimSpace},
	)

	f := b.Build(Criteria{"email": "Asha@Campus.edu", "tags": []string{" go", "go", "  "}})
	require.Len(t, f.Constraints, 2)
	assert.Equal(t, Constraint{Field: "email", Op: OpEq, Value: "asha@campus.edu"}, f.Constraints[0])
	assert.Equal(t, Constraint{Field: "tags", Op: OpContainsAll, Value: []any{"go"}}, f.Constraints[1])

	// A scalar given as a one-element list is normalized too
	f = b.Build(Criteria{"email": []string{"A@B.C"}})
	require.Len(t, f.Constraints, 1)
	assert.Equal(t, "a@b.c", f.Constraints[0].Value)
}
