package db

import (
	"testing"

	"github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/campusnet/internal/app/query"
)

func testCollection() *postgresCollection {
	return &postgresCollection{
		table: "students",
		sb:    squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func studentFilter(criteria query.Criteria) query.Filter {
	return query.NewBuilder(
		query.FieldSpec{Name: "name", Kind: query.Scalar, Searchable: true},
		query.FieldSpec{Name: "department", Kind: query.Scalar},
		query.FieldSpec{Name: "techStack", Kind: query.List},
	).Build(criteria)
}

func TestFindQueryWithoutFilter(t *testing.T) {
	sql, args, err := testCollection().findQuery(query.Filter{})
	require.NoError(t, err)

	assert.Equal(t, `SELECT id, doc, created_at, updated_at FROM "students" WHERE (1=1) ORDER BY created_at, id`, sql)
	assert.Empty(t, args)
}

func TestFindQueryFoldsEqualityAndAllOfIntoContainment(t *testing.T) {
	sql, args, err := testCollection().findQuery(studentFilter(query.Criteria{
		"department": "CSE",
		"techStack":  []string{"go", "sql"},
	}))
	require.NoError(t, err)

	assert.Contains(t, sql, "WHERE (doc @> $1::jsonb)")
	require.Len(t, args, 1)
	assert.JSONEq(t, `{"department":"CSE","techStack":["go","sql"]}`, args[0].(string))
}

func TestFindQuerySubstringSearch(t *testing.T) {
	sql, args, err := testCollection().findQuery(studentFilter(query.Criteria{
		"department":   "CSE",
		"nameContains": "50%_off",
	}))
	require.NoError(t, err)

	assert.Contains(t, sql, "doc @> $1::jsonb AND doc->>'name' ILIKE $2")
	require.Len(t, args, 2)
	assert.Equal(t, `%50\%\_off%`, args[1])
}

func TestCollectionDDL(t *testing.T) {
	stmts := collectionDDL(CollectionSpec{Name: "students", UniqueFields: []string{"email"}, IndexFields: []string{"department"}})

	require.Len(t, stmts, 5)
	assert.Contains(t, stmts[0], `CREATE TABLE IF NOT EXISTS "students"`)
	assert.Contains(t, stmts[1], "USING GIN (doc jsonb_path_ops)")
	assert.Equal(t, `CREATE UNIQUE INDEX IF NOT EXISTS "students_email_key" ON "students" ((doc->>'email'))`, stmts[3])
	assert.Contains(t, stmts[4], `"students_department_idx"`)
}

func TestFieldFromConstraint(t *testing.T) {
	assert.Equal(t, "email", fieldFromConstraint("students", "students_email_key"))
	assert.Equal(t, "id", fieldFromConstraint("students", "students_pkey"))
	assert.Equal(t, "", fieldFromConstraint("students", "faculty_email_key"))
}
