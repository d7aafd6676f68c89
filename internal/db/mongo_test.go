package db

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/campusnet/internal/app/query"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func TestBSONFilterEmpty(t *testing.T) {
	assert.Equal(t, bson.D{}, bsonFilter(query.Filter{}))
}

func TestBSONFilterSingleConstraint(t *testing.T) {
	f := studentFilter(query.Criteria{"techStack": []string{"go", "sql"}})

	assert.Equal(t, bson.D{{Key: "techStack", Value: bson.D{{Key: "$all", Value: []any{"go", "sql"}}}}}, bsonFilter(f))
}

func TestBSONFilterCombinesWithAnd(t *testing.T) {
	f := studentFilter(query.Criteria{"department": "CSE", "nameContains": "a.b"})

	got := bsonFilter(f)
	require.Len(t, got, 1)
	assert.Equal(t, "$and", got[0].Key)
	parts := got[0].Value.(bson.A)
	require.Len(t, parts, 2)
	assert.Equal(t, bson.D{{Key: "department", Value: "CSE"}}, parts[0])
	assert.Equal(t, bson.D{{Key: "name", Value: bson.D{{Key: "$regex", Value: `a\.b`}, {Key: "$options", Value: "i"}}}}, parts[1])
}

func TestRecordBSONRoundTrip(t *testing.T) {
	created := time.Date(2025, 1, 2, 3, 4, 5, 6000000, time.UTC)
	rec := Record{
		ID:        "7f1c",
		Data:      map[string]any{"name": "A", "experience": float64(4)},
		CreatedAt: created,
		UpdatedAt: created,
	}

	doc := recordToBSON(rec)
	assert.Equal(t, "_id", doc[0].Key)
	assert.Equal(t, "experience", doc[1].Key)

	// Simulate what the driver hands back for stored values
	decoded := bson.D{
		{Key: "_id", Value: "7f1c"},
		{Key: "experience", Value: int32(4)},
		{Key: "name", Value: "A"},
		{Key: "tags", Value: bson.A{"x", bson.D{{Key: "k", Value: int64(2)}}}},
		{Key: "createdAt", Value: bson.NewDateTimeFromTime(created)},
		{Key: "updatedAt", Value: bson.NewDateTimeFromTime(created)},
	}
	back := recordFromBSON(decoded)

	assert.Equal(t, "7f1c", back.ID)
	assert.Equal(t, float64(4), back.Data["experience"])
	assert.Equal(t, []any{"x", map[string]any{"k": float64(2)}}, back.Data["tags"])
	assert.True(t, created.Equal(back.CreatedAt))
	assert.NotContains(t, back.Data, "createdAt")
}

func TestDuplicateField(t *testing.T) {
	msg := `E11000 duplicate key error collection: campusnet.students index: email_unique dup key: { email: "a@x.edu" }`

	assert.Equal(t, "email", duplicateField(msg, []string{"roll", "email"}))
	assert.Equal(t, "", duplicateField(msg, []string{"roll"}))
}
