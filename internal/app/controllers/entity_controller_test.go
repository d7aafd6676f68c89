package controllers

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/campusnet/internal/app/models"
	"github.com/yigit/campusnet/internal/app/query"
	"github.com/yigit/campusnet/internal/pkg/apperrors"
)

func TestCriteriaFromQuery(t *testing.T) {
	values, err := url.ParseQuery("skills=go,%20rust&skills=sql&experience=7&firstNameContains=mee&department=CSE&department=ECE&unknown=x&phone=")
	require.NoError(t, err)

	criteria, err := criteriaFromQuery(models.FacultyKind, values)
	require.NoError(t, err)
	assert.Equal(t, []string{"go", "rust", "sql"}, criteria["skills"])
	assert.Equal(t, 7, criteria["experience"])
	assert.Equal(t, "mee", criteria["firstNameContains"])
	assert.Equal(t, []string{"CSE", "ECE"}, criteria["department"])
	assert.NotContains(t, criteria, "unknown")

	// Repeated scalars and empty values do not constrain the result
	f := models.FacultyKind.Builder().Build(criteria)
	fields := map[string]query.Op{}
	for _, c := range f.Constraints {
		fields[c.Field] = c.Op
	}
	assert.Equal(t, query.OpContainsAll, fields["skills"])
	assert.Equal(t, query.OpContains, fields["firstName"])
	assert.NotContains(t, fields, "department")
	assert.NotContains(t, fields, "phone")
}

func TestCriteriaFromQueryRejectsMalformedScalars(t *testing.T) {
	for field, raw := range map[string]string{"experience": "ten"} {
		_, err := criteriaFromQuery(models.FacultyKind, url.Values{field: {raw}})
		verr, ok := apperrors.AsValidationError(err)
		require.True(t, ok)
		assert.Equal(t, field, verr.Field)
	}

	_, err := criteriaFromQuery(models.StudentKind, url.Values{"active": {"maybe"}})
	verr, ok := apperrors.AsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, "active", verr.Field)

	criteria, err := criteriaFromQuery(models.StudentKind, url.Values{"active": {"false"}})
	require.NoError(t, err)
	assert.Equal(t, false, criteria["active"])
}
