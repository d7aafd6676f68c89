package models

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/campusnet/internal/app/query"
	"github.com/yigit/campusnet/internal/pkg/apperrors"
)

func jsonNames(t reflect.Type) map[string]bool {
	names := map[string]bool{}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Anonymous {
			for k := range jsonNames(f.Type) {
				names[k] = true
			}
			continue
		}
		name := strings.Split(f.Tag.Get("json"), ",")[0]
		if name != "" && name != "-" {
			names[name] = true
		}
	}
	return names
}

func TestKindFieldsMatchJSONTags(t *testing.T) {
	types := map[string]reflect.Type{
		"Student":     reflect.TypeOf(Student{}),
		"Faculty":     reflect.TypeOf(Faculty{}),
		"Internship":  reflect.TypeOf(Internship{}),
		"Competition": reflect.TypeOf(Competition{}),
		"Certificate": reflect.TypeOf(Certificate{}),
		"Project":     reflect.TypeOf(Project{}),
		"Post":        reflect.TypeOf(Post{}),
	}
	for _, kind := range Kinds() {
		typ, ok := types[kind.Name]
		require.True(t, ok, kind.Name)
		names := jsonNames(typ)
		for _, f := range kind.Fields {
			assert.True(t, names[f.Name], "%s.%s has no json field", kind.Name, f.Name)
		}
		if kind.OwnerField != "" {
			_, ok := kind.Field(kind.OwnerField)
			assert.True(t, ok, kind.Name)
		}
	}
}

func TestKindBuilderUsesFilterableFields(t *testing.T) {
	f := StudentKind.Builder().Build(query.Criteria{
		"techStack":    []string{"go"},
		"profileImage": "x",
		"nameContains": "as",
	})

	require.Len(t, f.Constraints, 2)
	assert.Equal(t, "name", f.Constraints[0].Field)
	assert.Equal(t, query.OpContains, f.Constraints[0].Op)
	assert.Equal(t, query.OpContainsAll, f.Constraints[1].Op)
}

func TestUniqueAndReferenceFields(t *testing.T) {
	assert.Equal(t, []string{"roll", "email"}, StudentKind.UniqueFields())
	assert.Equal(t, []string{"email", "phone"}, FacultyKind.UniqueFields())

	refs := InternshipKind.ReferenceFields()
	require.Len(t, refs, 1)
	assert.Equal(t, CollectionStudents, refs[0].Ref)
}

func TestFacultyNormalizeDefaultsRoles(t *testing.T) {
	f := &Faculty{Email: " Meera@Campus.EDU "}
	require.NoError(t, f.Normalize())

	assert.Equal(t, []FacultyRole{FacultyRoleFaculty}, f.Roles)
	assert.Equal(t, "meera@campus.edu", f.Email)
	assert.Equal(t, []string{}, f.Subjects)
}

func TestFacultyNormalizeRejectsUnknownRole(t *testing.T) {
	f := &Faculty{Roles: []FacultyRole{FacultyRoleDeptAdmin, "dean"}}

	err := f.Normalize()
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrValidationFailed))
	verr, ok := apperrors.AsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, "roles", verr.Field)
}

func TestFacultyNormalizeDedupesRoles(t *testing.T) {
	f := &Faculty{Roles: []FacultyRole{FacultyRoleDeptAdmin, FacultyRoleDeptAdmin, FacultyRoleFaculty}}
	require.NoError(t, f.Normalize())

	assert.Equal(t, []FacultyRole{FacultyRoleDeptAdmin, FacultyRoleFaculty}, f.Roles)
	assert.True(t, f.HasRole(FacultyRoleDeptAdmin))
	assert.False(t, f.HasRole(FacultyRoleSuperAdmin))
}

func TestStudentDefaultsAndNormalize(t *testing.T) {
	s := &Student{Email: "A@X.EDU", TechStack: []string{"go", " go ", "", "sql"}}
	s.ApplyDefaults()
	require.NoError(t, s.Normalize())

	assert.True(t, s.Active)
	assert.Equal(t, "a@x.edu", s.Email)
	assert.Equal(t, []string{"go", "sql"}, s.TechStack)
}

func TestOwnedRecords(t *testing.T) {
	var owned []Owned = []Owned{
		&Internship{StudentID: "s1"},
		&Competition{StudentID: "s1"},
		&Certificate{StudentID: "s1"},
		&Project{StudentID: "s1"},
	}
	for _, o := range owned {
		assert.Equal(t, "s1", o.OwnerID())
		v, ok := o.(Verifiable)
		require.True(t, ok)
		v.SetVerified(true)
	}
	assert.True(t, owned[0].(*Internship).Verified)
}
