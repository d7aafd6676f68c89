package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/campusnet/internal/app/models"
	"github.com/yigit/campusnet/internal/app/query"
	"github.com/yigit/campusnet/internal/db"
	"github.com/yigit/campusnet/internal/pkg/apperrors"
)

func newRepos(t *testing.T) (*Repositories, *db.MemoryStore) {
	t.Helper()
	store := db.NewMemoryStore()
	require.NoError(t, EnsureCollections(context.Background(), store))
	return NewRepositories(store, zerolog.Nop()), store
}

func strPtr(s string) *string { return &s }

func asha() models.Student {
	return models.Student{
		Name:       "Asha Rao",
		Roll:       "21CS042",
		Email:      "asha@campus.edu",
		Department: "CSE",
		TechStack:  []string{"go", "sql", "react"},
	}
}

func ravi() models.Student {
	return models.Student{
		Name:       "Ravi Kumar",
		Roll:       "21EC007",
		Email:      "ravi@campus.edu",
		Department: "ECE",
		TechStack:  []string{"go", "verilog"},
	}
}

func TestCreateAssignsIdentityAndRoundTrips(t *testing.T) {
	ctx := context.Background()
	repos, _ := newRepos(t)

	input := asha()
	input.ID = "caller-chosen"
	input.CreatedAt = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

	created, err := repos.Students.Create(ctx, input)
	require.NoError(t, err)

	_, err = uuid.Parse(created.ID)
	assert.NoError(t, err)
	assert.NotEqual(t, "caller-chosen", created.ID)
	assert.False(t, created.CreatedAt.IsZero())
	assert.True(t, created.CreatedAt.After(input.CreatedAt))
	assert.Equal(t, created.CreatedAt, created.UpdatedAt)
	assert.True(t, created.Active)

	got, err := repos.Students.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)
	assert.Equal(t, input.Name, got.Name)
	assert.Equal(t, input.TechStack, got.TechStack)
}

func TestCreateRequiresFields(t *testing.T) {
	ctx := context.Background()
	repos, _ := newRepos(t)

	input := asha()
	input.Department = "  "

	_, err := repos.Students.Create(ctx, input)
	verr, ok := apperrors.AsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, "department", verr.Field)
}

func TestCreateValidatesFieldFormats(t *testing.T) {
	ctx := context.Background()
	repos, _ := newRepos(t)

	input := asha()
	input.Email = "not-an-email"

	_, err := repos.Students.Create(ctx, input)
	verr, ok := apperrors.AsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, "email", verr.Field)
}

func TestUniquenessEnforced(t *testing.T) {
	ctx := context.Background()
	repos, _ := newRepos(t)

	_, err := repos.Students.Create(ctx, asha())
	require.NoError(t, err)

	dup := ravi()
	dup.Roll = asha().Roll
	_, err = repos.Students.Create(ctx, dup)
	verr, ok := apperrors.AsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, "roll", verr.Field)
	assert.True(t, errors.Is(err, apperrors.ErrResourceAlreadyExists))

	// Email uniqueness is case-insensitive through normalization
	dup = ravi()
	dup.Email = "ASHA@campus.edu"
	_, err = repos.Students.Create(ctx, dup)
	verr, ok = apperrors.AsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, "email", verr.Field)

	all, err := repos.Students.List(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestUpdateRejectsDuplicate(t *testing.T) {
	ctx := context.Background()
	repos, _ := newRepos(t)

	_, err := repos.Students.Create(ctx, asha())
	require.NoError(t, err)
	r, err := repos.Students.Create(ctx, ravi())
	require.NoError(t, err)

	_, err = repos.Students.Update(ctx, r.ID, models.StudentPatch{Email: strPtr("asha@campus.edu")})
	verr, ok := apperrors.AsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, "email", verr.Field)
}

func TestPartialUpdatePreservesOtherFields(t *testing.T) {
	ctx := context.Background()
	repos, _ := newRepos(t)
	clock := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	repos.Students.now = func() time.Time { return clock }

	created, err := repos.Students.Create(ctx, asha())
	require.NoError(t, err)

	clock = clock.Add(time.Minute)
	updated, err := repos.Students.Update(ctx, created.ID, models.StudentPatch{Department: strPtr("IT")})
	require.NoError(t, err)

	assert.Equal(t, "IT", updated.Department)
	assert.Equal(t, created.Name, updated.Name)
	assert.Equal(t, created.Roll, updated.Roll)
	assert.Equal(t, created.Email, updated.Email)
	assert.Equal(t, created.TechStack, updated.TechStack)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)
	assert.Equal(t, clock, updated.UpdatedAt)

	stack := []string{}
	cleared, err := repos.Students.Update(ctx, created.ID, models.StudentPatch{TechStack: &stack})
	require.NoError(t, err)
	assert.Equal(t, []string{}, cleared.TechStack)
	assert.Equal(t, "IT", cleared.Department)
}

func TestUpdateRevalidates(t *testing.T) {
	ctx := context.Background()
	repos, _ := newRepos(t)
	created, err := repos.Students.Create(ctx, asha())
	require.NoError(t, err)

	_, err = repos.Students.Update(ctx, created.ID, models.StudentPatch{Name: strPtr("")})
	verr, ok := apperrors.AsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, "name", verr.Field)

	got, err := repos.Students.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Asha Rao", got.Name)
}

func TestNotFound(t *testing.T) {
	ctx := context.Background()
	repos, _ := newRepos(t)
	missing := uuid.NewString()

	_, err := repos.Students.Get(ctx, missing)
	assert.True(t, errors.Is(err, apperrors.ErrResourceNotFound))

	_, err = repos.Students.Get(ctx, "not-a-uuid")
	assert.True(t, errors.Is(err, apperrors.ErrResourceNotFound))

	_, err = repos.Students.Update(ctx, missing, models.StudentPatch{Name: strPtr("x")})
	assert.True(t, errors.Is(err, apperrors.ErrResourceNotFound))
}

func TestDeleteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repos, _ := newRepos(t)
	created, err := repos.Students.Create(ctx, asha())
	require.NoError(t, err)

	deleted, err := repos.Students.Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = repos.Students.Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, deleted)

	deleted, err = repos.Students.Delete(ctx, "garbage")
	require.NoError(t, err)
	assert.False(t, deleted)

	_, err = repos.Students.Get(ctx, created.ID)
	assert.True(t, errors.Is(err, apperrors.ErrResourceNotFound))
}

func TestListFilterSemantics(t *testing.T) {
	ctx := context.Background()
	repos, _ := newRepos(t)
	a, err := repos.Students.Create(ctx, asha())
	require.NoError(t, err)
	r, err := repos.Students.Create(ctx, ravi())
	require.NoError(t, err)

	ids := func(items []models.Student) []string {
		out := make([]string, 0, len(items))
		for _, s := range items {
			out = append(out, s.ID)
		}
		return out
	}

	all, err := repos.Students.List(ctx, query.Criteria{})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{a.ID, r.ID}, ids(all))

	neutral, err := repos.Students.List(ctx, query.Criteria{"techStack": []string{}, "department": ""})
	require.NoError(t, err)
	assert.ElementsMatch(t, ids(all), ids(neutral))

	goers, err := repos.Students.List(ctx, query.Criteria{"techStack": []string{"go"}})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{a.ID, r.ID}, ids(goers))

	allOf, err := repos.Students.List(ctx, query.Criteria{"techStack": []string{"go", "react"}})
	require.NoError(t, err)
	assert.Equal(t, []string{a.ID}, ids(allOf))

	none, err := repos.Students.List(ctx, query.Criteria{"techStack": []string{"go", "react", "verilog"}})
	require.NoError(t, err)
	assert.Empty(t, none)

	ece, err := repos.Students.List(ctx, query.Criteria{"department": "ECE", "unknown": "x"})
	require.NoError(t, err)
	assert.Equal(t, []string{r.ID}, ids(ece))

	search, err := repos.Students.List(ctx, query.Criteria{"nameContains": "kumar"})
	require.NoError(t, err)
	assert.Equal(t, []string{r.ID}, ids(search))
}

func TestOwnedRecordReferencesStudent(t *testing.T) {
	ctx := context.Background()
	repos, _ := newRepos(t)

	internship := models.Internship{
		StudentID: uuid.NewString(),
		Company:   "Acme",
		Position:  "Intern",
		StartDate: "2024-05-01",
	}
	_, err := repos.Internships.Create(ctx, internship)
	verr, ok := apperrors.AsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, "studentId", verr.Field)

	s, err := repos.Students.Create(ctx, asha())
	require.NoError(t, err)
	internship.StudentID = s.ID
	created, err := repos.Internships.Create(ctx, internship)
	require.NoError(t, err)
	assert.False(t, created.Verified)

	bad := internship
	bad.StartDate = "May 2024"
	_, err = repos.Internships.Create(ctx, bad)
	verr, ok = apperrors.AsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, "startDate", verr.Field)
}

func TestModifyCannotMoveOwnership(t *testing.T) {
	ctx := context.Background()
	repos, _ := newRepos(t)
	a, err := repos.Students.Create(ctx, asha())
	require.NoError(t, err)
	r, err := repos.Students.Create(ctx, ravi())
	require.NoError(t, err)

	cert, err := repos.Certificates.Create(ctx, models.Certificate{
		StudentID: a.ID, Title: "CKA", Organization: "CNCF", IssueDate: "2024-02-10",
	})
	require.NoError(t, err)

	_, err = repos.Certificates.Modify(ctx, cert.ID, func(c *models.Certificate) error {
		c.StudentID = r.ID
		return nil
	})
	verr, ok := apperrors.AsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, "studentId", verr.Field)

	verified, err := repos.Certificates.Modify(ctx, cert.ID, func(c *models.Certificate) error {
		c.SetVerified(true)
		return nil
	})
	require.NoError(t, err)
	assert.True(t, verified.Verified)
}

func TestDeleteWhere(t *testing.T) {
	ctx := context.Background()
	repos, _ := newRepos(t)
	a, err := repos.Students.Create(ctx, asha())
	require.NoError(t, err)
	r, err := repos.Students.Create(ctx, ravi())
	require.NoError(t, err)

	for _, owner := range []string{a.ID, a.ID, r.ID} {
		_, err := repos.Projects.Create(ctx, models.Project{StudentID: owner, Title: "p"})
		require.NoError(t, err)
	}

	removed, err := repos.Projects.DeleteWhere(ctx, query.Eq("studentId", a.ID))
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	left, err := repos.Projects.List(ctx, nil)
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, r.ID, left[0].StudentID)
}

func TestFacultyRolesDefault(t *testing.T) {
	ctx := context.Background()
	repos, _ := newRepos(t)

	f, err := repos.Faculty.Create(ctx, models.Faculty{
		FirstName: "Meera", LastName: "Iyer", Email: "meera@campus.edu",
		Phone: "+919800000001", Department: "CSE", Experience: 12,
	})
	require.NoError(t, err)
	assert.Equal(t, []models.FacultyRole{models.FacultyRoleFaculty}, f.Roles)

	byExperience, err := repos.Faculty.List(ctx, query.Criteria{"experience": 12})
	require.NoError(t, err)
	assert.Len(t, byExperience, 1)

	empty := []models.FacultyRole{}
	updated, err := repos.Faculty.Update(ctx, f.ID, models.FacultyPatch{Roles: &empty})
	require.NoError(t, err)
	assert.Equal(t, []models.FacultyRole{models.FacultyRoleFaculty}, updated.Roles)
}

func TestStoreUnavailablePropagates(t *testing.T) {
	ctx := context.Background()
	repos, store := newRepos(t)
	require.NoError(t, store.Close(ctx))

	_, err := repos.Students.List(ctx, nil)
	assert.True(t, errors.Is(err, apperrors.ErrStoreUnavailable))

	_, err = repos.Students.Create(ctx, asha())
	assert.True(t, errors.Is(err, apperrors.ErrStoreUnavailable))
}

func TestListMatchesValuesAsWritten(t *testing.T) {
	ctx := context.Background()
	repos, _ := newRepos(t)

	input := asha()
	input.Roll = " 21CS042 "
	input.Email = "Asha@Campus.edu"
	input.TechStack = []string{"React", " Node", "React"}
	created, err := repos.Students.Create(ctx, input)
	require.NoError(t, err)

	// Stored in normalized form
	assert.Equal(t, "asha@campus.edu", created.Email)
	assert.Equal(t, "21CS042", created.Roll)
	assert.Equal(t, []string{"React", "Node"}, created.TechStack)

	for name, criteria := range map[string]query.Criteria{
		"email as written":  {"email": "Asha@Campus.edu"},
		"email stored form": {"email": "asha@campus.edu"},
		"roll as written":   {"roll": " 21CS042 "},
		"tech as written":   {"techStack": []string{" Node", "React"}},
	} {
		t.Run(name, func(t *testing.T) {
			found, err := repos.Students.List(ctx, criteria)
			require.NoError(t, err)
			require.Len(t, found, 1)
			assert.Equal(t, created.ID, found[0].ID)
		})
	}

	_, err = repos.Faculty.Create(ctx, models.Faculty{
		FirstName: "Meera", LastName: "Iyer", Email: " Meera@Campus.EDU",
		Phone: "+919800000001 ", Department: "CSE",
	})
	require.NoError(t, err)
	found, err := repos.Faculty.List(ctx, query.Criteria{"email": "MEERA@campus.edu", "phone": " +919800000001"})
	require.NoError(t, err)
	assert.Len(t, found, 1)
}
