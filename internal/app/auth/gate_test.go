package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/campusnet/internal/app/models"
	"github.com/yigit/campusnet/internal/pkg/apperrors"
)

var (
	student    = Principal{ID: "s-1", Role: RoleStudent}
	faculty    = Principal{ID: "f-1", Role: RoleFaculty, FacultyRoles: []models.FacultyRole{models.FacultyRoleFaculty}}
	deptAdmin  = Principal{ID: "f-2", Role: RoleFaculty, FacultyRoles: []models.FacultyRole{models.FacultyRoleDeptAdmin}}
	superAdmin = Principal{ID: "a-1", Role: RoleAdmin}
)

func newGate() *Gate {
	return NewGate(DefaultPolicy(), zerolog.Nop())
}

func as(p Principal) context.Context {
	return WithPrincipal(context.Background(), p)
}

func TestPrincipalFromContext(t *testing.T) {
	_, ok := FromContext(context.Background())
	assert.False(t, ok)

	_, ok = FromContext(WithPrincipal(context.Background(), Principal{}))
	assert.False(t, ok)

	p, ok := FromContext(as(student))
	require.True(t, ok)
	assert.Equal(t, student, p)
}

func TestIsAdmin(t *testing.T) {
	assert.False(t, student.IsAdmin())
	assert.False(t, faculty.IsAdmin())
	assert.True(t, deptAdmin.IsAdmin())
	assert.True(t, superAdmin.IsAdmin())

	// faculty roles on a student account grant nothing
	odd := Principal{ID: "s-2", Role: RoleStudent, FacultyRoles: []models.FacultyRole{models.FacultyRoleSuperAdmin}}
	assert.False(t, odd.IsAdmin())
}

func TestAuthorizeRequiresPrincipal(t *testing.T) {
	_, err := newGate().Authorize(context.Background(), models.StudentKind.Name, ActionList)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrUnauthenticated))
	assert.True(t, apperrors.IsAuthorizationError(err))
}

func TestAuthorizeRoleRules(t *testing.T) {
	g := newGate()
	cases := []struct {
		name     string
		p        Principal
		resource string
		action   Action
		allowed  bool
		pending  bool
	}{
		{"student lists students", student, models.StudentKind.Name, ActionList, true, false},
		{"faculty gets certificate", faculty, models.CertificateKind.Name, ActionGet, true, false},
		{"student cannot create student", student, models.StudentKind.Name, ActionCreate, false, false},
		{"faculty cannot create student", faculty, models.StudentKind.Name, ActionCreate, false, false},
		{"dept admin creates student", deptAdmin, models.StudentKind.Name, ActionCreate, true, false},
		{"admin deletes faculty", superAdmin, models.FacultyKind.Name, ActionDelete, true, false},
		{"student updates self pending", student, models.StudentKind.Name, ActionUpdate, true, true},
		{"faculty cannot update student", faculty, models.StudentKind.Name, ActionUpdate, false, false},
		{"faculty updates self pending", faculty, models.FacultyKind.Name, ActionUpdate, true, true},
		{"student creates own internship pending", student, models.InternshipKind.Name, ActionCreate, true, true},
		{"faculty cannot create internship", faculty, models.InternshipKind.Name, ActionCreate, false, false},
		{"faculty updates internship", faculty, models.InternshipKind.Name, ActionUpdate, true, false},
		{"faculty verifies project", faculty, models.ProjectKind.Name, ActionVerify, true, false},
		{"student cannot verify", student, models.ProjectKind.Name, ActionVerify, false, false},
		{"student cannot deactivate", student, models.StudentKind.Name, ActionDeactivate, false, false},
		{"faculty creates post", faculty, models.PostKind.Name, ActionCreate, true, false},
		{"student cannot create post", student, models.PostKind.Name, ActionCreate, false, false},
		{"student likes post", student, models.PostKind.Name, ActionLike, true, false},
		{"faculty deletes post pending", faculty, models.PostKind.Name, ActionDelete, true, true},
		{"student cannot delete post", student, models.PostKind.Name, ActionDelete, false, false},
		{"student deletes comment pending", student, ResourceComment, ActionDelete, true, true},
		{"unknown action denied", superAdmin, models.PostKind.Name, ActionDeactivate, false, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d, err := g.Authorize(as(tc.p), tc.resource, tc.action)
			if !tc.allowed {
				require.Error(t, err)
				assert.True(t, errors.Is(err, apperrors.ErrPermissionDenied))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.pending, d.Pending)
			assert.Equal(t, tc.p, d.Principal)
		})
	}
}

func TestAllowMatchesTarget(t *testing.T) {
	g := newGate()

	d, err := g.Authorize(as(student), models.StudentKind.Name, ActionUpdate)
	require.NoError(t, err)
	assert.NoError(t, g.Allow(d, Target{ID: student.ID}))
	assert.True(t, errors.Is(g.Allow(d, Target{ID: "s-9"}), apperrors.ErrPermissionDenied))

	d, err = g.Authorize(as(student), models.CompetitionKind.Name, ActionDelete)
	require.NoError(t, err)
	assert.NoError(t, g.Allow(d, Target{ID: "c-1", OwnerID: student.ID}))
	assert.Error(t, g.Allow(d, Target{ID: "c-1", OwnerID: "s-9"}))
	assert.Error(t, g.Allow(d, Target{ID: student.ID}))

	d, err = g.Authorize(as(superAdmin), models.CompetitionKind.Name, ActionDelete)
	require.NoError(t, err)
	assert.NoError(t, g.Allow(d, Target{ID: "c-1", OwnerID: "s-9"}))
}

func TestCheck(t *testing.T) {
	g := newGate()

	p, err := g.Check(as(student), models.CertificateKind.Name, ActionCreate, Target{OwnerID: student.ID})
	require.NoError(t, err)
	assert.Equal(t, student.ID, p.ID)

	_, err = g.Check(as(student), models.CertificateKind.Name, ActionCreate, Target{OwnerID: "s-9"})
	assert.True(t, errors.Is(err, apperrors.ErrPermissionDenied))

	_, err = g.Check(context.Background(), models.CertificateKind.Name, ActionCreate, Target{})
	assert.True(t, errors.Is(err, apperrors.ErrUnauthenticated))
}
