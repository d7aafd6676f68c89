package auth

import (
	"context"

	"github.com/yigit/campusnet/internal/app/models"
)

// Role is the kind of account a principal belongs to
type Role string

const (
	RoleStudent Role = "student"
	RoleFaculty Role = "faculty"
	RoleAdmin   Role = "admin"
)

// Valid reports whether r is a known role
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleFaculty, RoleAdmin:
		return true
	}
	return false
}

// Principal is the authenticated caller of an operation
type Principal struct {
	ID           string
	Role         Role
	FacultyRoles []models.FacultyRole
}

// IsAdmin reports whether p has administrative rights. Faculty holding
// dept_admin or super_admin count as admins.
func (p Principal) IsAdmin() bool {
	if p.Role == RoleAdmin {
		return true
	}
	if p.Role != RoleFaculty {
		return false
	}
	for _, r := range p.FacultyRoles {
		if r == models.FacultyRoleDeptAdmin || r == models.FacultyRoleSuperAdmin {
			return true
		}
	}
	return false
}

// Holds reports whether p acts in role. Admins hold every role.
func (p Principal) Holds(role Role) bool {
	if role == RoleAdmin {
		return p.IsAdmin()
	}
	return p.Role == role || p.IsAdmin()
}

type principalKey struct{}

// WithPrincipal returns a copy of ctx carrying p
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// FromContext returns the principal attached to ctx, if any
func FromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok && p.ID != ""
}
