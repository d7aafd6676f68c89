package models

import (
	"fmt"
	"strings"

	"github.com/yigit/campusnet/internal/pkg/apperrors"
)

// FacultyRole is a permission a faculty member holds
type FacultyRole string

const (
	FacultyRoleFaculty    FacultyRole = "faculty"
	FacultyRoleDeptAdmin  FacultyRole = "dept_admin"
	FacultyRoleSuperAdmin FacultyRole = "super_admin"
)

// Valid reports whether r is a known role
func (r FacultyRole) Valid() bool {
	switch r {
	case FacultyRoleFaculty, FacultyRoleDeptAdmin, FacultyRoleSuperAdmin:
		return true
	}
	return false
}

// Faculty is a faculty member profile
type Faculty struct {
	Meta
	FirstName     string        `json:"firstName" example:"Meera"`
	LastName      string        `json:"lastName" example:"Iyer"`
	Email         string        `json:"email" validate:"omitempty,email" example:"meera.iyer@campus.edu"`
	Phone         string        `json:"phone" validate:"omitempty,min=7,max=20" example:"+919800000001"`
	Department    string        `json:"department" example:"CSE"`
	Designation   string        `json:"designation,omitempty" example:"Associate Professor"`
	Qualification string        `json:"qualification,omitempty" example:"PhD"`
	Experience    int           `json:"experience" validate:"min=0" example:"12"` // Years
	Subjects      []string      `json:"subjects"`
	Skills        []string      `json:"skills"`
	HeadOf        []string      `json:"headOf"`
	Roles         []FacultyRole `json:"roles" example:"faculty"`
}

// FacultyPatch carries the fields an update may change
type FacultyPatch struct {
	FirstName     *string        `json:"firstName,omitempty"`
	LastName      *string        `json:"lastName,omitempty"`
	Email         *string        `json:"email,omitempty"`
	Phone         *string        `json:"phone,omitempty"`
	Department    *string        `json:"department,omitempty"`
	Designation   *string        `json:"designation,omitempty"`
	Qualification *string        `json:"qualification,omitempty"`
	Experience    *int           `json:"experience,omitempty"`
	Subjects      *[]string      `json:"subjects,omitempty"`
	Skills        *[]string      `json:"skills,omitempty"`
	HeadOf        *[]string      `json:"headOf,omitempty"`
	Roles         *[]FacultyRole `json:"roles,omitempty"`
}

// HasRole reports whether the faculty member holds role
func (f *Faculty) HasRole(role FacultyRole) bool {
	for _, r := range f.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Normalize implements Normalizer. An empty role set becomes {faculty}.
func (f *Faculty) Normalize() error {
	f.Email = NormalizeEmail(f.Email)
	f.Phone = strings.TrimSpace(f.Phone)
	f.Subjects = dedupe(f.Subjects)
	f.Skills = dedupe(f.Skills)
	f.HeadOf = dedupe(f.HeadOf)

	roles := make([]FacultyRole, 0, len(f.Roles))
	seen := map[FacultyRole]bool{}
	for _, r := range f.Roles {
		if !r.Valid() {
			return apperrors.NewValidationError("roles", fmt.Sprintf("unknown role %q", r))
		}
		if !seen[r] {
			seen[r] = true
			roles = append(roles, r)
		}
	}
	if len(roles) == 0 {
		roles = []FacultyRole{FacultyRoleFaculty}
	}
	f.Roles = roles
	return nil
}
