package seed

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"github.com/yigit/campusnet/internal/app/models"
	"github.com/yigit/campusnet/internal/app/repositories"
	"github.com/yigit/campusnet/internal/app/query"
	"github.com/yigit/campusnet/internal/pkg/apperrors"
)

// CreateDefaultData inserts a small sample directory. Records that already
// exist are left alone, so running it again is harmless.
func CreateDefaultData(ctx context.Context, repos *repositories.Repositories, lgr zerolog.Logger) error {
	lgr.Info().Msg("Checking/Creating default data (Faculty/Students/Feed)...")
	var finalErr error

	headOf := []string{"CSE"}
	faculty := []models.Faculty{
		{
			FirstName: "Meera", LastName: "Iyer", Email: "meera.iyer@campus.edu", Phone: "+919800000001",
			Department: "CSE", Designation: "Professor", Qualification: "PhD", Experience: 14,
			Subjects: []string{"Distributed Systems", "Databases"}, Skills: []string{"go", "postgres"},
			HeadOf: headOf, Roles: []models.FacultyRole{models.FacultyRoleFaculty, models.FacultyRoleDeptAdmin},
		},
		{
			FirstName: "Arjun", LastName: "Nair", Email: "arjun.nair@campus.edu", Phone: "+919800000002",
			Department: "ECE", Designation: "Assistant Professor", Qualification: "M.Tech", Experience: 5,
			Subjects: []string{"Embedded Systems"}, Skills: []string{"c", "verilog"},
		},
	}
	for _, f := range faculty {
		if _, err := repos.Faculty.Create(ctx, f); err != nil && !isDuplicate(err) {
			lgr.Error().Err(err).Str("email", f.Email).Msg("Error creating default faculty")
			finalErr = errors.Join(finalErr, err)
		}
	}

	students := []models.Student{
		{Name: "Asha Rao", Roll: "21CS042", Email: "asha.rao@campus.edu", Department: "CSE", TechStack: []string{"go", "react"}},
		{Name: "Ravi Kumar", Roll: "21EC017", Email: "ravi.kumar@campus.edu", Department: "ECE", TechStack: []string{"python", "embedded"}},
	}
	for _, s := range students {
		created, err := repos.Students.Create(ctx, s)
		if err != nil {
			if !isDuplicate(err) {
				lgr.Error().Err(err).Str("roll", s.Roll).Msg("Error creating default student")
				finalErr = errors.Join(finalErr, err)
			}
			continue
		}
		if s.Roll == "21CS042" {
			_, err := repos.Projects.Create(ctx, models.Project{
				StudentID:   created.ID,
				Title:       "Campus event planner",
				Description: "Schedules club events around exam weeks",
				TechStack:   []string{"go", "react"},
			})
			if err != nil {
				lgr.Error().Err(err).Str("roll", s.Roll).Msg("Error creating default project")
				finalErr = errors.Join(finalErr, err)
			}
		}
	}

	// The feed has no unique field, so seed it only while it is empty
	posts, err := repos.Posts.Find(ctx, query.Filter{})
	if err != nil {
		return errors.Join(finalErr, err)
	}
	if len(posts) == 0 {
		authors, err := repos.Faculty.List(ctx, query.Criteria{"email": "meera.iyer@campus.edu"})
		if err == nil && len(authors) == 1 {
			_, err = repos.Posts.Create(ctx, models.Post{
				AuthorID:   authors[0].ID,
				AuthorRole: "faculty",
				Content:    "Welcome to the campus network. Keep your profiles and achievements up to date.",
			})
		}
		if err != nil {
			lgr.Error().Err(err).Msg("Error creating default post")
			finalErr = errors.Join(finalErr, err)
		}
	}

	if finalErr == nil {
		lgr.Info().Msg("Default data is in place")
	}
	return finalErr
}

func isDuplicate(err error) bool {
	return errors.Is(err, apperrors.ErrResourceAlreadyExists)
}
