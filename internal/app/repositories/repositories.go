package repositories

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/yigit/campusnet/internal/app/models"
	"github.com/yigit/campusnet/internal/db"
)

type (
	StudentRepository     = Repository[models.Student, models.StudentPatch]
	FacultyRepository     = Repository[models.Faculty, models.FacultyPatch]
	InternshipRepository  = Repository[models.Internship, models.InternshipPatch]
	CompetitionRepository = Repository[models.Competition, models.CompetitionPatch]
	CertificateRepository = Repository[models.Certificate, models.CertificatePatch]
	ProjectRepository     = Repository[models.Project, models.ProjectPatch]
	PostRepository        = Repository[models.Post, models.PostPatch]
)

// Repositories holds all the repository instances
type Repositories struct {
	Students     *StudentRepository
	Faculty      *FacultyRepository
	Internships  *InternshipRepository
	Competitions *CompetitionRepository
	Certificates *CertificateRepository
	Projects     *ProjectRepository
	Posts        *PostRepository
}

// NewRepositories initializes all repositories over one store
func NewRepositories(store db.Store, logger zerolog.Logger) *Repositories {
	return &Repositories{
		Students:     NewRepository[models.Student, models.StudentPatch](store, models.StudentKind, logger),
		Faculty:      NewRepository[models.Faculty, models.FacultyPatch](store, models.FacultyKind, logger),
		Internships:  NewRepository[models.Internship, models.InternshipPatch](store, models.InternshipKind, logger),
		Competitions: NewRepository[models.Competition, models.CompetitionPatch](store, models.CompetitionKind, logger),
		Certificates: NewRepository[models.Certificate, models.CertificatePatch](store, models.CertificateKind, logger),
		Projects:     NewRepository[models.Project, models.ProjectPatch](store, models.ProjectKind, logger),
		Posts:        NewRepository[models.Post, models.PostPatch](store, models.PostKind, logger),
	}
}

// EnsureCollections declares every kind's collection and unique fields on the store
func EnsureCollections(ctx context.Context, store db.Store) error {
	for _, kind := range models.Kinds() {
		spec := db.CollectionSpec{Name: kind.Collection, UniqueFields: kind.UniqueFields()}
		if kind.OwnerField != "" {
			spec.IndexFields = append(spec.IndexFields, kind.OwnerField)
		}
		if err := store.EnsureCollection(ctx, spec); err != nil {
			return fmt.Errorf("failed to ensure collection %s: %w", kind.Collection, err)
		}
	}
	return nil
}
