package services

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/yigit/campusnet/internal/app/auth"
	"github.com/yigit/campusnet/internal/app/models"
	"github.com/yigit/campusnet/internal/app/repositories"
	"github.com/yigit/campusnet/internal/pkg/apperrors"
	"github.com/yigit/campusnet/internal/pkg/filestorage"
)

// Entity services by kind
type (
	FacultyService     = EntityService[models.Faculty, models.FacultyPatch]
	InternshipService  = EntityService[models.Internship, models.InternshipPatch]
	CompetitionService = EntityService[models.Competition, models.CompetitionPatch]
	CertificateService = EntityService[models.Certificate, models.CertificatePatch]
	ProjectService     = EntityService[models.Project, models.ProjectPatch]
)

// Services groups the operations exposed to transports
type Services struct {
	Gate         *auth.Gate
	Students     *StudentService
	Faculty      *FacultyService
	Internships  *InternshipService
	Competitions *CompetitionService
	Certificates *CertificateService
	Projects     *ProjectService
	Feed         *FeedService
}

// NewServices wires every service to repos. storage and events may be nil.
func NewServices(repos *repositories.Repositories, gate *auth.Gate, storage filestorage.FileStorage, events EventPublisher, logger zerolog.Logger) *Services {
	return &Services{
		Gate:         gate,
		Students:     NewStudentService(repos, gate, storage, logger),
		Faculty:      NewEntityService(repos.Faculty, gate, logger).WithPatchGuard(guardFacultyPatch),
		Internships:  NewEntityService(repos.Internships, gate, logger),
		Competitions: NewEntityService(repos.Competitions, gate, logger),
		Certificates: NewEntityService(repos.Certificates, gate, logger),
		Projects:     NewEntityService(repos.Projects, gate, logger),
		Feed:         NewFeedService(repos.Posts, gate, events, logger.With().Str("component", "feed").Logger()),
	}
}

// Faculty may edit their own profile but not the permissions it grants
func guardFacultyPatch(p auth.Principal, patch models.FacultyPatch) error {
	if (patch.Roles != nil || patch.HeadOf != nil) && !p.IsAdmin() {
		return apperrors.NewForbiddenError("only admins can change roles or department headship")
	}
	return nil
}

// Resolvers returns the document view of every entity service, students first
func (s *Services) Resolvers() []Resolver {
	return []Resolver{
		studentResolver{Resolver: Documents(s.Students.EntityService), students: s.Students},
		Documents(s.Faculty),
		Documents(s.Internships),
		Documents(s.Competitions),
		Documents(s.Certificates),
		Documents(s.Projects),
	}
}

// studentResolver routes deletes through the cascading StudentService.Delete
type studentResolver struct {
	Resolver
	students *StudentService
}

func (r studentResolver) Delete(ctx context.Context, id string) (bool, error) {
	return r.students.Delete(ctx, id)
}
