package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/yigit/campusnet/internal/app/auth"
	"github.com/yigit/campusnet/internal/app/models"
	"github.com/yigit/campusnet/internal/app/query"
	"github.com/yigit/campusnet/internal/app/repositories"
	"github.com/yigit/campusnet/internal/pkg/apperrors"
	"github.com/yigit/campusnet/internal/pkg/filestorage"
)

const profileImageDir = "profile-images"

var profileImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// StudentService adds the student lifecycle on top of the generic operations
type StudentService struct {
	*EntityService[models.Student, models.StudentPatch]
	repos   *repositories.Repositories
	storage filestorage.FileStorage
}

// NewStudentService creates a new StudentService
func NewStudentService(repos *repositories.Repositories, gate *auth.Gate, storage filestorage.FileStorage, logger zerolog.Logger) *StudentService {
	entity := NewEntityService(repos.Students, gate, logger).WithPatchGuard(guardStudentPatch)
	return &StudentService{
		EntityService: entity,
		repos:         repos,
		storage:       storage,
	}
}

// Students may edit their own profile but not its status
func guardStudentPatch(p auth.Principal, patch models.StudentPatch) error {
	if patch.Active != nil && !p.IsAdmin() {
		return apperrors.NewForbiddenError("only admins can change a student's status")
	}
	return nil
}

// Delete removes the student and every record it owns. Owned records go first so
// that a failure leaves the student in place and the delete can be retried.
func (s *StudentService) Delete(ctx context.Context, id string) (bool, error) {
	d, err := s.gate.Authorize(ctx, s.resource(), auth.ActionDelete)
	if err != nil {
		return false, err
	}

	student, err := s.repo.Get(ctx, id)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrResourceNotFound) {
			return false, nil
		}
		return false, err
	}

	owner := query.Eq(models.InternshipKind.OwnerField, id)
	cascade := []struct {
		kind   string
		delete func(context.Context, query.Filter) (int, error)
	}{
		{models.InternshipKind.Name, s.repos.Internships.DeleteWhere},
		{models.CompetitionKind.Name, s.repos.Competitions.DeleteWhere},
		{models.CertificateKind.Name, s.repos.Certificates.DeleteWhere},
		{models.ProjectKind.Name, s.repos.Projects.DeleteWhere},
	}
	for _, c := range cascade {
		n, err := c.delete(ctx, owner)
		if err != nil {
			return false, fmt.Errorf("failed to delete %s records of student %s: %w", c.kind, id, err)
		}
		if n > 0 {
			s.logger.Info().Str("id", id).Str("kind", c.kind).Int("count", n).Msg("Deleted owned records")
		}
	}

	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return false, err
	}
	if deleted && student.ProfileImage != nil && s.storage != nil {
		if err := s.storage.Delete(*student.ProfileImage); err != nil {
			s.logger.Warn().Err(err).Str("id", id).Msg("Failed to remove profile image")
		}
	}
	s.logger.Info().Str("id", id).Str("principal", d.Principal.ID).Bool("deleted", deleted).Msg("Student deleted")
	return deleted, nil
}

// Deactivate marks the student inactive. This is the normal way to retire a student.
func (s *StudentService) Deactivate(ctx context.Context, id string) (*models.Student, error) {
	d, err := s.gate.Authorize(ctx, s.resource(), auth.ActionDeactivate)
	if err != nil {
		return nil, err
	}

	student, err := s.repo.Modify(ctx, id, func(st *models.Student) error {
		st.Active = false
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("id", id).Str("principal", d.Principal.ID).Msg("Student deactivated")
	return student, nil
}

// Profile returns the student together with the records it owns
func (s *StudentService) Profile(ctx context.Context, id string) (*models.StudentProfile, error) {
	student, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	owner := query.Eq(models.InternshipKind.OwnerField, id)
	profile := &models.StudentProfile{Student: student}
	if profile.Internships, err = s.repos.Internships.Find(ctx, owner); err != nil {
		return nil, err
	}
	if profile.Competitions, err = s.repos.Competitions.Find(ctx, owner); err != nil {
		return nil, err
	}
	if profile.Certificates, err = s.repos.Certificates.Find(ctx, owner); err != nil {
		return nil, err
	}
	if profile.Projects, err = s.repos.Projects.Find(ctx, owner); err != nil {
		return nil, err
	}
	return profile, nil
}

// UploadProfileImage stores an image read from r and points the student's profile at it.
// Only JPEG, PNG and WebP content is accepted.
func (s *StudentService) UploadProfileImage(ctx context.Context, id string, r io.Reader, filename string) (*models.Student, error) {
	if _, err := s.authorizeRecord(ctx, auth.ActionUpdate, id); err != nil {
		return nil, err
	}
	if s.storage == nil {
		return nil, apperrors.NewBadRequestError("file uploads are disabled")
	}

	head := make([]byte, 512)
	n, err := io.ReadFull(r, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	head = head[:n]
	if contentType := http.DetectContentType(head); !profileImageTypes[contentType] {
		return nil, apperrors.NewValidationError("image", fmt.Sprintf("unsupported content type %s", contentType))
	}

	// Fail fast on unknown students before writing anything
	if _, err := s.repo.Get(ctx, id); err != nil {
		return nil, err
	}

	url, err := s.storage.Save(ctx, io.MultiReader(bytes.NewReader(head), r), filename, profileImageDir)
	if err != nil {
		return nil, err
	}

	var previous *string
	student, err := s.repo.Modify(ctx, id, func(st *models.Student) error {
		previous = st.ProfileImage
		st.ProfileImage = &url
		return nil
	})
	if err != nil {
		_ = s.storage.Delete(url)
		return nil, err
	}
	if previous != nil {
		if err := s.storage.Delete(*previous); err != nil {
			s.logger.Warn().Err(err).Str("id", id).Msg("Failed to remove previous profile image")
		}
	}
	return student, nil
}
