package services

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"github.com/yigit/campusnet/internal/app/auth"
	"github.com/yigit/campusnet/internal/app/models"
	"github.com/yigit/campusnet/internal/app/query"
	"github.com/yigit/campusnet/internal/app/repositories"
	"github.com/yigit/campusnet/internal/pkg/apperrors"
)

// PatchGuard rejects patch fields the principal may not change
type PatchGuard[P any] func(p auth.Principal, patch P) error

// EntityService exposes the repository operations of one kind behind the role gate.
// Every operation is authorized before the store is touched; repository errors are
// returned unchanged.
type EntityService[T any, P any] struct {
	repo   *repositories.Repository[T, P]
	gate   *auth.Gate
	guard  PatchGuard[P]
	logger zerolog.Logger
}

// NewEntityService creates a new EntityService
func NewEntityService[T any, P any](repo *repositories.Repository[T, P], gate *auth.Gate, logger zerolog.Logger) *EntityService[T, P] {
	return &EntityService[T, P]{
		repo:   repo,
		gate:   gate,
		logger: logger.With().Str("kind", repo.Kind().Name).Logger(),
	}
}

// WithPatchGuard installs guard on updates and returns s
func (s *EntityService[T, P]) WithPatchGuard(guard PatchGuard[P]) *EntityService[T, P] {
	s.guard = guard
	return s
}

// Kind returns the kind served
func (s *EntityService[T, P]) Kind() models.Kind {
	return s.repo.Kind()
}

func (s *EntityService[T, P]) resource() string {
	return s.repo.Kind().Name
}

// List returns the records matching criteria
func (s *EntityService[T, P]) List(ctx context.Context, criteria query.Criteria) ([]T, error) {
	if _, err := s.gate.Authorize(ctx, s.resource(), auth.ActionList); err != nil {
		return nil, err
	}
	return s.repo.List(ctx, criteria)
}

// Get returns the record with id
func (s *EntityService[T, P]) Get(ctx context.Context, id string) (*T, error) {
	if _, err := s.gate.Authorize(ctx, s.resource(), auth.ActionGet); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}

// Create stores input. New records always start unverified.
func (s *EntityService[T, P]) Create(ctx context.Context, input T) (*T, error) {
	d, err := s.gate.Authorize(ctx, s.resource(), auth.ActionCreate)
	if err != nil {
		return nil, err
	}
	if err := s.gate.Allow(d, targetOf("", &input)); err != nil {
		return nil, err
	}
	if v, ok := any(&input).(models.Verifiable); ok {
		v.SetVerified(false)
	}

	created, err := s.repo.Create(ctx, input)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("principal", d.Principal.ID).Msg("Record created")
	return created, nil
}

// Update applies patch to the record with id
func (s *EntityService[T, P]) Update(ctx context.Context, id string, patch P) (*T, error) {
	d, err := s.authorizeRecord(ctx, auth.ActionUpdate, id)
	if err != nil {
		return nil, err
	}
	if s.guard != nil {
		if err := s.guard(d.Principal, patch); err != nil {
			return nil, err
		}
	}
	return s.repo.Update(ctx, id, patch)
}

// Delete removes the record with id and reports whether it existed
func (s *EntityService[T, P]) Delete(ctx context.Context, id string) (bool, error) {
	d, err := s.authorizeRecord(ctx, auth.ActionDelete, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return false, nil
		}
		return false, err
	}

	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return false, err
	}
	if deleted {
		s.logger.Info().Str("id", id).Str("principal", d.Principal.ID).Msg("Record deleted")
	}
	return deleted, nil
}

// Verify sets the verification flag of an owned record
func (s *EntityService[T, P]) Verify(ctx context.Context, id string, verified bool) (*T, error) {
	var zero T
	if _, ok := any(&zero).(models.Verifiable); !ok {
		return nil, apperrors.NewBadRequestError(s.resource() + " records cannot be verified")
	}
	d, err := s.gate.Authorize(ctx, s.resource(), auth.ActionVerify)
	if err != nil {
		return nil, err
	}

	out, err := s.repo.Modify(ctx, id, func(item *T) error {
		any(item).(models.Verifiable).SetVerified(verified)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("id", id).Bool("verified", verified).Str("principal", d.Principal.ID).Msg("Verification updated")
	return out, nil
}

// authorizeRecord runs the role check and, when the decision depends on the record,
// loads it to complete the check. Nothing is written before the principal is cleared.
func (s *EntityService[T, P]) authorizeRecord(ctx context.Context, action auth.Action, id string) (auth.Decision, error) {
	d, err := s.gate.Authorize(ctx, s.resource(), action)
	if err != nil {
		return auth.Decision{}, err
	}
	if !d.Pending {
		return d, nil
	}

	target := auth.Target{ID: id}
	if s.repo.Kind().OwnerField != "" {
		item, err := s.repo.Get(ctx, id)
		if err != nil {
			return auth.Decision{}, err
		}
		target = targetOf(id, item)
	}
	if err := s.gate.Allow(d, target); err != nil {
		return auth.Decision{}, err
	}
	return d, nil
}

func targetOf(id string, item any) auth.Target {
	t := auth.Target{ID: id}
	if o, ok := item.(models.Owned); ok {
		t.OwnerID = o.OwnerID()
	}
	return t
}
