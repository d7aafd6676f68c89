package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yigit/campusnet/internal/app/models"
	"github.com/yigit/campusnet/internal/app/query"
	"github.com/yigit/campusnet/internal/db"
	"github.com/yigit/campusnet/internal/pkg/apperrors"
	"github.com/yigit/campusnet/internal/pkg/validation"
)

// Repository is the document repository for one entity kind. T is the record type
// and P its patch type, whose nil fields are left untouched by Update.
type Repository[T any, P any] struct {
	store   db.Store
	kind    models.Kind
	builder *query.Builder
	logger  zerolog.Logger
	now     func() time.Time
}

// NewRepository creates a repository for kind backed by store
func NewRepository[T any, P any](store db.Store, kind models.Kind, logger zerolog.Logger) *Repository[T, P] {
	return &Repository[T, P]{
		store:   store,
		kind:    kind,
		builder: kind.Builder(),
		logger:  logger.With().Str("collection", kind.Collection).Logger(),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Kind returns the kind this repository serves
func (r *Repository[T, P]) Kind() models.Kind {
	return r.kind
}

func (r *Repository[T, P]) collection() db.Collection {
	return r.store.Collection(r.kind.Collection)
}

// timestamp is truncated to the coarsest precision any store keeps (BSON dates are milliseconds)
func (r *Repository[T, P]) timestamp() time.Time {
	return r.now().Truncate(time.Millisecond)
}

// List returns the records matching criteria. See query.Builder for how criteria are read.
func (r *Repository[T, P]) List(ctx context.Context, criteria query.Criteria) ([]T, error) {
	return r.Find(ctx, r.builder.Build(criteria))
}

// Find returns the records matching filter
func (r *Repository[T, P]) Find(ctx context.Context, filter query.Filter) ([]T, error) {
	recs, err := r.collection().Find(ctx, filter)
	if err != nil {
		r.logger.Error().Err(err).Msg("Failed to list records")
		return nil, err
	}
	out := make([]T, 0, len(recs))
	for _, rec := range recs {
		item, err := decode[T](rec)
		if err != nil {
			return nil, err
		}
		out = append(out, *item)
	}
	return out, nil
}

// Get returns the record with id, or an error wrapping apperrors.ErrResourceNotFound.
// Ids that are not UUIDs cannot exist and are reported as not found.
func (r *Repository[T, P]) Get(ctx context.Context, id string) (*T, error) {
	rec, err := r.getRecord(ctx, id)
	if err != nil {
		return nil, err
	}
	return decode[T](*rec)
}

func (r *Repository[T, P]) getRecord(ctx context.Context, id string) (*db.Record, error) {
	if !validID(id) {
		return nil, apperrors.NewResourceNotFoundError(fmt.Sprintf("%s not found", r.kind.Name))
	}
	rec, err := r.collection().Get(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return nil, apperrors.NewResourceNotFoundError(fmt.Sprintf("%s not found", r.kind.Name))
		}
		r.logger.Error().Err(err).Str("id", id).Msg("Failed to get record")
		return nil, err
	}
	return rec, nil
}

// Create validates input, assigns an id and timestamps, and stores it
func (r *Repository[T, P]) Create(ctx context.Context, input T) (*T, error) {
	data, err := r.prepare(ctx, &input, true)
	if err != nil {
		return nil, err
	}

	now := r.timestamp()
	rec := db.Record{ID: uuid.NewString(), Data: data, CreatedAt: now, UpdatedAt: now}
	if err := r.collection().Insert(ctx, rec); err != nil {
		return nil, r.writeError("create", err)
	}

	r.logger.Debug().Str("id", rec.ID).Msg("Record created")
	return decode[T](rec)
}

// Update applies the non-nil fields of patch to the record with id
func (r *Repository[T, P]) Update(ctx context.Context, id string, patch P) (*T, error) {
	b, err := json.Marshal(patch)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s patch: %w", r.kind.Name, err)
	}
	return r.Modify(ctx, id, func(item *T) error {
		if err := json.Unmarshal(b, item); err != nil {
			return apperrors.NewValidationError("", err.Error())
		}
		return nil
	})
}

// Modify loads the record with id, applies fn and stores the result after re-validating it.
// Concurrent modifications of the same record are last-write-wins.
func (r *Repository[T, P]) Modify(ctx context.Context, id string, fn func(*T) error) (*T, error) {
	existing, err := r.getRecord(ctx, id)
	if err != nil {
		return nil, err
	}
	item, err := decode[T](*existing)
	if err != nil {
		return nil, err
	}
	if err := fn(item); err != nil {
		return nil, err
	}

	data, err := r.prepare(ctx, item, false)
	if err != nil {
		return nil, err
	}
	// Ownership never moves once set
	if owner := r.kind.OwnerField; owner != "" && data[owner] != existing.Data[owner] {
		return nil, apperrors.NewValidationError(owner, "cannot be changed")
	}

	rec := db.Record{ID: existing.ID, Data: data, CreatedAt: existing.CreatedAt, UpdatedAt: r.timestamp()}
	if err := r.collection().Replace(ctx, rec); err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return nil, apperrors.NewResourceNotFoundError(fmt.Sprintf("%s not found", r.kind.Name))
		}
		return nil, r.writeError("update", err)
	}
	return decode[T](rec)
}

// Delete removes the record with id and reports whether it existed
func (r *Repository[T, P]) Delete(ctx context.Context, id string) (bool, error) {
	if !validID(id) {
		return false, nil
	}
	deleted, err := r.collection().Delete(ctx, id)
	if err != nil {
		r.logger.Error().Err(err).Str("id", id).Msg("Failed to delete record")
		return false, err
	}
	return deleted, nil
}

// DeleteWhere removes every record matching filter and returns how many were removed
func (r *Repository[T, P]) DeleteWhere(ctx context.Context, filter query.Filter) (int, error) {
	recs, err := r.collection().Find(ctx, filter)
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, rec := range recs {
		deleted, err := r.collection().Delete(ctx, rec.ID)
		if err != nil {
			return removed, err
		}
		if deleted {
			removed++
		}
	}
	return removed, nil
}

// prepare runs defaults, normalization, tag validation, required-field and reference checks,
// and returns the document to store.
func (r *Repository[T, P]) prepare(ctx context.Context, item *T, creating bool) (map[string]any, error) {
	if d, ok := any(item).(models.Defaulter); ok && creating {
		d.ApplyDefaults()
	}
	if n, ok := any(item).(models.Normalizer); ok {
		if err := n.Normalize(); err != nil {
			return nil, err
		}
	}
	if err := validation.Struct(item); err != nil {
		return nil, err
	}

	data, err := r.encode(item)
	if err != nil {
		return nil, err
	}
	if err := r.checkRequired(data); err != nil {
		return nil, err
	}
	if err := r.checkReferences(ctx, data); err != nil {
		return nil, err
	}
	return data, nil
}

func (r *Repository[T, P]) encode(item *T) (map[string]any, error) {
	b, err := json.Marshal(item)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", r.kind.Name, err)
	}
	data := map[string]any{}
	if err := json.Unmarshal(b, &data); err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", r.kind.Name, err)
	}
	delete(data, "id")
	delete(data, "createdAt")
	delete(data, "updatedAt")
	for _, f := range r.kind.Fields {
		if f.IsList() && data[f.Name] == nil {
			data[f.Name] = []any{}
		}
	}
	return data, nil
}

func (r *Repository[T, P]) checkRequired(data map[string]any) error {
	for _, f := range r.kind.Fields {
		if !f.Required {
			continue
		}
		switch v := data[f.Name].(type) {
		case nil:
			return apperrors.NewValidationError(f.Name, "is required")
		case string:
			if strings.TrimSpace(v) == "" {
				return apperrors.NewValidationError(f.Name, "is required")
			}
		case []any:
			if len(v) == 0 {
				return apperrors.NewValidationError(f.Name, "is required")
			}
		}
	}
	return nil
}

func (r *Repository[T, P]) checkReferences(ctx context.Context, data map[string]any) error {
	for _, f := range r.kind.ReferenceFields() {
		id, _ := data[f.Name].(string)
		if id == "" {
			continue
		}
		if !validID(id) {
			return apperrors.NewValidationError(f.Name, "references an unknown record")
		}
		if _, err := r.store.Collection(f.Ref).Get(ctx, id); err != nil {
			if errors.Is(err, apperrors.ErrResourceNotFound) {
				return apperrors.NewValidationError(f.Name, "references an unknown record")
			}
			return err
		}
	}
	return nil
}

func (r *Repository[T, P]) writeError(op string, err error) error {
	var dup *db.DuplicateKeyError
	if errors.As(err, &dup) {
		field := dup.Field
		if field == "" {
			field = strings.Join(r.kind.UniqueFields(), ",")
		}
		r.logger.Warn().Str("field", field).Msgf("Rejected %s: duplicate value", op)
		return apperrors.NewDuplicateError(field)
	}
	r.logger.Error().Err(err).Msgf("Failed to %s record", op)
	return err
}

func decode[T any](rec db.Record) (*T, error) {
	doc := make(map[string]any, len(rec.Data)+3)
	for k, v := range rec.Data {
		doc[k] = v
	}
	doc["id"] = rec.ID
	doc["createdAt"] = rec.CreatedAt
	doc["updatedAt"] = rec.UpdatedAt

	b, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to decode record %s: %w", rec.ID, err)
	}
	var out T
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("failed to decode record %s: %w", rec.ID, err)
	}
	return &out, nil
}

// validID accepts only the canonical hyphenated UUID form every store understands
func validID(id string) bool {
	if len(id) != 36 {
		return false
	}
	_, err := uuid.Parse(id)
	return err == nil
}
