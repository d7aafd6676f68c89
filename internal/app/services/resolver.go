package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/yigit/campusnet/internal/app/models"
	"github.com/yigit/campusnet/internal/app/query"
	"github.com/yigit/campusnet/internal/pkg/apperrors"
)

// Document is a record in its JSON shape
type Document = map[string]any

// Resolver is an entity service seen through JSON documents, for transports
// that build their surface from kind descriptors instead of Go types.
type Resolver interface {
	Kind() models.Kind
	List(ctx context.Context, criteria query.Criteria) ([]Document, error)
	Get(ctx context.Context, id string) (Document, error)
	Create(ctx context.Context, input Document) (Document, error)
	Update(ctx context.Context, id string, patch Document) (Document, error)
	Delete(ctx context.Context, id string) (bool, error)
	// Verify fails with ErrBadRequest for kinds that are not verifiable
	Verify(ctx context.Context, id string, verified bool) (Document, error)
}

type documentResolver[T any, P any] struct {
	svc *EntityService[T, P]
}

// Documents adapts svc to a Resolver
func Documents[T any, P any](svc *EntityService[T, P]) Resolver {
	return documentResolver[T, P]{svc: svc}
}

func (r documentResolver[T, P]) Kind() models.Kind {
	return r.svc.Kind()
}

func (r documentResolver[T, P]) List(ctx context.Context, criteria query.Criteria) ([]Document, error) {
	items, err := r.svc.List(ctx, criteria)
	if err != nil {
		return nil, err
	}
	out := make([]Document, 0, len(items))
	for i := range items {
		doc, err := ToDocument(&items[i])
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, nil
}

func (r documentResolver[T, P]) Get(ctx context.Context, id string) (Document, error) {
	return toDocumentErr(r.svc.Get(ctx, id))
}

func (r documentResolver[T, P]) Create(ctx context.Context, input Document) (Document, error) {
	var item T
	if err := FromDocument(input, &item); err != nil {
		return nil, err
	}
	return toDocumentErr(r.svc.Create(ctx, item))
}

func (r documentResolver[T, P]) Update(ctx context.Context, id string, patch Document) (Document, error) {
	var p P
	if err := FromDocument(patch, &p); err != nil {
		return nil, err
	}
	return toDocumentErr(r.svc.Update(ctx, id, p))
}

func (r documentResolver[T, P]) Delete(ctx context.Context, id string) (bool, error) {
	return r.svc.Delete(ctx, id)
}

func (r documentResolver[T, P]) Verify(ctx context.Context, id string, verified bool) (Document, error) {
	return toDocumentErr(r.svc.Verify(ctx, id, verified))
}

func toDocumentErr[T any](item *T, err error) (Document, error) {
	if err != nil {
		return nil, err
	}
	return ToDocument(item)
}

// ToDocument converts v to its JSON document form
func ToDocument(v any) (Document, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}
	doc := Document{}
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}
	return doc, nil
}

// FromDocument decodes doc into out. Type mismatches are reported as validation
// errors on the offending field.
func FromDocument(doc Document, out any) error {
	b, err := json.Marshal(doc)
	if err != nil {
		return apperrors.NewValidationError("", err.Error())
	}
	if err := json.Unmarshal(b, out); err != nil {
		if terr, ok := err.(*json.UnmarshalTypeError); ok {
			return apperrors.NewValidationError(terr.Field, fmt.Sprintf("must be %s", terr.Type))
		}
		return apperrors.NewValidationError("", err.Error())
	}
	return nil
}
