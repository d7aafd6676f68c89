// Package db holds the document stores entity repositories run against.
package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/yigit/campusnet/internal/app/query"
	"github.com/yigit/campusnet/internal/pkg/apperrors"
)

// Record is one stored document. Data holds JSON-shaped values only
// (string, float64, bool, nil, []any, map[string]any).
type Record struct {
	ID        string
	Data      map[string]any
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CollectionSpec declares a collection and the fields whose values must be unique within it
type CollectionSpec struct {
	Name         string
	UniqueFields []string
	IndexFields  []string
}

// Collection is a set of records of one kind
type Collection interface {
	// Find returns the records matching the filter in creation order
	Find(ctx context.Context, filter query.Filter) ([]Record, error)
	// Get returns apperrors.ErrResourceNotFound when no record has the id
	Get(ctx context.Context, id string) (*Record, error)
	// Insert returns a *DuplicateKeyError when a unique field collides
	Insert(ctx context.Context, rec Record) error
	// Replace overwrites Data and UpdatedAt of an existing record
	Replace(ctx context.Context, rec Record) error
	// Delete reports whether a record was removed
	Delete(ctx context.Context, id string) (bool, error)
}

// Store owns the connection to a backing database
type Store interface {
	EnsureCollection(ctx context.Context, spec CollectionSpec) error
	Collection(name string) Collection
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
	Driver() string
}

// DuplicateKeyError reports a uniqueness violation on Field
type DuplicateKeyError struct {
	Collection string
	Field      string
}

// Error implements error interface
func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate value for %s.%s", e.Collection, e.Field)
}

// Unwrap implements errors.Unwrap interface
func (e *DuplicateKeyError) Unwrap() error {
	return apperrors.ErrResourceAlreadyExists
}

var namePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

// ValidateSpec rejects collection and field names that cannot be embedded in DDL
func ValidateSpec(spec CollectionSpec) error {
	if !namePattern.MatchString(spec.Name) {
		return fmt.Errorf("invalid collection name %q", spec.Name)
	}
	for _, f := range append(append([]string{}, spec.UniqueFields...), spec.IndexFields...) {
		if !namePattern.MatchString(f) {
			return fmt.Errorf("invalid field name %q in collection %s", f, spec.Name)
		}
	}
	return nil
}

// CloneData deep-copies a document through its JSON form
func CloneData(data map[string]any) (map[string]any, error) {
	b, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}
	out := map[string]any{}
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("failed to decode document: %w", err)
	}
	return out, nil
}

var errStoreClosed = errors.New("store is closed")

func unavailable(op, collection string, err error) error {
	return apperrors.NewUnavailableError(op+" "+collection, err)
}

func notFound(collection, id string) error {
	return fmt.Errorf("%s %s: %w", collection, id, apperrors.ErrResourceNotFound)
}
