package models

import (
	"strings"
	"time"

	"github.com/yigit/campusnet/internal/app/query"
)

// Meta holds the identity and timestamps the repository assigns; callers never set them
type Meta struct {
	ID        string    `json:"id" example:"6f1b7c2e-8d7a-4f0e-9d55-2c4a1f0e6b11"`
	CreatedAt time.Time `json:"createdAt" example:"2025-01-15T10:00:00Z"`
	UpdatedAt time.Time `json:"updatedAt" example:"2025-01-16T09:30:00Z"`
}

// GetMeta returns the record metadata
func (m Meta) GetMeta() Meta { return m }

// FieldType is the wire type of a stored field
type FieldType string

const (
	FieldString     FieldType = "string"
	FieldInt        FieldType = "int"
	FieldFloat      FieldType = "float"
	FieldBool       FieldType = "bool"
	FieldDate       FieldType = "date" // YYYY-MM-DD
	FieldStringList FieldType = "[string]"
	FieldFloatList  FieldType = "[float]"
	FieldObjectList FieldType = "[object]"
)

// Field describes one stored field of a kind
type Field struct {
	Name       string
	Type       FieldType
	Required   bool
	Unique     bool
	Filterable bool
	Searchable bool
	Ref        string // collection the value must reference
	// Normalize is the canonical form writes store; list criteria are normalized the same way.
	// String list members are always trimmed.
	Normalize func(string) string
}

// NormalizeEmail lower-cases and trims an email address
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// IsList reports whether the field holds a list
func (f Field) IsList() bool {
	switch f.Type {
	case FieldStringList, FieldFloatList, FieldObjectList:
		return true
	}
	return false
}

// Kind describes an entity kind: where it lives and how its fields behave
type Kind struct {
	Name       string // Student
	Plural     string // Students
	Collection string // students
	OwnerField string // field referencing the owning student, if any
	Fields     []Field
}

// Field looks up a field by name
func (k Kind) Field(name string) (Field, bool) {
	for _, f := range k.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Builder returns a filter builder over the kind's filterable fields
func (k Kind) Builder() *query.Builder {
	specs := make([]query.FieldSpec, 0, len(k.Fields))
	for _, f := range k.Fields {
		if !f.Filterable {
			continue
		}
		kind := query.Scalar
		if f.IsList() {
			kind = query.List
		}
		normalize := f.Normalize
		if normalize == nil && f.Type == FieldStringList {
			normalize = strings.TrimSpace
		}
		specs = append(specs, query.FieldSpec{Name: f.Name, Kind: kind, Searchable: f.Searchable, Normalize: normalize})
	}
	return query.NewBuilder(specs...)
}

// UniqueFields lists fields whose values must be unique across the collection
func (k Kind) UniqueFields() []string {
	var out []string
	for _, f := range k.Fields {
		if f.Unique {
			out = append(out, f.Name)
		}
	}
	return out
}

// ReferenceFields lists fields that must point at an existing record
func (k Kind) ReferenceFields() []Field {
	var out []Field
	for _, f := range k.Fields {
		if f.Ref != "" {
			out = append(out, f)
		}
	}
	return out
}

// Owned is implemented by records that belong to a student
type Owned interface {
	OwnerID() string
}

// Verifiable is implemented by records faculty can mark as verified
type Verifiable interface {
	SetVerified(bool)
}

// Defaulter fills defaults on create
type Defaulter interface {
	ApplyDefaults()
}

// Normalizer canonicalizes a record and rejects values no field tag can express
type Normalizer interface {
	Normalize() error
}
