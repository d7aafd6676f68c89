package graph

import (
	"github.com/graphql-go/graphql"
	"github.com/yigit/campusnet/internal/app/models"
	"github.com/yigit/campusnet/internal/app/query"
)

// readOnlyInputs are stored fields clients never set directly
var readOnlyInputs = map[string]bool{
	"verified": true,
}

func scalarOf(t models.FieldType) graphql.Output {
	switch t {
	case models.FieldInt:
		return graphql.Int
	case models.FieldFloat:
		return graphql.Float
	case models.FieldBool:
		return graphql.Boolean
	default:
		return graphql.String
	}
}

func outputOf(f models.Field) graphql.Output {
	switch f.Type {
	case models.FieldStringList:
		return graphql.NewList(graphql.NewNonNull(graphql.String))
	case models.FieldFloatList:
		return graphql.NewList(graphql.NewNonNull(graphql.Float))
	}
	return scalarOf(f.Type)
}

func inputOf(f models.Field) graphql.Input {
	switch f.Type {
	case models.FieldStringList:
		return graphql.NewList(graphql.NewNonNull(graphql.String))
	case models.FieldFloatList:
		return graphql.NewList(graphql.NewNonNull(graphql.Float))
	}
	return scalarOf(f.Type).(graphql.Input)
}

func describe(f models.Field) string {
	desc := ""
	if f.Required {
		desc = "Required."
	}
	if f.Unique {
		desc += " Unique."
	}
	if f.Type == models.FieldDate {
		desc += " Date formatted as YYYY-MM-DD."
	}
	return desc
}

// objectType builds the output type of kind. Fields whose type has no generic
// mapping must be supplied in extra.
func objectType(kind models.Kind, extra graphql.Fields) *graphql.Object {
	fields := graphql.Fields{
		"id":        &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		"createdAt": &graphql.Field{Type: graphql.NewNonNull(graphql.String), Description: "RFC 3339 timestamp"},
		"updatedAt": &graphql.Field{Type: graphql.NewNonNull(graphql.String), Description: "RFC 3339 timestamp"},
	}
	for _, f := range kind.Fields {
		if f.Type == models.FieldObjectList {
			continue
		}
		fields[f.Name] = &graphql.Field{Type: outputOf(f), Description: describe(f)}
	}
	for name, f := range extra {
		fields[name] = f
	}
	return graphql.NewObject(graphql.ObjectConfig{
		Name:   kind.Name,
		Fields: fields,
	})
}

// inputType builds <Kind>Input for creates, or <Kind>Patch for updates. Patches
// omit the owner reference, which never changes.
func inputType(kind models.Kind, patch bool) *graphql.InputObject {
	name := kind.Name + "Input"
	if patch {
		name = kind.Name + "Patch"
	}
	fields := graphql.InputObjectConfigFieldMap{}
	for _, f := range kind.Fields {
		if readOnlyInputs[f.Name] || f.Type == models.FieldObjectList {
			continue
		}
		if patch && f.Name == kind.OwnerField {
			continue
		}
		fields[f.Name] = &graphql.InputObjectFieldConfig{Type: inputOf(f), Description: describe(f)}
	}
	return graphql.NewInputObject(graphql.InputObjectConfig{
		Name:   name,
		Fields: fields,
	})
}

// criteriaArgs exposes every filterable field as an optional argument. List
// arguments match records holding all given values; scalars match exactly.
func criteriaArgs(kind models.Kind) graphql.FieldConfigArgument {
	args := graphql.FieldConfigArgument{}
	for _, f := range kind.Fields {
		if f.Filterable {
			args[f.Name] = &graphql.ArgumentConfig{Type: inputOf(f)}
		}
		if f.Searchable {
			args[f.Name+query.ContainsSuffix] = &graphql.ArgumentConfig{
				Type:        graphql.String,
				Description: "Case-insensitive substring match on " + f.Name,
			}
		}
	}
	return args
}

var commentType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Comment",
	Fields: graphql.Fields{
		"id":         &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		"authorId":   &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"authorRole": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"content":    &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"createdAt":  &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
	},
})
