package graph

import (
	"context"
	"errors"
	"fmt"

	"github.com/graphql-go/graphql"
	"github.com/rs/zerolog"
	"github.com/yigit/campusnet/internal/app/models"
	"github.com/yigit/campusnet/internal/app/query"
	"github.com/yigit/campusnet/internal/app/services"
	"github.com/yigit/campusnet/internal/pkg/apperrors"
)

// Schema is the GraphQL surface over the entity services. Every kind gets
// list<Plural>, get<Name>, create<Name>, update<Name> and delete<Name>.
type Schema struct {
	schema   graphql.Schema
	services *services.Services
	logger   zerolog.Logger
}

// Request is a GraphQL request body
type Request struct {
	Query         string                 `json:"query"`
	Variables     map[string]interface{} `json:"variables"`
	OperationName string                 `json:"operationName"`
}

// NewSchema builds the schema from the registered services
func NewSchema(svc *services.Services, logger zerolog.Logger) (*Schema, error) {
	s := &Schema{services: svc, logger: logger}

	queries := graphql.Fields{}
	mutations := graphql.Fields{}
	objects := map[string]*graphql.Object{}
	for _, r := range svc.Resolvers() {
		obj := objectType(r.Kind(), nil)
		objects[r.Kind().Name] = obj
		s.addEntity(queries, mutations, r, obj)
	}
	s.addStudentOps(queries, mutations, objects)
	s.addFeed(queries, mutations)

	schema, err := graphql.NewSchema(graphql.SchemaConfig{
		Query:    graphql.NewObject(graphql.ObjectConfig{Name: "Query", Fields: queries}),
		Mutation: graphql.NewObject(graphql.ObjectConfig{Name: "Mutation", Fields: mutations}),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build graphql schema: %w", err)
	}
	s.schema = schema
	return s, nil
}

// GetSchema returns the compiled schema
func (s *Schema) GetSchema() graphql.Schema {
	return s.schema
}

// Do executes req. The principal, if any, travels in ctx.
func (s *Schema) Do(ctx context.Context, req Request) *graphql.Result {
	return graphql.Do(graphql.Params{
		Schema:         s.schema,
		RequestString:  req.Query,
		VariableValues: req.Variables,
		OperationName:  req.OperationName,
		Context:        ctx,
	})
}

// fail converts err for the client. err must not be nil.
func (s *Schema) fail(op string, err error) (interface{}, error) {
	gerr := toGraphError(err)
	if gerr.Code == CodeInternal {
		s.logger.Error().Err(err).Str("operation", op).Msg("GraphQL resolver failed")
	}
	return nil, gerr
}

// orNull resolves a single record. A missing record is null rather than an error.
func (s *Schema) orNull(op string, doc services.Document, err error) (interface{}, error) {
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return nil, nil
		}
		return s.fail(op, err)
	}
	if doc == nil {
		return nil, nil
	}
	return doc, nil
}

func idArg(p graphql.ResolveParams, name string) string {
	id, _ := p.Args[name].(string)
	return id
}

func inputArg(p graphql.ResolveParams) services.Document {
	input, _ := p.Args["input"].(map[string]interface{})
	if input == nil {
		return services.Document{}
	}
	return input
}

func criteriaOf(p graphql.ResolveParams) query.Criteria {
	return query.Criteria(p.Args)
}

var idArgs = graphql.FieldConfigArgument{
	"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
}

func (s *Schema) addEntity(queries, mutations graphql.Fields, r services.Resolver, obj *graphql.Object) {
	kind := r.Kind()

	listOp := "list" + kind.Plural
	queries[listOp] = &graphql.Field{
		Type:        graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(obj))),
		Description: "Lists " + kind.Plural + " matching every given argument",
		Args:        criteriaArgs(kind),
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			docs, err := r.List(p.Context, criteriaOf(p))
			if err != nil {
				return s.fail(listOp, err)
			}
			return docs, nil
		},
	}

	getOp := "get" + kind.Name
	queries[getOp] = &graphql.Field{
		Type: obj,
		Args: idArgs,
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			doc, err := r.Get(p.Context, idArg(p, "id"))
			return s.orNull(getOp, doc, err)
		},
	}

	createOp := "create" + kind.Name
	mutations[createOp] = &graphql.Field{
		Type: graphql.NewNonNull(obj),
		Args: graphql.FieldConfigArgument{
			"input": &graphql.ArgumentConfig{Type: graphql.NewNonNull(inputType(kind, false))},
		},
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			doc, err := r.Create(p.Context, inputArg(p))
			if err != nil {
				return s.fail(createOp, err)
			}
			return doc, nil
		},
	}

	updateOp := "update" + kind.Name
	mutations[updateOp] = &graphql.Field{
		Type:        obj,
		Description: "Changes the given fields and keeps the rest. Null when the record does not exist.",
		Args: graphql.FieldConfigArgument{
			"id":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
			"input": &graphql.ArgumentConfig{Type: graphql.NewNonNull(inputType(kind, true))},
		},
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			doc, err := r.Update(p.Context, idArg(p, "id"), inputArg(p))
			return s.orNull(updateOp, doc, err)
		},
	}

	deleteOp := "delete" + kind.Name
	mutations[deleteOp] = &graphql.Field{
		Type:        graphql.NewNonNull(graphql.Boolean),
		Description: "Reports whether a record was removed",
		Args:        idArgs,
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			deleted, err := r.Delete(p.Context, idArg(p, "id"))
			if err != nil {
				return s.fail(deleteOp, err)
			}
			return deleted, nil
		},
	}

	if kind.OwnerField == "" {
		return
	}
	verifyOp := "verify" + kind.Name
	mutations[verifyOp] = &graphql.Field{
		Type: obj,
		Args: graphql.FieldConfigArgument{
			"id":       &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
			"verified": &graphql.ArgumentConfig{Type: graphql.Boolean, DefaultValue: true},
		},
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			verified, ok := p.Args["verified"].(bool)
			if !ok {
				verified = true
			}
			doc, err := r.Verify(p.Context, idArg(p, "id"), verified)
			return s.orNull(verifyOp, doc, err)
		},
	}
}

func (s *Schema) addStudentOps(queries, mutations graphql.Fields, objects map[string]*graphql.Object) {
	listOf := func(kind models.Kind) graphql.Output {
		return graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(objects[kind.Name])))
	}
	profileType := graphql.NewObject(graphql.ObjectConfig{
		Name: "StudentProfile",
		Fields: graphql.Fields{
			"student":      &graphql.Field{Type: graphql.NewNonNull(objects[models.StudentKind.Name])},
			"internships":  &graphql.Field{Type: listOf(models.InternshipKind)},
			"competitions": &graphql.Field{Type: listOf(models.CompetitionKind)},
			"certificates": &graphql.Field{Type: listOf(models.CertificateKind)},
			"projects":     &graphql.Field{Type: listOf(models.ProjectKind)},
		},
	})

	queries["studentProfile"] = &graphql.Field{
		Type:        profileType,
		Description: "A student together with every record it owns",
		Args:        idArgs,
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			profile, err := s.services.Students.Profile(p.Context, idArg(p, "id"))
			if err != nil {
				return s.orNull("studentProfile", nil, err)
			}
			doc, err := services.ToDocument(profile)
			return s.orNull("studentProfile", doc, err)
		},
	}

	mutations["deactivateStudent"] = &graphql.Field{
		Type: objects[models.StudentKind.Name],
		Args: idArgs,
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			student, err := s.services.Students.Deactivate(p.Context, idArg(p, "id"))
			if err != nil {
				return s.orNull("deactivateStudent", nil, err)
			}
			doc, err := services.ToDocument(student)
			return s.orNull("deactivateStudent", doc, err)
		},
	}
}

func (s *Schema) addFeed(queries, mutations graphql.Fields) {
	feed := s.services.Feed
	postType := objectType(models.PostKind, graphql.Fields{
		"comments": &graphql.Field{Type: graphql.NewList(graphql.NewNonNull(commentType))},
		"likeCount": &graphql.Field{
			Type: graphql.NewNonNull(graphql.Int),
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				doc, _ := p.Source.(map[string]interface{})
				likes, _ := doc["likes"].([]interface{})
				return len(likes), nil
			},
		},
	})
	post := func(op string, item *models.Post, err error) (interface{}, error) {
		if err != nil {
			return s.orNull(op, nil, err)
		}
		doc, err := services.ToDocument(item)
		return s.orNull(op, doc, err)
	}

	queries["listPosts"] = &graphql.Field{
		Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(postType))),
		Args: criteriaArgs(models.PostKind),
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			items, err := feed.ListPosts(p.Context, criteriaOf(p))
			if err != nil {
				return s.fail("listPosts", err)
			}
			docs := make([]services.Document, 0, len(items))
			for i := range items {
				doc, err := services.ToDocument(&items[i])
				if err != nil {
					return s.fail("listPosts", err)
				}
				docs = append(docs, doc)
			}
			return docs, nil
		},
	}

	queries["getPost"] = &graphql.Field{
		Type: postType,
		Args: idArgs,
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			item, err := feed.GetPost(p.Context, idArg(p, "id"))
			return post("getPost", item, err)
		},
	}

	mutations["createPost"] = &graphql.Field{
		Type: graphql.NewNonNull(postType),
		Args: graphql.FieldConfigArgument{
			"content": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
		},
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			content, _ := p.Args["content"].(string)
			item, err := feed.CreatePost(p.Context, content)
			if err != nil {
				return s.fail("createPost", err)
			}
			return post("createPost", item, nil)
		},
	}

	mutations["deletePost"] = &graphql.Field{
		Type: graphql.NewNonNull(graphql.Boolean),
		Args: idArgs,
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			deleted, err := feed.DeletePost(p.Context, idArg(p, "id"))
			if err != nil {
				return s.fail("deletePost", err)
			}
			return deleted, nil
		},
	}

	mutations["likePost"] = &graphql.Field{
		Type: postType,
		Args: idArgs,
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			item, err := feed.LikePost(p.Context, idArg(p, "id"))
			return post("likePost", item, err)
		},
	}

	mutations["unlikePost"] = &graphql.Field{
		Type: postType,
		Args: idArgs,
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			item, err := feed.UnlikePost(p.Context, idArg(p, "id"))
			return post("unlikePost", item, err)
		},
	}

	mutations["addComment"] = &graphql.Field{
		Type: postType,
		Args: graphql.FieldConfigArgument{
			"postId":  &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
			"content": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
		},
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			content, _ := p.Args["content"].(string)
			item, err := feed.AddComment(p.Context, idArg(p, "postId"), content)
			return post("addComment", item, err)
		},
	}

	mutations["deleteComment"] = &graphql.Field{
		Type: graphql.NewNonNull(graphql.Boolean),
		Args: graphql.FieldConfigArgument{
			"postId":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
			"commentId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
		},
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			deleted, err := feed.DeleteComment(p.Context, idArg(p, "postId"), idArg(p, "commentId"))
			if err != nil {
				return s.fail("deleteComment", err)
			}
			return deleted, nil
		},
	}
}
