package controllers

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yigit/campusnet/internal/app/models"
	"github.com/yigit/campusnet/internal/app/models/dto"
	"github.com/yigit/campusnet/internal/app/query"
	"github.com/yigit/campusnet/internal/app/services"
	"github.com/yigit/campusnet/internal/middleware"
	"github.com/yigit/campusnet/internal/pkg/apperrors"
)

// EntityController serves the CRUD routes of one entity kind
type EntityController[T any, P any] struct {
	service *services.EntityService[T, P]
}

// NewEntityController creates a new EntityController
func NewEntityController[T any, P any](service *services.EntityService[T, P]) *EntityController[T, P] {
	return &EntityController[T, P]{service: service}
}

// List returns the records matching the query parameters
// @Summary List records
// @Description Every filterable field is a query parameter. List fields accept repeated or comma separated values and match records holding all of them. Searchable fields also accept <field>Contains for a case-insensitive substring match. Omitted and empty parameters do not filter.
// @Tags entities
// @Produce json
// @Security BearerAuth
// @Param collection path string true "Collection" Enums(students, faculty, internships, competitions, certificates, projects)
// @Success 200 {object} dto.APIResponse "Records retrieved successfully"
// @Failure 400 {object} dto.APIResponse "Malformed query parameter"
// @Failure 401 {object} dto.APIResponse "Unauthorized - Invalid or missing token"
// @Failure 503 {object} dto.APIResponse "Store unavailable"
// @Router /{collection} [get]
func (c *EntityController[T, P]) List(ctx *gin.Context) {
	criteria, err := criteriaFromQuery(c.service.Kind(), ctx.Request.URL.Query())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	items, err := c.service.List(ctx.Request.Context(), criteria)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(items, ""))
}

// Get returns one record
// @Summary Get a record
// @Tags entities
// @Produce json
// @Security BearerAuth
// @Param collection path string true "Collection" Enums(students, faculty, internships, competitions, certificates, projects)
// @Param id path string true "Record ID" Format(uuid)
// @Success 200 {object} dto.APIResponse "Record retrieved successfully"
// @Failure 401 {object} dto.APIResponse "Unauthorized - Invalid or missing token"
// @Failure 404 {object} dto.APIResponse "Record not found"
// @Router /{collection}/{id} [get]
func (c *EntityController[T, P]) Get(ctx *gin.Context) {
	item, err := c.service.Get(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(item, ""))
}

// Create stores a new record
// @Summary Create a record
// @Description The id and timestamps are assigned by the server. Owned records start unverified.
// @Tags entities
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param collection path string true "Collection" Enums(students, faculty, internships, competitions, certificates, projects)
// @Success 201 {object} dto.APIResponse "Record created successfully"
// @Failure 400 {object} dto.APIResponse "Validation failed; error.field names the offending field"
// @Failure 401 {object} dto.APIResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.APIResponse "Forbidden"
// @Failure 409 {object} dto.APIResponse "A unique field is already taken"
// @Router /{collection} [post]
func (c *EntityController[T, P]) Create(ctx *gin.Context) {
	var input T
	if !middleware.BindJSON(ctx, &input) {
		return
	}

	item, err := c.service.Create(ctx.Request.Context(), input)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(item, c.service.Kind().Name+" created successfully"))
}

// Update changes the fields present in the body and keeps the rest
// @Summary Update a record
// @Tags entities
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param collection path string true "Collection" Enums(students, faculty, internships, competitions, certificates, projects)
// @Param id path string true "Record ID" Format(uuid)
// @Success 200 {object} dto.APIResponse "Record updated successfully"
// @Failure 400 {object} dto.APIResponse "Validation failed"
// @Failure 403 {object} dto.APIResponse "Forbidden"
// @Failure 404 {object} dto.APIResponse "Record not found"
// @Failure 409 {object} dto.APIResponse "A unique field is already taken"
// @Router /{collection}/{id} [patch]
func (c *EntityController[T, P]) Update(ctx *gin.Context) {
	var patch P
	if !middleware.BindJSON(ctx, &patch) {
		return
	}

	item, err := c.service.Update(ctx.Request.Context(), ctx.Param("id"), patch)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(item, c.service.Kind().Name+" updated successfully"))
}

// Delete removes a record. Deleting a missing record succeeds with deleted=false.
// @Summary Delete a record
// @Tags entities
// @Produce json
// @Security BearerAuth
// @Param collection path string true "Collection" Enums(students, faculty, internships, competitions, certificates, projects)
// @Param id path string true "Record ID" Format(uuid)
// @Success 200 {object} dto.APIResponse{data=dto.DeleteResult} "Delete result"
// @Failure 403 {object} dto.APIResponse "Forbidden"
// @Router /{collection}/{id} [delete]
func (c *EntityController[T, P]) Delete(ctx *gin.Context) {
	deleted, err := c.service.Delete(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.DeleteResult{Deleted: deleted}, ""))
}

// Verify sets the verification flag of an owned record
// @Summary Verify a record
// @Tags entities
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param collection path string true "Collection" Enums(internships, competitions, certificates, projects)
// @Param id path string true "Record ID" Format(uuid)
// @Param request body dto.VerifyRequest true "Verification flag"
// @Success 200 {object} dto.APIResponse "Record updated successfully"
// @Failure 403 {object} dto.APIResponse "Forbidden - faculty only"
// @Failure 404 {object} dto.APIResponse "Record not found"
// @Router /{collection}/{id}/verify [put]
func (c *EntityController[T, P]) Verify(ctx *gin.Context) {
	var req dto.VerifyRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	item, err := c.service.Verify(ctx.Request.Context(), ctx.Param("id"), *req.Verified)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(item, ""))
}

// criteriaFromQuery reads the kind's filterable fields from query parameters.
// Repeated values of a scalar field are passed through and ignored by the filter.
func criteriaFromQuery(kind models.Kind, values url.Values) (query.Criteria, error) {
	criteria := query.Criteria{}
	for _, f := range kind.Fields {
		if f.Searchable {
			if v := values.Get(f.Name + query.ContainsSuffix); v != "" {
				criteria[f.Name+query.ContainsSuffix] = v
			}
		}
		if !f.Filterable {
			continue
		}
		raw, ok := values[f.Name]
		if !ok {
			continue
		}

		if f.IsList() {
			var items []string
			for _, r := range raw {
				for _, item := range strings.Split(r, ",") {
					if item = strings.TrimSpace(item); item != "" {
						items = append(items, item)
					}
				}
			}
			criteria[f.Name] = items
			continue
		}
		if len(raw) != 1 {
			criteria[f.Name] = raw
			continue
		}

		v, err := parseScalar(f, raw[0])
		if err != nil {
			return nil, err
		}
		criteria[f.Name] = v
	}
	return criteria, nil
}

func parseScalar(f models.Field, raw string) (any, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}
	switch f.Type {
	case models.FieldInt:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, apperrors.NewValidationError(f.Name, "must be an integer")
		}
		return n, nil
	case models.FieldFloat:
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, apperrors.NewValidationError(f.Name, "must be a number")
		}
		return n, nil
	case models.FieldBool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, apperrors.NewValidationError(f.Name, "must be true or false")
		}
		return b, nil
	}
	return raw, nil
}
