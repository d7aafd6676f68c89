package validation

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/yigit/campusnet/internal/pkg/apperrors"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their JSON names so errors match what clients sent
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Engine returns the shared validator instance
func Engine() *validator.Validate {
	return validate
}

// Struct validates v's `validate` tags and returns the first failure as an
// *apperrors.ValidationError naming the JSON field. Details lists every failure.
func Struct(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	return FromValidator(err)
}

// FromValidator converts a validator error into an *apperrors.ValidationError
func FromValidator(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		verr := apperrors.NewValidationError(lowerFirst(fe.Field()), Message(fe))
		verr.Details = make(map[string]string, len(verrs))
		for _, e := range verrs {
			field := lowerFirst(e.Field())
			if _, seen := verr.Details[field]; !seen {
				verr.Details[field] = Message(e)
			}
		}
		return verr
	}
	var terr *json.UnmarshalTypeError
	if errors.As(err, &terr) {
		return apperrors.NewValidationError(terr.Field, "must be "+terr.Type.String())
	}
	return apperrors.NewValidationError("", err.Error())
}

// Message creates a human-readable validation error message
func Message(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must be at least " + e.Param()
	case "max":
		return "must be at most " + e.Param()
	case "email":
		return "must be a valid email address"
	case "url":
		return "must be a valid URL"
	case "oneof":
		return "must be one of: " + e.Param()
	case "datetime":
		return "must be a date formatted as " + e.Param()
	default:
		return "failed on the " + e.Tag() + " rule"
	}
}

// gin binding reports Go field names; request DTOs use camelCase JSON names
func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
