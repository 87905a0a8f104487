// internal/app/system/inputval/inputval.go
package inputval

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/dalemusser/langis/internal/domain/models"
	"github.com/go-playground/validator/v10"
)

// validate is the shared validator instance. Form payload structs declare
// their rules with `validate:"..."` tags and a `form:"..."` tag naming the
// field as it appears in the HTML form.
var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	// halfstep: a rating value on the 0–5 half-star scale.
	_ = validate.RegisterValidation("halfstep", func(fl validator.FieldLevel) bool {
		return models.ValidRatingValue(fl.Field().Float())
	})

	// cefr: a language level in the CEFR range.
	_ = validate.RegisterValidation("cefr", func(fl validator.FieldLevel) bool {
		switch strings.ToUpper(fl.Field().String()) {
		case "A1", "A2", "B1", "B2", "C1", "C2":
			return true
		}
		return false
	})

	// Report errors by the form field name, not the Go field name.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
}

// Struct validates a form payload and returns inline per-field messages
// keyed by form field name. A nil map means the payload is valid.
func Struct(s interface{}) map[string]string {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return map[string]string{"": "Invalid form data."}
	}

	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		out[fe.Field()] = message(fe)
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "min":
		return fmt.Sprintf("Must be at least %s.", fe.Param())
	case "max":
		return fmt.Sprintf("Must be at most %s.", fe.Param())
	case "gte":
		return fmt.Sprintf("Must be %s or more.", fe.Param())
	case "lte":
		return fmt.Sprintf("Must be %s or less.", fe.Param())
	case "gt":
		return fmt.Sprintf("Must be greater than %s.", fe.Param())
	case "halfstep":
		return "Rating must be between 0 and 5 in half-star steps."
	case "cefr":
		return "Level must be a CEFR level (A1–C2)."
	default:
		return "Invalid value."
	}
}
