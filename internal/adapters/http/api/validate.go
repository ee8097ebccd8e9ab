package api

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/okian/recipebox/internal/domain/recipe"
)

// newValidator returns a validator with the pagesize rule bound to sizes and
// the difficulty rule shared by every filter input.
func newValidator(sizes []int) *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	allowed := slices.Clone(sizes)
	_ = v.RegisterValidation("pagesize", func(fl validator.FieldLevel) bool {
		return slices.Contains(allowed, int(fl.Field().Int()))
	})
	_ = v.RegisterValidation("difficulty", func(fl validator.FieldLevel) bool {
		d := fl.Field().String()
		return d == "" || d == recipe.All || recipe.Difficulty(d).Valid()
	})
	return v
}

// validateStruct runs v over s and folds the failures into one readable error.
func validateStruct(v *validator.Validate, s any) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return errors.Join(ErrBadRequest, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, translateError(fe))
	}
	return fmt.Errorf("%w: %s", ErrBadRequest, strings.Join(msgs, "; "))
}

func translateError(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "pagesize":
		return fmt.Sprintf("%s is not an allowed page size", field)
	case "difficulty":
		return fmt.Sprintf("%s must be one of: %s %s %s %s", field, recipe.All, recipe.Easy, recipe.Medium, recipe.Hard)
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}
