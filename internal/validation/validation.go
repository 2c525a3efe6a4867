// Package validation wraps go-playground/validator so request structs report field errors
// under their JSON names in the apperr format.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"unicode/utf8"

	"citizenpulse/backend/internal/apperr"

	"github.com/go-playground/validator/v10"
)

var (
	once     sync.Once
	validate *validator.Validate
)

// Validator returns the shared validator instance.
func Validator() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return fld.Name
			}
			return name
		})
		_ = validate.RegisterValidation("username", func(fl validator.FieldLevel) bool {
			for _, r := range fl.Field().String() {
				if !(r == '_' || r == '.' || r == '-' ||
					(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')) {
					return false
				}
			}
			return true
		})
	})
	return validate
}

// Struct validates s and converts failures into an *apperr.ValidationError.
// Length rules are counted in characters, as validator does for strings.
func Struct(s interface{}) error {
	err := Validator().Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("failed to validate: %w", err)
	}
	out := &apperr.ValidationError{}
	for _, fe := range verrs {
		out.Add(fe.Field(), message(fe))
	}
	return out
}

// Length checks that s has between min and max characters.
func Length(verr *apperr.ValidationError, field, s string, min, max int) {
	n := utf8.RuneCountInString(s)
	switch {
	case n < min && min == 1:
		verr.Add(field, "is required")
	case n < min:
		verr.Add(field, fmt.Sprintf("must be at least %d characters", min))
	case n > max:
		verr.Add(field, fmt.Sprintf("must be at most %d characters", max))
	}
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "email":
		return "must be a valid email address"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "latitude", "longitude":
		return "must be a valid coordinate"
	case "required_with":
		return "must be set together with " + fe.Param()
	case "username":
		return "may contain only letters, digits, '.', '_' and '-'"
	default:
		return "is invalid"
	}
}
