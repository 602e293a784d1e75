package validation

import (
	"errors"
	"fmt"
	"strings"

	"drivequest/internal/domain"
	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Struct validates tagged input and reports the first failing field as a *domain.ValidationError.
func Struct(data interface{}) error {
	err := validate.Struct(data)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return &domain.ValidationError{Field: "input", Message: err.Error()}
	}
	fe := fieldErrs[0]
	return &domain.ValidationError{
		Field:   fieldName(fe),
		Message: message(fe),
	}
}

// All returns one *domain.ValidationError per failing field, in declaration order.
func All(data interface{}) []*domain.ValidationError {
	err := validate.Struct(data)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []*domain.ValidationError{{Field: "input", Message: err.Error()}}
	}
	out := make([]*domain.ValidationError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, &domain.ValidationError{Field: fieldName(fe), Message: message(fe)})
	}
	return out
}

func fieldName(fe validator.FieldError) string {
	ns := fe.StructNamespace()
	// drop the top-level type name: "NewDrive.Breakdown.Speed" -> "breakdown.speed"
	if i := strings.Index(ns, "."); i >= 0 {
		ns = ns[i+1:]
	}
	return strings.ToLower(ns)
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	default:
		return fmt.Sprintf("must satisfy %s constraint", fe.Tag())
	}
}
