package service

import (
	"fmt"
	"reflect"
	"strings"

	"garment-rental-backend/internal/domain"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// NewValidator returns a validator reporting fields by their json names.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateStruct runs the struct tags and converts failures to a
// *domain.ValidationError.
func validateStruct(v *validator.Validate, s any) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	verr := &domain.ValidationError{}
	for _, fe := range fieldErrs {
		verr.Add(fieldPath(fe), describe(fe))
	}
	return verr
}

// fieldPath drops the top-level struct name from the namespace.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "uuid":
		return "must be a valid uuid"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "gtfield":
		return "must be after " + snakeCase(fe.Param())
	default:
		return fmt.Sprintf("failed on '%s'", fe.Tag())
	}
}

func checkNonNegative(verr *domain.ValidationError, field string, amount decimal.Decimal) {
	if amount.IsNegative() {
		verr.Add(field, "must not be negative")
	}
}

func orNil(verr *domain.ValidationError) error {
	if verr == nil || len(verr.Fields) == 0 {
		return nil
	}
	return verr
}

func snakeCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}
