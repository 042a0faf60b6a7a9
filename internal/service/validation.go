package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/boddenberg/shopboard-dashboard-go/internal/domain"

	"github.com/go-playground/validator/v10"
)

// Validator runs struct-tag validation and reports failures as
// *domain.ErrValidation keyed by JSON field name.
type Validator struct {
	v *validator.Validate
}

// NewValidator creates a Validator that names fields by their json tag.
func NewValidator() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" || tag == "-" {
			return f.Name
		}
		return tag
	})
	return &Validator{v: v}
}

// Struct validates s. No network call is ever made for a value that fails here.
func (v *Validator) Struct(s any) error {
	err := v.v.Struct(s)
	if err == nil {
		return nil
	}
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return &domain.ErrValidation{Field: "body", Message: err.Error()}
	}
	return formatValidationErrors(errs)
}

func formatValidationErrors(errs validator.ValidationErrors) *domain.ErrValidation {
	out := &domain.ErrValidation{Fields: make(map[string]string, len(errs))}
	for i, fe := range errs {
		name := fieldPath(fe)
		msg := validationMessage(fe)
		out.Fields[name] = msg
		if i == 0 {
			out.Field = name
			out.Message = msg
		}
	}
	return out
}

// fieldPath drops the root struct name: "RequestEdit.request_items[0].width"
// becomes "request_items[0].width".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must have at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "email":
		return "must be a valid email"
	case "eqfield":
		return "does not match"
	}
	return "is invalid"
}

func requiredField(field string) *domain.ErrValidation {
	return &domain.ErrValidation{Field: field, Message: "is required", Fields: map[string]string{field: "is required"}}
}
