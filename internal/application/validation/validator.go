package validation

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

// Validator defines a common interface for all validators
type Validator interface {
	// Validate checks if the object complies with the rules
	Validate(ctx context.Context, obj any) error
}

// StructValidator checks `validate` struct tags; element names are the json field names
type StructValidator struct {
	v *validator.Validate
}

// NewStructValidator creates a struct tag validator
func NewStructValidator() *StructValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return &StructValidator{v: v}
}

// Validate returns a *ValidationError listing every violated rule
func (s *StructValidator) Validate(ctx context.Context, obj any) error {
	err := s.v.StructCtx(ctx, obj)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return errors.Wrap(err, "failed to validate")
	}

	ret := &ValidationError{}
	for _, fe := range fieldErrs {
		ret.Add(code(fe.Tag()), describe(fe), fe.Field())
	}
	return ret
}

func code(tag string) string {
	switch tag {
	case "required":
		return CodeRequired
	case "max":
		return CodeTooLong
	default:
		return CodeInvalid
	}
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s fails rule %s", fe.Field(), fe.Tag())
	}
}

// Func adapts a func to Validator
type Func func(ctx context.Context, obj any) error

// Validate calls f
func (f Func) Validate(ctx context.Context, obj any) error {
	return f(ctx, obj)
}

// Chain runs validators in order and stops at the first failure
func Chain(validators ...Validator) Validator {
	return Func(func(ctx context.Context, obj any) error {
		for _, v := range validators {
			if err := v.Validate(ctx, obj); err != nil {
				return err
			}
		}
		return nil
	})
}
