package validation

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/secosha/marketplace/pkg/enums"
	pkgerrors "github.com/secosha/marketplace/pkg/errors"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" || tag == "-" {
			return f.Name
		}
		return tag
	})
	mustRegister(v, "category", func(fl validator.FieldLevel) bool {
		return enums.Category(fl.Field().String()).IsValid()
	})
	mustRegister(v, "size", func(fl validator.FieldLevel) bool {
		return enums.Size(fl.Field().String()).IsValid()
	})
	mustRegister(v, "color", func(fl validator.FieldLevel) bool {
		return enums.Color(fl.Field().String()).IsValid()
	})
	mustRegister(v, "condition", func(fl validator.FieldLevel) bool {
		return enums.Condition(fl.Field().String()).IsValid()
	})
	mustRegister(v, "delivery_type", func(fl validator.FieldLevel) bool {
		return enums.DeliveryType(fl.Field().String()).IsValid()
	})
	mustRegister(v, "price", func(fl validator.FieldLevel) bool {
		_, err := ParsePrice(fl.Field().String())
		return err == nil
	})
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register %s validation: %v", tag, err))
	}
}

// Struct validates dest against its `validate` tags and returns a
// VALIDATION_ERROR whose details map field names to messages.
func Struct(dest any) error {
	if err := validate.Struct(dest); err != nil {
		return formatValidationErrors(err)
	}
	return nil
}

// ParsePrice parses a non-negative decimal price.
func ParsePrice(raw string) (decimal.Decimal, error) {
	value, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, fmt.Errorf("price must be a number")
	}
	if value.IsNegative() {
		return decimal.Zero, fmt.Errorf("price must not be negative")
	}
	return value, nil
}

func formatValidationErrors(err error) *pkgerrors.Error {
	if errs, ok := err.(validator.ValidationErrors); ok {
		details := map[string]string{}
		for _, fieldErr := range errs {
			details[fieldErr.Field()] = validationMessage(fieldErr)
		}
		return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(details)
	}
	return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "validation failed")
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "email":
		return "must be a valid email"
	case "url", "http_url":
		return "must be a valid URL"
	case "price":
		return "must be a non-negative number"
	case "category", "size", "color", "condition", "delivery_type":
		return fmt.Sprintf("must be a known %s", strings.ReplaceAll(fe.Tag(), "_", " "))
	}
	return "is invalid"
}
