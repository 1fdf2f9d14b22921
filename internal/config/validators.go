package config

import (
	"fmt"
	"reflect"

	"github.com/go-playground/validator/v10"
)

// registerExclusive adds a custom validator ensuring two fields are not both set.
func registerExclusive(validate *validator.Validate) error {
	if err := validate.RegisterValidation("exclusive", validateExclusive); err != nil {
		return fmt.Errorf("registering exclusive validation: %w", err)
	}

	return nil
}

// validateExclusive checks that the field and the field named by the parameter are not both set.
// Returns false if both hold a non-zero value.
func validateExclusive(fl validator.FieldLevel) bool {
	field := fl.Field()
	otherField := fl.Parent().FieldByName(fl.Param())

	if !field.IsValid() || !otherField.IsValid() || field.Kind() != otherField.Kind() {
		return true
	}

	switch field.Kind() { //nolint:exhaustive
	case reflect.Bool, reflect.String:
		return field.IsZero() || otherField.IsZero()
	default:
		return true
	}
}
