package utils

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"warden/internal/shared/errors"
)

var validate *validator.Validate

// permissionKeyPattern is the accepted shape of a permission key: lower-case
// words joined by underscores, dots, colons or dashes.
var permissionKeyPattern = regexp.MustCompile(`^[a-z0-9]+([_.:-][a-z0-9]+)*$`)

func init() {
	validate = validator.New()

	// Use JSON tag names for validation errors
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = validate.RegisterValidation("permkey", func(fl validator.FieldLevel) bool {
		return permissionKeyPattern.MatchString(fl.Field().String())
	})
	_ = validate.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
}

// ValidateStruct validates a struct and returns a validation AppError listing every failed field.
func ValidateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok || len(validationErrors) == 0 {
		return errors.NewValidationError("Validation failed", err.Error())
	}

	var errorMessages []string
	for _, fieldError := range validationErrors {
		errorMessages = append(errorMessages, getFieldErrorMessage(fieldError))
	}

	return errors.NewValidationError(
		"Validation failed",
		strings.Join(errorMessages, "; "),
	)
}

// IsPermissionKey reports whether s is a well-formed permission key.
func IsPermissionKey(s string) bool {
	return permissionKeyPattern.MatchString(s)
}

func getFieldErrorMessage(fe validator.FieldError) string {
	field := fe.Field()
	param := fe.Param()

	switch fe.Tag() {
	case "required", "notblank":
		return fmt.Sprintf("%s is required", field)
	case "max":
		return fmt.Sprintf("%s must be at most %s characters long", field, param)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters long", field, param)
	case "permkey":
		return fmt.Sprintf("%s must be lower-case words joined by '_', '.', ':' or '-'", field)
	case "startswith":
		return fmt.Sprintf("%s must start with '%s'", field, param)
	case "dive":
		return fmt.Sprintf("%s contains an invalid element", field)
	default:
		return fmt.Sprintf("%s failed validation for '%s'", field, fe.Tag())
	}
}
