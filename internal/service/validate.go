package service

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Validate checks v's struct tags and reports the first violation as a
// *ValidationError.
func Validate(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return &ValidationError{Message: err.Error()}
	}

	fe := fieldErrs[0]
	field := fieldLabel(fe.Field())
	switch fe.Tag() {
	case "required":
		return &ValidationError{Field: field, Message: "is required"}
	case "email":
		return &ValidationError{Field: field, Message: "must be a valid email address"}
	case "eqfield":
		return &ValidationError{Message: "passwords do not match"}
	case "oneof":
		return &ValidationError{Field: field, Message: "must be one of " + strings.ReplaceAll(fe.Param(), " ", ", ")}
	default:
		return &ValidationError{Field: field, Message: "failed " + fe.Tag() + " check"}
	}
}

func fieldLabel(name string) string {
	switch name {
	case "PasswordConfirm":
		return "password confirmation"
	case "DueDate":
		return "due date"
	default:
		return strings.ToLower(name)
	}
}
