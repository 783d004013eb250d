package serverutils

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidationError carries field-level messages for the 400 response.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, field+": "+msg)
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

func ValidateRequest(req interface{}) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	fields := make(map[string]string, len(errs))
	for _, fe := range errs {
		switch fe.Tag() {
		case "required":
			fields[fe.Field()] = "is required"
		case "max":
			fields[fe.Field()] = fmt.Sprintf("must be at most %s", fe.Param())
		case "min":
			fields[fe.Field()] = fmt.Sprintf("must be at least %s", fe.Param())
		default:
			fields[fe.Field()] = fmt.Sprintf("failed on %s", fe.Tag())
		}
	}
	return &ValidationError{Fields: fields}
}
