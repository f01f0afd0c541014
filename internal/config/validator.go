package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// ValidateConfig performs validation on the GlobalConfig structure.
func ValidateConfig(cfg *GlobalConfig) error {
	validate := validator.New()

	_ = validate.RegisterValidation("loglevel", func(fl validator.FieldLevel) bool {
		levelStr := fl.Field().String()
		if levelStr == "" {
			return true
		}
		_, err := zerolog.ParseLevel(levelStr)
		return err == nil
	})

	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	var messages []string
	for _, fieldErr := range validationErrors {
		messages = append(messages, formatFieldError(fieldErr))
	}
	return fmt.Errorf("config validation failed: %s", strings.Join(messages, "; "))
}

// formatFieldError renders one validator error in a user-facing form.
func formatFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "url":
		return fmt.Sprintf("field '%s' must be a valid URL (got '%v')", fe.Namespace(), fe.Value())
	case "min", "max", "gt", "lte":
		return fmt.Sprintf("field '%s' is out of range (%s=%s, got '%v')", fe.Namespace(), fe.Tag(), fe.Param(), fe.Value())
	case "oneof":
		return fmt.Sprintf("field '%s' must be one of [%s] (got '%v')", fe.Namespace(), fe.Param(), fe.Value())
	case "loglevel":
		return fmt.Sprintf("field '%s' is not a recognized log level (got '%v')", fe.Namespace(), fe.Value())
	default:
		return fmt.Sprintf("field '%s' failed validation '%s'", fe.Namespace(), fe.Tag())
	}
}
