package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validate is the package-level validator instance.
var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate validates the configuration and returns an error if invalid.
// Validation fails fast - the service should not start with invalid config.
func (c *Config) Validate() error {
	errs := make([]string, 0)

	if err := validate.Struct(c); err != nil {
		var validationErrors validator.ValidationErrors
		if !errors.As(err, &validationErrors) {
			return err
		}

		for _, e := range validationErrors {
			errs = append(errs, formatFieldError(e))
		}
	}

	errs = append(errs, c.Storage.driverErrors()...)

	if len(errs) == 0 {
		return nil
	}

	return fmt.Errorf("config validation failed:\n  %s", strings.Join(errs, "\n  "))
}

// driverErrors checks settings that are only required by the selected driver.
func (s *StorageConfig) driverErrors() []string {
	var errs []string

	switch s.Driver {
	case "sqlite":
		if s.SQLite.Path == "" {
			errs = append(errs, "storage.sqlite.path is required when driver is sqlite")
		}
	case "postgres":
		required := []struct{ field, value string }{
			{"host", s.Postgres.Host},
			{"user", s.Postgres.User},
			{"database", s.Postgres.Database},
		}

		for _, r := range required {
			if r.value == "" {
				errs = append(errs, fmt.Sprintf("storage.postgres.%s is required when driver is postgres", r.field))
			}
		}
	}

	return errs
}

// formatFieldError formats a single field validation error.
func formatFieldError(e validator.FieldError) string {
	field := formatFieldPath(e.Namespace())

	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "required_if":
		return fmt.Sprintf("%s is required when %s", field, e.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, e.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, e.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, e.Param())
	case "url":
		return fmt.Sprintf("%s must be a valid URL", field)
	case "startswith":
		return fmt.Sprintf("%s must start with %q", field, e.Param())
	default:
		return fmt.Sprintf("%s failed validation: %s", field, e.Tag())
	}
}

// formatFieldPath converts "Config.Server.Port" to "server.port".
func formatFieldPath(namespace string) string {
	parts := strings.Split(namespace, ".")
	if len(parts) > 1 {
		parts = parts[1:]
	}

	for i, part := range parts {
		parts[i] = strings.ToLower(part)
	}

	return strings.Join(parts, ".")
}
