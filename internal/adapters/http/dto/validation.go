package dto

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"
	"unicode"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// Validation errors.
var (
	ErrValidation = errors.New("validation failed")

	// ErrBinding means the body or query could not be bound at all.
	ErrBinding = errors.New("binding failed")
)

// quoteIDPattern keeps client-chosen IDs usable as a single path segment in
// DELETE /quotes/:id.
var quoteIDPattern = regexp.MustCompile(`^[A-Za-z0-9._~-]+$`)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Validator returns the shared validator with the quote rules registered:
//
//	notempty  non-blank after trimming
//	quoteid   one URL path segment of unreserved characters
//	oneline   no line breaks or other control characters
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()

		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			tag := fld.Tag.Get("json")
			if tag == "" {
				tag = fld.Tag.Get("form")
			}

			name, _, _ := strings.Cut(tag, ",")
			if name == "-" {
				return ""
			}

			return name
		})

		_ = validate.RegisterValidation("notempty", func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		})
		_ = validate.RegisterValidation("quoteid", func(fl validator.FieldLevel) bool {
			return quoteIDPattern.MatchString(fl.Field().String())
		})
		_ = validate.RegisterValidation("oneline", func(fl validator.FieldLevel) bool {
			return !strings.ContainsFunc(fl.Field().String(), unicode.IsControl)
		})
	})

	return validate
}

// Validate runs the struct rules; failures wrap ErrValidation.
func Validate(v any) error {
	if err := Validator().Struct(v); err != nil {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}

	return nil
}

// BindAndValidate binds the JSON body and validates it.
func BindAndValidate(c *gin.Context, v any) error {
	if err := c.ShouldBindJSON(v); err != nil {
		return fmt.Errorf("%w: %w", ErrBinding, err)
	}

	return Validate(v)
}

// BindQueryAndValidate binds the query string and validates it.
func BindQueryAndValidate(c *gin.Context, v any) error {
	if err := c.ShouldBindQuery(v); err != nil {
		return fmt.Errorf("%w: %w", ErrBinding, err)
	}

	return Validate(v)
}

// ValidationErrors returns one message per failing field, keyed by JSON name.
func ValidationErrors(err error) map[string]string {
	details := make(map[string]string)

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		for _, fe := range fieldErrs {
			details[fe.Field()] = validationMessage(fe)
		}
	}

	return details
}

// IsValidationError reports whether err carries field-level failures.
func IsValidationError(err error) bool {
	var fieldErrs validator.ValidationErrors
	return errors.As(err, &fieldErrs)
}

var validationMessages = map[string]string{
	"required": "this field is required",
	"notempty": "must not be empty",
	"quoteid":  "may only contain letters, digits, '.', '_', '~' and '-'",
	"oneline":  "must be a single line without control characters",
	"gte":      "must be greater than or equal to {param}",
	"lte":      "must be less than or equal to {param}",
	"oneof":    "must be one of: {param}",
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "min", "max":
		unit := ""
		if fe.Kind() == reflect.String {
			unit = " characters"
		}

		bound := "at least"
		if fe.Tag() == "max" {
			bound = "at most"
		}

		return "must be " + bound + " " + fe.Param() + unit
	}

	if msg, ok := validationMessages[fe.Tag()]; ok {
		return strings.ReplaceAll(msg, "{param}", fe.Param())
	}

	return "failed validation: " + fe.Tag()
}
