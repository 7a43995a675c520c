package utils

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

// FieldError describes one invalid input field. Key is a message key,
// Param carries the validator parameter (min length, allowed values...).
type FieldError struct {
	Field   string `json:"field"`
	Key     string `json:"-"`
	Param   string `json:"-"`
	Message string `json:"message"`
}

func newValidator() *validator.Validate {
	v := validator.New()

	// Report json names so errors match the request body
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	return v
}

func ValidateStruct(data interface{}) []FieldError {
	err := validate.Struct(data)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return []FieldError{{Field: "body", Key: "validation.invalid"}}
	}

	fields := make([]FieldError, 0, len(validationErrors))
	for _, fe := range validationErrors {
		fields = append(fields, FieldError{
			Field: fe.Field(),
			Key:   messageKey(fe),
			Param: formatParam(fe),
		})
	}

	return fields
}

var oneOfValue = regexp.MustCompile(`'[^']*'|\S+`)

// formatParam renders oneof lists as "a, b, c", dropping the quotes
// around multi-word values
func formatParam(fe validator.FieldError) string {
	if fe.Tag() != "oneof" {
		return fe.Param()
	}
	values := oneOfValue.FindAllString(fe.Param(), -1)
	for i, v := range values {
		values[i] = strings.Trim(v, "'")
	}
	return strings.Join(values, ", ")
}

// messageKey maps a validator tag to a locale key
func messageKey(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "validation.required"
	case "email":
		return "validation.email_invalid"
	case "min", "gte":
		if fe.Kind() == reflect.String {
			return "validation.min_length"
		}
		return "validation.min_value"
	case "max", "lte":
		if fe.Kind() == reflect.String {
			return "validation.max_length"
		}
		return "validation.max_value"
	case "len":
		return "validation.exact_length"
	case "oneof":
		return "validation.one_of"
	case "uuid", "uuid4":
		return "validation.uuid"
	case "numeric":
		return "validation.numeric"
	case "datetime":
		return "validation.date"
	case "url":
		return "validation.url"
	default:
		return "validation.invalid"
	}
}
