package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// QuoteExtensions are the quote file types an ingestor exists for.
var QuoteExtensions = []string{".txt", ".csv", ".docx", ".pdf"}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Errors name fields by their koanf keys so they match the YAML and
	// APP_ variables an operator edits.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("koanf"), ",")
		if name == "" {
			return strings.ToLower(f.Name)
		}

		return name
	})

	_ = v.RegisterValidation("quotefile", func(fl validator.FieldLevel) bool {
		ext := strings.ToLower(filepath.Ext(fl.Field().String()))
		for _, want := range QuoteExtensions {
			if ext == want {
				return true
			}
		}

		return false
	})

	v.RegisterStructValidation(func(sl validator.StructLevel) {
		r := sl.Current().Interface().(RetryConfig)
		if r.MaxInterval > 0 && r.MaxInterval < r.InitialInterval {
			sl.ReportError(r.MaxInterval, "max_interval", "MaxInterval", "gtefield", "initial_interval")
		}
	}, RetryConfig{})

	return v
}

// Validate reports every invalid setting at once. The service refuses to
// start with an invalid configuration.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	lines := make([]string, len(fieldErrs))
	for i, fe := range fieldErrs {
		lines[i] = describe(fe)
	}

	return fmt.Errorf("config validation failed:\n  %s", strings.Join(lines, "\n  "))
}

func describe(fe validator.FieldError) string {
	key := keyPath(fe.Namespace())
	p := fe.Param()

	switch fe.Tag() {
	case "required":
		return key + " is required"
	case "required_if":
		return fmt.Sprintf("%s is required when %s", key, p)
	case "min":
		return fmt.Sprintf("%s must be at least %s", key, p)
	case "max":
		return fmt.Sprintf("%s must be at most %s", key, p)
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", key, p)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", key, p)
	case "startswith":
		return fmt.Sprintf("%s must start with %q", key, p)
	case "endswith":
		return fmt.Sprintf("%s must end with %q", key, p)
	case "url":
		return key + " must be a valid URL"
	case "quotefile":
		return fmt.Sprintf("%s is an unsupported quote file (want %s)", key, strings.Join(QuoteExtensions, ", "))
	case "gtefield":
		return fmt.Sprintf("%s must not be less than %s", key, p)
	default:
		return fmt.Sprintf("%s failed validation: %s", key, fe.Tag())
	}
}

// keyPath turns "Config.meme.output_dir" into "meme.output_dir".
func keyPath(namespace string) string {
	_, key, found := strings.Cut(namespace, ".")
	if !found {
		return namespace
	}

	return key
}
