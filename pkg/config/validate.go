package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

// newValidator reports fields by their toml names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("toml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks every field and reports all problems at once.
func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	msgs := make([]string, len(fieldErrs))
	for i, fe := range fieldErrs {
		msgs[i] = describe(fe)
	}
	return errors.New(strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	field := fieldPath(fe.Namespace())
	switch fe.Tag() {
	case "oneof":
		return fmt.Sprintf("%s: %q is not one of [%s]", field, fe.Value(), fe.Param())
	case "required", "required_if":
		return fmt.Sprintf("%s: required", field)
	case "hostname_port":
		return fmt.Sprintf("%s: %q is not a host:port address", field, fe.Value())
	case "url":
		return fmt.Sprintf("%s: %q is not a URL", field, fe.Value())
	case "gt", "gte":
		return fmt.Sprintf("%s: must be %s %s", field, map[string]string{"gt": ">", "gte": ">="}[fe.Tag()], fe.Param())
	}
	return fmt.Sprintf("%s: failed %s", field, fe.Tag())
}

// fieldPath drops the root struct name: "Config.cache.ttl" becomes "cache.ttl".
func fieldPath(ns string) string {
	if _, rest, found := strings.Cut(ns, "."); found {
		return rest
	}
	return ns
}
