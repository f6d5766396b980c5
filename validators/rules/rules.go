// Package rules holds the shared request validator and the custom tags the
// area validators use.
package rules

import (
	"coursehub/models"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
)

var (
	once     sync.Once
	instance *validator.Validate
)

// Validator returns the process-wide validator with custom tags registered.
func Validator() *validator.Validate {
	once.Do(func() {
		v := validator.New()
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			for _, tag := range []string{"json", "query", "form"} {
				name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
				if name != "" && name != "-" {
					return name
				}
			}
			return fld.Name
		})
		register(v, "serviceType", models.IsValidServiceType)
		register(v, "difficulty", models.IsValidDifficulty)
		register(v, "language", models.IsValidLanguage)
		register(v, "batchType", models.IsValidBatchType)
		register(v, "courseType", models.IsValidCourseType)
		register(v, "paymentMode", models.IsValidPaymentMode)
		register(v, "registrationStatus", func(s string) bool { return models.IsValidRegistrationStatus(strings.ToUpper(s)) })
		register(v, "paymentStatus", func(s string) bool { return models.IsValidPaymentStatus(strings.ToUpper(s)) })
		register(v, "date", func(s string) bool { _, ok := ParseDate(s); return ok })
		instance = v
	})
	return instance
}

func register(v *validator.Validate, tag string, ok func(string) bool) {
	_ = v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
		return ok(fl.Field().String())
	})
}

// Check validates s and returns field -> message for every failure.
func Check(s interface{}) map[string]string {
	err := Validator().Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"request": err.Error()}
	}
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		out[fe.Field()] = message(fe)
	}
	return out
}

func message(fe validator.FieldError) string {
	f := fe.Field()
	switch fe.Tag() {
	case "required":
		return f + " is required"
	case "email":
		return f + " must be a valid email"
	case "numeric":
		return f + " must contain only digits"
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s", f, fe.Param())
	case "max", "lte":
		return fmt.Sprintf("%s must be at most %s", f, fe.Param())
	case "len":
		return fmt.Sprintf("%s must be %s characters long", f, fe.Param())
	case "uuid", "uuid4":
		return f + " must be a valid id"
	case "date":
		return f + " must be a valid date"
	default:
		return "Invalid " + f
	}
}

var dateLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}

// ParseDate accepts RFC 3339 timestamps and plain dates, in UTC.
func ParseDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// OptionalDate parses raw when set. The bool is false only for a non-empty
// unparseable value.
func OptionalDate(raw string) (*time.Time, bool) {
	if strings.TrimSpace(raw) == "" {
		return nil, true
	}
	t, ok := ParseDate(raw)
	if !ok {
		return nil, false
	}
	return &t, true
}
