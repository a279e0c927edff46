package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// DateLayout is the calendar date format accepted for experience and education dates.
const DateLayout = "2006-01-02"

// Init configures the global validator used by Gin's binding.
// Errors are keyed by JSON field names.
func Init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		Register(v)
	}
}

// Register installs tag name resolution, aliases and custom tags on v.
func Register(v *validator.Validate) {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterAlias("pwd", "min=6")
	_ = v.RegisterValidation("notblank", notBlank)
	_ = v.RegisterValidation("date", isDate)
}

func notBlank(fl validator.FieldLevel) bool {
	f := fl.Field()
	switch f.Kind() {
	case reflect.String:
		return strings.TrimSpace(f.String()) != ""
	case reflect.Slice:
		return f.Len() > 0
	default:
		return !f.IsZero()
	}
}

func isDate(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if s == "" {
		return true
	}
	_, err := ParseDate(s)
	return err == nil
}

// ParseDate accepts a calendar date or a full RFC 3339 timestamp.
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// ToDetails converts validation/binding errors into a map[field]message suitable for API error.details.
func ToDetails(err error) map[string]string {
	if err == nil {
		return nil
	}

	// Invalid JSON payloads
	var se *json.SyntaxError
	var ute *json.UnmarshalTypeError
	if errors.As(err, &se) || errors.As(err, &ute) {
		return map[string]string{"payload": "invalid json"}
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			out[fe.Field()] = formatFieldError(fe)
		}
		return out
	}

	return map[string]string{"payload": "invalid payload"}
}

func formatFieldError(fe validator.FieldError) string {
	tag := fe.Tag()
	param := fe.Param()
	kind := fe.Kind()

	switch tag {
	case "required", "notblank":
		return "is required"
	case "required_without":
		return "is required when " + param + " is not present"
	case "email":
		return "must be a valid email"
	case "url":
		return "must be a valid URL"
	case "date":
		return "must be a valid date (YYYY-MM-DD)"
	case "uuid":
		return "must be a valid UUID"
	case "min", "pwd":
		if tag == "pwd" {
			param = "6"
		}
		if kind == reflect.String {
			return fmt.Sprintf("must be at least %s characters", param)
		}
		if kind == reflect.Slice || kind == reflect.Map || kind == reflect.Array {
			return fmt.Sprintf("must contain at least %s items", param)
		}
		return "must be at least " + param
	case "max":
		if kind == reflect.String {
			return fmt.Sprintf("must be at most %s characters", param)
		}
		if kind == reflect.Slice || kind == reflect.Map || kind == reflect.Array {
			return fmt.Sprintf("must contain at most %s items", param)
		}
		return "must be at most " + param
	case "len":
		if kind == reflect.String {
			return fmt.Sprintf("must be exactly %s characters", param)
		}
		return "must have length " + param
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(param, " ", ", ")
	case "alphanum":
		return "must contain alphanumeric characters only"
	case "gtfield":
		return "must be after " + param
	default:
		return "is invalid"
	}
}
