package validator

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	once     sync.Once
	validate *validator.Validate
)

// ValidationError describes one failed rule on one field.
type ValidationError struct {
	Field string `json:"field"`
	Tag   string `json:"tag"`
	Param string `json:"param"`
}

func (v ValidationError) String() string {
	if v.Param != "" {
		return fmt.Sprintf("%s failed on %s=%s", v.Field, v.Tag, v.Param)
	}
	return fmt.Sprintf("%s failed on %s", v.Field, v.Tag)
}

// ValidationErrors collects every failed rule from a single pass so callers
// can report all problems at once instead of fixing them one by one.
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return "validation failed"
	}
	parts := make([]string, len(v))
	for i, failure := range v {
		parts[i] = failure.String()
	}
	return strings.Join(parts, "; ")
}

// ValidateStruct runs the registered rules against s. Rule failures come back
// as ValidationErrors; anything else (bad rule definitions, non-struct input)
// is returned as-is.
func ValidateStruct(s interface{}) error {
	err := shared().Struct(s)
	if err == nil {
		return nil
	}

	ve, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	failures := make(ValidationErrors, 0, len(ve))
	for _, fe := range ve {
		failures = append(failures, ValidationError{
			Field: fe.Field(),
			Tag:   fe.Tag(),
			Param: fe.Param(),
		})
	}
	return failures
}

// RegisterValidation adds a custom rule under the given tag.
func RegisterValidation(tag string, fn validator.Func) error {
	return shared().RegisterValidation(tag, fn)
}

func shared() *validator.Validate {
	once.Do(func() {
		validate = validator.New()
		validate.RegisterTagNameFunc(fieldName)

		// record_id accepts the canonical 24-character lowercase hex form
		// that every collection keys its records by.
		_ = validate.RegisterValidation("record_id", func(fl validator.FieldLevel) bool {
			return isRecordID(fl.Field().String())
		})
	})
	return validate
}

// fieldName reports failures under the name clients actually send: the
// mapstructure tag for config structs, the json tag for request payloads,
// falling back to the Go field name.
func fieldName(fld reflect.StructField) string {
	for _, key := range []string{"mapstructure", "json"} {
		name := fld.Tag.Get(key)
		if comma := strings.Index(name, ","); comma != -1 {
			name = name[:comma]
		}
		if name != "" && name != "-" {
			return name
		}
	}
	return fld.Name
}

func isRecordID(s string) bool {
	if len(s) != 24 {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
