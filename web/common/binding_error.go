package common

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"timetracker.com/timetracker/timesheet"
)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		_ = v.RegisterValidation("halfhour", func(fl validator.FieldLevel) bool {
			return timesheet.ValidateHours(fl.Field().Float()) == nil
		})
	}
}

// FormatBindingError turns a gin binding failure into one client-facing line.
func FormatBindingError(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, io.EOF) {
		return "Request body is empty"
	}

	var (
		ve        *timesheet.ValidationError
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
		fieldErrs validator.ValidationErrors
	)
	switch {
	case errors.As(err, &ve):
		return ve.Error()
	case errors.As(err, &syntaxErr):
		return fmt.Sprintf("Invalid JSON at byte offset %d", syntaxErr.Offset)
	case errors.As(err, &typeErr):
		return fmt.Sprintf("Field '%s' should be of type %s", typeErr.Field, typeErr.Type.String())
	case errors.As(err, &fieldErrs):
		out := make([]string, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			out = append(out, formatFieldError(fe))
		}
		return strings.Join(out, ", ")
	}
	return err.Error()
}

// fieldMessages covers the tags used by request DTOs; %[1]s is the json
// field name and %[2]s the tag parameter.
var fieldMessages = map[string]string{
	"required": "Field '%[1]s' is required",
	"email":    "Field '%[1]s' must be a valid email",
	"min":      "Field '%[1]s' must be at least %[2]s characters",
	"gte":      "Field '%[1]s' must be at least %[2]s",
	"oneof":    "Field '%[1]s' must be one of %[2]s",
	"halfhour": "Field '%[1]s' must be between 0 and 24 in half hour steps",
}

func formatFieldError(fe validator.FieldError) string {
	if msg, ok := fieldMessages[fe.Tag()]; ok {
		return fmt.Sprintf(msg, fe.Field(), fe.Param())
	}
	return fmt.Sprintf("Field '%s' failed validation for '%s'", fe.Field(), fe.Tag())
}
