package shared

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// NewValidator builds a validator that reports field names from json tags.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

var indexPattern = regexp.MustCompile(`\[(\d+)\]`)

// ValidateStruct runs the validator and converts failures into the
// field-keyed error map the API reports. messages is keyed by
// "path.rule" with slice indexes collapsed to "*", e.g.
// "products.*.product_id.required".
func ValidateStruct(v *validator.Validate, s any, messages map[string]string) *Error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return Validation(FieldErrors{"request": {"Malformed request body."}})
	}
	fields := FieldErrors{}
	for _, fe := range verrs {
		path := fieldPath(fe)
		key := indexPattern.ReplaceAllString(path, ".*") + "." + fe.Tag()
		msg, ok := messages[key]
		if !ok {
			msg = fmt.Sprintf("The %s field is invalid.", path)
		}
		path = indexPattern.ReplaceAllString(path, ".$1")
		fields[path] = append(fields[path], msg)
	}
	return Validation(fields)
}

// fieldPath strips the root struct name from the validator namespace.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}
