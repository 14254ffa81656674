package errors

import (
	goerrors "errors"
	"reflect"
	"strings"

	apperrors "github.com/target/userdesk/internal/errors"
)

// Classify returns a short error class for log and metric tags.
// Coded application errors classify by code; anything else by the innermost
// concrete type, lower-cased with dots replaced by underscores.
func Classify(err error) string {
	if err == nil {
		return ""
	}
	if code := apperrors.GetCode(err); code != "" {
		return string(code)
	}

	for {
		inner := goerrors.Unwrap(err)
		if inner == nil {
			break
		}
		err = inner
	}

	t := reflect.TypeOf(err)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return "unknown"
	}
	name := strings.ReplaceAll(strings.ToLower(t.String()), ".", "_")
	if name == "" {
		return "unknown"
	}
	return name
}
