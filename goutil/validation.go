package goutil

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/pkg/errors"
)

// ValidateStructFieldsAreNotZero reports every named field of the struct s
// points to that holds its zero value. Field names are reported using their
// yaml tag when one is set.
func ValidateStructFieldsAreNotZero(s any, fields ...string) error {
	errorStrings := []string{}
	v := reflect.ValueOf(s).Elem()
	for _, f := range fields {
		if v.FieldByName(f).IsZero() {
			errorStrings = append(errorStrings, fmt.Sprintf("%s is missing", fieldName(v.Type(), f)))
		}
	}
	if len(errorStrings) == 0 {
		return nil
	}
	return errors.New(strings.Join(errorStrings, ", "))
}

func fieldName(t reflect.Type, name string) string {
	sf, ok := t.FieldByName(name)
	if !ok {
		return name
	}
	tag, _, _ := strings.Cut(sf.Tag.Get("yaml"), ",")
	if tag == "" || tag == "-" {
		return name
	}
	return tag
}
