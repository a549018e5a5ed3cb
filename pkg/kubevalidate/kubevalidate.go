package kubevalidate

import (
	"strings"

	"github.com/pkg/errors"
	"k8s.io/apimachinery/pkg/util/validation"
)

var ErrInvalidName = errors.New("Invalid Name")

// Checks if the given name is a lowercase DNS label as defined in RFC 1123.
func IsValidRFC1123Name(s string) bool {
	errs := validation.IsDNS1123Label(s)
	return len(errs) == 0
}

// ValidateNamespace explains why s cannot name a namespace. The empty string
// is accepted and means "not set".
func ValidateNamespace(s string) error {
	if s == "" || IsValidRFC1123Name(s) {
		return nil
	}
	msgs := validation.IsDNS1123Label(s)
	return errors.Wrapf(ErrInvalidName, "namespace %q: %s", s, strings.Join(msgs, "; "))
}
