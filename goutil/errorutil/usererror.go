package errorutil

import (
	"fmt"

	"github.com/pkg/errors"
)

// combinedError pairs an internal error with a message meant for whoever runs
// the build. Error() reports both, while errors.Is matches either side:
//
//	return errorutil.CombinedError(err, errCredentialNotFound)
//
// The root command prints only the user message unless --debug is set.
type combinedError struct {
	original  error
	userError *userError
}

// userError is a message that is safe to show as is.
type userError struct {
	error
}

type formatted interface {
	error
	Format(s fmt.State, verb rune)
}

func NewUserError(msg string) *userError {
	return &userError{error: errors.New(msg)}
}

func NewUserErrorf(msg string, args ...any) *userError {
	return &userError{error: errors.New(fmt.Sprintf(msg, args...))}
}

func CombinedError(original error, userErr *userError) error {
	if original == nil || hasUserError(original) {
		return original
	}
	return &combinedError{original, userErr}
}

func AddUserMessagef(original error, msg string, args ...any) error {
	if original == nil || hasUserError(original) {
		return original
	}
	return &combinedError{original, NewUserError(fmt.Sprintf(msg, args...))}
}

// GetUserErrorMessage returns the user facing part of err, or "" when err
// carries none.
func GetUserErrorMessage(err error) string {
	ce := &combinedError{}
	if errors.As(err, &ce) {
		return ce.userError.Error()
	}
	us := &userError{}
	if errors.As(err, &us) {
		return us.Error()
	}
	return ""
}

func (err *combinedError) Error() string {
	return err.combine().Error()
}

func (err *combinedError) combine() formatted {
	var f formatted
	errors.As(errors.Wrap(err.original, err.userError.Error()), &f)
	return f
}

func (err *combinedError) Is(target error) bool {
	return errors.Is(err.original, target) || errors.Is(err.userError, target)
}

func (err *combinedError) Unwrap() error { return err.original }

// Format keeps %+v stack traces from github.com/pkg/errors.
func (err *combinedError) Format(s fmt.State, verb rune) {
	err.combine().Format(s, verb)
}

func hasUserError(err error) bool {
	ce := &combinedError{}
	us := &userError{}
	return errors.As(err, &ce) || errors.As(err, &us)
}
