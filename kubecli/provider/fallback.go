package provider

import (
	"context"
	"os"
	"strings"
	"unicode"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.jetpack.io/kubecreds/kubecreds"
	"go.jetpack.io/kubecreds/kubecreds/auth"
)

// TokenEnvPrefix prefixes the environment variables FallbackStore reads.
const TokenEnvPrefix = "KUBECREDS_TOKEN_"

// FallbackStore wraps a primary store with environment variable fallback.
// Credentials the primary store does not define are looked up as bearer
// tokens in KUBECREDS_TOKEN_<ID>.
type FallbackStore struct {
	primary   CredentialStore
	lookupEnv func(string) (string, bool)
}

var _ CredentialStore = (*FallbackStore)(nil)

func NewFallbackStore(primary CredentialStore) *FallbackStore {
	return &FallbackStore{primary: primary, lookupEnv: os.LookupEnv}
}

func (f *FallbackStore) Lookup(ctx context.Context, id string) (auth.Material, error) {
	m, err := f.primary.Lookup(ctx, id)
	if err == nil {
		return m, nil
	}
	if !errors.Is(err, kubecreds.ErrUnknownCredential) {
		return nil, err
	}

	name := TokenEnvVar(id)
	if token, ok := f.lookupEnv(name); ok && token != "" {
		logrus.Debugf("credential %q retrieved from environment variable %s", id, name)
		return auth.BearerToken{Token: token}, nil
	}
	return nil, err
}

// TokenEnvVar returns the fallback variable name for id: upper case, with
// everything but letters and digits replaced by underscores.
func TokenEnvVar(id string) string {
	return TokenEnvPrefix + strings.Map(func(r rune) rune {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			return unicode.ToUpper(r)
		}
		return '_'
	}, id)
}
