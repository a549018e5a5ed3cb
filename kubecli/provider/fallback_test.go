package provider

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.jetpack.io/kubecreds/kubecreds"
	"go.jetpack.io/kubecreds/kubecreds/auth"
)

type mapStore map[string]auth.Material

func (m mapStore) Lookup(_ context.Context, id string) (auth.Material, error) {
	if id == "broken" {
		return nil, errors.New("store unavailable")
	}
	if material, ok := m[id]; ok {
		return material, nil
	}
	return nil, errors.Wrap(kubecreds.ErrUnknownCredential, id)
}

func TestFallbackStore(t *testing.T) {
	env := map[string]string{
		"KUBECREDS_TOKEN_CI_DEPLOYER": "from-env",
		"KUBECREDS_TOKEN_PRIMARY":     "shadowed",
		"KUBECREDS_TOKEN_EMPTY":       "",
	}
	store := NewFallbackStore(mapStore{"primary": auth.UsernamePassword{Username: "bob"}})
	store.lookupEnv = func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
	ctx := context.Background()

	m, err := store.Lookup(ctx, "primary")
	require.NoError(t, err)
	assert.Equal(t, auth.UsernamePassword{Username: "bob"}, m)

	m, err = store.Lookup(ctx, "ci-deployer")
	require.NoError(t, err)
	assert.Equal(t, auth.BearerToken{Token: "from-env"}, m)

	_, err = store.Lookup(ctx, "empty")
	assert.ErrorIs(t, err, kubecreds.ErrUnknownCredential)

	_, err = store.Lookup(ctx, "broken")
	assert.EqualError(t, err, "store unavailable")
}

func TestTokenEnvVar(t *testing.T) {
	assert.Equal(t, "KUBECREDS_TOKEN_CI_DEPLOYER", TokenEnvVar("ci-deployer"))
	assert.Equal(t, "KUBECREDS_TOKEN_PROD_EU_1", TokenEnvVar("prod.eu/1"))
}
