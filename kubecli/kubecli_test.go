package kubecli

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"go.jetpack.io/kubecreds/kubecli/provider"
)

func TestNewDefaults(t *testing.T) {
	k := New()
	assert.IsType(t, &afero.OsFs{}, k.Fs())
	assert.IsType(t, &provider.NoOpLogger{}, k.ErrorLogger())
	assert.Nil(t, k.CredentialStore())
	assert.NoError(t, k.PersistentPreRunE(nil, nil))
}

func TestOptions(t *testing.T) {
	fs := afero.NewMemMapFs()
	store := provider.EmptyStore{}
	called := false

	k := New(
		WithFs(fs),
		WithCredentialStore(store),
		WithErrorLogger(&provider.SentryLogger{}),
		WithPersistentPreRunE(func(*cobra.Command, []string) error {
			called = true
			return nil
		}),
		WithAdditionalCommands(func(*Kubecli) *cobra.Command {
			return &cobra.Command{Use: "whoami"}
		}),
	)

	assert.Same(t, fs, k.Fs())
	assert.Equal(t, store, k.CredentialStore())
	assert.IsType(t, &provider.SentryLogger{}, k.ErrorLogger())
	assert.NoError(t, k.PersistentPreRunE(nil, nil))
	assert.True(t, called)

	var names []string
	for _, c := range k.RootCommand().Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"exec", "render", "version", "whoami"}, names)
}
