package mock

import (
	"context"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.jetpack.io/kubecreds/kubecli/flags"
	"go.jetpack.io/kubecreds/kubecli/provider"
	"go.jetpack.io/kubecreds/kubecreds"
	"go.jetpack.io/kubecreds/kubecreds/auth"
)

type MockCmdOptions struct {
	RootCMDFlags *flags.RootCmdFlags
	FS           afero.Fs
	Credentials  MapStore
}

func (*MockCmdOptions) AdditionalCommands() []*cobra.Command {
	return nil
}

func (m *MockCmdOptions) CredentialStore() provider.CredentialStore {
	if m.Credentials == nil {
		return nil
	}
	return m.Credentials
}

func (*MockCmdOptions) ErrorLogger() provider.ErrorLogger {
	return &provider.NoOpLogger{}
}

func (m *MockCmdOptions) Fs() afero.Fs {
	return m.FS
}

func (*MockCmdOptions) RootCommand() *cobra.Command {
	return nil
}

func (m *MockCmdOptions) RootFlags() *flags.RootCmdFlags {
	return m.RootCMDFlags
}

func (*MockCmdOptions) PersistentPreRunE(cmd *cobra.Command, args []string) error {
	return nil
}

// MapStore is an in-memory credential store.
type MapStore map[string]auth.Material

func (s MapStore) Lookup(_ context.Context, id string) (auth.Material, error) {
	if m, ok := s[id]; ok {
		return m, nil
	}
	return nil, errors.Wrapf(kubecreds.ErrUnknownCredential, "%q", id)
}
