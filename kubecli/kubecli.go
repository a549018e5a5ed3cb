// Copyright 2022 Jetpack Technologies Inc and contributors. All rights reserved.
// Use of this source code is governed by the license in the LICENSE file.

package kubecli

import (
	"context"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.jetpack.io/kubecreds/kubecli/command"
	"go.jetpack.io/kubecreds/kubecli/flags"
	"go.jetpack.io/kubecreds/kubecli/provider"
)

type Kubecli struct {
	additionalCommands []*cobra.Command
	credentialStore    provider.CredentialStore
	errorLogger        provider.ErrorLogger
	fs                 afero.Fs
	persistentPreRunE  func(cmd *cobra.Command, args []string) error
	rootCommand        *cobra.Command
	rootFlags          *flags.RootCmdFlags
}

type Option func(*Kubecli)

func New(opts ...Option) *Kubecli {
	k := &Kubecli{
		errorLogger: &provider.NoOpLogger{},
		fs:          afero.NewOsFs(),
		rootFlags:   &flags.RootCmdFlags{},
	}
	for _, opt := range opts {
		opt(k)
	}
	return k
}

func (k *Kubecli) Run(ctx context.Context) {
	command.Execute(ctx, k)
}

// CredentialStore returns the store set with WithCredentialStore, or nil to
// let commands read the credentials file named by the root flags.
func (k *Kubecli) CredentialStore() provider.CredentialStore {
	return k.credentialStore
}

func (k *Kubecli) ErrorLogger() provider.ErrorLogger {
	return k.errorLogger
}

func (k *Kubecli) Fs() afero.Fs {
	return k.fs
}

func (k *Kubecli) RootFlags() *flags.RootCmdFlags {
	return k.rootFlags
}

func (k *Kubecli) RootCommand() *cobra.Command {
	if k.rootCommand == nil {
		k.rootCommand = command.NewRootCmd(k)
	}
	return k.rootCommand
}

func (k *Kubecli) AdditionalCommands() []*cobra.Command {
	return k.additionalCommands
}

func (k *Kubecli) PersistentPreRunE(cmd *cobra.Command, args []string) error {
	if k == nil || k.persistentPreRunE == nil {
		return nil
	}
	return k.persistentPreRunE(cmd, args)
}

// Options
type cmdFunc func(k *Kubecli) *cobra.Command

func WithAdditionalCommands(cmds ...cmdFunc) Option {
	return func(k *Kubecli) {
		for _, cmd := range cmds {
			k.additionalCommands = append(k.additionalCommands, cmd(k))
		}
	}
}

func WithCredentialStore(store provider.CredentialStore) Option {
	return func(k *Kubecli) {
		k.credentialStore = store
	}
}

func WithErrorLogger(logger provider.ErrorLogger) Option {
	return func(k *Kubecli) {
		k.errorLogger = logger
	}
}

func WithFs(fs afero.Fs) Option {
	return func(k *Kubecli) {
		k.fs = fs
	}
}

func WithPersistentPreRunE(r func(cmd *cobra.Command, args []string) error) Option {
	return func(k *Kubecli) {
		k.persistentPreRunE = r
	}
}
