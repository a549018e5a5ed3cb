package command

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"go.jetpack.io/kubecreds/goutil/errorutil"
	"go.jetpack.io/kubecreds/goutil/fileutil"
	"go.jetpack.io/kubecreds/kubecli/flags"
	"go.jetpack.io/kubecreds/kubecli/provider"
	"go.jetpack.io/kubecreds/kubecli/wrapconfig"
	"go.jetpack.io/kubecreds/kubecreds"
	"go.jetpack.io/kubecreds/kubecreds/kubeconfig"
	"go.jetpack.io/kubecreds/pkg/jetlog"
	"go.jetpack.io/kubecreds/pkg/kubevalidate"
	"golang.org/x/sync/errgroup"
)

func registerStepFlags(cmd *cobra.Command, f *flags.StepFlags) {
	cmd.Flags().StringVar(&f.ServerURL, "server", "", "Kubernetes API server URL")
	cmd.Flags().StringVar(&f.CredentialID, "credentials-id", "", "id of the credential to bind")
	cmd.Flags().StringVar(&f.CACertificate, "ca-certificate", "", "CA certificate of the API server, PEM")
	cmd.Flags().StringVar(&f.CACertificateFile, "ca-certificate-file", "", "file holding the CA certificate of the API server")
	cmd.Flags().StringVar(&f.ClusterName, "cluster-name", "", "name of the generated cluster (default k8s)")
	cmd.Flags().StringVar(&f.ContextName, "context-name", "", "name of the generated context (default k8s)")
	cmd.Flags().StringVarP(&f.Namespace, "namespace", "n", "", "namespace of the generated context")
	cmd.Flags().BoolVar(
		&f.RestrictAccess,
		"restrict-access",
		false,
		"make the kubeconfig file readable by its owner only",
	)
}

// buildKubeConfig resolves the credentials of a step and aggregates them into
// one document. The second result tells whether file access must be
// restricted.
func buildKubeConfig(
	ctx context.Context,
	f *flags.StepFlags,
	buildLog *jetlog.BuildLog,
) (*kubeconfig.Config, bool, error) {
	overrides, restrict, err := stepOverrides(f)
	if err != nil {
		return nil, false, err
	}
	for _, o := range overrides {
		if err := kubevalidate.ValidateNamespace(strings.TrimSpace(o.Namespace)); err != nil {
			return nil, false, errorutil.AddUserMessagef(err, "credential %q has an invalid namespace", o.CredentialID)
		}
	}
	reqs, err := resolveRequests(ctx, credentialStore(), overrides)
	if err != nil {
		return nil, false, err
	}
	doc, err := kubecreds.NewWriter(buildLog).Aggregate(ctx, reqs)
	return doc, restrict, err
}

// stepOverrides returns the credentials from the command line when any step
// flag is set, else the entries of kubecreds.yaml. Without either a single
// empty entry is returned, which selects the in-cluster service account.
func stepOverrides(f *flags.StepFlags) ([]kubecreds.Overrides, bool, error) {
	fs := cmdOpts.Fs()
	vars, err := wrapconfig.LoadVars(fs, cmdOpts.RootFlags().EnvFile)
	if err != nil {
		return nil, false, errorutil.CombinedError(err, errorutil.NewUserError("could not read --env-file"))
	}

	if f.IsSet() {
		o := kubecreds.Overrides{
			ServerURL:     f.ServerURL,
			CredentialID:  f.CredentialID,
			CACertificate: f.CACertificate,
			ClusterName:   f.ClusterName,
			ContextName:   f.ContextName,
			Namespace:     f.Namespace,
		}.Expand(vars.Lookup)
		if o.CACertificate == "" && f.CACertificateFile != "" {
			ca, err := fileutil.ReadFileString(fs, vars.Expand(f.CACertificateFile))
			if err != nil {
				return nil, false, errorutil.AddUserMessagef(err, "could not read CA certificate")
			}
			o.CACertificate = ca
		}
		return []kubecreds.Overrides{o}, f.RestrictAccess, nil
	}

	path, explicit := cmdOpts.RootFlags().ConfigFileOrDefault()
	cfg, err := wrapconfig.Load(fs, path)
	if errors.Is(err, wrapconfig.ErrConfigNotFound) && !explicit {
		logrus.Debugf("no %s found, using the in-cluster service account", path)
		return []kubecreds.Overrides{{}}, f.RestrictAccess, nil
	} else if err != nil {
		return nil, false, errorutil.AddUserMessagef(err, "could not load %s", path)
	}

	overrides, err := cfg.Overrides(fs, vars)
	if err != nil {
		return nil, false, errorutil.AddUserMessagef(err, "invalid credentials in %s", path)
	}
	if len(overrides) == 0 {
		overrides = []kubecreds.Overrides{{}}
	}
	return overrides, f.RestrictAccess || cfg.RestrictKubeConfigAccess, nil
}

// credentialStore returns the embedder's store, or the credentials file with
// environment variable fallback.
func credentialStore() provider.CredentialStore {
	if store := cmdOpts.CredentialStore(); store != nil {
		return store
	}

	path, explicit := cmdOpts.RootFlags().CredentialsFileOrDefault()
	exists, err := fileutil.FileExists(cmdOpts.Fs(), path)
	if explicit || (err == nil && exists) {
		return provider.NewFallbackStore(provider.NewFileStore(cmdOpts.Fs(), path))
	}
	return provider.NewFallbackStore(provider.EmptyStore{})
}

// resolveRequests looks up the material of every credential. Lookups run
// concurrently; the result keeps the order of overrides.
func resolveRequests(
	ctx context.Context,
	store provider.CredentialStore,
	overrides []kubecreds.Overrides,
) ([]kubecreds.Request, error) {
	reqs := make([]kubecreds.Request, len(overrides))
	g, ctx := errgroup.WithContext(ctx)
	for i, o := range overrides {
		i, o := i, o
		reqs[i].Overrides = o
		id := strings.TrimSpace(o.CredentialID)
		if id == "" {
			continue
		}
		g.Go(func() error {
			m, err := store.Lookup(ctx, id)
			if errors.Is(err, kubecreds.ErrUnknownCredential) {
				return errorutil.CombinedError(
					err,
					errorutil.NewUserErrorf(
						"credential %q is not defined. Add it to the credentials file or set %s",
						id,
						provider.TokenEnvVar(id),
					),
				)
			} else if err != nil {
				return errors.Wrapf(err, "failed to look up credential %q", id)
			}
			reqs[i].Material = m
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reqs, nil
}

func buildLog(cmd *cobra.Command) *jetlog.BuildLog {
	return jetlog.NewBuildLog(cmd.ErrOrStderr())
}
