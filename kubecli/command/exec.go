package command

import (
	"context"
	"os"

	"github.com/MakeNowJust/heredoc"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"go.jetpack.io/kubecreds/kubecli/flags"
	"go.jetpack.io/kubecreds/kubecli/provider"
	"go.jetpack.io/kubecreds/kubecreds"
	"go.jetpack.io/kubecreds/pkg/cmdutil"
	"go.jetpack.io/kubecreds/pkg/jetlog"
)

func execCmd() *cobra.Command {
	stepFlags := &flags.StepFlags{}

	cmd := &cobra.Command{
		Use:   "exec [flags] -- command [args...]",
		Short: "Run a command with a temporary kubeconfig",
		Long: heredoc.Doc(`
			Builds a kubeconfig from the given credentials, points KUBECONFIG at it
			and runs the command. The file is removed when the command exits, fails
			or is interrupted.

			Credentials come from the flags when any is set, else from kubecreds.yaml.
			With neither, kubectl falls back to the pod's service account.
		`),
		Example: heredoc.Doc(`
			kubecreds exec --server https://k8s.example.com:6443 --credentials-id deployer -- kubectl apply -f app.yaml
			kubecreds exec -c deploy/kubecreds.yaml -- helm upgrade --install app ./chart
		`),
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExec(cmd, stepFlags, args)
		},
	}
	cmd.Flags().SetInterspersed(false)
	registerStepFlags(cmd, stepFlags)
	return cmd
}

func runExec(cmd *cobra.Command, stepFlags *flags.StepFlags, args []string) error {
	ctx := cmd.Context()
	log := buildLog(cmd)

	doc, restrict, err := buildKubeConfig(ctx, stepFlags, log)
	if err != nil {
		return err
	}

	scratchDir, cleanup, err := provider.ScratchDir(cmdOpts.Fs(), cmdOpts.RootFlags().ScratchDir)
	if err != nil {
		return err
	}
	defer func() {
		if err := cleanup(); err != nil {
			jetlog.Logger(ctx).WarningPrintf("failed to remove scratch directory %s: %v", scratchDir, err)
		}
	}()

	env := kubecreds.MapEnv{}
	lifecycle := kubecreds.NewLifecycle(cmdOpts.Fs(), scratchDir, env, log)
	return kubecreds.WithKubeConfig(ctx, lifecycle, doc, restrict, func(ctx context.Context, path string) error {
		logrus.Debugf("running %s with %s=%s", args[0], kubecreds.EnvVar, path)

		child := cmdutil.CommandTTY(ctx, env.Environ(os.Environ()), args[0], args[1:]...)
		child.Stdout = cmd.OutOrStdout()
		child.Stderr = cmd.ErrOrStderr()
		return errors.WithStack(child.Run())
	})
}
