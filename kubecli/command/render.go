package command

import (
	"github.com/MakeNowJust/heredoc"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.jetpack.io/kubecreds/goutil/errorutil"
	"go.jetpack.io/kubecreds/kubecli/flags"
	"go.jetpack.io/kubecreds/kubecreds/kubeconfig"
	"go.jetpack.io/kubecreds/kubecreds/semver"
)

// kubectl config view prints tokens as REDACTED starting with this version.
var redactTokensSince = semver.MustParse("1.19.0")

func renderCmd() *cobra.Command {
	stepFlags := &flags.StepFlags{}
	kubectlVersion := ""

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Print the kubeconfig that exec would use",
		Long: heredoc.Doc(`
			Prints the kubeconfig built from the given credentials to stdout without
			writing any file. Pass --kubectl-version to print it the way that kubectl
			version shows it in 'kubectl config view'.
		`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, _, err := buildKubeConfig(cmd.Context(), stepFlags, buildLog(cmd))
			if err != nil {
				return err
			}
			if kubectlVersion != "" {
				v, err := semver.Parse(kubectlVersion)
				if err != nil {
					return errorutil.AddUserMessagef(err, "invalid --kubectl-version %q", kubectlVersion)
				}
				if v.AtLeast(redactTokensSince) {
					doc = doc.Redacted()
				}
			}

			out, err := kubeconfig.Marshal(doc)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return errors.WithStack(err)
		},
	}
	registerStepFlags(cmd, stepFlags)
	cmd.Flags().StringVar(
		&kubectlVersion,
		"kubectl-version",
		"",
		"redact tokens the way this kubectl version does",
	)
	return cmd
}
