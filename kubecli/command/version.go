package command

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.jetpack.io/kubecreds/pkg/buildstamp"
)

const binaryName = "kubecreds"

func versionCmd() *cobra.Command {
	verboseFlag := false
	shortFlag := false

	var versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Prints the version number",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			v := buildstamp.Get().Version()
			if shortFlag {
				_, err := fmt.Fprintln(w, v)
				return errors.WithStack(err)
			}
			fmt.Fprintf(w, "%v %v\n", binaryName, v)
			if verboseFlag {
				buildstamp.PrintVerboseVersion(w)
			}
			return nil
		},
	}
	versionCmd.Flags().BoolVarP(
		&verboseFlag,
		"verbose",
		"v",
		false, // value
		"Set to true for verbose output",
	)
	versionCmd.Flags().BoolVarP(
		&shortFlag,
		"short",
		"s",
		false, // value
		"Set to true for short output",
	)
	return versionCmd
}
