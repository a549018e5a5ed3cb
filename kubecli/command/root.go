package command

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/MakeNowJust/heredoc"
	"github.com/fatih/color"
	"github.com/getsentry/sentry-go"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.jetpack.io/kubecreds/goutil/errorutil"
	"go.jetpack.io/kubecreds/kubecli/flags"
	"go.jetpack.io/kubecreds/kubecli/provider"
	"go.jetpack.io/kubecreds/pkg/cmdutil"
	"golang.org/x/sys/unix"
)

// These options allow the CLI to be embedded with additional commands and
// providers backed by private services, such as a hosted credential store.
type cmdOptions interface {
	AdditionalCommands() []*cobra.Command
	CredentialStore() provider.CredentialStore
	ErrorLogger() provider.ErrorLogger
	Fs() afero.Fs
	RootCommand() *cobra.Command
	RootFlags() *flags.RootCmdFlags
	PersistentPreRunE(cmd *cobra.Command, args []string) error
}

// This is global for now (for expediency). We could pass these options down
// to every function that needs them.
var cmdOpts cmdOptions

func registerRootCmdFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().BoolVarP(
		&cmdOpts.RootFlags().Debug,
		"debug",
		"d",
		false,
		"print debug output",
	)
	cmd.PersistentFlags().StringVarP(
		&cmdOpts.RootFlags().ConfigFile,
		"config",
		"c",
		"",
		"path to kubecreds.yaml (default ./kubecreds.yaml, if present)",
	)
	cmd.PersistentFlags().StringVar(
		&cmdOpts.RootFlags().CredentialsFile,
		"credentials",
		"",
		"path to the credentials file (default $KUBECREDS_CREDENTIALS or ./credentials.yaml)",
	)
	cmd.PersistentFlags().StringVar(
		&cmdOpts.RootFlags().EnvFile,
		"env-file",
		"",
		"dotenv file with values for ${VAR} references in kubecreds.yaml",
	)
	cmd.PersistentFlags().StringVar(
		&cmdOpts.RootFlags().ScratchDir,
		"scratch-dir",
		"",
		"directory for temporary kubeconfig files (default $WORKSPACE_TMP, $RUNNER_TEMP or the OS temp dir)",
	)
}

func NewRootCmd(opts cmdOptions) *cobra.Command {
	cmdOpts = opts
	rootCmd := &cobra.Command{
		Use:   "kubecreds",
		Short: "Run kubectl with short-lived, build-scoped credentials",
		Long: heredoc.Doc(`
			kubecreds builds a kubeconfig from stored credentials, writes it to a
			build-private temporary file, exposes it through KUBECONFIG and removes
			it again once the wrapped command finishes.
		`),
		// If an error occurs then cobra will print the Usage (i.e. --help)
		// but we don't want that. This still prints usage if user types
		// --help, or `kubecreds help <cmd>`.
		SilenceUsage: true,
		// We print the error via special handling in the Execute() function
		// so we silence it here. If this were false, then we would
		// double-print the error message.
		SilenceErrors:     true,
		PersistentPreRunE: persistentPreRunE,
		RunE: func(cmd *cobra.Command, args []string) error {
			return errors.WithStack(cmd.Help())
		},
	}

	rootCmd.AddCommand(
		execCmd(),
		renderCmd(),
		versionCmd(),
	)

	rootCmd.AddCommand(cmdOpts.AdditionalCommands()...)

	registerRootCmdFlags(rootCmd)

	rootCmd.CompletionOptions.HiddenDefaultCmd = true

	return rootCmd
}

// Execute is the entry point for CLI app.
func Execute(ctx context.Context, opts cmdOptions) {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, unix.SIGTERM)
	defer stop()

	span := sentry.StartSpan(ctx, "cliCommand")
	err := opts.RootCommand().ExecuteContext(ctx)
	span.Finish()

	if err == nil {
		return
	}

	// The wrapped command already reported its failure; pass its status on.
	if code := cmdutil.ExitCode(err); code > 0 {
		stop()
		os.Exit(code)
	}

	cmdOpts.ErrorLogger().CaptureException(err)
	if opts.RootFlags().Debug {
		stackTrace := errorutil.EarliestStackTrace(err)
		errChainMsg := fmt.Sprintf("Error chain is:\n\t %s.\n\n", err.Error())
		if stackTrace != nil {
			log.Fatalf("%sStacktrace:\n%+v\n", errChainMsg, stackTrace)
		} else {
			log.Fatalf(
				"%sFailed to get Stacktrace:\n%+v\n",
				errChainMsg,
				errors.Cause(err),
			)
		}
	}

	if cmdOpts.ErrorLogger().DisplayException(err) {
		// Error was displayed, but we still want to exit with non-zero code.
		os.Exit(1)
	}

	// Interrupts are not failures of the credentials or the build, so they
	// get a short message. Kubeconfig files were already disposed of.
	if errors.Is(err, context.Canceled) {
		fmt.Fprintln(os.Stderr, "ABORT: Operation cancelled by user interruption.")
		stop()
		os.Exit(1)
	}

	// errors: normal golang errors
	// combined: golang error + user friendly error to display
	// user: no golang error cause, just a user error we created.
	if msg := errorutil.GetUserErrorMessage(err); msg != "" {
		color.New(color.FgRed).Fprintf(
			os.Stderr,
			"\nError: %s\n\nCaused by:\n\n %s\n\nRun with --debug for more information\n",
			msg,
			err,
		)
		os.Exit(1)
	}
	log.Fatalf(
		"ABORT: There was an error. The cause is:\n\t %s. \n"+
			"Run with --debug for more information",
		err,
	)
}

func persistentPreRunE(cmd *cobra.Command, args []string) error {
	if cmdOpts.RootFlags().Debug {
		logrus.SetLevel(logrus.DebugLevel)
	}
	return cmdOpts.PersistentPreRunE(cmd, args)
}
