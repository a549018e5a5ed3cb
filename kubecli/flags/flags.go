package flags

import "os"

const (
	defaultConfigFile      = "kubecreds.yaml"
	defaultCredentialsFile = "credentials.yaml"
)

type RootCmdFlags struct {
	Debug           bool
	ConfigFile      string
	CredentialsFile string
	EnvFile         string
	ScratchDir      string
}

// ConfigFileOrDefault returns --config, or kubecreds.yaml in the working
// directory. The default is allowed to be missing.
func (f *RootCmdFlags) ConfigFileOrDefault() (path string, explicit bool) {
	if f.ConfigFile != "" {
		return f.ConfigFile, true
	}
	return defaultConfigFile, false
}

// CredentialsFileOrDefault returns --credentials, else $KUBECREDS_CREDENTIALS,
// else credentials.yaml in the working directory.
func (f *RootCmdFlags) CredentialsFileOrDefault() (path string, explicit bool) {
	if f.CredentialsFile != "" {
		return f.CredentialsFile, true
	}
	if env := os.Getenv("KUBECREDS_CREDENTIALS"); env != "" {
		return env, true
	}
	return defaultCredentialsFile, false
}

// StepFlags describe a single credential on the command line.
type StepFlags struct {
	ServerURL         string
	CredentialID      string
	CACertificate     string
	CACertificateFile string
	ClusterName       string
	ContextName       string
	Namespace         string
	RestrictAccess    bool
}

// IsSet reports whether any credential field was given.
func (f *StepFlags) IsSet() bool {
	return f.ServerURL != "" || f.CredentialID != "" || f.CACertificate != "" ||
		f.CACertificateFile != "" || f.ClusterName != "" || f.ContextName != "" ||
		f.Namespace != ""
}
