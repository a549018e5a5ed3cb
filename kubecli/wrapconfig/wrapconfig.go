// Package wrapconfig loads kubecreds.yaml, the project file that lists the
// credentials a build step binds:
//
//	restrictKubeConfigAccess: true
//	defaults:
//	  serverUrl: https://${CLUSTER}.example.com:6443
//	  caCertificateFile: certs/ca.pem
//	credentials:
//	- credentialsId: deployer
//	  namespace: web
//	- credentialsId: ops
//	  contextName: ops
//
// Fields left blank in an entry are filled from defaults. ${VAR} references
// are resolved against the process environment and the optional env file.
package wrapconfig

import (
	"path/filepath"

	"github.com/imdario/mergo"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"go.jetpack.io/kubecreds/goutil/fileutil"
	"go.jetpack.io/kubecreds/kubecreds"
	"gopkg.in/yaml.v3"
)

var ErrConfigNotFound = errors.New("kubecreds config not found")

type Config struct {
	RestrictKubeConfigAccess bool         `yaml:"restrictKubeConfigAccess,omitempty"`
	Defaults                 Credential   `yaml:"defaults,omitempty"`
	Credentials              []Credential `yaml:"credentials,omitempty"`

	path string
}

// Credential is one entry of the credentials list. CACertificateFile is read
// when CACertificate is blank.
type Credential struct {
	kubecreds.Overrides `yaml:",inline"`
	CACertificateFile   string `yaml:"caCertificateFile,omitempty"`
}

// Load reads the config at path. ErrConfigNotFound is returned when there is
// no such file.
func Load(fs afero.Fs, path string) (*Config, error) {
	exists, err := fileutil.FileExists(fs, path)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, errors.Wrap(ErrConfigNotFound, path)
	}

	contents, err := fileutil.ReadFileString(fs, path)
	if err != nil {
		return nil, err
	}
	cfg := &Config{path: path}
	if err := yaml.Unmarshal([]byte(contents), cfg); err != nil {
		return nil, errors.Wrapf(err, "failed to parse %s", path)
	}
	return cfg, nil
}

// Overrides returns the entries in file order with defaults merged in and
// variables expanded.
func (c *Config) Overrides(fs afero.Fs, vars Vars) ([]kubecreds.Overrides, error) {
	result := make([]kubecreds.Overrides, 0, len(c.Credentials))
	for i, cred := range c.Credentials {
		merged := cred
		if err := mergo.Merge(&merged, c.Defaults); err != nil {
			return nil, errors.Wrapf(err, "failed to apply defaults to credential #%d", i+1)
		}

		o := merged.Overrides.Expand(vars.Lookup)
		if o.CACertificate == "" && merged.CACertificateFile != "" {
			ca, err := c.readCA(fs, vars.Expand(merged.CACertificateFile))
			if err != nil {
				return nil, errors.Wrapf(err, "credential %q", o.CredentialID)
			}
			o.CACertificate = ca
		}
		result = append(result, o)
	}
	return result, nil
}

func (c *Config) readCA(fs afero.Fs, path string) (string, error) {
	if !filepath.IsAbs(path) {
		path = filepath.Join(filepath.Dir(c.path), path)
	}
	return fileutil.ReadFileString(fs, path)
}

// Path returns the file the config was loaded from.
func (c *Config) Path() string {
	return c.path
}
