package wrapconfig

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.jetpack.io/kubecreds/kubecreds"
)

const projectYaml = `
restrictKubeConfigAccess: true
defaults:
  serverUrl: https://${CLUSTER}.example.com:6443
  caCertificateFile: certs/ca.pem
  namespace: default
credentials:
- credentialsId: deployer
  namespace: web
- credentialsId: ops
  serverUrl: https://ops:6443
  caCertificate: inline-ca
  contextName: ${UNSET}
`

type Suite struct {
	suite.Suite
	fs afero.Fs
}

func TestSuite(t *testing.T) {
	suite.Run(t, &Suite{})
}

func (s *Suite) SetupTest() {
	s.fs = afero.NewMemMapFs()
	s.Require().NoError(afero.WriteFile(s.fs, "/project/kubecreds.yaml", []byte(projectYaml), 0o644))
	s.Require().NoError(afero.WriteFile(s.fs, "/project/certs/ca.pem", []byte("file-ca"), 0o644))
	s.Require().NoError(afero.WriteFile(s.fs, "/project/.env", []byte("CLUSTER=prod\n# comment\nTOKEN=\"quoted value\"\n"), 0o644))
}

func (s *Suite) TestLoad() {
	cfg, err := Load(s.fs, "/project/kubecreds.yaml")
	s.Require().NoError(err)

	s.True(cfg.RestrictKubeConfigAccess)
	s.Equal("/project/kubecreds.yaml", cfg.Path())
	s.Len(cfg.Credentials, 2)
	s.Equal("certs/ca.pem", cfg.Defaults.CACertificateFile)
}

func (s *Suite) TestLoadMissing() {
	_, err := Load(s.fs, "/project/missing.yaml")
	s.ErrorIs(err, ErrConfigNotFound)
}

func (s *Suite) TestLoadInvalid() {
	s.Require().NoError(afero.WriteFile(s.fs, "/bad.yaml", []byte("credentials: {"), 0o644))
	_, err := Load(s.fs, "/bad.yaml")
	s.ErrorContains(err, "failed to parse /bad.yaml")
}

func (s *Suite) TestOverrides() {
	cfg, err := Load(s.fs, "/project/kubecreds.yaml")
	s.Require().NoError(err)
	vars, err := LoadVars(s.fs, "/project/.env")
	s.Require().NoError(err)

	overrides, err := cfg.Overrides(s.fs, vars)
	s.Require().NoError(err)
	s.Equal([]kubecreds.Overrides{
		{
			ServerURL:     "https://prod.example.com:6443",
			CredentialID:  "deployer",
			CACertificate: "file-ca",
			Namespace:     "web",
		},
		{
			ServerURL:     "https://ops:6443",
			CredentialID:  "ops",
			CACertificate: "inline-ca",
			ContextName:   "${UNSET}",
			Namespace:     "default",
		},
	}, overrides)
}

func (s *Suite) TestOverridesMissingCAFile() {
	s.Require().NoError(s.fs.Remove("/project/certs/ca.pem"))
	cfg, err := Load(s.fs, "/project/kubecreds.yaml")
	s.Require().NoError(err)

	_, err = cfg.Overrides(s.fs, Vars{})
	s.ErrorContains(err, `credential "deployer"`)
}

func TestLoadVars(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/.env", []byte("HOME=/from/file\nEXTRA=1\n"), 0o644))
	t.Setenv("KUBECREDS_TEST_VAR", "from-env")

	vars, err := LoadVars(fs, "/.env")
	require.NoError(t, err)
	assert.Equal(t, "from-env", vars["KUBECREDS_TEST_VAR"])
	assert.Equal(t, "/from/file", vars["HOME"])
	assert.Equal(t, "1", vars["EXTRA"])

	_, err = LoadVars(fs, "/missing.env")
	assert.ErrorContains(t, err, "/missing.env")
}

func TestVarsExpand(t *testing.T) {
	vars := Vars{"NAME": "ca"}
	assert.Equal(t, "certs/ca.pem", vars.Expand("certs/${NAME}.pem"))
	assert.Equal(t, "certs/${OTHER}.pem", vars.Expand("certs/$OTHER.pem"))
}
