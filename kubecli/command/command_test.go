package command

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/suite"
	"go.jetpack.io/kubecreds/goutil/errorutil"
	"go.jetpack.io/kubecreds/kubecli/command/mock"
	"go.jetpack.io/kubecreds/kubecli/flags"
	"go.jetpack.io/kubecreds/kubecreds"
	"go.jetpack.io/kubecreds/kubecreds/auth"
	"go.jetpack.io/kubecreds/pkg/cmdutil"
)

type Suite struct {
	suite.Suite
	opts   *mock.MockCmdOptions
	stdout *bytes.Buffer
	stderr *bytes.Buffer
}

func TestSuite(t *testing.T) {
	suite.Run(t, &Suite{})
}

func (s *Suite) SetupTest() {
	s.opts = &mock.MockCmdOptions{
		RootCMDFlags: &flags.RootCmdFlags{},
		FS:           afero.NewMemMapFs(),
		Credentials: mock.MapStore{
			"test-credential": auth.UsernamePassword{Username: "bob", Password: "s3cr3t"},
			"token-a":         auth.BearerToken{Token: "token-a-secret"},
			"token-b":         auth.BearerToken{Token: "token-b-secret"},
		},
	}
	s.stdout = &bytes.Buffer{}
	s.stderr = &bytes.Buffer{}
}

func (s *Suite) run(args ...string) error {
	root := NewRootCmd(s.opts)
	root.SetArgs(args)
	root.SetOut(s.stdout)
	root.SetErr(s.stderr)
	return root.ExecuteContext(context.Background())
}

func (s *Suite) writeFile(path, contents string) {
	s.Require().NoError(afero.WriteFile(s.opts.FS, path, []byte(contents), 0o644))
}

func (s *Suite) TestRenderFromFlags() {
	err := s.run("render", "--server", "https://localhost:6443", "--credentials-id", "test-credential")
	s.Require().NoError(err)
	s.Equal(`apiVersion: v1
clusters:
- cluster:
    insecure-skip-tls-verify: true
    server: https://localhost:6443
  name: k8s
contexts:
- context:
    cluster: k8s
    user: test-credential
  name: k8s
current-context: k8s
kind: Config
preferences: {}
users:
- name: test-credential
  user:
    password: s3cr3t
    username: bob
`, s.stdout.String())
}

func (s *Suite) TestRenderInCluster() {
	s.Require().NoError(s.run("render", "--namespace", "web"))
	s.Contains(s.stdout.String(), "contexts:\n- context:\n    namespace: web\n  name: k8s\n")
	s.Contains(s.stdout.String(), "clusters: []\n")
}

func (s *Suite) TestRenderWithoutConfigIsInCluster() {
	s.Require().NoError(s.run("render"))
	s.Contains(s.stdout.String(), "- context: {}\n  name: k8s\n")
}

const multiCredentialConfig = `
defaults:
  serverUrl: https://${CLUSTER_HOST}:6443
credentials:
- credentialsId: token-a
  clusterName: cluster-a
  contextName: context-a
- credentialsId: token-b
  clusterName: cluster-b
  contextName: context-b
`

func (s *Suite) TestRenderMultipleCredentials() {
	s.writeFile("/project/kubecreds.yaml", multiCredentialConfig)
	s.writeFile("/project/.env", "CLUSTER_HOST=k8s.example.com\n")

	err := s.run("render", "-c", "/project/kubecreds.yaml", "--env-file", "/project/.env")
	s.Require().NoError(err)
	s.Equal(`apiVersion: v1
clusters:
- cluster:
    insecure-skip-tls-verify: true
    server: https://k8s.example.com:6443
  name: cluster-a
- cluster:
    insecure-skip-tls-verify: true
    server: https://k8s.example.com:6443
  name: cluster-b
contexts:
- context:
    cluster: cluster-a
    user: token-a
  name: context-a
- context:
    cluster: cluster-b
    user: token-b
  name: context-b
current-context: context-a
kind: Config
preferences: {}
users:
- name: token-a
  user:
    token: token-a-secret
- name: token-b
  user:
    token: token-b-secret
`, s.stdout.String())
}

func (s *Suite) TestRenderRedactsByKubectlVersion() {
	s.writeFile("/project/kubecreds.yaml", multiCredentialConfig)

	s.Require().NoError(s.run("render", "-c", "/project/kubecreds.yaml", "--kubectl-version", "v1.19.3"))
	s.Contains(s.stdout.String(), "token: REDACTED")
	s.NotContains(s.stdout.String(), "token-a-secret")

	s.stdout.Reset()
	s.Require().NoError(s.run("render", "-c", "/project/kubecreds.yaml", "--kubectl-version", "1.18.20"))
	s.Contains(s.stdout.String(), "token: token-a-secret")

	err := s.run("render", "-c", "/project/kubecreds.yaml", "--kubectl-version", "latest")
	s.Contains(errorutil.GetUserErrorMessage(err), "invalid --kubectl-version")
}

func (s *Suite) TestRenderUnknownCredential() {
	err := s.run("render", "--server", "https://localhost:6443", "--credentials-id", "nope")
	s.ErrorIs(err, kubecreds.ErrUnknownCredential)
	s.Contains(errorutil.GetUserErrorMessage(err), `credential "nope" is not defined`)
	s.Empty(s.stdout.String())
}

func (s *Suite) TestRenderExplicitConfigMissing() {
	err := s.run("render", "-c", "/project/missing.yaml")
	s.Contains(errorutil.GetUserErrorMessage(err), "could not load /project/missing.yaml")
}

func (s *Suite) TestExec() {
	s.opts.FS = afero.NewOsFs()
	scratch := s.T().TempDir()

	err := s.run(
		"exec", "--scratch-dir", scratch,
		"--server", "https://localhost:6443", "--credentials-id", "test-credential",
		"--", "sh", "-c", `cat "$KUBECONFIG"`,
	)
	s.Require().NoError(err)
	s.Contains(s.stdout.String(), "server: https://localhost:6443\n")
	s.Contains(s.stderr.String(), "[kubernetes-cli] kubectl configuration cleaned up\n")

	entries, err := os.ReadDir(scratch)
	s.Require().NoError(err)
	s.Empty(entries)
}

func (s *Suite) TestExecFailureStillCleansUp() {
	s.opts.FS = afero.NewOsFs()
	scratch := s.T().TempDir()

	err := s.run("exec", "--scratch-dir", scratch, "--restrict-access", "--", "sh", "-c", "exit 3")
	s.Equal(3, cmdutil.ExitCode(err))

	entries, readErr := os.ReadDir(scratch)
	s.Require().NoError(readErr)
	s.Empty(entries)
	s.Contains(s.stderr.String(), "cleaned up")
}

func (s *Suite) TestExecWithoutScratchDirUsesPrivateDir() {
	s.opts.FS = afero.NewOsFs()
	s.T().Setenv("WORKSPACE_TMP", "")
	s.T().Setenv("RUNNER_TEMP", "")

	err := s.run(
		"exec", "--server", "https://localhost:6443", "--credentials-id", "test-credential",
		"--", "sh", "-c", `dirname "$KUBECONFIG"`,
	)
	s.Require().NoError(err)

	dir := strings.TrimSpace(s.stdout.String())
	s.Equal(filepath.Clean(os.TempDir()), filepath.Dir(dir))
	s.True(strings.HasPrefix(filepath.Base(dir), "kubecreds-"))
	_, statErr := os.Stat(dir)
	s.True(os.IsNotExist(statErr))
}

func (s *Suite) TestExecRequiresCommand() {
	s.Error(s.run("exec"))
}

func (s *Suite) TestVersion() {
	s.Require().NoError(s.run("version", "--short"))
	s.Equal("0.0.0-dev\n", s.stdout.String())
}

func (s *Suite) TestRenderInvalidNamespace() {
	err := s.run("render", "--server", "https://localhost:6443", "--namespace", "Not_Valid")
	s.Contains(errorutil.GetUserErrorMessage(err), "invalid namespace")
}
