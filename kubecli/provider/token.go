package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"go.jetpack.io/kubecreds/kubecli/terminal"
	"go.jetpack.io/kubecreds/kubecreds/auth"
	"go.jetpack.io/kubecreds/pkg/jetlog"
	clientauthv1 "k8s.io/client-go/pkg/apis/clientauthentication/v1"
)

// Variables set for token commands, in addition to the standard
// KUBERNETES_EXEC_INFO used by kubectl credential plugins.
const (
	execInfoEnv         = "KUBERNETES_EXEC_INFO"
	serverEnv           = "KUBECREDS_SERVER"
	caCertificateEnv    = "KUBECREDS_CA_CERTIFICATE"
	insecureSkipTLSEnv  = "KUBECREDS_INSECURE_SKIP_TLS_VERIFY"
	execCredentialGroup = "client.authentication.k8s.io/v1"
)

var errEmptyToken = errors.New("token command produced no token")

// ExecTokenProducer mints bearer tokens by running a command. The command
// prints either the raw token or an ExecCredential object, which makes
// kubectl credential plugins such as `aws eks get-token` usable as is.
type ExecTokenProducer struct {
	Command []string
	Dir     string
}

var _ auth.TokenProducer = (*ExecTokenProducer)(nil)

func (p *ExecTokenProducer) Token(ctx context.Context, req auth.TokenRequest) (string, error) {
	if len(p.Command) == 0 {
		return "", errors.New("token command is empty")
	}
	execInfo, err := execCredentialInfo(req)
	if err != nil {
		return "", err
	}

	cmd := exec.CommandContext(ctx, p.Command[0], p.Command[1:]...)
	cmd.Dir = p.Dir
	cmd.Env = append(
		os.Environ(),
		execInfoEnv+"="+execInfo,
		serverEnv+"="+req.ServerURL,
		caCertificateEnv+"="+req.CACertificate,
		insecureSkipTLSEnv+"="+strconv.FormatBool(req.InsecureSkipTLSVerify),
	)
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = os.Stderr

	run := func() { err = cmd.Run() }
	if terminal.IsInteractive() {
		jetlog.Logger(ctx).WithSpinnerFuncPrint(run, "Requesting token for "+req.ServerURL)
	} else {
		run()
	}
	if err != nil {
		return "", errors.Wrapf(err, "token command %q failed", p.Command[0])
	}
	return parseTokenOutput(stdout.String())
}

func execCredentialInfo(req auth.TokenRequest) (string, error) {
	cred := clientauthv1.ExecCredential{
		Spec: clientauthv1.ExecCredentialSpec{
			Cluster: &clientauthv1.Cluster{
				Server:                   req.ServerURL,
				InsecureSkipTLSVerify:    req.InsecureSkipTLSVerify,
				CertificateAuthorityData: []byte(req.CACertificate),
			},
			Interactive: terminal.IsInteractive(),
		},
	}
	cred.APIVersion = execCredentialGroup
	cred.Kind = "ExecCredential"

	out, err := json.Marshal(cred)
	return string(out), errors.Wrap(err, "failed to encode exec credential info")
}

// parseTokenOutput accepts either a bare token or an ExecCredential.
func parseTokenOutput(out string) (string, error) {
	out = strings.TrimSpace(out)
	if !strings.HasPrefix(out, "{") {
		if out == "" {
			return "", errEmptyToken
		}
		return out, nil
	}

	cred := clientauthv1.ExecCredential{}
	if err := json.Unmarshal([]byte(out), &cred); err != nil {
		return "", errors.Wrap(err, "failed to parse ExecCredential output")
	}
	if cred.Status == nil || cred.Status.Token == "" {
		return "", errors.Wrap(errEmptyToken, "ExecCredential status has no token")
	}
	return cred.Status.Token, nil
}
