package provider

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.jetpack.io/kubecreds/kubecreds/auth"
	clientauthv1 "k8s.io/client-go/pkg/apis/clientauthentication/v1"
)

func TestParseTokenOutput(t *testing.T) {
	cases := []struct {
		name     string
		output   string
		expected string
		err      bool
	}{
		{name: "raw", output: "abc123\n", expected: "abc123"},
		{
			name:     "exec credential",
			output:   `{"apiVersion":"client.authentication.k8s.io/v1","kind":"ExecCredential","status":{"token":"k8s-aws-v1.xyz"}}`,
			expected: "k8s-aws-v1.xyz",
		},
		{name: "empty", output: "  \n", err: true},
		{name: "no status", output: `{"kind":"ExecCredential"}`, err: true},
		{name: "broken json", output: `{"status":`, err: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			token, err := parseTokenOutput(tc.output)
			if tc.err {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, token)
		})
	}
}

func TestExecCredentialInfo(t *testing.T) {
	info, err := execCredentialInfo(auth.TokenRequest{
		ServerURL:             "https://localhost:6443",
		InsecureSkipTLSVerify: true,
	})
	require.NoError(t, err)

	cred := clientauthv1.ExecCredential{}
	require.NoError(t, json.Unmarshal([]byte(info), &cred))
	assert.Equal(t, "ExecCredential", cred.Kind)
	assert.Equal(t, "https://localhost:6443", cred.Spec.Cluster.Server)
	assert.True(t, cred.Spec.Cluster.InsecureSkipTLSVerify)
}

func TestExecTokenProducer(t *testing.T) {
	p := &ExecTokenProducer{
		Command: []string{"sh", "-c", `printf 'token-for-%s-%s' "$KUBECREDS_SERVER" "$KUBECREDS_INSECURE_SKIP_TLS_VERIFY"`},
		Dir:     t.TempDir(),
	}

	token, err := p.Token(context.Background(), auth.TokenRequest{
		ServerURL:             "https://localhost:6443",
		InsecureSkipTLSVerify: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "token-for-https://localhost:6443-true", token)
}

func TestExecTokenProducerFailure(t *testing.T) {
	_, err := (&ExecTokenProducer{Command: []string{"sh", "-c", "exit 3"}}).Token(context.Background(), auth.TokenRequest{})
	assert.ErrorContains(t, err, `token command "sh" failed`)

	_, err = (&ExecTokenProducer{}).Token(context.Background(), auth.TokenRequest{})
	assert.Error(t, err)
}
