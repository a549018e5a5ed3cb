package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingVisitor struct {
	visited []Kind
}

func (v *recordingVisitor) VisitUsernamePassword(UsernamePassword) error {
	v.visited = append(v.visited, KindUsernamePassword)
	return nil
}

func (v *recordingVisitor) VisitBearerToken(BearerToken) error {
	v.visited = append(v.visited, KindBearerToken)
	return nil
}

func (v *recordingVisitor) VisitClientCertificate(ClientCertificate) error {
	v.visited = append(v.visited, KindClientCertificate)
	return nil
}

func (v *recordingVisitor) VisitImportedDocument(ImportedDocument) error {
	v.visited = append(v.visited, KindImportedDocument)
	return nil
}

func TestAcceptDispatchesByKind(t *testing.T) {
	materials := []Material{
		UsernamePassword{Username: "bob", Password: "s3cr3t"},
		BearerToken{Token: "abc"},
		ClientCertificate{},
		ImportedDocument{Raw: "apiVersion: v1"},
	}

	v := &recordingVisitor{}
	for _, m := range materials {
		require.NoError(t, m.Accept(v))
	}

	var kinds []Kind
	for _, m := range materials {
		kinds = append(kinds, m.Kind())
	}
	assert.Equal(t, kinds, v.visited)
}

func TestResolveTokenLiteral(t *testing.T) {
	token, err := BearerToken{Token: "abc"}.ResolveToken(context.Background(), TokenRequest{})
	require.NoError(t, err)
	assert.Equal(t, "abc", token)
}

func TestResolveTokenProducer(t *testing.T) {
	var got TokenRequest
	calls := 0
	m := BearerToken{
		Token: "ignored",
		Producer: TokenProducerFunc(func(_ context.Context, req TokenRequest) (string, error) {
			calls++
			got = req
			return "faketoken:user:pass", nil
		}),
	}

	req := TokenRequest{ServerURL: "https://localhost:6443", InsecureSkipTLSVerify: true}
	token, err := m.ResolveToken(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "faketoken:user:pass", token)
	assert.Equal(t, 1, calls)
	assert.Equal(t, req, got)
}

func TestResolveTokenProducerError(t *testing.T) {
	boom := errors.New("boom")
	m := BearerToken{Producer: TokenProducerFunc(func(context.Context, TokenRequest) (string, error) {
		return "", boom
	})}

	_, err := m.ResolveToken(context.Background(), TokenRequest{})
	assert.ErrorIs(t, err, boom)
}
