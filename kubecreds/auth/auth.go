// Package auth describes the material a stored credential can supply when a
// kubeconfig is synthesized from it.
//
// Material is a closed set. Consumers dispatch on it with a Visitor:
//
//	err := material.Accept(myVisitor)
//
// Adding a new kind of material adds a method to Visitor, so every consumer
// fails to compile until it handles the new kind.
package auth

import "context"

type Kind string

const (
	KindUsernamePassword  Kind = "usernamePassword"
	KindBearerToken       Kind = "token"
	KindClientCertificate Kind = "certificate"
	KindImportedDocument  Kind = "kubeconfig"
)

// Material is what a credential provides. Exactly one of UsernamePassword,
// BearerToken, ClientCertificate or ImportedDocument.
type Material interface {
	Kind() Kind
	Accept(v Visitor) error

	sealed()
}

type Visitor interface {
	VisitUsernamePassword(UsernamePassword) error
	VisitBearerToken(BearerToken) error
	VisitClientCertificate(ClientCertificate) error
	VisitImportedDocument(ImportedDocument) error
}

type UsernamePassword struct {
	Username string
	Password string
}

// BearerToken holds either a literal Token or a Producer that computes one.
// Producer takes precedence when set.
type BearerToken struct {
	Token    string
	Producer TokenProducer
}

// ClientCertificate holds PEM encoded certificate and private key.
type ClientCertificate struct {
	CertificateData string
	KeyData         string
}

// ImportedDocument is a complete kubeconfig supplied as the credential content.
type ImportedDocument struct {
	Raw string
}

var (
	_ Material = UsernamePassword{}
	_ Material = BearerToken{}
	_ Material = ClientCertificate{}
	_ Material = ImportedDocument{}
)

func (m UsernamePassword) Kind() Kind             { return KindUsernamePassword }
func (m UsernamePassword) Accept(v Visitor) error { return v.VisitUsernamePassword(m) }
func (UsernamePassword) sealed()                  {}

func (m BearerToken) Kind() Kind             { return KindBearerToken }
func (m BearerToken) Accept(v Visitor) error { return v.VisitBearerToken(m) }
func (BearerToken) sealed()                  {}

func (m ClientCertificate) Kind() Kind             { return KindClientCertificate }
func (m ClientCertificate) Accept(v Visitor) error { return v.VisitClientCertificate(m) }
func (ClientCertificate) sealed()                  {}

func (m ImportedDocument) Kind() Kind             { return KindImportedDocument }
func (m ImportedDocument) Accept(v Visitor) error { return v.VisitImportedDocument(m) }
func (ImportedDocument) sealed()                  {}

// TokenRequest carries what a token producer may need to mint a token for a
// specific API server.
type TokenRequest struct {
	ServerURL             string
	CACertificate         string // PEM, as supplied by the caller
	InsecureSkipTLSVerify bool
}

// TokenProducer computes a bearer token on demand. Implementations may block
// (for example on a network call); they are invoked synchronously, at most
// once per synthesis.
type TokenProducer interface {
	Token(ctx context.Context, req TokenRequest) (string, error)
}

type TokenProducerFunc func(ctx context.Context, req TokenRequest) (string, error)

func (f TokenProducerFunc) Token(ctx context.Context, req TokenRequest) (string, error) {
	return f(ctx, req)
}

// ResolveToken returns the literal token or asks the producer for one.
func (m BearerToken) ResolveToken(ctx context.Context, req TokenRequest) (string, error) {
	if m.Producer == nil {
		return m.Token, nil
	}
	return m.Producer.Token(ctx, req)
}
