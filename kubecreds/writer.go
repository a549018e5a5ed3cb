package kubecreds

import (
	"context"
	"encoding/base64"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.jetpack.io/kubecreds/goutil"
	"go.jetpack.io/kubecreds/kubecreds/auth"
	"go.jetpack.io/kubecreds/kubecreds/kubeconfig"
	"go.jetpack.io/kubecreds/pkg/jetlog"
	"k8s.io/client-go/util/cert"
	"k8s.io/client-go/util/keyutil"
)

// Writer builds kubeconfig documents from credentials. It performs no I/O
// other than invoking token producers and printing advisories to the build
// log.
type Writer struct {
	buildLog *jetlog.BuildLog
}

func NewWriter(buildLog *jetlog.BuildLog) *Writer {
	return &Writer{buildLog: buildLog}
}

// Synthesize builds the document for a single credential.
func (w *Writer) Synthesize(ctx context.Context, req Request) (*kubeconfig.Config, error) {
	cfg, err := w.synthesize(ctx, req)
	if err != nil {
		return nil, stageError(StageSynthesize, req.Overrides.credentialID(), err)
	}
	return cfg, nil
}

// Aggregate synthesizes every request in order and merges the results. The
// first request to define a name (or a current context) wins. Any failure
// aborts the whole aggregation.
func (w *Writer) Aggregate(ctx context.Context, reqs []Request) (*kubeconfig.Config, error) {
	merged := kubeconfig.New()
	for _, req := range reqs {
		cfg, err := w.Synthesize(ctx, req)
		if err != nil {
			return nil, stageError(StageAggregate, req.Overrides.credentialID(), err)
		}
		merged.Merge(cfg)
	}
	return merged, nil
}

func (w *Writer) synthesize(ctx context.Context, req Request) (*kubeconfig.Config, error) {
	o := req.Overrides
	if o.inCluster() {
		return inClusterConfig(o), nil
	}
	if req.Material == nil {
		return w.withoutCredential(o)
	}

	b := &builder{ctx: ctx, overrides: o, buildLog: w.buildLog}
	if err := req.Material.Accept(b); err != nil {
		return nil, err
	}
	logrus.Debugf("synthesized kubeconfig for %q from %s material", o.credentialID(), req.Material.Kind())
	return b.result, nil
}

// inClusterConfig lets kubectl fall back to the service account of the pod
// the build runs in.
func inClusterConfig(o Overrides) *kubeconfig.Config {
	cfg := kubeconfig.New()
	cfg.AddContext(kubeconfig.Context{
		Name:      o.contextName(),
		Namespace: o.namespace(),
	})
	cfg.CurrentContext = o.contextName()
	return cfg
}

// withoutCredential handles a server URL given with no credential id. The
// context references no user.
func (w *Writer) withoutCredential(o Overrides) (*kubeconfig.Config, error) {
	cluster, err := newCluster(o)
	if err != nil {
		return nil, err
	}
	cfg := kubeconfig.New()
	cfg.AddCluster(cluster)
	cfg.AddContext(kubeconfig.Context{
		Name:      o.contextName(),
		Cluster:   cluster.Name,
		Namespace: o.namespace(),
	})
	cfg.CurrentContext = o.contextName()
	return cfg, nil
}

// builder turns one auth.Material into a document.
type builder struct {
	ctx       context.Context
	overrides Overrides
	buildLog  *jetlog.BuildLog

	result *kubeconfig.Config
}

var _ auth.Visitor = (*builder)(nil)

func (b *builder) VisitUsernamePassword(m auth.UsernamePassword) error {
	return b.explicit(kubeconfig.User{
		Name:     b.overrides.credentialID(),
		Username: m.Username,
		Password: m.Password,
	})
}

func (b *builder) VisitBearerToken(m auth.BearerToken) error {
	o := b.overrides
	token, err := m.ResolveToken(b.ctx, auth.TokenRequest{
		ServerURL:             o.ServerURL,
		CACertificate:         o.CACertificate,
		InsecureSkipTLSVerify: o.InsecureIfNoCA(),
	})
	if err != nil {
		return errors.Wrap(err, "failed to produce token")
	}
	return b.explicit(kubeconfig.User{
		Name:  o.credentialID(),
		Token: token,
	})
}

func (b *builder) VisitClientCertificate(m auth.ClientCertificate) error {
	if _, err := cert.ParseCertsPEM([]byte(m.CertificateData)); err != nil {
		return errors.Wrapf(ErrMalformedCredentialMaterial, "client certificate: %v", err)
	}
	if _, err := keyutil.ParsePrivateKeyPEM([]byte(m.KeyData)); err != nil {
		return errors.Wrapf(ErrMalformedCredentialMaterial, "client key: %v", err)
	}
	return b.explicit(kubeconfig.User{
		Name:                  b.overrides.credentialID(),
		ClientCertificateData: encode(m.CertificateData),
		ClientKeyData:         encode(m.KeyData),
	})
}

// explicit builds the self-contained cluster/context/user document shared by
// the username/password, token and certificate credentials.
func (b *builder) explicit(user kubeconfig.User) error {
	o := b.overrides
	cluster, err := newCluster(o)
	if err != nil {
		return err
	}

	cfg := kubeconfig.New()
	cfg.AddCluster(cluster)
	cfg.AddContext(kubeconfig.Context{
		Name:      o.contextName(),
		Cluster:   cluster.Name,
		User:      o.credentialID(),
		Namespace: o.namespace(),
	})
	cfg.AddUser(user)
	cfg.CurrentContext = o.contextName()
	b.result = cfg
	return nil
}

func (b *builder) VisitImportedDocument(m auth.ImportedDocument) error {
	cfg, err := kubeconfig.Parse(m.Raw)
	if err != nil {
		return errors.Wrap(ErrMalformedCredentialMaterial, err.Error())
	}

	o := b.overrides
	if isBlank(o.ServerURL) {
		b.result = cfg
		return nil
	}

	cluster, err := newCluster(o)
	if err != nil {
		return err
	}
	if !cfg.AddCluster(cluster) {
		// An imported cluster already uses the name; the requested server wins.
		logrus.Debugf("replacing imported cluster %q with %s", cluster.Name, cluster.Server)
		existing, _ := cfg.Cluster(cluster.Name)
		*existing = cluster
	}

	target := strings.TrimSpace(o.ContextName)
	if target == "" {
		target = goutil.Coalesce(cfg.CurrentContext, o.contextName())
	}

	if ctx, ok := cfg.Context(target); ok {
		ctx.Cluster = cluster.Name
		if ns := o.namespace(); ns != "" {
			ctx.Namespace = ns
		}
	} else {
		cfg.AddContext(kubeconfig.Context{
			Name:      target,
			Cluster:   cluster.Name,
			Namespace: o.namespace(),
		})
		b.buildLog.Printf("context '%s' doesn't exist in kubeconfig", target)
	}
	cfg.CurrentContext = target

	b.result = cfg
	return nil
}

// newCluster builds the cluster entry described by the overrides.
func newCluster(o Overrides) (kubeconfig.Cluster, error) {
	cluster := kubeconfig.Cluster{
		Name:                  o.clusterName(),
		Server:                strings.TrimSpace(o.ServerURL),
		InsecureSkipTLSVerify: kubeconfig.Bool(o.InsecureIfNoCA()),
	}
	if o.InsecureIfNoCA() {
		return cluster, nil
	}

	ca, err := caCertificatePEM(o.CACertificate)
	if err != nil {
		return kubeconfig.Cluster{}, err
	}
	cluster.CertificateAuthorityData = encode(ca)
	return cluster, nil
}

const (
	pemBegin = "-----BEGIN CERTIFICATE-----"
	pemEnd   = "-----END CERTIFICATE-----"
)

// caCertificatePEM returns the CA as PEM. Armored input must parse; bare
// base64 bodies are wrapped in certificate armor as-is.
func caCertificatePEM(ca string) (string, error) {
	if strings.Contains(ca, "-----BEGIN") {
		if _, err := cert.ParseCertsPEM([]byte(ca)); err != nil {
			return "", errors.Wrapf(ErrMalformedCredentialMaterial, "CA certificate: %v", err)
		}
		return ca, nil
	}
	return pemBegin + "\n" + strings.TrimSpace(ca) + "\n" + pemEnd, nil
}

func encode(s string) string {
	return base64.StdEncoding.EncodeToString([]byte(s))
}
