package kubecreds

import (
	"os"
	"strings"

	"go.jetpack.io/kubecreds/goutil"
	"go.jetpack.io/kubecreds/kubecreds/auth"
)

const defaultName = "k8s"

// Overrides are the per-credential knobs a build step can set. All fields are
// optional; blank means "not set".
type Overrides struct {
	ServerURL     string `yaml:"serverUrl,omitempty"`
	CredentialID  string `yaml:"credentialsId,omitempty"`
	CACertificate string `yaml:"caCertificate,omitempty"`
	ClusterName   string `yaml:"clusterName,omitempty"`
	ContextName   string `yaml:"contextName,omitempty"`
	Namespace     string `yaml:"namespace,omitempty"`
}

// Request is one unit of aggregation: the material resolved for
// Overrides.CredentialID, plus the overrides. Material is nil when no
// credential id was given.
type Request struct {
	Material  auth.Material
	Overrides Overrides
}

// InsecureIfNoCA reports whether TLS verification must be skipped because no
// CA certificate was supplied.
func (o Overrides) InsecureIfNoCA() bool {
	return isBlank(o.CACertificate)
}

// inCluster reports whether neither a server nor a credential was requested,
// in which case the tool falls back to the pod's service account.
func (o Overrides) inCluster() bool {
	return isBlank(o.ServerURL) && isBlank(o.CredentialID)
}

func (o Overrides) credentialID() string {
	return strings.TrimSpace(o.CredentialID)
}

func (o Overrides) clusterName() string {
	return goutil.Coalesce(strings.TrimSpace(o.ClusterName), defaultName)
}

func (o Overrides) contextName() string {
	return goutil.Coalesce(strings.TrimSpace(o.ContextName), defaultName)
}

func (o Overrides) namespace() string {
	return strings.TrimSpace(o.Namespace)
}

// Expand interpolates ${VAR} and $VAR references in every field using
// mapping. References that mapping does not know are left untouched.
func (o Overrides) Expand(mapping func(string) (string, bool)) Overrides {
	expand := func(s string) string {
		return os.Expand(s, func(key string) string {
			if v, ok := mapping(key); ok {
				return v
			}
			return "${" + key + "}"
		})
	}
	return Overrides{
		ServerURL:     expand(o.ServerURL),
		CredentialID:  expand(o.CredentialID),
		CACertificate: expand(o.CACertificate),
		ClusterName:   expand(o.ClusterName),
		ContextName:   expand(o.ContextName),
		Namespace:     expand(o.Namespace),
	}
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
