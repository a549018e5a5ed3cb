// Copyright 2022 Jetpack Technologies Inc and contributors. All rights reserved.
// Use of this source code is governed by the license in the LICENSE file.

package kubeconfig

import (
	"github.com/pkg/errors"
	"k8s.io/client-go/tools/clientcmd"
	"sigs.k8s.io/yaml"
)

// ErrInvalid is returned by Parse when the text is not a usable kubeconfig.
var ErrInvalid = errors.New("invalid kubeconfig")

// Keys interpreted by the model. Everything else lands in Extra.
const (
	keyAPIVersion     = "apiVersion"
	keyKind           = "kind"
	keyPreferences    = "preferences"
	keyClusters       = "clusters"
	keyContexts       = "contexts"
	keyUsers          = "users"
	keyCurrentContext = "current-context"

	keyServer                   = "server"
	keyCertificateAuthorityData = "certificate-authority-data"
	keyInsecureSkipTLSVerify    = "insecure-skip-tls-verify"

	keyCluster   = "cluster"
	keyUser      = "user"
	keyNamespace = "namespace"

	keyUsername              = "username"
	keyPassword              = "password"
	keyToken                 = "token"
	keyClientCertificateData = "client-certificate-data"
	keyClientKeyData         = "client-key-data"
)

// The on-disk shape as far as Parse needs it. Entry bodies stay untyped so
// nothing the model does not know about is lost.
type document struct {
	Clusters       []namedCluster `json:"clusters"`
	Contexts       []namedContext `json:"contexts"`
	Users          []namedUser    `json:"users"`
	CurrentContext string         `json:"current-context"`
}

type namedCluster struct {
	Name    string `json:"name"`
	Cluster Fields `json:"cluster"`
}

type namedContext struct {
	Name    string `json:"name"`
	Context Fields `json:"context"`
}

type namedUser struct {
	Name string `json:"name"`
	User Fields `json:"user"`
}

// Parse reads kubeconfig YAML. The text is first loaded with client-go so
// anything kubectl would refuse is refused here too, then decoded again into
// the ordered model so entry order survives. Keys the model does not
// interpret are kept in Extra and written back by Marshal.
func Parse(raw string) (*Config, error) {
	if _, err := clientcmd.Load([]byte(raw)); err != nil {
		return nil, errors.Wrap(ErrInvalid, err.Error())
	}

	var doc document
	if err := yaml.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, errors.Wrap(ErrInvalid, err.Error())
	}
	var top Fields
	if err := yaml.Unmarshal([]byte(raw), &top); err != nil {
		return nil, errors.Wrap(ErrInvalid, err.Error())
	}
	for _, k := range []string{keyAPIVersion, keyKind, keyClusters, keyContexts, keyUsers, keyCurrentContext} {
		delete(top, k)
	}

	cfg := New()
	cfg.CurrentContext = doc.CurrentContext
	cfg.Extra = extra(top)
	for _, c := range doc.Clusters {
		f := c.Cluster
		cfg.AddCluster(Cluster{
			Name:                     c.Name,
			Server:                   takeString(f, keyServer),
			CertificateAuthorityData: takeString(f, keyCertificateAuthorityData),
			InsecureSkipTLSVerify:    takeBool(f, keyInsecureSkipTLSVerify),
			Extra:                    extra(f),
		})
	}
	for _, c := range doc.Contexts {
		f := c.Context
		cfg.AddContext(Context{
			Name:      c.Name,
			Cluster:   takeString(f, keyCluster),
			User:      takeString(f, keyUser),
			Namespace: takeString(f, keyNamespace),
			Extra:     extra(f),
		})
	}
	for _, u := range doc.Users {
		f := u.User
		cfg.AddUser(User{
			Name:                  u.Name,
			Username:              takeString(f, keyUsername),
			Password:              takeString(f, keyPassword),
			Token:                 takeString(f, keyToken),
			ClientCertificateData: takeString(f, keyClientCertificateData),
			ClientKeyData:         takeString(f, keyClientKeyData),
			Extra:                 extra(f),
		})
	}
	return cfg, nil
}

// Marshal renders c as kubeconfig YAML. Output is deterministic: entries keep
// their insertion order and keys are sorted.
func Marshal(c *Config) ([]byte, error) {
	doc := withExtra(c.Extra)
	if _, ok := doc[keyPreferences]; !ok {
		doc[keyPreferences] = Fields{}
	}
	doc[keyAPIVersion] = "v1"
	doc[keyKind] = "Config"
	doc[keyCurrentContext] = c.CurrentContext

	clusters := make([]Fields, 0, len(c.clusters))
	for _, cl := range c.clusters {
		f := withExtra(cl.Extra)
		putString(f, keyServer, cl.Server)
		putString(f, keyCertificateAuthorityData, cl.CertificateAuthorityData)
		if cl.InsecureSkipTLSVerify != nil {
			f[keyInsecureSkipTLSVerify] = *cl.InsecureSkipTLSVerify
		}
		clusters = append(clusters, Fields{"name": cl.Name, keyCluster: f})
	}
	contexts := make([]Fields, 0, len(c.contexts))
	for _, ctx := range c.contexts {
		f := withExtra(ctx.Extra)
		putString(f, keyCluster, ctx.Cluster)
		putString(f, keyUser, ctx.User)
		putString(f, keyNamespace, ctx.Namespace)
		contexts = append(contexts, Fields{"name": ctx.Name, "context": f})
	}
	users := make([]Fields, 0, len(c.users))
	for _, u := range c.users {
		f := withExtra(u.Extra)
		putString(f, keyUsername, u.Username)
		putString(f, keyPassword, u.Password)
		putString(f, keyToken, u.Token)
		putString(f, keyClientCertificateData, u.ClientCertificateData)
		putString(f, keyClientKeyData, u.ClientKeyData)
		users = append(users, Fields{"name": u.Name, keyUser: f})
	}
	doc[keyClusters] = clusters
	doc[keyContexts] = contexts
	doc[keyUsers] = users

	out, err := yaml.Marshal(doc)
	return out, errors.Wrap(err, "failed to encode kubeconfig")
}

// takeString removes key from f and returns it when it holds a string. Values
// of any other type are left in place.
func takeString(f Fields, key string) string {
	s, ok := f[key].(string)
	if ok {
		delete(f, key)
	}
	return s
}

func takeBool(f Fields, key string) *bool {
	b, ok := f[key].(bool)
	if !ok {
		return nil
	}
	delete(f, key)
	return &b
}

func extra(f Fields) Fields {
	if len(f) == 0 {
		return nil
	}
	return f
}

func withExtra(f Fields) Fields {
	out := copyFields(f)
	if out == nil {
		out = Fields{}
	}
	return out
}

func putString(f Fields, key, value string) {
	if value != "" {
		f[key] = value
	}
}
