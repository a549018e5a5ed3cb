// Copyright 2022 Jetpack Technologies Inc and contributors. All rights reserved.
// Use of this source code is governed by the license in the LICENSE file.

package kubeconfig

import "k8s.io/apimachinery/pkg/runtime"

// Fields holds entry keys the model does not interpret, such as exec plugins,
// auth providers, file references or extensions. Values are JSON-shaped.
type Fields = map[string]interface{}

// Cluster is a named API server entry.
type Cluster struct {
	Name   string
	Server string
	// CertificateAuthorityData is base64 encoded PEM.
	CertificateAuthorityData string
	// InsecureSkipTLSVerify is nil when the source document did not set it.
	// Synthesized clusters always set it.
	InsecureSkipTLSVerify *bool
	Extra                 Fields
}

// Context selects a cluster, a user and a namespace by name. References are
// soft: they may point at entries that do not exist.
type Context struct {
	Name      string
	Cluster   string
	User      string
	Namespace string
	Extra     Fields
}

// User holds the rendered credential. At most one rendering is populated by
// the synthesizer, imported documents may carry anything.
type User struct {
	Name     string
	Username string
	Password string
	Token    string
	// ClientCertificateData and ClientKeyData are base64 encoded PEM.
	ClientCertificateData string
	ClientKeyData         string
	Extra                 Fields
}

// Config is an in-memory kubeconfig. Entries are unique by name within each
// collection and are kept in first-seen order.
type Config struct {
	CurrentContext string
	// Extra carries top-level keys other than the collections, for example
	// preferences or extensions.
	Extra Fields

	clusters []*Cluster
	contexts []*Context
	users    []*User

	clusterIndex map[string]int
	contextIndex map[string]int
	userIndex    map[string]int
}

func New() *Config {
	return &Config{
		clusterIndex: map[string]int{},
		contextIndex: map[string]int{},
		userIndex:    map[string]int{},
	}
}

// AddCluster appends cluster unless a cluster with the same name is already
// present, in which case the existing entry is kept and false is returned.
func (c *Config) AddCluster(cluster Cluster) bool {
	c.ensureIndexes()
	if _, ok := c.clusterIndex[cluster.Name]; ok {
		return false
	}
	c.clusterIndex[cluster.Name] = len(c.clusters)
	c.clusters = append(c.clusters, &cluster)
	return true
}

// AddContext has the same first-wins semantics as AddCluster.
func (c *Config) AddContext(ctx Context) bool {
	c.ensureIndexes()
	if _, ok := c.contextIndex[ctx.Name]; ok {
		return false
	}
	c.contextIndex[ctx.Name] = len(c.contexts)
	c.contexts = append(c.contexts, &ctx)
	return true
}

// AddUser has the same first-wins semantics as AddCluster.
func (c *Config) AddUser(user User) bool {
	c.ensureIndexes()
	if _, ok := c.userIndex[user.Name]; ok {
		return false
	}
	c.userIndex[user.Name] = len(c.users)
	c.users = append(c.users, &user)
	return true
}

// Cluster returns the named cluster for in-place modification.
func (c *Config) Cluster(name string) (*Cluster, bool) {
	i, ok := c.clusterIndex[name]
	if !ok {
		return nil, false
	}
	return c.clusters[i], true
}

// Context returns the named context for in-place modification.
func (c *Config) Context(name string) (*Context, bool) {
	i, ok := c.contextIndex[name]
	if !ok {
		return nil, false
	}
	return c.contexts[i], true
}

// User returns the named user for in-place modification.
func (c *Config) User(name string) (*User, bool) {
	i, ok := c.userIndex[name]
	if !ok {
		return nil, false
	}
	return c.users[i], true
}

func (c *Config) Clusters() []Cluster {
	out := make([]Cluster, len(c.clusters))
	for i, cl := range c.clusters {
		out[i] = copyCluster(*cl)
	}
	return out
}

func (c *Config) Contexts() []Context {
	out := make([]Context, len(c.contexts))
	for i, ctx := range c.contexts {
		out[i] = copyContext(*ctx)
	}
	return out
}

func (c *Config) Users() []User {
	out := make([]User, len(c.users))
	for i, u := range c.users {
		out[i] = copyUser(*u)
	}
	return out
}

// Merge folds other into c. Entries whose name already exists in c are
// ignored, and other's current context is only used when c has none. Top
// level extra keys follow the same first-wins rule.
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}
	for _, cl := range other.clusters {
		c.AddCluster(copyCluster(*cl))
	}
	for _, ctx := range other.contexts {
		c.AddContext(copyContext(*ctx))
	}
	for _, u := range other.users {
		c.AddUser(copyUser(*u))
	}
	for k, v := range other.Extra {
		if c.Extra == nil {
			c.Extra = Fields{}
		}
		if _, ok := c.Extra[k]; !ok {
			c.Extra[k] = runtime.DeepCopyJSONValue(v)
		}
	}
	if c.CurrentContext == "" {
		c.CurrentContext = other.CurrentContext
	}
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := New()
	out.Merge(c)
	return out
}

// Redacted returns a copy with every user token replaced by "REDACTED", the
// way newer kubectl versions print them in `kubectl config view`.
func (c *Config) Redacted() *Config {
	out := c.Clone()
	for _, u := range out.users {
		if u.Token != "" {
			u.Token = redacted
		}
	}
	return out
}

const redacted = "REDACTED"

// ensureIndexes makes the zero Config usable.
func (c *Config) ensureIndexes() {
	if c.clusterIndex == nil {
		c.clusterIndex = map[string]int{}
	}
	if c.contextIndex == nil {
		c.contextIndex = map[string]int{}
	}
	if c.userIndex == nil {
		c.userIndex = map[string]int{}
	}
}

func copyCluster(cl Cluster) Cluster {
	if cl.InsecureSkipTLSVerify != nil {
		v := *cl.InsecureSkipTLSVerify
		cl.InsecureSkipTLSVerify = &v
	}
	cl.Extra = copyFields(cl.Extra)
	return cl
}

func copyContext(ctx Context) Context {
	ctx.Extra = copyFields(ctx.Extra)
	return ctx
}

func copyUser(u User) User {
	u.Extra = copyFields(u.Extra)
	return u
}

func copyFields(f Fields) Fields {
	if f == nil {
		return nil
	}
	return runtime.DeepCopyJSON(f)
}

// Bool returns a pointer to b, for InsecureSkipTLSVerify.
func Bool(b bool) *bool {
	return &b
}
