package provider

import (
	"context"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/spf13/afero"
	"go.jetpack.io/kubecreds/goutil"
	"go.jetpack.io/kubecreds/goutil/fileutil"
	"go.jetpack.io/kubecreds/kubecreds"
	"go.jetpack.io/kubecreds/kubecreds/auth"
	"gopkg.in/yaml.v3"
)

// CredentialStore resolves a credential id to the material it holds. Unknown
// ids are reported with kubecreds.ErrUnknownCredential.
type CredentialStore interface {
	Lookup(ctx context.Context, id string) (auth.Material, error)
}

// EmptyStore defines no credentials.
type EmptyStore struct{}

func (EmptyStore) Lookup(_ context.Context, id string) (auth.Material, error) {
	return nil, errors.Wrapf(kubecreds.ErrUnknownCredential, "%q", id)
}

type credentialsFile struct {
	Credentials []credentialEntry `yaml:"credentials"`
}

type credentialEntry struct {
	ID               string            `yaml:"id"`
	UsernamePassword *usernamePassword `yaml:"usernamePassword,omitempty"`
	Token            string            `yaml:"token,omitempty"`
	TokenCommand     []string          `yaml:"tokenCommand,omitempty"`
	Certificate      *certificate      `yaml:"certificate,omitempty"`
	KubeConfig       string            `yaml:"kubeconfig,omitempty"`
	KubeConfigFile   string            `yaml:"kubeconfigFile,omitempty"`
}

type usernamePassword struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

type certificate struct {
	Certificate     string `yaml:"certificate,omitempty"`
	CertificateFile string `yaml:"certificateFile,omitempty"`
	Key             string `yaml:"key,omitempty"`
	KeyFile         string `yaml:"keyFile,omitempty"`
}

// FileStore reads credentials from a YAML file:
//
//	credentials:
//	- id: deployer
//	  usernamePassword: {username: bob, password: s3cr3t}
//	- id: eks
//	  tokenCommand: [aws, eks, get-token, --cluster-name, prod]
//	- id: ops
//	  kubeconfigFile: ops.kubeconfig
//
// Relative file references are resolved against the directory of the
// credentials file. The file is read once, on first lookup.
type FileStore struct {
	fs   afero.Fs
	path string

	once    sync.Once
	entries map[string]credentialEntry
	loadErr error
}

var _ CredentialStore = (*FileStore)(nil)

func NewFileStore(fs afero.Fs, path string) *FileStore {
	return &FileStore{fs: fs, path: path}
}

func (s *FileStore) Lookup(ctx context.Context, id string) (auth.Material, error) {
	s.once.Do(func() {
		s.entries, s.loadErr = s.load()
	})
	if s.loadErr != nil {
		return nil, s.loadErr
	}

	entry, ok := s.entries[id]
	if !ok {
		return nil, errors.Wrapf(kubecreds.ErrUnknownCredential, "%q not found in %s", id, s.path)
	}
	return s.material(entry)
}

func (s *FileStore) load() (map[string]credentialEntry, error) {
	contents, err := fileutil.ReadFileString(s.fs, s.path)
	if err != nil {
		return nil, err
	}
	file := credentialsFile{}
	if err := yaml.Unmarshal([]byte(contents), &file); err != nil {
		return nil, errors.Wrapf(err, "failed to parse credentials file %s", s.path)
	}

	entries := map[string]credentialEntry{}
	for i, entry := range file.Credentials {
		if strings.TrimSpace(entry.ID) == "" {
			return nil, errors.Errorf("%s: credential #%d has no id", s.path, i+1)
		}
		if _, dup := entries[entry.ID]; dup {
			return nil, errors.Errorf("%s: credential %q is defined more than once", s.path, entry.ID)
		}
		if err := entry.validate(); err != nil {
			return nil, errors.Wrapf(err, "%s: credential %q", s.path, entry.ID)
		}
		entries[entry.ID] = entry
	}
	return entries, nil
}

// validate checks that the entry defines exactly one kind of material.
func (e *credentialEntry) validate() error {
	kinds := lo.Filter([]string{
		lo.Ternary(e.UsernamePassword != nil, string(auth.KindUsernamePassword), ""),
		lo.Ternary(e.Token != "", string(auth.KindBearerToken), ""),
		lo.Ternary(len(e.TokenCommand) > 0, "tokenCommand", ""),
		lo.Ternary(e.Certificate != nil, string(auth.KindClientCertificate), ""),
		lo.Ternary(e.KubeConfig != "", string(auth.KindImportedDocument), ""),
		lo.Ternary(e.KubeConfigFile != "", "kubeconfigFile", ""),
	}, goutil.NonEmptyFilter[string])

	if len(kinds) != 1 {
		return errors.Errorf(
			"must define exactly one of usernamePassword, token, tokenCommand, "+
				"certificate, kubeconfig or kubeconfigFile (found %d)",
			len(kinds),
		)
	}
	if e.UsernamePassword != nil {
		return goutil.ValidateStructFieldsAreNotZero(e.UsernamePassword, "Username")
	}
	if c := e.Certificate; c != nil {
		if c.Certificate == "" && c.CertificateFile == "" {
			return errors.New("certificate or certificateFile is missing")
		}
		if c.Key == "" && c.KeyFile == "" {
			return errors.New("key or keyFile is missing")
		}
	}
	return nil
}

func (s *FileStore) material(e credentialEntry) (auth.Material, error) {
	switch {
	case e.UsernamePassword != nil:
		return auth.UsernamePassword{
			Username: e.UsernamePassword.Username,
			Password: e.UsernamePassword.Password,
		}, nil
	case e.Token != "":
		return auth.BearerToken{Token: e.Token}, nil
	case len(e.TokenCommand) > 0:
		return auth.BearerToken{Producer: &ExecTokenProducer{
			Command: e.TokenCommand,
			Dir:     filepath.Dir(s.path),
		}}, nil
	case e.Certificate != nil:
		certData, err := s.inlineOrFile(e.Certificate.Certificate, e.Certificate.CertificateFile)
		if err != nil {
			return nil, err
		}
		keyData, err := s.inlineOrFile(e.Certificate.Key, e.Certificate.KeyFile)
		if err != nil {
			return nil, err
		}
		return auth.ClientCertificate{CertificateData: certData, KeyData: keyData}, nil
	default:
		raw, err := s.inlineOrFile(e.KubeConfig, e.KubeConfigFile)
		if err != nil {
			return nil, err
		}
		return auth.ImportedDocument{Raw: raw}, nil
	}
}

func (s *FileStore) inlineOrFile(inline, path string) (string, error) {
	if inline != "" {
		return inline, nil
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(filepath.Dir(s.path), path)
	}
	return fileutil.ReadFileString(s.fs, path)
}
