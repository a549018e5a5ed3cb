package wrapconfig

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

// Vars are the values ${VAR} references expand to.
type Vars map[string]string

// LoadVars returns the process environment, overlaid with envFile when one is
// given. Values from the file win.
func LoadVars(fs afero.Fs, envFile string) (Vars, error) {
	vars := Vars{}
	for _, kv := range os.Environ() {
		if key, value, ok := strings.Cut(kv, "="); ok {
			vars[key] = value
		}
	}
	if envFile == "" {
		return vars, nil
	}

	f, err := fs.Open(envFile)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open env file %s", envFile)
	}
	defer f.Close()

	fileVars, err := godotenv.Parse(f)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse env file %s", envFile)
	}
	for key, value := range fileVars {
		vars[key] = value
	}
	return vars, nil
}

func (v Vars) Lookup(key string) (string, bool) {
	val, ok := v[key]
	return val, ok
}

// Expand resolves references in s, leaving unknown ones untouched.
func (v Vars) Expand(s string) string {
	return os.Expand(s, func(key string) string {
		if val, ok := v[key]; ok {
			return val
		}
		return "${" + key + "}"
	})
}
