package provider

import (
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"go.jetpack.io/kubecreds/goutil"
	"go.jetpack.io/kubecreds/kubecreds"
)

// CI systems that provide a per-build temporary directory, in order of
// preference.
var scratchDirEnvVars = []string{"WORKSPACE_TMP", "RUNNER_TEMP"}

// ScratchDir picks the directory kubeconfig files are written to: the flag
// value, else a build-private temp directory advertised by the CI system.
// Without either, a fresh owner-only directory is created under the OS temp
// directory and removed by cleanup.
func ScratchDir(fs afero.Fs, flagValue string) (dir string, cleanup func() error, err error) {
	return scratchDir(fs, flagValue, os.Getenv)
}

func scratchDir(fs afero.Fs, flagValue string, getenv func(string) string) (string, func() error, error) {
	candidates := []string{flagValue}
	for _, name := range scratchDirEnvVars {
		candidates = append(candidates, getenv(name))
	}
	if dir := goutil.Coalesce(candidates...); dir != "" {
		return dir, func() error { return nil }, nil
	}

	// afero.TempDir creates the directory with mode 0700.
	dir, err := afero.TempDir(fs, os.TempDir(), "kubecreds-")
	if err != nil {
		return "", nil, errors.Wrapf(kubecreds.ErrFileSystem, "create scratch dir: %v", err)
	}
	return dir, func() error { return errors.WithStack(fs.RemoveAll(dir)) }, nil
}
