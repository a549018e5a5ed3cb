package fileutil

import (
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

// FileExists reports whether path names a regular file on fs. Directories
// and missing paths both report false.
func FileExists(fs afero.Fs, path string) (bool, error) {
	fileinfo, err := fs.Stat(path)
	if err == nil {
		return !fileinfo.IsDir(), nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, errors.WithStack(err)
}

// ReadFileString reads path from fs.
func ReadFileString(fs afero.Fs, path string) (string, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return "", errors.Wrapf(err, "error reading file at path %s", path)
	}
	return string(data), nil
}
