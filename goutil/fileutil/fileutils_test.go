package fileutil

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileExists(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/work/dir", 0o755))
	require.NoError(t, afero.WriteFile(fs, "/work/kubecreds.yaml", []byte("defaults: {}"), 0o644))

	exists, err := FileExists(fs, "/work/kubecreds.yaml")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = FileExists(fs, "/work/dir")
	require.NoError(t, err)
	assert.False(t, exists)

	exists, err = FileExists(fs, "/work/missing.yaml")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestReadFileString(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/ca.pem", []byte("pem"), 0o644))

	s, err := ReadFileString(fs, "/ca.pem")
	require.NoError(t, err)
	assert.Equal(t, "pem", s)

	_, err = ReadFileString(fs, "/missing.pem")
	assert.ErrorContains(t, err, "/missing.pem")
}
