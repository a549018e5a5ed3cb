package jetlog

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildLogPrintf(t *testing.T) {
	var buf bytes.Buffer
	NewBuildLog(&buf).Printf("context '%s' doesn't exist in kubeconfig", "missing")

	assert.Equal(t, "[kubernetes-cli] context 'missing' doesn't exist in kubeconfig\n", buf.String())
}

func TestBuildLogSingleLine(t *testing.T) {
	var buf bytes.Buffer
	NewBuildLog(&buf).Printf("done\n")

	assert.Equal(t, "[kubernetes-cli] done\n", buf.String())
}

func TestBuildLogWarnf(t *testing.T) {
	var buf bytes.Buffer
	NewBuildLog(&buf).Warnf("could not remove %s", "/tmp/x")

	assert.Equal(t, "[kubernetes-cli] WARNING: could not remove /tmp/x\n", buf.String())
}

func TestNilBuildLog(t *testing.T) {
	var b *BuildLog
	assert.NotPanics(t, func() { b.Printf("ignored") })
	assert.NotPanics(t, func() { NewBuildLog(nil).Printf("ignored") })
}
