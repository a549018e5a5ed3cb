package kubecreds

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"go.jetpack.io/kubecreds/goutil"
	"go.jetpack.io/kubecreds/kubecreds/kubeconfig"
	"go.jetpack.io/kubecreds/pkg/jetlog"
)

// EnvVar is the variable kubectl and friends read the config path from.
const EnvVar = "KUBECONFIG"

const (
	restrictedMode = 0o600
	defaultMode    = 0o666 // subject to the process umask
)

// EnvSink receives the environment binding that exposes the file path.
type EnvSink interface {
	Set(key, value string)
	Unset(key string)
}

// Lifecycle materializes kubeconfig documents in a build-private scratch
// directory and removes them again.
type Lifecycle struct {
	fs         afero.Fs
	scratchDir string
	env        EnvSink
	buildLog   *jetlog.BuildLog
}

func NewLifecycle(fs afero.Fs, scratchDir string, env EnvSink, buildLog *jetlog.BuildLog) *Lifecycle {
	return &Lifecycle{
		fs:         fs,
		scratchDir: scratchDir,
		env:        env,
		buildLog:   buildLog,
	}
}

// Handle refers to one materialized kubeconfig file.
type Handle struct {
	Path     string
	disposed bool
}

// Acquire writes doc to a new file and binds its path to EnvVar. When
// restrictAccess is set the file is made owner read/write only before any
// content is written. Nothing is left on disk when Acquire fails.
func (l *Lifecycle) Acquire(ctx context.Context, doc *kubeconfig.Config, restrictAccess bool) (*Handle, error) {
	data, err := kubeconfig.Marshal(doc)
	if err != nil {
		return nil, stageError(StageAcquire, "", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, stageError(StageAcquire, "", errors.WithStack(err))
	}

	dir, err := filepath.Abs(l.scratchDir)
	if err != nil {
		return nil, stageError(StageAcquire, "", errors.Wrap(ErrFileSystem, err.Error()))
	}
	if err := l.fs.MkdirAll(dir, 0o700); err != nil {
		return nil, stageError(StageAcquire, "", errors.Wrapf(ErrFileSystem, "create scratch dir: %v", err))
	}

	id := uuid.NewString()
	path := filepath.Join(dir, "kubeconfig-"+id)
	tmpPath := filepath.Join(dir, ".kubeconfig-"+id+".tmp")

	if err := l.write(tmpPath, data, restrictAccess); err != nil {
		_ = l.fs.Remove(tmpPath)
		return nil, stageError(StageAcquire, "", errors.Wrap(ErrFileSystem, err.Error()))
	}
	if err := l.fs.Rename(tmpPath, path); err != nil {
		_ = l.fs.Remove(tmpPath)
		return nil, stageError(StageAcquire, "", errors.Wrapf(ErrFileSystem, "finalize %s: %v", path, err))
	}

	if l.env != nil {
		l.env.Set(EnvVar, path)
	}
	return &Handle{Path: path}, nil
}

func (l *Lifecycle) write(path string, data []byte, restrictAccess bool) error {
	mode := os.FileMode(defaultMode)
	if restrictAccess {
		mode = restrictedMode
	}
	f, err := l.fs.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, mode)
	if err != nil {
		return errors.WithStack(err)
	}
	defer f.Close()

	if restrictAccess {
		// The create mode is filtered by umask; chmod makes it exact.
		if err := l.fs.Chmod(path, restrictedMode); err != nil {
			return errors.WithStack(err)
		}
	}
	if _, err := f.Write(data); err != nil {
		return errors.WithStack(err)
	}
	return errors.WithStack(f.Sync())
}

// Dispose removes the file and the environment binding. It is safe to call
// more than once. Failures are reported on the build log and never returned:
// by the time disposal runs the build outcome is already decided.
func (l *Lifecycle) Dispose(h *Handle) {
	if h == nil || h.disposed {
		return
	}
	h.disposed = true

	if l.env != nil {
		l.env.Unset(EnvVar)
	}
	if err := l.fs.Remove(h.Path); err != nil && !os.IsNotExist(err) {
		l.buildLog.Warnf("failed to remove kubectl configuration %s: %v", h.Path, err)
		return
	}
	l.buildLog.Printf("kubectl configuration cleaned up")
}

// WithKubeConfig materializes doc, runs fn with the file path and removes the
// file when fn returns, fails, panics, or ctx is cancelled.
func WithKubeConfig(
	ctx context.Context,
	l *Lifecycle,
	doc *kubeconfig.Config,
	restrictAccess bool,
	fn func(ctx context.Context, path string) error,
) error {
	h, err := l.Acquire(ctx, doc, restrictAccess)
	if err != nil {
		return err
	}
	defer l.Dispose(h)

	return fn(ctx, h.Path)
}

// MapEnv is an in-memory EnvSink, typically turned into a child process
// environment with Environ.
type MapEnv map[string]string

func (m MapEnv) Set(key, value string) { m[key] = value }

func (m MapEnv) Unset(key string) { delete(m, key) }

// Environ returns base with m's bindings applied, in os.Environ format.
func (m MapEnv) Environ(base []string) []string {
	out := make([]string, 0, len(base)+len(m))
	for _, kv := range base {
		key, _, _ := strings.Cut(kv, "=")
		if _, overridden := m[key]; !overridden {
			out = append(out, kv)
		}
	}
	return append(out, goutil.Entries(m)...)
}
