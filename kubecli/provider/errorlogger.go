package provider

import (
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/pkg/errors"
	"go.jetpack.io/kubecreds/kubecreds"
)

const flushTimeout = 2 * time.Second

type ErrorLogger interface {
	CaptureException(exception error)

	// DisplayException displays an error to the user. Returns true if the
	// error is displayed, in which case the caller only has to exit.
	DisplayException(err error) bool
}

type NoOpLogger struct{}

var _ ErrorLogger = (*NoOpLogger)(nil)

func (l *NoOpLogger) CaptureException(err error) {}
func (l *NoOpLogger) DisplayException(err error) bool {
	return false
}

// SentryLogger reports errors to the sentry hub configured by the embedding
// program. Stage errors are tagged with the failing stage.
type SentryLogger struct {
	NoOpLogger
}

var _ ErrorLogger = (*SentryLogger)(nil)

func (l *SentryLogger) CaptureException(err error) {
	sentry.WithScope(func(scope *sentry.Scope) {
		stageErr := &kubecreds.StageError{}
		if errors.As(err, &stageErr) {
			scope.SetTag("stage", string(stageErr.Stage))
		}
		sentry.CaptureException(err)
	})
	// The CLI exits right after reporting.
	sentry.Flush(flushTimeout)
}
