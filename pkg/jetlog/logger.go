package jetlog

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/briandowns/spinner"
)

var outLogger *logger

// Logger returns the console logger used by CLI commands. Output goes to
// stderr so that stdout stays clean for rendered kubeconfigs and the wrapped
// command's own output.
func Logger(ctx context.Context) *logger {
	if outLogger == nil {
		outLogger = newLogger(os.Stderr)
	}
	return outLogger
}

func newLogger(w io.Writer) *logger {
	s := spinner.New(spinner.CharSets[26], 250*time.Millisecond, spinner.WithWriter(w))
	return &logger{w, s}
}
