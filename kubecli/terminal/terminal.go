package terminal

import (
	"os"

	"github.com/mattn/go-isatty"
)

// IsInteractive reports whether a person is watching: stdout is a terminal
// and the process is not running under a CI system.
func IsInteractive() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) && os.Getenv("CI") == ""
}
