package jetlog

import (
	"fmt"
	"io"
	"strings"
)

const buildLogPrefix = "[kubernetes-cli] "

// BuildLog writes single line diagnostics into a build's console output. Each
// message is prefixed so it can be told apart from the wrapped tool's output.
// A nil *BuildLog discards everything.
type BuildLog struct {
	w io.Writer
}

func NewBuildLog(w io.Writer) *BuildLog {
	if w == nil {
		w = io.Discard
	}
	return &BuildLog{w: w}
}

func (b *BuildLog) Printf(msg string, a ...any) {
	if b == nil {
		return
	}
	line := strings.TrimRight(fmt.Sprintf(msg, a...), "\n")
	print(b.w, buildLogPrefix+line+"\n")
}

func (b *BuildLog) Warnf(msg string, a ...any) {
	b.Printf("WARNING: "+msg, a...)
}
