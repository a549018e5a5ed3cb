package jetlog

import (
	"io"
	"log"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
)

type logger struct {
	writer  io.Writer
	spinner *spinner.Spinner
}

func (l *logger) WarningPrintf(msg string, a ...any) {
	if l.spinner.Active() {
		l.spinner.Stop()
	}
	printfFunc := color.New(color.FgHiYellow, color.Bold).FprintfFunc()
	msg = "WARNING: " + msg + "\n"
	printfFunc(l.writer, msg, a...)
}

// WithSpinnerFuncPrint prints out a message and starts a spinner. closure() will then be
// executed, and the spinner stopped after it's done.
func (l *logger) WithSpinnerFuncPrint(closure func(), msg string) {
	if l.spinner.Active() { // from previous command.
		l.spinner.Stop()
	}
	l.spinner.Prefix = msg
	l.spinner.FinalMSG = "✔ " + msg + "\n"
	l.spinner.Start()
	defer l.spinner.Stop()

	closure()
}

func print(w io.Writer, msg string) {
	_, err := w.Write([]byte(msg))
	if err != nil {
		log.Println(err)
	}
}
