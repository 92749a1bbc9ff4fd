package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/pdfslim/pdfslim/observability"
)

// consoleLogger prints structured log events as single lines. Debug events are
// suppressed unless verbose mode is on.
type consoleLogger struct {
	out     io.Writer
	verbose bool
	fields  []observability.Field
}

func newConsoleLogger(out io.Writer, verbose bool) *consoleLogger {
	return &consoleLogger{out: out, verbose: verbose}
}

func (l *consoleLogger) emit(level, msg string, fields []observability.Field) {
	var b strings.Builder
	fmt.Fprintf(&b, "%-5s %s", level, msg)
	for _, f := range append(l.fields, fields...) {
		fmt.Fprintf(&b, " %s=%v", f.Key(), f.Value())
	}
	fmt.Fprintln(l.out, b.String())
}

func (l *consoleLogger) Debug(msg string, fields ...observability.Field) {
	if l.verbose {
		l.emit("debug", msg, fields)
	}
}

func (l *consoleLogger) Info(msg string, fields ...observability.Field) {
	l.emit("info", msg, fields)
}

func (l *consoleLogger) Warn(msg string, fields ...observability.Field) {
	l.emit("warn", msg, fields)
}

func (l *consoleLogger) Error(msg string, fields ...observability.Field) {
	l.emit("error", msg, fields)
}

func (l *consoleLogger) With(fields ...observability.Field) observability.Logger {
	child := *l
	child.fields = append(append([]observability.Field(nil), l.fields...), fields...)
	return &child
}
