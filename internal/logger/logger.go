package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

var base = logrus.New()

// Init initializes the global logger with output writer and debug level.
func Init(debug bool, out io.Writer) {
	if out == nil {
		out = os.Stdout
	}
	base.SetOutput(out)
	if debug {
		base.SetLevel(logrus.DebugLevel)
		base.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		base.SetLevel(logrus.InfoLevel)
		base.SetFormatter(&logrus.JSONFormatter{})
	}
}

// Log returns a standard logger entry to use across packages.
func Log() *logrus.Entry {
	return logrus.NewEntry(base)
}

// WithFields returns a logger entry with provided fields.
func WithFields(fields logrus.Fields) *logrus.Entry {
	return Log().WithFields(fields)
}
