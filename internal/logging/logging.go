// Package logging builds the process logger from the environment.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// New returns a logger configured from LOG_LEVEL (default "info") and
// LOG_FORMAT ("json" or text).
func New() *logrus.Logger {
	return NewWithEnv(os.LookupEnv, os.Stderr)
}

// NewWithEnv is New with an explicit environment and output.
func NewWithEnv(lookup func(string) (string, bool), out io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(out)

	lvl, ok := lookup("LOG_LEVEL")
	if !ok {
		lvl = "info"
	}
	level, err := logrus.ParseLevel(lvl)
	if err != nil {
		level = logrus.InfoLevel
	}
	l.SetLevel(level)

	format, _ := lookup("LOG_FORMAT")
	if strings.EqualFold(format, "json") {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return l
}

// Discard is a logger for tests and tools that should stay quiet.
func Discard() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
