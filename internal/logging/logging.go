// Package logging builds the logrus loggers used by the CLI and hands library
// packages a silent default when the host injects none.
package logging

import (
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
)

const (
	FormatText = "text"
	FormatJSON = "json"
)

// New returns a logger writing to w at level ("trace".."error", default
// "warn") in the given format ("text" or "json", default "text").
func New(w io.Writer, level, format string) (*logrus.Logger, error) {
	l := logrus.New()
	l.SetOutput(w)

	if strings.TrimSpace(level) == "" {
		level = "warn"
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	l.SetLevel(lvl)

	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", FormatText:
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	case FormatJSON:
		l.SetFormatter(&logrus.JSONFormatter{})
	default:
		return nil, fmt.Errorf("unknown log format %q (want %s or %s)", format, FormatText, FormatJSON)
	}
	return l, nil
}

// OrDiscard returns log, or a logger that drops everything when log is nil.
func OrDiscard(log logrus.FieldLogger) logrus.FieldLogger {
	if log != nil {
		return log
	}
	return Discard()
}

// Discard returns a logger that writes nowhere.
func Discard() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	l.SetLevel(logrus.PanicLevel)
	return l
}
