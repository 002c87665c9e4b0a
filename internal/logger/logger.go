// Package logger builds the structured logger shared by every component.
package logger

import (
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

// New returns a JSON logger tagged with the service name. An unknown level
// falls back to info. A nil out writes to stdout.
func New(service, level string, out io.Writer) *logrus.Entry {
	if out == nil {
		out = os.Stdout
	}

	l := logrus.New()
	l.SetOutput(out)
	l.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: time.RFC3339Nano,
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime:  "ts",
			logrus.FieldKeyLevel: "level",
			logrus.FieldKeyMsg:   "message",
		},
	})

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	l.SetLevel(lvl)

	return l.WithField("service", service)
}

// Component derives a child logger for one part of the application.
func Component(base *logrus.Entry, name string) *logrus.Entry {
	return base.WithField("component", name)
}

// WithRequestID attaches the request id when one is present.
func WithRequestID(base *logrus.Entry, requestID string) *logrus.Entry {
	if requestID == "" {
		return base
	}
	return base.WithField("request_id", requestID)
}

// Discard returns a logger that drops everything, for tests and one-shot commands.
func Discard() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}
