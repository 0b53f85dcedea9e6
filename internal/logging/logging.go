// Package logging configures the process-wide structured logger shared by
// every component of the gateway.
package logging

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Entry is a scoped logger carrying structured fields, re-exported so
// callers don't need to import logrus directly for type signatures.
type Entry = logrus.Entry

// Log is the global logger instance.
var Log = logrus.New()

func init() {
	Log.SetOutput(os.Stderr)
	Log.SetLevel(logrus.InfoLevel)
	Log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
}

// SetLevel parses and applies a log level by name.
func SetLevel(level string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	Log.SetLevel(lvl)
	return nil
}

// SetJSONFormat switches the logger to JSON output, useful when the
// gateway runs under a log collector that prefers structured records.
func SetJSONFormat() {
	Log.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: "2006-01-02T15:04:05Z07:00",
	})
}

// WithDevice returns a logger entry scoped to a single configured device.
func WithDevice(name string) *logrus.Entry {
	return Log.WithField("device", name)
}
