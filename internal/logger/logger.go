package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Output formats accepted by SetFormat
const (
	FormatJSON = "json"
	FormatText = "text"
)

const timestampFormat = "2006-01-02T15:04:05.000Z07:00"

var Logger *logrus.Logger

func init() {
	Logger = logrus.New()
	Logger.SetOutput(os.Stdout)
	SetFormat(os.Getenv("LOG_FORMAT"))
	SetLevel(os.Getenv("LOG_LEVEL"))
}

// SetLevel switches the level by name ("debug", "warn", ...), falling back to info
func SetLevel(level string) {
	parsed, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		parsed = logrus.InfoLevel
	}
	Logger.SetLevel(parsed)
}

// SetFormat selects JSON (the default) or human readable text output
func SetFormat(format string) {
	if strings.EqualFold(strings.TrimSpace(format), FormatText) {
		Logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: timestampFormat,
		})
		return
	}
	Logger.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: timestampFormat,
	})
}

// SetOutput redirects log output; the CLI keeps stdout for results
func SetOutput(w io.Writer) {
	Logger.SetOutput(w)
}

// WithFields creates a new entry with the given fields
func WithFields(fields logrus.Fields) *logrus.Entry {
	return Logger.WithFields(fields)
}

// WithField creates a new entry with a single field
func WithField(key string, value interface{}) *logrus.Entry {
	return Logger.WithField(key, value)
}

// WithError creates a new entry with an error field
func WithError(err error) *logrus.Entry {
	return Logger.WithError(err)
}

// Info logs an info message
func Info(msg string) {
	Logger.Info(msg)
}
