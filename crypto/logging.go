package crypto

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// LoggerHelper carries the standard fields of a crypto package log line and
// the logger they are written to.
type LoggerHelper struct {
	base   *logrus.Logger
	fields logrus.Fields
}

// NewLogger creates a logger helper for function writing to the logrus
// standard logger.
func NewLogger(function string) *LoggerHelper {
	return newLoggerFor(nil, function)
}

func newLoggerFor(base *logrus.Logger, function string) *LoggerHelper {
	if base == nil {
		base = logrus.StandardLogger()
	}
	return &LoggerHelper{
		base: base,
		fields: logrus.Fields{
			"function": function,
			"package":  "crypto",
		},
	}
}

// WithField adds a custom field to the logger
func (l *LoggerHelper) WithField(key string, value interface{}) *LoggerHelper {
	l.fields[key] = value
	return l
}

// WithError records err along with the operation that produced it.
func (l *LoggerHelper) WithError(err error, operation string) *LoggerHelper {
	l.fields["error"] = err.Error()
	l.fields["operation"] = operation
	return l
}

// Debug logs a debug message
func (l *LoggerHelper) Debug(message string) {
	l.base.WithFields(l.fields).Debug(message)
}

// Warn logs a warning message
func (l *LoggerHelper) Warn(message string) {
	l.base.WithFields(l.fields).Warn(message)
}

// SecureFieldHash creates a preview of binary data for logging: the first 8
// bytes in hex and the total size. Never pass key material.
func SecureFieldHash(data []byte, name string) logrus.Fields {
	preview := "nil"
	if len(data) > 0 {
		previewLen := 8
		if len(data) < previewLen {
			previewLen = len(data)
		}
		preview = fmt.Sprintf("%x", data[:previewLen])
		if len(data) > previewLen {
			preview += "..."
		}
	}

	return logrus.Fields{
		name + "_preview": preview,
		name + "_size":    len(data),
	}
}

// WithFields merges extra fields, typically from SecureFieldHash.
func (l *LoggerHelper) WithFields(fields logrus.Fields) *LoggerHelper {
	for k, v := range fields {
		l.fields[k] = v
	}
	return l
}
