// Package logging provides the structured logger used across the service.
package logging

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// Fields carries structured key/value pairs for a log entry.
type Fields map[string]interface{}

var (
	baseOnce sync.Once
	base     *logrus.Logger
)

// Base returns the process-wide logrus logger, configured from LOG_LEVEL
// and LOG_FORMAT on first use.
func Base() *logrus.Logger {
	baseOnce.Do(func() {
		base = logrus.New()
		base.SetOutput(os.Stdout)
		Configure(base, os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))
	})
	return base
}

// Configure applies a level and a format ("json" or "text") to l.
func Configure(l *logrus.Logger, level, format string) {
	lvl, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		lvl = logrus.InfoLevel
	}
	l.SetLevel(lvl)

	if strings.EqualFold(format, "text") {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
		return
	}
	l.SetFormatter(&logrus.JSONFormatter{})
}

// LoggerV2 is a component-scoped structured logger.
type LoggerV2 struct {
	entry *logrus.Entry
}

// NewLoggerV2 creates a logger tagged with the given service/component name.
func NewLoggerV2(service string) *LoggerV2 {
	return &LoggerV2{entry: Base().WithField("service", service)}
}

// NewTestLogger returns a logger that writes to w, for tests.
func NewTestLogger(w io.Writer) *LoggerV2 {
	l := logrus.New()
	l.SetOutput(w)
	l.SetLevel(logrus.DebugLevel)
	l.SetFormatter(&logrus.JSONFormatter{})
	return &LoggerV2{entry: logrus.NewEntry(l)}
}

// With returns a child logger carrying the given fields on every entry.
func (l *LoggerV2) With(fields Fields) *LoggerV2 {
	return &LoggerV2{entry: l.entry.WithFields(logrus.Fields(fields))}
}

func (l *LoggerV2) withFields(fields []Fields) *logrus.Entry {
	e := l.entry
	for _, f := range fields {
		e = e.WithFields(logrus.Fields(f))
	}
	return e
}

func (l *LoggerV2) Debug(msg string, fields ...Fields) {
	l.withFields(fields).Debug(msg)
}

func (l *LoggerV2) Info(msg string, fields ...Fields) {
	l.withFields(fields).Info(msg)
}

func (l *LoggerV2) Warn(msg string, fields ...Fields) {
	l.withFields(fields).Warn(msg)
}

func (l *LoggerV2) Error(msg string, fields ...Fields) {
	l.withFields(fields).Error(msg)
}

// Fatal logs and exits the process.
func (l *LoggerV2) Fatal(msg string, fields ...Fields) {
	l.withFields(fields).Fatal(msg)
}

// Infof logs a formatted message on the base logger.
func Infof(format string, args ...interface{}) {
	Base().Infof(format, args...)
}

// Info logs a message with fields on the base logger.
func Info(msg string, fields ...Fields) {
	e := logrus.NewEntry(Base())
	for _, f := range fields {
		e = e.WithFields(logrus.Fields(f))
	}
	e.Info(msg)
}
