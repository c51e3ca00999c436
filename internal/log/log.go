// Package log provides the logging seam used throughout the emulator
// core. Components depend on the Logger interface rather than on
// logrus directly, so tests can install a null logger.
package log

import "github.com/sirupsen/logrus"

// Logger is the minimal logging surface the core components use.
type Logger interface {
	Infof(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Debugf(format string, args ...interface{})
}

type logger struct {
	*logrus.Logger
}

// New returns a Logger backed by logrus, formatted the way the rest of
// the core expects: no timestamps or color codes, since output is
// usually piped to the frontend's own console.
func New() Logger {
	l := logrus.New()
	l.Formatter = &logrus.TextFormatter{
		DisableColors:    true,
		DisableTimestamp: true,
		DisableSorting:   true,
		DisableQuote:     true,
	}
	return &logger{l}
}

func (l *logger) Infof(format string, args ...interface{})  { l.Logger.Infof(format, args...) }
func (l *logger) Errorf(format string, args ...interface{}) { l.Logger.Errorf(format, args...) }
func (l *logger) Debugf(format string, args ...interface{}) { l.Logger.Debugf(format, args...) }

// nullLogger discards everything. Used by tests and by EnableMock-style
// headless runs where console noise would drown out test output.
type nullLogger struct{}

// NewNull returns a Logger that discards all messages.
func NewNull() Logger { return nullLogger{} }

func (nullLogger) Infof(string, ...interface{})  {}
func (nullLogger) Errorf(string, ...interface{}) {}
func (nullLogger) Debugf(string, ...interface{}) {}
