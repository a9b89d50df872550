// Package log defines the logger used by the receipt decoder and its tools.
//
// Decoding is silent by default. Callers that want diagnostics pass a Logger
// through receipt.WithLogger or attach one to a context with WithLogger.
// github.com/sirupsen/logrus.Logger and go.uber.org/zap.SugaredLogger satisfy
// the interface; NewStd adapts the standard library logger.
package log

import (
	"context"
	"fmt"
	stdlog "log"
)

type contextKey int

const loggerKey contextKey = iota

// Discard drops every message.
var Discard Logger = discardLogger{}

// Logger is a leveled logger.
type Logger interface {
	Debug(args ...interface{})
	Debugf(format string, args ...interface{})
	Info(args ...interface{})
	Infof(format string, args ...interface{})
	Warn(args ...interface{})
	Warnf(format string, args ...interface{})
	Error(args ...interface{})
	Errorf(format string, args ...interface{})
}

// WithLogger returns a copy of ctx carrying logger.
func WithLogger(ctx context.Context, logger Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// GetLogger returns the Logger carried by ctx, or Discard.
func GetLogger(ctx context.Context) Logger {
	if logger, ok := ctx.Value(loggerKey).(Logger); ok {
		return logger
	}
	return Discard
}

type discardLogger struct{}

func (discardLogger) Debug(args ...interface{})                 {}
func (discardLogger) Debugf(format string, args ...interface{}) {}
func (discardLogger) Info(args ...interface{})                  {}
func (discardLogger) Infof(format string, args ...interface{})  {}
func (discardLogger) Warn(args ...interface{})                  {}
func (discardLogger) Warnf(format string, args ...interface{})  {}
func (discardLogger) Error(args ...interface{})                 {}
func (discardLogger) Errorf(format string, args ...interface{}) {}

// StdLogger writes level-prefixed lines to a standard library logger.
type StdLogger struct {
	l     *stdlog.Logger
	debug bool
}

// NewStd wraps l. Debug messages are dropped unless debug is set. A nil l
// writes to the standard logger.
func NewStd(l *stdlog.Logger, debug bool) *StdLogger {
	if l == nil {
		l = stdlog.Default()
	}
	return &StdLogger{l: l, debug: debug}
}

func (s *StdLogger) output(level string, msg string) {
	_ = s.l.Output(3, level+": "+msg)
}

func (s *StdLogger) Debug(args ...interface{}) {
	if s.debug {
		s.output("DEBUG", fmt.Sprint(args...))
	}
}

func (s *StdLogger) Debugf(format string, args ...interface{}) {
	if s.debug {
		s.output("DEBUG", fmt.Sprintf(format, args...))
	}
}

func (s *StdLogger) Info(args ...interface{}) {
	s.output("INFO", fmt.Sprint(args...))
}

func (s *StdLogger) Infof(format string, args ...interface{}) {
	s.output("INFO", fmt.Sprintf(format, args...))
}

func (s *StdLogger) Warn(args ...interface{}) {
	s.output("WARN", fmt.Sprint(args...))
}

func (s *StdLogger) Warnf(format string, args ...interface{}) {
	s.output("WARN", fmt.Sprintf(format, args...))
}

func (s *StdLogger) Error(args ...interface{}) {
	s.output("ERROR", fmt.Sprint(args...))
}

func (s *StdLogger) Errorf(format string, args ...interface{}) {
	s.output("ERROR", fmt.Sprintf(format, args...))
}
