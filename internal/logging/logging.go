// Package logging wraps zap in the same leveled, prefixed shape the rest of
// this codebase's predecessor used, without reaching for a package-level
// mutable logger anywhere outside the documented default instance.
package logging

import (
	"go.uber.org/zap"
)

// Logger is a thin, prefixed wrapper around a zap.SugaredLogger.
type Logger struct {
	prefix string
	sugar  *zap.SugaredLogger
}

var base *zap.Logger

func init() {
	l, err := zap.NewProduction()
	if err != nil {
		l = zap.NewNop()
	}
	base = l
}

// New creates a Logger that tags every line with prefix (e.g. "project",
// "watch").
func New(prefix string) *Logger {
	return &Logger{prefix: prefix, sugar: base.Sugar().With("component", prefix)}
}

// SetDevelopment swaps the process-wide zap core for a human-readable
// development logger. Only loggers created after the call use it; loggers
// already built, including Default, keep the production core.
func SetDevelopment() {
	l, err := zap.NewDevelopment()
	if err == nil {
		base = l
	}
}

func (l *Logger) Debug(msg string, kv ...interface{})  { l.sugar.Debugw(msg, kv...) }
func (l *Logger) Info(msg string, kv ...interface{})   { l.sugar.Infow(msg, kv...) }
func (l *Logger) Warn(msg string, kv ...interface{})   { l.sugar.Warnw(msg, kv...) }
func (l *Logger) Error(msg string, kv ...interface{})  { l.sugar.Errorw(msg, kv...) }

func (l *Logger) Debugf(format string, args ...interface{}) { l.sugar.Debugf(format, args...) }
func (l *Logger) Infof(format string, args ...interface{})  { l.sugar.Infof(format, args...) }
func (l *Logger) Warnf(format string, args ...interface{})  { l.sugar.Warnf(format, args...) }
func (l *Logger) Errorf(format string, args ...interface{}) { l.sugar.Errorf(format, args...) }

// Sync flushes any buffered log entries; call before process exit.
func (l *Logger) Sync() error { return l.sugar.Sync() }

// Default is the package-level convenience logger, mirroring the
// predecessor's package-level Debug/Info/Warn/Error helpers.
var Default = New("symgraph")
