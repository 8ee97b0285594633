package main

import "go.uber.org/zap"

// zapLogger adapts a named zap logger to the printf style loggers the
// service packages expect.
type zapLogger struct {
	s *zap.SugaredLogger
}

func newZapLogger(base *zap.Logger, name string) zapLogger {
	return zapLogger{s: base.Named(name).Sugar()}
}

func (l zapLogger) Debug(format string, args ...any) { l.s.Debugf(format, args...) }
func (l zapLogger) Info(format string, args ...any)  { l.s.Infof(format, args...) }
func (l zapLogger) Warn(format string, args ...any)  { l.s.Warnf(format, args...) }
func (l zapLogger) Error(format string, args ...any) { l.s.Errorf(format, args...) }
