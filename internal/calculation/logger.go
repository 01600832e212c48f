package calculation

import (
	"fmt"
	"log/slog"
)

// Logger is the logging surface the engine writes to
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// NopLogger discards everything
type NopLogger struct{}

func (NopLogger) Debugf(string, ...interface{}) {}
func (NopLogger) Infof(string, ...interface{})  {}
func (NopLogger) Warnf(string, ...interface{})  {}
func (NopLogger) Errorf(string, ...interface{}) {}

// SlogLogger forwards to a *slog.Logger; a nil Logger uses slog.Default()
type SlogLogger struct {
	Logger *slog.Logger
}

func (l SlogLogger) log() *slog.Logger {
	if l.Logger == nil {
		return slog.Default()
	}
	return l.Logger
}

func (l SlogLogger) Debugf(format string, args ...interface{}) { l.log().Debug(fmt.Sprintf(format, args...)) }
func (l SlogLogger) Infof(format string, args ...interface{})  { l.log().Info(fmt.Sprintf(format, args...)) }
func (l SlogLogger) Warnf(format string, args ...interface{})  { l.log().Warn(fmt.Sprintf(format, args...)) }
func (l SlogLogger) Errorf(format string, args ...interface{}) { l.log().Error(fmt.Sprintf(format, args...)) }
