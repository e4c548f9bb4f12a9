// Package logging provides module-scoped loggers carried in contexts.
package logging

import "context"

// Logger is the logging interface used throughout datals. It is shaped
// after zap's SugaredLogger so one can back it directly.
type Logger interface {
	Debugf(msg string, args ...interface{})
	Debugw(msg string, keyValuePairs ...interface{})
	Infof(msg string, args ...interface{})
	Warnf(msg string, args ...interface{})
	Errorf(msg string, args ...interface{})
}

// LoggerForModuleFunc returns a logger for the given module name.
type LoggerForModuleFunc func(module string) Logger

type contextKey string

const loggerKey contextKey = "logger"

// WithLogger returns a derived context with the associated logger factory.
func WithLogger(ctx context.Context, l LoggerForModuleFunc) context.Context {
	if l == nil {
		l = getNullLogger
	}

	return context.WithValue(ctx, loggerKey, l)
}

// Module returns a function that provides the logger for the given
// module from a context. Contexts without a logger produce a null
// logger that discards all messages.
func Module(module string) func(ctx context.Context) Logger {
	return func(ctx context.Context) Logger {
		if l, ok := ctx.Value(loggerKey).(LoggerForModuleFunc); ok {
			return l(module)
		}

		return getNullLogger(module)
	}
}
