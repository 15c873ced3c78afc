// Package log provides centralized logging for the service using zap.
package log

import (
	"fmt"

	"go.uber.org/zap"
)

var log *zap.SugaredLogger
var baseLogger *zap.Logger

// Init initializes the package-level logger. Debug mode switches to the
// human-readable development encoder.
func Init(debug bool) error {
	var zapLogger *zap.Logger
	var err error

	if debug {
		zapLogger, err = zap.NewDevelopment(zap.AddCallerSkip(1))
	} else {
		zapLogger, err = zap.NewProduction(zap.AddCallerSkip(1))
	}
	if err != nil {
		return fmt.Errorf("can't initialize zap logger: %v", err)
	}

	baseLogger = zapLogger
	log = zapLogger.Sugar()
	return nil
}

// Sugared returns the sugared logger instance, initializing a fallback
// production logger if Init was never called.
func Sugared() *zap.SugaredLogger {
	if log == nil {
		baseLogger, _ = zap.NewProduction(zap.AddCallerSkip(1))
		log = baseLogger.Sugar()
	}
	return log
}

// Sync flushes any buffered log entries.
func Sync() {
	if log != nil {
		log.Sync()
	}
}

func Debug(args ...any)                 { Sugared().Debug(args...) }
func Debugf(format string, args ...any) { Sugared().Debugf(format, args...) }
func Info(args ...any)                  { Sugared().Info(args...) }
func Infof(format string, args ...any)  { Sugared().Infof(format, args...) }
func Warn(args ...any)                  { Sugared().Warn(args...) }
func Warnf(format string, args ...any)  { Sugared().Warnf(format, args...) }
func Error(args ...any)                 { Sugared().Error(args...) }
func Errorf(format string, args ...any) { Sugared().Errorf(format, args...) }
func Fatalf(format string, args ...any) { Sugared().Fatalf(format, args...) }
