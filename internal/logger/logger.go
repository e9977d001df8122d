package logger

import (
	"io"
	"os"
	"syscall"
	"time"

	"github.com/mqasimca/nvctl/internal/errors"
	"github.com/rs/zerolog"
)

// zlogger implements Logger over a zerolog.Logger. It is the only concrete
// implementation in this package; the package-level functions below
// delegate to a process-wide default instance so existing call sites
// (logger.Debug().Msg(...)) keep working without threading a Logger value
// through every function signature.
type zlogger struct {
	log zerolog.Logger
}

var _ Logger = (*zlogger)(nil)

var defaultLogger zlogger

// New wraps an already-configured zerolog.Logger as a Logger.
func New(z zerolog.Logger) Logger {
	return &zlogger{log: z}
}

// Default returns the process-wide default Logger configured by Init, for
// callers that need a Logger value to inject into a constructor rather than
// calling the package-level convenience functions directly.
func Default() Logger {
	return &defaultLogger
}

// Init configures the process-wide default logger based on the given
// configuration.
func Init(debug, verbose bool, isService bool) {
	var output io.Writer

	if isService {
		zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
		output = os.Stdout
	} else {
		output = zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		}
	}

	defaultLogger.log = zerolog.New(output).With().Timestamp().Logger()

	switch {
	case debug:
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case verbose:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	}
}

// Level mirrors zerolog's global level constants so callers outside this
// package never need to import zerolog directly just to set a level.
type Level = zerolog.Level

const (
	DebugLevel = zerolog.DebugLevel
	InfoLevel  = zerolog.InfoLevel
	WarnLevel  = zerolog.WarnLevel
)

// SetLogLevel sets the process-wide zerolog level, independent of Init.
func SetLogLevel(level Level) {
	zerolog.SetGlobalLevel(level)
}

// IsService checks if the application is running as a service
func IsService() bool {
	if _, err := os.Stdin.Stat(); err != nil {
		return true
	}

	if os.Getenv("SERVICE_NAME") != "" || os.Getenv("INVOCATION_ID") != "" {
		return true
	}

	if os.Getppid() == 1 {
		return true
	}

	if syscall.Getpgrp() == syscall.Getpid() {
		return true
	}

	return false
}

func (l *zlogger) Debug() *LogEvent { return l.log.Debug() }
func (l *zlogger) Info() *LogEvent  { return l.log.Info() }
func (l *zlogger) Warn() *LogEvent  { return l.log.Warn() }
func (l *zlogger) Error() *LogEvent { return l.log.Error() }

// ErrorWithCode logs err at Error level with its typed code as a field, and
// any attached data for additional context.
func (l *zlogger) ErrorWithCode(err errors.Error) *LogEvent {
	ev := l.log.Error().Err(err).Str("error_code", string(err.Code()))
	if data := err.GetData(); data != nil {
		ev = ev.Interface("error_data", data)
	}

	return ev
}

// FatalWithCode logs err at Fatal level with its typed code; zerolog's Fatal
// event calls os.Exit(1) once Msg/Msgf is invoked on it.
func (l *zlogger) FatalWithCode(err errors.Error) *LogEvent {
	return l.log.Fatal().Err(err).Str("error_code", string(err.Code()))
}

// ErrorWithContext logs err at Error level tagged with which component and
// operation it surfaced in, for errors logged far from their origin.
func (l *zlogger) ErrorWithContext(err errors.Error, component, operation string) *LogEvent {
	return l.log.Error().Err(err).
		Str("error_code", string(err.Code())).
		Str("component", component).
		Str("operation", operation)
}

// Package-level convenience functions delegating to the process-wide
// default logger, preserved for call sites that predate dependency
// injection via New/Logger.
func Debug() *LogEvent                     { return defaultLogger.Debug() }
func Info() *LogEvent                      { return defaultLogger.Info() }
func Warn() *LogEvent                      { return defaultLogger.Warn() }
func Error() *LogEvent                     { return defaultLogger.Error() }
func Fatal() *LogEvent                     { return defaultLogger.log.Fatal() }
func ErrorWithCode(err errors.Error) *LogEvent { return defaultLogger.ErrorWithCode(err) }
func FatalWithCode(err errors.Error) *LogEvent { return defaultLogger.FatalWithCode(err) }
func ErrorWithContext(err errors.Error, component, operation string) *LogEvent {
	return defaultLogger.ErrorWithContext(err, component, operation)
}
