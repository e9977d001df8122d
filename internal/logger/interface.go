package logger

import (
	"github.com/mqasimca/nvctl/internal/errors"
	"github.com/rs/zerolog"
)

// LogEvent is the chainable event returned by every logging call. It is a
// type alias for zerolog.Event rather than a wrapper struct: callers get
// zerolog's full fluent field-setter API (Int, Str, Interface, ...) without
// this package re-exporting each one.
type LogEvent = zerolog.Event

// Logger defines the interface for logging operations. ErrorWithCode and
// FatalWithCode log the error's code and message as structured fields;
// ErrorWithContext additionally tags which component/operation the error
// occurred in, for errors surfaced far from where they were constructed.
type Logger interface {
	Debug() *LogEvent
	Info() *LogEvent
	Warn() *LogEvent
	Error() *LogEvent
	ErrorWithCode(err errors.Error) *LogEvent
	FatalWithCode(err errors.Error) *LogEvent
	ErrorWithContext(err errors.Error, component, operation string) *LogEvent
}
