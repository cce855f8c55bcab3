package logger

import "github.com/rs/zerolog"

// Severity :
// Describes the various available log severities that can be used
// in conjunction with the logger interface. The ordering matters:
// a logger configured with a minimum level will discard any trace
// whose severity sorts below it.
type Severity int

// Define the possible log severities, from the least to the most
// important.
const (
	Verbose Severity = iota
	Debug
	Info
	Notice
	Warning
	Error
	Critical
	Fatal
)

// String :
// Provides a string value from the input severity. This is mostly
// useful for logging devices that do not understand the `Severity`
// type directly (e.g. when building a message by hand).
//
// Returns the string representing the input log level.
func (s Severity) String() string {
	switch s {
	case Verbose:
		return "verbose"
	case Debug:
		return "debug"
	case Info:
		return "info"
	case Notice:
		return "notice"
	case Warning:
		return "warning"
	case Error:
		return "error"
	case Critical:
		return "critical"
	case Fatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// zerologLevel :
// Converts the internal severity representation to the matching
// zerolog level so that the std logger can delegate formatting and
// filtering to the zerolog engine.
func (s Severity) zerologLevel() zerolog.Level {
	switch s {
	case Verbose:
		return zerolog.TraceLevel
	case Debug:
		return zerolog.DebugLevel
	case Info:
		return zerolog.InfoLevel
	case Notice:
		return zerolog.InfoLevel
	case Warning:
		return zerolog.WarnLevel
	case Error:
		return zerolog.ErrorLevel
	case Critical:
		return zerolog.ErrorLevel
	case Fatal:
		return zerolog.FatalLevel
	default:
		return zerolog.InfoLevel
	}
}
