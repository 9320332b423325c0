// Package diag is the side-channel structured logger shared by the write
// and read pipelines. Unlike a service, a library must stay silent unless a
// caller opts in, so the default logger discards everything; callers that
// want visibility install their own zerolog.Logger with SetLogger.
package diag

import "github.com/rs/zerolog"

var log zerolog.Logger = zerolog.Nop()

// SetLogger installs l as the package-wide diagnostic logger. Passing the
// zero value re-silences the package.
func SetLogger(l zerolog.Logger) {
	log = l
}

// Logger returns the currently installed logger.
func Logger() zerolog.Logger {
	return log
}

func Debug() *zerolog.Event { return log.Debug() }
func Warn() *zerolog.Event  { return log.Warn() }
func Error() *zerolog.Event { return log.Error() }
