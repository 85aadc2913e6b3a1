// Package logging sets up the structured logger every other package logs
// through, replacing the teacher's bare log.Fatal/log.Print calls with
// github.com/rs/zerolog (§10), grounded on jhkimqd-chaos-utils's
// pkg/reporting/logger.go. Fatal configuration and capture-open failures
// (§7 kinds 1, 5) are logged at Error level before the process exits;
// packet-parse-rejects and out-of-order drops (§7 kinds 3, 4) are not
// logged at any level.
package logging

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// Level is the CLI-facing spelling of --log-level.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// New builds a zerolog.Logger writing to out (os.Stderr in cmd/, so log
// lines don't mix with the report written to stdout). Unknown
// levels fall back to Info, matching the teacher's logger default.
func New(level Level, out io.Writer) zerolog.Logger {
	if out == nil {
		out = os.Stderr
	}
	logger := zerolog.New(out).With().Timestamp().Logger()
	return logger.Level(parseLevel(level))
}

func parseLevel(level Level) zerolog.Level {
	switch level {
	case LevelDebug:
		return zerolog.DebugLevel
	case LevelWarn:
		return zerolog.WarnLevel
	case LevelError:
		return zerolog.ErrorLevel
	case LevelInfo, "":
		return zerolog.InfoLevel
	default:
		return zerolog.InfoLevel
	}
}

// Fatal logs msg at Error level with err attached, matching §7's "print
// one-line diagnostic" for kinds 1 (invalid configuration) and 5
// (capture open/filter failure). It does not call os.Exit itself —
// cmd/qlad-analyzer decides the exit code after logging.
func Fatal(logger zerolog.Logger, msg string, err error) {
	logger.Error().Err(err).Msg(msg)
}
