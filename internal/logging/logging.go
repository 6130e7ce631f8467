// Package logging wires the process-wide zerolog logger the way the
// rest of the pack's services do: console writer for a dev terminal,
// structured JSON otherwise, with a single entry point that components
// derive sub-loggers from via .With().
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New builds a logger. If pretty is true (an interactive terminal; the
// CLI sets it from the LOG_PRETTY env var) it uses zerolog's
// console writer; otherwise it emits newline-delimited JSON suitable
// for aggregation.
func New(pretty bool, level zerolog.Level) zerolog.Logger {
	var w io.Writer = os.Stderr
	if pretty {
		w = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	}
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

// Component returns a child logger tagged with the owning component
// name, the pattern used throughout the job/api/domain packages.
func Component(base zerolog.Logger, name string) zerolog.Logger {
	return base.With().Str("component", name).Logger()
}
