// Package logger builds the zerolog logger of the command line.
package logger

import (
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// New returns a logger writing to w at level levelStr, as JSON lines when
// format is "json" or human readable otherwise. An invalid level defaults to
// info and is reported through the returned logger.
func New(levelStr, format string, w io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(levelStr)))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	out := w
	if strings.ToLower(format) != "json" {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly}
	}
	log := zerolog.New(out).Level(level).With().Timestamp().Logger()
	if err != nil {
		log.Warn().Str("configuredLevel", levelStr).Msg("invalid LOG_LEVEL, defaulting to info")
	}
	return log
}
