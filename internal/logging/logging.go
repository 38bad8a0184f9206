// Package logging builds the zerolog logger used by the CLI.
package logging

import (
	"io"
	"strings"

	"github.com/rs/zerolog"

	"github.com/NielsdaWheelz/curator/internal/errors"
)

// ParseLevel maps a config level name (debug, info, warn, error) to a
// zerolog level. Empty means warn.
func ParseLevel(s string) (zerolog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return zerolog.WarnLevel, nil
	case "debug":
		return zerolog.DebugLevel, nil
	case "info":
		return zerolog.InfoLevel, nil
	case "warn", "warning":
		return zerolog.WarnLevel, nil
	case "error":
		return zerolog.ErrorLevel, nil
	}
	return zerolog.NoLevel, errors.NewWithDetails(errors.EInvalidConfig,
		"unknown log level '"+s+"'", map[string]string{"hint": "use debug, info, warn, or error"})
}

// New returns a console logger writing to w at level. Timestamps are
// omitted: output is meant for a terminal session, not a log file.
func New(w io.Writer, level zerolog.Level, color bool) zerolog.Logger {
	cw := zerolog.ConsoleWriter{
		Out:          w,
		NoColor:      !color,
		PartsExclude: []string{zerolog.TimestampFieldName},
	}
	return zerolog.New(cw).Level(level).With().Logger()
}

// Component returns l tagged with a component field.
func Component(l zerolog.Logger, name string) zerolog.Logger {
	return l.With().Str("component", name).Logger()
}
