// Package logging configures the zerolog logger shared by client components.
package logging

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// New builds a logger writing JSON lines to stderr at the given level.
// Unparseable or empty levels fall back to info so a bad environment value
// never silences the client.
func New(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(os.Stderr).Level(lvl).With().Timestamp().Logger()
}

// Nop returns a disabled logger for callers that opt out of logging.
func Nop() zerolog.Logger {
	return zerolog.Nop()
}
