// Package logging configures the zerolog logger shared by all services.
package logging

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New creates a console logger on stderr at the given level. Unknown or
// empty levels fall back to info so a typo in config never silences logs.
func New(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	out := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	return zerolog.New(out).Level(lvl).With().Timestamp().Logger()
}
