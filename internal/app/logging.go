package app

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ConfigureLogging points the global logger at stderr with a console
// writer and sets the level. Unknown levels fall back to info.
func ConfigureLogging(level string) {
	ConfigureLoggingTo(os.Stderr, level)
}

// ConfigureLoggingTo is ConfigureLogging with an explicit destination.
func ConfigureLoggingTo(out io.Writer, level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	log.Logger = zerolog.New(zerolog.ConsoleWriter{
		Out: out, TimeFormat: "2006-01-02_15:04:05",
	}).With().Timestamp().Logger()
}
