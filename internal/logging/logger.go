package logging

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Init configures the global zerolog logger from the environment.
//
// ADFORGE_LOG_LEVEL controls the level: debug, info, warn, error (default: info).
// ADFORGE_LOG_FORMAT=json writes structured JSON lines (used under Lambda);
// anything else writes human-readable console output to stderr.
//
// The global logger also becomes the fallback for log.Ctx on contexts that
// carry no request logger.
func Init() {
	zerolog.SetGlobalLevel(ParseLevel(os.Getenv("ADFORGE_LOG_LEVEL")))

	if strings.EqualFold(os.Getenv("ADFORGE_LOG_FORMAT"), "json") {
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	} else {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	zerolog.DefaultContextLogger = &log.Logger
}

// ParseLevel maps a level name to a zerolog level, defaulting to info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
