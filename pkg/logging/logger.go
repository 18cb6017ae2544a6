// Package logging provides structured logging for aiomigrate using zerolog.
// Console output is used when the log stream is a terminal and JSON
// otherwise, so migration runs can be followed interactively or collected by
// a log shipper.
//
// Merge code never holds a logger of its own; it reads the one carried by
// the context and narrows it per object:
//
//	ctx = logging.WithOperation(ctx, "merge_groups")
//	ctx = logging.WithObject(ctx, "computer group", 10)
//	logging.FromContext(ctx).Debug().Msg("Adding root")
package logging

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// defaultLogger serves contexts that carry no logger, mostly library use
// outside the CLI. It honors LOG_LEVEL, DEBUG and LOG_FORMAT.
var defaultLogger = NewLoggerFromConfig(envConfig())

func envConfig() *Config {
	level := os.Getenv("LOG_LEVEL")
	if level == "" && os.Getenv("DEBUG") != "" {
		level = "debug"
	}
	return &Config{
		Level:   level,
		Format:  os.Getenv("LOG_FORMAT"),
		NoColor: os.Getenv("NO_COLOR") != "",
	}
}

// Default returns the process wide fallback logger.
func Default() *zerolog.Logger {
	return &defaultLogger
}

// SetDefault replaces the fallback logger. The CLI calls it once the
// command line has been parsed.
func SetDefault(logger zerolog.Logger) {
	defaultLogger = logger
	log.Logger = logger
}
