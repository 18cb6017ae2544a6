package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"

	"github.com/workloadsec/aiomigrate/pkg/constants"
)

// Config describes one logger.
type Config struct {
	// Level is the minimum level (trace, debug, info, warn, error, off)
	Level string

	// Format is json, console or auto (console on a terminal)
	Format string

	// Output is stderr, stdout, discard or a file path appended to
	Output string

	// NoColor disables color in console mode
	NoColor bool

	// AddCaller includes file:line; always on at debug and below
	AddCaller bool
}

// NewLoggerFromConfig builds a logger and sets the zerolog global level to
// match. A nil config means info level JSON or console on stderr.
func NewLoggerFromConfig(cfg *Config) zerolog.Logger {
	if cfg == nil {
		cfg = &Config{}
	}

	level := parseLevel(cfg.Level)
	zerolog.SetGlobalLevel(level)

	out, terminal := openOutput(cfg.Output)
	logger := zerolog.New(formatWriter(out, terminal, cfg)).
		Level(level).
		With().
		Timestamp().
		Logger()

	if cfg.AddCaller || level <= zerolog.DebugLevel {
		logger = logger.With().Caller().Logger()
	}
	return logger
}

// openOutput resolves the output setting. A file that cannot be opened
// falls back to stderr.
func openOutput(output string) (io.Writer, bool) {
	switch strings.ToLower(output) {
	case "stdout":
		return os.Stdout, isatty.IsTerminal(os.Stdout.Fd())
	case "", "stderr":
		return os.Stderr, isatty.IsTerminal(os.Stderr.Fd())
	case "discard", "none":
		return io.Discard, false
	}
	file, err := os.OpenFile(output, os.O_CREATE|os.O_APPEND|os.O_WRONLY, constants.LogFilePermissions)
	if err != nil {
		return os.Stderr, isatty.IsTerminal(os.Stderr.Fd())
	}
	return file, false
}

func formatWriter(out io.Writer, terminal bool, cfg *Config) io.Writer {
	switch strings.ToLower(cfg.Format) {
	case "console", "pretty":
	case "", "auto":
		if !terminal {
			return out
		}
	default:
		return out
	}
	return zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: time.DateTime,
		NoColor:    cfg.NoColor,
	}
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "", "info":
		return zerolog.InfoLevel
	case "warning":
		return zerolog.WarnLevel
	case "disabled", "none", "off":
		return zerolog.Disabled
	}
	if l, err := zerolog.ParseLevel(strings.ToLower(level)); err == nil {
		return l
	}
	return zerolog.InfoLevel
}

// addField adds a field to the context based on its type
func addField(ctx zerolog.Context, key string, value any) zerolog.Context {
	switch v := value.(type) {
	case string:
		return ctx.Str(key, v)
	case int:
		return ctx.Int(key, v)
	case int64:
		return ctx.Int64(key, v)
	case bool:
		return ctx.Bool(key, v)
	case error:
		return ctx.AnErr(key, v)
	default:
		return ctx.Interface(key, v)
	}
}
