// Package app provides the application context and dependency management
// for the aiomigrate CLI. It centralizes configuration, logging and the
// platform connectors that commands work with.
package app

import (
	"fmt"
	"io"
	"sync"

	"github.com/rs/zerolog"

	"github.com/workloadsec/aiomigrate/pkg/config"
	"github.com/workloadsec/aiomigrate/pkg/errors"
	"github.com/workloadsec/aiomigrate/pkg/platform"
)

// App represents the aiomigrate application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	// CLI configuration
	config *Config

	// Logger
	logger *zerolog.Logger

	// Command output, stdout when nil
	out io.Writer

	// Endpoint configuration and connectors (lazy-initialized)
	mu         sync.Mutex
	settings   *config.Config
	connectors []*platform.Connector
}

// New creates a new App instance with the given version information.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
	}

	cfg, err := LoadConfig()
	if err != nil {
		return nil, errors.WrapResource("load", "config", "", err)
	}
	app.config = cfg

	logger := NewLogger(cfg)
	app.logger = &logger

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	return app, nil
}

// Version returns the version information.
func (a *App) Version() string {
	return a.version
}

// Commit returns the git commit hash.
func (a *App) Commit() string {
	return a.commit
}

// Date returns the build date.
func (a *App) Date() string {
	return a.date
}

// BuiltBy returns the build system identifier.
func (a *App) BuiltBy() string {
	return a.builtBy
}

// Config returns the application configuration.
func (a *App) Config() *Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// OutputFormat returns the --format value, possibly empty.
func (a *App) OutputFormat() string {
	return a.config.Format
}

// NoColor reports whether colored output was disabled.
func (a *App) NoColor() bool {
	return a.config.NoColor
}

// Settings returns the endpoint configuration, loading it on first use.
func (a *App) Settings() (*config.Config, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.loadSettings()
}

func (a *App) loadSettings() (*config.Config, error) {
	if a.settings != nil {
		return a.settings, nil
	}
	settings, err := config.Load(a.config.ConfigFile)
	if err != nil {
		return nil, err
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	a.logger.Debug().Str("file", settings.File).Int("endpoints", len(settings.Endpoints)).Msg("Loaded configuration")
	a.settings = settings
	return settings, nil
}

// Connectors returns one connector per configured endpoint. They are
// created once so their caches live for the whole run.
func (a *App) Connectors() ([]*platform.Connector, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.connectors != nil {
		return a.connectors, nil
	}
	settings, err := a.loadSettings()
	if err != nil {
		return nil, err
	}
	connectors, err := platform.NewConnectors(settings)
	if err != nil {
		return nil, err
	}
	a.connectors = connectors
	return connectors, nil
}

// Connector returns the connector with the given 1-based endpoint ID.
func (a *App) Connector(id int) (*platform.Connector, error) {
	connectors, err := a.Connectors()
	if err != nil {
		return nil, err
	}
	if id < 1 || id > len(connectors) {
		return nil, errors.NewValidationError("endpoint", id,
			fmt.Sprintf("endpoint ID must be between 1 and %d", len(connectors)))
	}
	return connectors[id-1], nil
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom configuration.
func WithConfig(cfg *Config) Option {
	return func(a *App) error {
		a.config = cfg
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		return nil
	}
}

// WithSettings sets the endpoint configuration instead of reading a file.
func WithSettings(settings *config.Config) Option {
	return func(a *App) error {
		if err := settings.Validate(); err != nil {
			return err
		}
		a.settings = settings
		return nil
	}
}

// WithOutput redirects command output, e.g. to a buffer in tests.
func WithOutput(w io.Writer) Option {
	return func(a *App) error {
		a.out = w
		return nil
	}
}
