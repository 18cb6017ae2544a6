// Package context provides the application context interface for aiomigrate
// commands.
//
// Commands accept this interface rather than the concrete App type, so they
// can be tested with MockContext and connectors pointing at a fake platform.
package context

import (
	"github.com/rs/zerolog"

	"github.com/workloadsec/aiomigrate/pkg/platform"
)

// Context provides what commands need from the application.
// The App struct from cmd/aiomigrate/app implements this interface.
type Context interface {
	// Logger returns the configured logger instance.
	Logger() *zerolog.Logger

	// OutputFormat returns the --format value. Empty means the command's
	// default format.
	OutputFormat() string

	// NoColor reports whether colored output was disabled.
	NoColor() bool

	// Connectors returns one connector per configured endpoint, in
	// configuration order. Repeated calls return the same connectors.
	Connectors() ([]*platform.Connector, error)

	// Connector returns the connector for a 1-based endpoint ID.
	Connector(id int) (*platform.Connector, error)

	// Version returns the application version string.
	Version() string
}
