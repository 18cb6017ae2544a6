package context

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/workloadsec/aiomigrate/pkg/errors"
	"github.com/workloadsec/aiomigrate/pkg/platform"
)

// MockContext provides a mock implementation of Context for testing.
// Each method can be customized by setting the corresponding field.
// If a field is nil, the method returns a default/zero value.
//
// Example Usage:
//
//	mock := &context.MockContext{
//	    ConnectorList: []*platform.Connector{source, target},
//	    FormatValue:   "json",
//	}
//	cmd := migrate.NewGroupsCommand(mock)
type MockContext struct {
	LoggerFunc    func() *zerolog.Logger
	FormatValue   string
	NoColorValue  bool
	ConnectorList []*platform.Connector
	ConnectorsErr error
	VersionValue  string
}

// Logger returns a logger using the mock function or a no-op logger.
func (m *MockContext) Logger() *zerolog.Logger {
	if m.LoggerFunc != nil {
		return m.LoggerFunc()
	}
	logger := zerolog.Nop()
	return &logger
}

// OutputFormat returns the configured format value.
func (m *MockContext) OutputFormat() string {
	return m.FormatValue
}

// NoColor returns the configured value.
func (m *MockContext) NoColor() bool {
	return m.NoColorValue
}

// Connectors returns ConnectorList or ConnectorsErr.
func (m *MockContext) Connectors() ([]*platform.Connector, error) {
	if m.ConnectorsErr != nil {
		return nil, m.ConnectorsErr
	}
	return m.ConnectorList, nil
}

// Connector returns an entry of ConnectorList by 1-based ID.
func (m *MockContext) Connector(id int) (*platform.Connector, error) {
	connectors, err := m.Connectors()
	if err != nil {
		return nil, err
	}
	if id < 1 || id > len(connectors) {
		return nil, errors.NewValidationError("endpoint", id,
			fmt.Sprintf("endpoint ID must be between 1 and %d", len(connectors)))
	}
	return connectors[id-1], nil
}

// Version returns VersionValue or "dev".
func (m *MockContext) Version() string {
	if m.VersionValue != "" {
		return m.VersionValue
	}
	return "dev"
}
