package endpoints

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appcontext "github.com/workloadsec/aiomigrate/cmd/aiomigrate/context"
	"github.com/workloadsec/aiomigrate/pkg/config"
	"github.com/workloadsec/aiomigrate/pkg/errors"
	"github.com/workloadsec/aiomigrate/pkg/platform"
)

func testConnectors(t *testing.T) []*platform.Connector {
	t.Helper()
	connectors, err := platform.NewConnectors(&config.Config{Endpoints: []config.Endpoint{
		{Kind: "swp", URL: "https://workload.de-1.cloudone.trendmicro.com/api/", APIKey: "tmc-0123456789abcdef"},
		{Kind: "ds", URL: "https://dsm.example.com:4119/api/", APIKey: "2:shortkey"},
	}})
	require.NoError(t, err)
	return connectors
}

func TestEndpointsJSON(t *testing.T) {
	mock := &appcontext.MockContext{ConnectorList: testConnectors(t), FormatValue: "json"}
	cmd := NewCommand(mock)
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{})

	require.NoError(t, cmd.Execute())

	var rows []Endpoint
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, Endpoint{ID: 1, Kind: "swp", URL: "https://workload.de-1.cloudone.trendmicro.com/api/", APIKey: "89abcdef"}, rows[0])
	assert.Equal(t, 2, rows[1].ID)
	assert.Equal(t, "ds", rows[1].Kind)
	assert.NotContains(t, buf.String(), "0123456789abcdef")
}

func TestEndpointsTable(t *testing.T) {
	mock := &appcontext.MockContext{ConnectorList: testConnectors(t)}
	cmd := NewCommand(mock)
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{})

	require.NoError(t, cmd.Execute())
	out := buf.String()
	assert.Contains(t, out, "https://dsm.example.com:4119/api/")
	assert.Contains(t, out, "89abcdef")
}

func TestEndpointsConfigError(t *testing.T) {
	mock := &appcontext.MockContext{ConnectorsErr: errors.NewConfigError("config", "no configuration file found", nil)}
	cmd := NewCommand(mock)
	cmd.SetArgs([]string{})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	err := cmd.Execute()
	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))
}
