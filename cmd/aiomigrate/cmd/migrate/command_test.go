package migrate

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appcontext "github.com/workloadsec/aiomigrate/cmd/aiomigrate/context"
	"github.com/workloadsec/aiomigrate/internal/platformtest"
	"github.com/workloadsec/aiomigrate/pkg/config"
	"github.com/workloadsec/aiomigrate/pkg/errors"
	"github.com/workloadsec/aiomigrate/pkg/platform"
)

type fixture struct {
	src, tgt *platformtest.Server
	app      *appcontext.MockContext
}

func newFixture(t *testing.T, format string) *fixture {
	t.Helper()
	f := &fixture{
		src: platformtest.New(t, "source-key"),
		tgt: platformtest.New(t, "target-key"),
	}
	connectors, err := platform.NewConnectors(&config.Config{Endpoints: []config.Endpoint{
		f.src.Endpoint("ds"),
		f.tgt.Endpoint("swp"),
	}})
	require.NoError(t, err)
	f.app = &appcontext.MockContext{ConnectorList: connectors, FormatValue: format, NoColorValue: true}
	return f
}

func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestListGroups(t *testing.T) {
	f := newFixture(t, "")
	f.src.Seed("computergroups",
		map[string]any{"ID": 10, "name": "G1"},
		map[string]any{"ID": 11, "name": "G2", "parentGroupID": 10},
	)

	out, err := execute(t, NewGroupsCommand(f.app), "1")
	require.NoError(t, err)
	assert.Contains(t, out, "name: G2")
	assert.Contains(t, out, "parentGroupID: 10")
	assert.Empty(t, f.tgt.Requests(), "listing never touches other endpoints")
}

func TestListScheduledTasksJSON(t *testing.T) {
	f := newFixture(t, "json")
	f.src.Seed("scheduledtasks",
		map[string]any{"ID": 1, "name": "Scan", "type": "scan-for-malware"},
		map[string]any{"ID": 2, "name": "Cloud sync", "type": "synchronize-cloud-account", "cloudType": "amazon"},
	)

	out, err := execute(t, NewScheduledTasksCommand(f.app), "1")
	require.NoError(t, err)

	var tasks []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &tasks))
	require.Len(t, tasks, 1, "cloud managed tasks are left out")
	assert.Equal(t, "Scan", tasks[0]["name"])
}

func TestMergeGroups(t *testing.T) {
	f := newFixture(t, "")
	f.src.Seed("computergroups",
		map[string]any{"ID": 10, "name": "G1"},
		map[string]any{"ID": 11, "name": "G2", "parentGroupID": 10},
	)

	out, err := execute(t, NewGroupsCommand(f.app), "1", "--destination", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "computer groups ds#1 → swp#2")
	assert.Contains(t, out, "2 merged (2 created, 0 existing), 0 remaining")
	assert.Len(t, f.tgt.Records("computergroups"), 2)
}

func TestMergeTasksWithLegacyFlags(t *testing.T) {
	f := newFixture(t, "json")
	f.src.Seed("eventbasedtasks", map[string]any{"ID": 1, "name": "Activate", "actions": []any{
		map[string]any{"type": "activate"},
	}})

	out, err := execute(t, NewEventBasedTasksCommand(f.app), "1", "-d", "2", "--taskprefix", "DS-")
	require.NoError(t, err)

	var report map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, "event-based tasks", report["kind"])
	_, ok := f.tgt.ByName("eventbasedtasks", "DS-Activate")
	assert.True(t, ok)
}

func TestCommandErrors(t *testing.T) {
	tests := []struct {
		name string
		cmd  func(appcontext.Context) *cobra.Command
		args []string
	}{
		{"non-numeric source", NewGroupsCommand, []string{"one"}},
		{"unknown source", NewGroupsCommand, []string{"7"}},
		{"unknown destination", NewFoldersCommand, []string{"1", "--destination", "9"}},
		{"same endpoint", NewScheduledTasksCommand, []string{"2", "--destination", "2"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, "")
			_, err := execute(t, tt.cmd(f.app), tt.args...)
			require.Error(t, err)
			assert.True(t, errors.IsValidationError(err))
		})
	}
}

func TestFlagsPerCommand(t *testing.T) {
	f := newFixture(t, "")

	groups := NewGroupsCommand(f.app)
	assert.Nil(t, groups.Flags().Lookup("task-prefix"))
	assert.Nil(t, groups.Flags().Lookup("policy-suffix"))

	tasks := NewScheduledTasksCommand(f.app)
	require.NotNil(t, tasks.Flags().Lookup("policysuffix"))
	assert.True(t, tasks.Flags().Lookup("policysuffix").Hidden)
	assert.NotNil(t, tasks.Flags().Lookup("task-prefix"))
}
