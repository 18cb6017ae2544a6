package resolve_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workloadsec/aiomigrate/internal/platformtest"
	"github.com/workloadsec/aiomigrate/pkg/config"
	"github.com/workloadsec/aiomigrate/pkg/errors"
	"github.com/workloadsec/aiomigrate/pkg/logging"
	"github.com/workloadsec/aiomigrate/pkg/platform"
	"github.com/workloadsec/aiomigrate/pkg/resolve"
)

type fixture struct {
	src, tgt       *platformtest.Server
	source, target *platform.Connector
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		src: platformtest.New(t, "source-key"),
		tgt: platformtest.New(t, "target-key"),
	}
	var err error
	f.source, err = platform.NewConnector(0, f.src.Endpoint("ds"), config.Timeouts{})
	require.NoError(t, err)
	f.target, err = platform.NewConnector(1, f.tgt.Endpoint("swp"), config.Timeouts{})
	require.NoError(t, err)
	return f
}

func (f *fixture) mapper(opts ...resolve.Option) *resolve.Mapper {
	return resolve.New(f.source, f.target, opts...)
}

func TestComputerGroupID(t *testing.T) {
	f := newFixture(t)
	f.src.Seed("computergroups",
		map[string]any{"ID": 10, "name": "Servers"},
		map[string]any{"ID": 11, "name": "Web", "parentGroupID": 10},
		map[string]any{"ID": 12, "name": "Web"},
		map[string]any{"ID": 13, "name": "Orphan"},
	)
	f.tgt.Seed("computergroups",
		map[string]any{"ID": 1, "name": "Web"},
		map[string]any{"ID": 2, "name": "Servers"},
		map[string]any{"ID": 3, "name": "Web", "parentGroupID": 2},
		map[string]any{"ID": 4, "name": "Web", "parentGroupID": 2},
	)
	m := f.mapper()
	ctx := context.Background()

	id, err := m.ComputerGroupID(ctx, 11)
	require.NoError(t, err)
	assert.Equal(t, 3, id, "child matches by parent name, first in fetch order")

	id, err = m.ComputerGroupID(ctx, 12)
	require.NoError(t, err)
	assert.Equal(t, 1, id, "root only matches root")

	_, err = m.ComputerGroupID(ctx, 13)
	require.Error(t, err)
	var mapErr *errors.MappingError
	require.ErrorAs(t, err, &mapErr)
	assert.Equal(t, 13, mapErr.SourceID)
	assert.Equal(t, "unsuccessful computer group match: 13", err.Error())

	_, err = m.ComputerGroupID(ctx, 99)
	assert.True(t, errors.IsMapping(err))
}

func TestSmartFolderID(t *testing.T) {
	f := newFixture(t)
	f.src.Seed("smartfolders",
		map[string]any{"ID": 1, "name": "Linux"},
		map[string]any{"ID": 2, "name": "Prod", "parentSmartFolderID": 1},
	)
	f.tgt.Seed("smartfolders",
		map[string]any{"ID": 5, "name": "Windows"},
		map[string]any{"ID": 6, "name": "Prod", "parentSmartFolderID": 5},
		map[string]any{"ID": 7, "name": "Linux"},
		map[string]any{"ID": 8, "name": "Prod", "parentSmartFolderID": 7},
	)

	id, err := f.mapper().SmartFolderID(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, 8, id)
}

func TestPolicyIDSuffix(t *testing.T) {
	f := newFixture(t)
	f.src.Seed("policies",
		map[string]any{"ID": 1, "name": "Base Policy"},
		map[string]any{"ID": 5, "name": "Linux Server", "parentID": 1},
	)
	f.tgt.Seed("policies",
		map[string]any{"ID": 100, "name": "Base Policy (DS)"},
		map[string]any{"ID": 101, "name": "Linux Server (DS)", "parentID": 100},
	)
	ctx := context.Background()

	id, err := f.mapper(resolve.WithPolicySuffix(" (DS)")).PolicyID(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, 101, id)

	_, err = f.mapper().PolicyID(ctx, 5)
	assert.True(t, errors.IsMapping(err), "without the suffix nothing matches")
}

func TestComputerID(t *testing.T) {
	f := newFixture(t)
	f.src.Seed("computers",
		map[string]any{"ID": 1, "hostName": "a", "biosUUID": "uuid-a"},
		map[string]any{"ID": 2, "hostName": "b"},
	)
	f.tgt.Seed("computers", map[string]any{"ID": 40, "hostName": "a-renamed", "biosUUID": "uuid-a"})
	m := f.mapper()
	ctx := context.Background()

	id, err := m.ComputerID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 40, id)

	_, err = m.ComputerID(ctx, 2)
	assert.True(t, errors.IsMapping(err))
}

func TestContactIDs(t *testing.T) {
	f := newFixture(t)
	f.src.Seed("contacts",
		map[string]any{"ID": 1, "name": "Ops", "emailAddress": "ops@example.com", "roleID": 3},
		map[string]any{"ID": 2, "name": "Sec", "emailAddress": "sec@example.com", "roleID": 3},
		map[string]any{"ID": 3, "name": "Pager"},
	)
	f.tgt.Seed("contacts", map[string]any{"ID": 50, "name": "Operations", "emailAddress": "ops@example.com"})
	f.tgt.Seed("roles",
		map[string]any{"ID": 7, "name": "Full Access", "v1RoleName": "Master administrator"},
		map[string]any{"ID": 8, "name": "Auditor", "v1RoleName": "Auditor"},
	)
	m := f.mapper()
	ctx := context.Background()

	ids, err := m.ContactIDs(ctx, []int{1, 2, 3})
	require.NoError(t, err)
	require.Len(t, ids, 2)
	assert.Equal(t, 50, ids[0])

	created, ok := f.tgt.ByName("contacts", "Sec")
	require.True(t, ok)
	assert.EqualValues(t, ids[1], toInt(created["ID"]))
	assert.EqualValues(t, 8, toInt(created["roleID"]), "created contacts get the Auditor role")

	// the created contact is now in the target cache, so a second mapping
	// reuses it instead of creating again
	again, err := m.ContactIDs(ctx, []int{2})
	require.NoError(t, err)
	assert.Equal(t, ids[1:], again)
	assert.Equal(t, 1, f.tgt.Count(http.MethodPost, "contacts"))

	_, err = m.ContactIDs(ctx, []int{42})
	assert.True(t, errors.IsMapping(err))
}

func TestUnsupportedReferences(t *testing.T) {
	f := newFixture(t)
	tl := logging.NewTestLogger(t)
	ctx := logging.WithLogger(context.Background(), tl.Logger)
	m := f.mapper()

	assert.Nil(t, m.AdministratorIDs(ctx, []int{1, 2}))
	assert.Equal(t, resolve.UnsupportedRelayGroup, m.RelayGroupID(ctx, 9))
	tl.AssertContains(t, "Unable to match administrators")
	tl.AssertContains(t, "relay groups is not supported")
	assert.Empty(t, f.src.Requests(), "unsupported references never touch the platforms")
}

func TestComputerFilter(t *testing.T) {
	f := newFixture(t)
	f.src.Seed("computergroups", map[string]any{"ID": 10, "name": "Servers"})
	f.tgt.Seed("computergroups", map[string]any{"ID": 20, "name": "Servers"})
	f.src.Seed("policies", map[string]any{"ID": 1, "name": "Base"})
	m := f.mapper()
	ctx := context.Background()

	out, err := m.ComputerFilter(ctx, platform.Record{"type": "computers-in-group", "computerGroupID": 10})
	require.NoError(t, err)
	assert.Equal(t, platform.Record{"type": "computers-in-group", "computerGroupID": 20}, out)

	out, err = m.ComputerFilter(ctx, platform.Record{"type": "all-computers", "computerGroupID": nil})
	require.NoError(t, err)
	assert.Equal(t, platform.Record{"type": "all-computers"}, out)

	_, err = m.ComputerFilter(ctx, platform.Record{"type": "computers-using-policy", "policyID": 1})
	assert.True(t, errors.IsMapping(err))

	out, err = m.ComputerFilter(ctx, nil)
	assert.NoError(t, err)
	assert.Nil(t, out)
}

func TestRecipients(t *testing.T) {
	f := newFixture(t)
	f.src.Seed("contacts", map[string]any{"ID": 1, "name": "Ops", "emailAddress": "ops@example.com"})
	f.tgt.Seed("contacts", map[string]any{"ID": 9, "name": "Ops", "emailAddress": "ops@example.com"})
	m := f.mapper()
	ctx := context.Background()

	out, err := m.Recipients(ctx, platform.Record{
		"allAdministratorsAndContacts": false,
		"administratorIDs":             []any{1},
		"contactIDs":                   []any{1},
	})
	require.NoError(t, err)
	assert.Equal(t, false, out["allAdministratorsAndContacts"])
	assert.False(t, out.Has("administratorIDs"))
	assert.Equal(t, []int{9}, out["contactIDs"])

	out, err = m.Recipients(ctx, platform.Record{})
	require.NoError(t, err)
	assert.Equal(t, true, out["allAdministratorsAndContacts"])

	_, err = m.Recipients(ctx, platform.Record{"contactIDs": "1,2"})
	assert.True(t, errors.IsValidationError(err))
}

func toInt(v any) int {
	n, _ := platform.AsInt(v)
	return n
}

func TestComputerGroupIDMissingSourceParent(t *testing.T) {
	f := newFixture(t)
	f.src.Seed("computergroups", map[string]any{"ID": 21, "name": "Web", "parentGroupID": 20})
	f.tgt.Seed("computergroups", map[string]any{"ID": 1, "name": "Web"})

	_, err := f.mapper().ComputerGroupID(context.Background(), 21)
	var mapErr *errors.MappingError
	require.ErrorAs(t, err, &mapErr)
	assert.Equal(t, "parent not found on source", mapErr.Reason)
}
