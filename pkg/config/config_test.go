package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workloadsec/aiomigrate/pkg/config"
	"github.com/workloadsec/aiomigrate/pkg/errors"
)

const sample = `
endpoints:
  - type: swp
    url: https://workload.example.com/api/
    api_key: ${TEST_API_KEY_SWP}
  - type: DS
    url: https://dsm.example.com:4119/api/
    api_key: tenant:0123456789abcdef
    insecure_skip_verify: false
timeouts:
  read: 45s
`

func TestRead(t *testing.T) {
	t.Setenv("TEST_API_KEY_SWP", "swp-secret-key-12345678")

	cfg, err := config.Read(strings.NewReader(sample))
	require.NoError(t, err)
	require.Len(t, cfg.Endpoints, 2)

	swp := cfg.Endpoints[0]
	assert.Equal(t, "swp", swp.Kind)
	assert.Equal(t, "swp-secret-key-12345678", swp.APIKey)
	assert.Nil(t, swp.InsecureSkipVerify)

	ds := cfg.Endpoints[1]
	assert.Equal(t, "ds", ds.Kind)
	require.NotNil(t, ds.InsecureSkipVerify)
	assert.False(t, *ds.InsecureSkipVerify)

	assert.Equal(t, 2*time.Second, cfg.Timeouts.Connect)
	assert.Equal(t, 45*time.Second, cfg.Timeouts.Read)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"no endpoints", "endpoints: []", "at least one endpoint"},
		{"unknown kind", "endpoints:\n  - type: v1\n    url: https://x\n    api_key: k", `unknown type "v1"`},
		{"missing url", "endpoints:\n  - type: ds\n    api_key: k", "url is required"},
		{"missing key", "endpoints:\n  - type: swp\n    url: https://x\n    api_key: ${TEST_UNSET_KEY}", "api_key is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.Read(strings.NewReader(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)

			var cfgErr *errors.ConfigError
			assert.ErrorAs(t, err, &cfgErr)
			assert.True(t, errors.IsValidationError(err))
		})
	}
}

func TestLoad(t *testing.T) {
	t.Run("explicit path", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "endpoints.yaml")
		require.NoError(t, os.WriteFile(path, []byte("endpoints:\n  - type: ds\n    url: https://dsm/api/\n    api_key: abc\n"), 0o600))

		cfg, err := config.Load(path)
		require.NoError(t, err)
		assert.Equal(t, path, cfg.File)
		assert.Len(t, cfg.Endpoints, 1)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
		var cfgErr *errors.ConfigError
		assert.ErrorAs(t, err, &cfgErr)
	})
}

func TestEndpointLookup(t *testing.T) {
	cfg := &config.Config{Endpoints: []config.Endpoint{
		{Kind: "swp", URL: "https://a", APIKey: "k1"},
		{Kind: "ds", URL: "https://b", APIKey: "k2"},
	}}

	ep, err := cfg.Endpoint(2)
	require.NoError(t, err)
	assert.Equal(t, "https://b", ep.URL)

	_, err = cfg.Endpoint(0)
	assert.True(t, errors.IsValidationError(err))
	_, err = cfg.Endpoint(3)
	assert.Error(t, err)
}

func TestMaskedKey(t *testing.T) {
	assert.Equal(t, "12345678", config.Endpoint{APIKey: "secret-12345678"}.MaskedKey())
	assert.Equal(t, "short", config.Endpoint{APIKey: "short"}.MaskedKey())
}

func TestSearchPaths(t *testing.T) {
	paths := config.SearchPaths()
	require.NotEmpty(t, paths)
	assert.Equal(t, "config.yaml", paths[0])
	assert.Contains(t, paths[1], filepath.Join("aiomigrate", "config.yaml"))
}
