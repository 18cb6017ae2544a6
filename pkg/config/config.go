// Package config loads the list of platform endpoints aiomigrate can talk to.
//
// The file is YAML, read through viper:
//
//	endpoints:
//	  - type: swp
//	    url: https://workload.de-1.cloudone.trendmicro.com/api/
//	    api_key: ${API_KEY_SWP}
//	  - type: ds
//	    url: https://dsm.example.com:4119/api/
//	    api_key: ${API_KEY_DS}
//	timeouts:
//	  connect: 2s
//	  read: 30s
//
// ${VAR} references are expanded from the environment after .env and
// .env.local have been loaded.
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/workloadsec/aiomigrate/pkg/constants"
	"github.com/workloadsec/aiomigrate/pkg/errors"
)

// Endpoint describes one platform instance.
type Endpoint struct {
	Kind   string `mapstructure:"type" yaml:"type" json:"type"`
	URL    string `mapstructure:"url" yaml:"url" json:"url"`
	APIKey string `mapstructure:"api_key" yaml:"api_key" json:"-"`

	// InsecureSkipVerify overrides the TLS policy of the kind when set.
	InsecureSkipVerify *bool `mapstructure:"insecure_skip_verify" yaml:"insecure_skip_verify,omitempty" json:"insecure_skip_verify,omitempty"`
}

// MaskedKey returns the trailing characters of the API key for display.
func (e Endpoint) MaskedKey() string {
	if len(e.APIKey) <= constants.MaskedKeyLength {
		return e.APIKey
	}
	return e.APIKey[len(e.APIKey)-constants.MaskedKeyLength:]
}

// Timeouts is the connect/read timeout pair used for every request.
type Timeouts struct {
	Connect time.Duration `mapstructure:"connect" yaml:"connect" json:"connect"`
	Read    time.Duration `mapstructure:"read" yaml:"read" json:"read"`
}

// Config is the validated endpoint configuration.
type Config struct {
	Endpoints []Endpoint `mapstructure:"endpoints" yaml:"endpoints" json:"endpoints"`
	Timeouts  Timeouts   `mapstructure:"timeouts" yaml:"timeouts" json:"timeouts"`

	// File is the path the configuration was read from, if any.
	File string `mapstructure:"-" yaml:"-" json:"file,omitempty"`
}

// Load reads the configuration from path, or from the first file found by
// SearchPaths when path is empty.
func Load(path string) (*Config, error) {
	LoadEnvFiles()

	if path == "" {
		path = Find()
		if path == "" {
			return nil, errors.NewConfigError("config", "no configuration file found in "+strings.Join(SearchPaths(), ", "), nil)
		}
	}

	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, errors.NewConfigError("config", "failed to read "+path, err)
	}

	cfg, err := decode(v)
	if err != nil {
		return nil, err
	}
	cfg.File = path
	return cfg, nil
}

// Read parses configuration from r.
func Read(r io.Reader) (*Config, error) {
	v := newViper()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(r); err != nil {
		return nil, errors.NewConfigError("config", "failed to parse configuration", err)
	}
	return decode(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	v.SetDefault("timeouts.connect", constants.ConnectTimeout)
	v.SetDefault("timeouts.read", constants.ReadTimeout)
	return v
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.NewConfigError("config", "invalid configuration", err)
	}
	for i := range cfg.Endpoints {
		ep := &cfg.Endpoints[i]
		ep.Kind = strings.ToLower(strings.TrimSpace(os.ExpandEnv(ep.Kind)))
		ep.URL = strings.TrimSpace(os.ExpandEnv(ep.URL))
		ep.APIKey = strings.TrimSpace(os.ExpandEnv(ep.APIKey))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks every endpoint and the timeouts.
func (c *Config) Validate() error {
	if len(c.Endpoints) == 0 {
		return errors.NewConfigError("endpoints", "at least one endpoint is required", nil)
	}
	for i, ep := range c.Endpoints {
		component := fmt.Sprintf("endpoint %d", i+1)
		switch ep.Kind {
		case constants.KindDS, constants.KindSWP:
		default:
			return errors.NewConfigError(component, fmt.Sprintf("unknown type %q, want ds or swp", ep.Kind), nil)
		}
		if ep.URL == "" {
			return errors.NewConfigError(component, "url is required", nil)
		}
		if ep.APIKey == "" {
			return errors.NewConfigError(component, "api_key is required", nil)
		}
	}
	if c.Timeouts.Connect < 0 || c.Timeouts.Read < 0 {
		return errors.NewConfigError("timeouts", "timeouts must not be negative", nil)
	}
	return nil
}

// Endpoint returns the endpoint with the given 1-based ID.
func (c *Config) Endpoint(id int) (Endpoint, error) {
	if id < 1 || id > len(c.Endpoints) {
		return Endpoint{}, errors.NewValidationError("endpoint", id,
			fmt.Sprintf("endpoint ID must be between 1 and %d", len(c.Endpoints)))
	}
	return c.Endpoints[id-1], nil
}

// SearchPaths lists the files Load tries in order when no path is given.
func SearchPaths() []string {
	paths := []string{
		constants.ConfigFileName,
		filepath.Join(xdg.ConfigHome, constants.AppName, constants.ConfigFileName),
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, "."+constants.AppName+".yaml"))
	}
	return paths
}

// Find returns the first existing file of SearchPaths, or "".
func Find() string {
	for _, p := range SearchPaths() {
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p
		}
	}
	return ""
}

// LoadEnvFiles loads .env and then .env.local from the working directory.
// Variables already set in the environment win.
func LoadEnvFiles() {
	for _, envFile := range []string{".env", ".env.local"} {
		_ = godotenv.Load(envFile)
	}
}
